package handlers

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/metropass/settlement-engine/internal/domain"
)

// SignatureHeader carries the provider's HMAC over the raw payload.
const SignatureHeader = "X-Provider-Signature"

// ProviderWebhook receives settlement callbacks. The signature is checked
// over the raw body before anything is decoded; duplicates are acknowledged
// with 200 and no side effects, non-complete sessions are rejected.
func (h *Handlers) ProviderWebhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return h.fail(c, domain.NewInvalidPayloadError("unreadable body"))
	}

	result, err := h.settlementService.HandleWebhook(
		c.Request().Context(),
		payload,
		c.Request().Header.Get(SignatureHeader),
	)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": result})
}
