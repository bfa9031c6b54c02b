package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/metropass/settlement-engine/internal/application"
	"github.com/metropass/settlement-engine/internal/application/services"
)

type ticketSelectionRequest struct {
	TicketTypeCode string `json:"ticket_type_code"`
	LineID         string `json:"line_id"`
	LineName       string `json:"line_name"`
	StartStation   string `json:"start_station"`
	EndStation     string `json:"end_station"`
	Quantity       int    `json:"quantity"`
}

type walletPurchaseRequest struct {
	PassengerID string                   `json:"passenger_id"`
	Items       []ticketSelectionRequest `json:"items"`
}

type operatorPurchaseRequest struct {
	OperatorID  string                   `json:"operator_id"`
	PassengerID string                   `json:"passenger_id"`
	Items       []ticketSelectionRequest `json:"items"`
}

type hostedCheckoutRequest struct {
	PassengerID string `json:"passenger_id"`
}

type guestCheckoutRequest struct {
	Email string                   `json:"email"`
	Items []ticketSelectionRequest `json:"items"`
}

func toSelections(items []ticketSelectionRequest) []services.TicketSelection {
	out := make([]services.TicketSelection, 0, len(items))
	for _, it := range items {
		out = append(out, services.TicketSelection{
			TicketTypeCode: it.TicketTypeCode,
			LineID:         it.LineID,
			LineName:       it.LineName,
			StartStation:   it.StartStation,
			EndStation:     it.EndStation,
			Quantity:       it.Quantity,
		})
	}
	return out
}

// WalletPurchase pays for tickets from the wallet. A declined purchase
// (insufficient balance) comes back as 402 with the shortfall.
func (h *Handlers) WalletPurchase(c echo.Context) error {
	var req walletPurchaseRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, application.NewInvalidInputError("invalid request body"))
	}

	result, err := h.checkoutService.WalletPurchase(c.Request().Context(), services.WalletPurchaseCommand{
		PassengerID: req.PassengerID,
		Items:       toSelections(req.Items),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return h.writePurchaseResult(c, result)
}

// OperatorPurchase is a wallet purchase performed at a counter.
func (h *Handlers) OperatorPurchase(c echo.Context) error {
	var req operatorPurchaseRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, application.NewInvalidInputError("invalid request body"))
	}

	result, err := h.checkoutService.OperatorPurchase(c.Request().Context(), req.OperatorID, services.WalletPurchaseCommand{
		PassengerID: req.PassengerID,
		Items:       toSelections(req.Items),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return h.writePurchaseResult(c, result)
}

func (h *Handlers) writePurchaseResult(c echo.Context, result *services.PurchaseResult) error {
	if !result.Paid {
		return c.JSON(http.StatusPaymentRequired, map[string]any{
			"success": false,
			"data": map[string]any{
				"paid":     false,
				"balance":  result.Balance,
				"required": result.Required,
			},
		})
	}
	return h.created(c, map[string]any{
		"paid":              true,
		"invoice":           result.Invoice,
		"remaining_balance": result.RemainingBalance,
	})
}

// HostedCheckout opens a provider session for the cart.
func (h *Handlers) HostedCheckout(c echo.Context) error {
	var req hostedCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, application.NewInvalidInputError("invalid request body"))
	}

	redirect, err := h.checkoutService.HostedCheckout(c.Request().Context(), services.HostedCheckoutCommand{
		PassengerID: req.PassengerID,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return h.created(c, redirect)
}

// GuestCheckout opens a provider session keyed by email only.
func (h *Handlers) GuestCheckout(c echo.Context) error {
	var req guestCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, application.NewInvalidInputError("invalid request body"))
	}

	redirect, err := h.checkoutService.GuestCheckout(c.Request().Context(), services.GuestCheckoutCommand{
		Email: req.Email,
		Items: toSelections(req.Items),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return h.created(c, redirect)
}
