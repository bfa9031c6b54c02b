// Package handlers contains the echo HTTP handlers for the engine's API.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/metropass/settlement-engine/internal/application/services"
)

type Handlers struct {
	catalogService    *services.CatalogService
	walletService     *services.WalletService
	cartService       *services.CartService
	checkoutService   *services.CheckoutService
	settlementService *services.SettlementService
	invoiceService    *services.InvoiceService
	activationService *services.ActivationService
	receiptService    *services.ReceiptService
	logger            *slog.Logger
}

func NewHandlers(
	catalogService *services.CatalogService,
	walletService *services.WalletService,
	cartService *services.CartService,
	checkoutService *services.CheckoutService,
	settlementService *services.SettlementService,
	invoiceService *services.InvoiceService,
	activationService *services.ActivationService,
	receiptService *services.ReceiptService,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		catalogService:    catalogService,
		walletService:     walletService,
		cartService:       cartService,
		checkoutService:   checkoutService,
		settlementService: settlementService,
		invoiceService:    invoiceService,
		activationService: activationService,
		receiptService:    receiptService,
		logger:            logger,
	}
}

type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func (h *Handlers) ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, successResponse{Success: true, Data: data})
}

func (h *Handlers) created(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, successResponse{Success: true, Data: data})
}

func (h *Handlers) fail(c echo.Context, err error) error {
	return WriteError(c, err, h.logger)
}

// Health reports liveness.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
