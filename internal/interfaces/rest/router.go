// Package rest exposes the engine's operations over HTTP.
package rest

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/metropass/settlement-engine/internal/interfaces/rest/handlers"
	"github.com/metropass/settlement-engine/internal/interfaces/rest/middleware"
)

// NewRouter wires every endpoint onto an echo instance with the standard
// middleware chain: panic recovery, request logging and a per-request
// timeout.
func NewRouter(h *handlers.Handlers, logger *slog.Logger, requestTimeout time.Duration) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		_ = handlers.WriteError(c, err, logger)
	}

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.Timeout(requestTimeout))

	e.GET("/healthz", h.Health)

	v1 := e.Group("/v1")

	v1.GET("/tickets", h.ListTickets)
	v1.GET("/tickets/:code", h.GetTicket)

	v1.GET("/passengers/:passengerId/tickets/eligible", h.ListEligibleTickets)
	v1.GET("/passengers/:passengerId/tickets/best", h.BestTicket)
	v1.GET("/passengers/:passengerId/invoices", h.ListPassengerInvoices)
	v1.GET("/passengers/:passengerId/items", h.ListPassengerItems)

	v1.GET("/wallet/:passengerId", h.GetBalance)
	v1.POST("/wallet/:passengerId/debit", h.Debit)
	v1.POST("/wallet/:passengerId/credit", h.Credit)
	v1.GET("/wallet/:passengerId/topups", h.TopUpHistory)
	v1.POST("/wallet/:passengerId/topup-session", h.CreateTopUpSession)

	v1.GET("/cart/:passengerId", h.GetCart)
	v1.POST("/cart/:passengerId/items", h.AddCartItem)
	v1.DELETE("/cart/:passengerId/items/:itemId", h.RemoveCartItem)
	v1.DELETE("/cart/:passengerId", h.ClearCart)

	v1.POST("/checkout/wallet", h.WalletPurchase)
	v1.POST("/checkout/operator", h.OperatorPurchase)
	v1.POST("/checkout/hosted", h.HostedCheckout)
	v1.POST("/checkout/guest", h.GuestCheckout)

	v1.POST("/webhooks/provider", h.ProviderWebhook)

	v1.GET("/invoices", h.ListInvoices)
	v1.GET("/invoices/:id", h.GetInvoice)
	v1.GET("/invoices/:id/receipt", h.GetReceipt)
	v1.POST("/items/:itemId/activate", h.ActivateItem)

	return e
}
