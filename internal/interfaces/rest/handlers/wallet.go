package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/metropass/settlement-engine/internal/application"
	"github.com/metropass/settlement-engine/internal/application/services"
)

type amountRequest struct {
	Amount int64 `json:"amount"`
}

type balanceResponse struct {
	PassengerID string `json:"passenger_id"`
	Balance     int64  `json:"balance"`
}

// GetBalance returns the passenger's wallet balance.
func (h *Handlers) GetBalance(c echo.Context) error {
	wallet, err := h.walletService.Balance(c.Request().Context(), c.Param("passengerId"))
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, balanceResponse{PassengerID: wallet.PassengerID, Balance: wallet.Balance})
}

// Debit removes funds from the wallet.
func (h *Handlers) Debit(c echo.Context) error {
	var req amountRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, application.NewInvalidInputError("invalid request body"))
	}

	balance, err := h.walletService.Debit(c.Request().Context(), c.Param("passengerId"), req.Amount)
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, balanceResponse{PassengerID: c.Param("passengerId"), Balance: balance})
}

// Credit adds funds to the wallet.
func (h *Handlers) Credit(c echo.Context) error {
	var req amountRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, application.NewInvalidInputError("invalid request body"))
	}

	balance, err := h.walletService.Credit(c.Request().Context(), c.Param("passengerId"), req.Amount)
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, balanceResponse{PassengerID: c.Param("passengerId"), Balance: balance})
}

// TopUpHistory lists confirmed external top-ups.
func (h *Handlers) TopUpHistory(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	history, err := h.walletService.TopUpHistory(c.Request().Context(), c.Param("passengerId"), limit)
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, history)
}

// CreateTopUpSession opens a hosted checkout session that credits the
// wallet once the provider confirms payment.
func (h *Handlers) CreateTopUpSession(c echo.Context) error {
	var req amountRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, application.NewInvalidInputError("invalid request body"))
	}

	redirect, err := h.checkoutService.TopUpSession(c.Request().Context(), services.TopUpSessionCommand{
		PassengerID: c.Param("passengerId"),
		Amount:      req.Amount,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return h.created(c, redirect)
}
