package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/metropass/settlement-engine/internal/application"
	"github.com/metropass/settlement-engine/internal/domain"
)

// GetInvoice returns one invoice with its items.
func (h *Handlers) GetInvoice(c echo.Context) error {
	invoice, err := h.invoiceService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, invoice)
}

// ListInvoices lists invoices, either by passenger or by email.
func (h *Handlers) ListInvoices(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return h.fail(c, application.NewInvalidInputError("email query parameter is required"))
	}

	invoices, err := h.invoiceService.ListByEmail(c.Request().Context(), email)
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, invoices)
}

// ListPassengerInvoices lists a passenger's invoices, newest first.
func (h *Handlers) ListPassengerInvoices(c echo.Context) error {
	invoices, err := h.invoiceService.ListByPassenger(c.Request().Context(), c.Param("passengerId"))
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, invoices)
}

// ListPassengerItems lists a passenger's tickets filtered on effective
// status.
func (h *Handlers) ListPassengerItems(c echo.Context) error {
	status := domain.ItemStatus(c.QueryParam("status"))
	switch status {
	case domain.StatusIssued, domain.StatusActivated, domain.StatusExpired:
	default:
		return h.fail(c, application.NewInvalidInputError("status must be one of ISSUED, ACTIVATED, EXPIRED"))
	}

	items, err := h.invoiceService.ListItemsByStatus(c.Request().Context(), c.Param("passengerId"), status)
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, items)
}

// GetReceipt renders the invoice as a PDF.
func (h *Handlers) GetReceipt(c echo.Context) error {
	pdf, err := h.receiptService.Render(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// ActivateItem starts a ticket's validity window.
func (h *Handlers) ActivateItem(c echo.Context) error {
	item, err := h.activationService.Activate(c.Request().Context(), c.Param("itemId"))
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, item)
}
