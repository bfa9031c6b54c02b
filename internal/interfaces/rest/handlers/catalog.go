package handlers

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/metropass/settlement-engine/internal/domain"
)

type ticketTypeResponse struct {
	Code         string `json:"code"`
	DisplayName  string `json:"display_name"`
	Price        int64  `json:"price"`
	ValiditySecs int64  `json:"validity_secs"`
	Rule         string `json:"rule"`
}

func toTicketTypeResponse(tt domain.TicketType) ticketTypeResponse {
	return ticketTypeResponse{
		Code:         tt.Code,
		DisplayName:  tt.DisplayName,
		Price:        tt.Price,
		ValiditySecs: int64(tt.Validity / time.Second),
		Rule:         string(tt.Rule),
	}
}

// ListTickets returns the purchasable catalog.
func (h *Handlers) ListTickets(c echo.Context) error {
	catalog, err := h.catalogService.ListActive(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}

	out := make([]ticketTypeResponse, 0, len(catalog))
	for _, tt := range catalog {
		out = append(out, toTicketTypeResponse(tt))
	}
	return h.ok(c, out)
}

// GetTicket returns one catalog entry with its current price.
func (h *Handlers) GetTicket(c echo.Context) error {
	tt, err := h.catalogService.GetPrice(c.Request().Context(), c.Param("code"))
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, toTicketTypeResponse(tt))
}

// ListEligibleTickets filters the catalog by the passenger's attributes.
func (h *Handlers) ListEligibleTickets(c echo.Context) error {
	eligible, err := h.catalogService.ListEligible(c.Request().Context(), c.Param("passengerId"))
	if err != nil {
		return h.fail(c, err)
	}

	out := make([]ticketTypeResponse, 0, len(eligible))
	for _, tt := range eligible {
		out = append(out, toTicketTypeResponse(tt))
	}
	return h.ok(c, out)
}

// BestTicket recommends the most advantageous eligible ticket.
func (h *Handlers) BestTicket(c echo.Context) error {
	best, err := h.catalogService.BestTicket(c.Request().Context(), c.Param("passengerId"))
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, toTicketTypeResponse(best))
}
