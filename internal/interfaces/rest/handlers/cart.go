package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/metropass/settlement-engine/internal/application"
	"github.com/metropass/settlement-engine/internal/application/services"
)

type addCartItemRequest struct {
	LineID         string `json:"line_id"`
	StartStationID string `json:"start_station_id"`
	EndStationID   string `json:"end_station_id"`
	TicketTypeCode string `json:"ticket_type_code"`
}

type cartLineResponse struct {
	ItemID         string `json:"item_id"`
	TicketTypeCode string `json:"ticket_type_code"`
	DisplayName    string `json:"display_name"`
	LineID         string `json:"line_id"`
	StartStationID string `json:"start_station_id"`
	EndStationID   string `json:"end_station_id"`
	Price          int64  `json:"price"`
}

type cartResponse struct {
	Lines []cartLineResponse `json:"lines"`
	Total int64              `json:"total"`
}

func toCartResponse(view *services.CartView) cartResponse {
	out := cartResponse{Total: view.Total, Lines: make([]cartLineResponse, 0, len(view.Lines))}
	for _, l := range view.Lines {
		out.Lines = append(out.Lines, cartLineResponse{
			ItemID:         l.Item.ID,
			TicketTypeCode: l.Item.TicketTypeCode,
			DisplayName:    l.DisplayName,
			LineID:         l.Item.LineID,
			StartStationID: l.Item.StartStationID,
			EndStationID:   l.Item.EndStationID,
			Price:          l.Price,
		})
	}
	return out
}

// AddCartItem puts a ticket selection in the cart.
func (h *Handlers) AddCartItem(c echo.Context) error {
	var req addCartItemRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, application.NewInvalidInputError("invalid request body"))
	}

	item, err := h.cartService.AddItem(c.Request().Context(), services.AddCartItemCommand{
		PassengerID:    c.Param("passengerId"),
		LineID:         req.LineID,
		StartStationID: req.StartStationID,
		EndStationID:   req.EndStationID,
		TicketTypeCode: req.TicketTypeCode,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return h.created(c, item)
}

// GetCart returns the live cart priced from the current catalog.
func (h *Handlers) GetCart(c echo.Context) error {
	view, err := h.cartService.List(c.Request().Context(), c.Param("passengerId"))
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, toCartResponse(view))
}

// RemoveCartItem deletes one selection.
func (h *Handlers) RemoveCartItem(c echo.Context) error {
	err := h.cartService.RemoveItem(c.Request().Context(), c.Param("passengerId"), c.Param("itemId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ClearCart empties the cart.
func (h *Handlers) ClearCart(c echo.Context) error {
	if err := h.cartService.Clear(c.Request().Context(), c.Param("passengerId")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
