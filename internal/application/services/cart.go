package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/metropass/settlement-engine/internal/application"
	"github.com/metropass/settlement-engine/internal/domain"
	"github.com/metropass/settlement-engine/internal/infrastructure/persistence/postgres"
)

type CartService struct {
	cartRepo      *postgres.CartRepository
	catalogRepo   *postgres.CatalogRepository
	passengerRepo *postgres.PassengerRepository
	logger        *slog.Logger
}

func NewCartService(
	cartRepo *postgres.CartRepository,
	catalogRepo *postgres.CatalogRepository,
	passengerRepo *postgres.PassengerRepository,
	logger *slog.Logger,
) *CartService {
	return &CartService{
		cartRepo:      cartRepo,
		catalogRepo:   catalogRepo,
		passengerRepo: passengerRepo,
		logger:        logger,
	}
}

// AddItem puts a ticket selection in the cart. No price is captured here;
// the catalog price at read time applies until checkout.
func (s *CartService) AddItem(ctx context.Context, cmd AddCartItemCommand) (*domain.CartItem, error) {
	if cmd.TicketTypeCode == "" {
		return nil, application.NewInvalidInputError("ticket type code is required")
	}
	if cmd.LineID == "" {
		return nil, application.NewInvalidInputError("line id is required")
	}

	if _, err := s.passengerRepo.FindByID(ctx, cmd.PassengerID); err != nil {
		return nil, err
	}
	if _, err := s.catalogRepo.FindByCode(ctx, cmd.TicketTypeCode); err != nil {
		return nil, err
	}

	item := &domain.CartItem{
		ID:             uuid.New().String(),
		PassengerID:    cmd.PassengerID,
		LineID:         cmd.LineID,
		StartStationID: cmd.StartStationID,
		EndStationID:   cmd.EndStationID,
		TicketTypeCode: cmd.TicketTypeCode,
		CreatedAt:      time.Now(),
	}
	if err := s.cartRepo.AddItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem deletes one selection from the passenger's cart.
func (s *CartService) RemoveItem(ctx context.Context, passengerID, itemID string) error {
	return s.cartRepo.RemoveItem(ctx, passengerID, itemID)
}

// List prunes expired items, then returns the live lines priced from the
// current catalog.
func (s *CartService) List(ctx context.Context, passengerID string) (*CartView, error) {
	if _, err := s.cartRepo.PruneExpired(ctx, passengerID); err != nil {
		return nil, err
	}

	lines, err := s.cartRepo.ListLines(ctx, passengerID)
	if err != nil {
		return nil, err
	}
	return &CartView{Lines: lines, Total: domain.CartTotal(lines)}, nil
}

// Clear empties the passenger's cart.
func (s *CartService) Clear(ctx context.Context, passengerID string) error {
	return s.cartRepo.Clear(ctx, passengerID)
}
