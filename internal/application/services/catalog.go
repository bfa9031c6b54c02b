// Package services orchestrates the engine's use cases over the domain and
// infrastructure layers: catalog reads, wallet operations, cart management,
// checkout, settlement, invoicing and ticket activation.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/metropass/settlement-engine/internal/domain"
	"github.com/metropass/settlement-engine/internal/infrastructure/persistence/postgres"
)

type CatalogService struct {
	catalogRepo   *postgres.CatalogRepository
	passengerRepo *postgres.PassengerRepository
	logger        *slog.Logger
}

func NewCatalogService(
	catalogRepo *postgres.CatalogRepository,
	passengerRepo *postgres.PassengerRepository,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		catalogRepo:   catalogRepo,
		passengerRepo: passengerRepo,
		logger:        logger,
	}
}

// ListActive returns the purchasable catalog in stable order.
func (s *CatalogService) ListActive(ctx context.Context) ([]domain.TicketType, error) {
	return s.catalogRepo.ListActive(ctx)
}

// GetPrice returns the current catalog entry for a code.
func (s *CatalogService) GetPrice(ctx context.Context, code string) (domain.TicketType, error) {
	return s.catalogRepo.FindByCode(ctx, code)
}

// ListEligible filters the catalog down to what the passenger may purchase.
func (s *CatalogService) ListEligible(ctx context.Context, passengerID string) ([]domain.TicketType, error) {
	passenger, err := s.passengerRepo.FindByID(ctx, passengerID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.catalogRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	return domain.EligibleTypes(catalog, passenger.Attributes(), time.Now()), nil
}

// BestTicket picks the most advantageous eligible ticket for the passenger.
func (s *CatalogService) BestTicket(ctx context.Context, passengerID string) (domain.TicketType, error) {
	passenger, err := s.passengerRepo.FindByID(ctx, passengerID)
	if err != nil {
		return domain.TicketType{}, err
	}

	catalog, err := s.catalogRepo.ListActive(ctx)
	if err != nil {
		return domain.TicketType{}, err
	}

	best, ok := domain.BestTicket(catalog, passenger.Attributes(), time.Now())
	if !ok {
		return domain.TicketType{}, domain.NewNotFoundError("eligible ticket type for passenger", passengerID)
	}
	return best, nil
}
