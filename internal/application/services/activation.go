package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/metropass/settlement-engine/internal/domain"
	"github.com/metropass/settlement-engine/internal/infrastructure/persistence/postgres"
)

// ActivationService starts a ticket's validity window. The item row is
// locked for the duration of the transaction so two concurrent activation
// attempts serialize; the loser reads ACTIVATED and gets an invalid-state
// error instead of resetting the window.
type ActivationService struct {
	coordinator *postgres.TransactionCoordinator
	logger      *slog.Logger
}

func NewActivationService(coordinator *postgres.TransactionCoordinator, logger *slog.Logger) *ActivationService {
	return &ActivationService{coordinator: coordinator, logger: logger}
}

// Activate moves an ISSUED item to ACTIVATED, stamping the window from the
// ticket type's validity at activation time.
func (s *ActivationService) Activate(ctx context.Context, itemID string) (*domain.InvoiceItem, error) {
	var activated *domain.InvoiceItem
	err := s.coordinator.WithTransaction(ctx, func(ctx context.Context, repos postgres.TxRepos) error {
		item, err := repos.Invoices.FindItemByIDForUpdate(ctx, itemID)
		if err != nil {
			return err
		}

		validity := item.Duration
		if tt, err := repos.Catalog.FindByCode(ctx, item.TicketTypeCode); err == nil {
			validity = tt.Validity
		}

		if err := item.Activate(time.Now(), validity); err != nil {
			return err
		}
		if err := repos.Invoices.UpdateItem(ctx, item); err != nil {
			return err
		}

		activated = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ticket activated",
		"item_id", activated.ID,
		"ticket_type", activated.TicketTypeCode,
		"expires_at", activated.ExpiredAt)
	return activated, nil
}
