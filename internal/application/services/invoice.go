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

type InvoiceService struct {
	invoiceRepo   *postgres.InvoiceRepository
	passengerRepo *postgres.PassengerRepository
	coordinator   *postgres.TransactionCoordinator
	logger        *slog.Logger
}

func NewInvoiceService(
	invoiceRepo *postgres.InvoiceRepository,
	passengerRepo *postgres.PassengerRepository,
	coordinator *postgres.TransactionCoordinator,
	logger *slog.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:   invoiceRepo,
		passengerRepo: passengerRepo,
		coordinator:   coordinator,
		logger:        logger,
	}
}

// Create issues an invoice with one ISSUED item per line, all in one
// transaction. Prices on the lines are captured by the caller and stored
// as-is. An empty passenger id means a guest invoice keyed by email.
func (s *InvoiceService) Create(ctx context.Context, passengerID, email string, lines []domain.InvoiceLine) (*domain.Invoice, error) {
	if passengerID != "" {
		passenger, err := s.passengerRepo.FindByID(ctx, passengerID)
		if err != nil {
			return nil, err
		}
		if email == "" {
			email = passenger.Email
		}
	}
	if len(lines) == 0 {
		return nil, application.NewInvalidInputError("at least one invoice line is required")
	}

	invoice, err := domain.NewInvoice(
		uuid.New().String(), passengerID, email, time.Now(), lines,
		func() string { return uuid.New().String() },
	)
	if err != nil {
		return nil, err
	}

	err = s.coordinator.WithTransaction(ctx, func(ctx context.Context, repos postgres.TxRepos) error {
		return repos.Invoices.Create(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// Get loads an invoice with its items.
func (s *InvoiceService) Get(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	return s.invoiceRepo.FindByID(ctx, invoiceID)
}

// ListByPassenger lists a passenger's invoices, newest first.
func (s *InvoiceService) ListByPassenger(ctx context.Context, passengerID string) ([]*domain.Invoice, error) {
	return s.invoiceRepo.ListByPassenger(ctx, passengerID)
}

// ListByEmail lists invoices by the email they were issued to, covering
// guest purchases that have no passenger record.
func (s *InvoiceService) ListByEmail(ctx context.Context, email string) ([]*domain.Invoice, error) {
	return s.invoiceRepo.ListByEmail(ctx, email)
}

// ListItemsByStatus reads a passenger's invoice items filtered on effective
// status. Expiry is evaluated lazily against the clock, so an activated
// item past its window reads as EXPIRED even before the sweep persists it.
func (s *InvoiceService) ListItemsByStatus(ctx context.Context, passengerID string, status domain.ItemStatus) ([]domain.InvoiceItem, error) {
	now := time.Now()

	stored, err := s.invoiceRepo.ListItemsByPassengerAndStatus(ctx, passengerID, status)
	if err != nil {
		return nil, err
	}

	var items []domain.InvoiceItem
	for _, item := range stored {
		if item.EffectiveStatus(now) == status {
			items = append(items, item)
		}
	}

	// Activated items whose window has closed count as EXPIRED here even
	// though their stored status has not been swept yet.
	if status == domain.StatusExpired {
		activated, err := s.invoiceRepo.ListItemsByPassengerAndStatus(ctx, passengerID, domain.StatusActivated)
		if err != nil {
			return nil, err
		}
		for _, item := range activated {
			if item.EffectiveStatus(now) == domain.StatusExpired {
				item.Status = domain.StatusExpired
				items = append(items, item)
			}
		}
	}
	return items, nil
}
