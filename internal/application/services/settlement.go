package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/metropass/settlement-engine/internal/domain"
	"github.com/metropass/settlement-engine/internal/infrastructure/persistence/postgres"
	"github.com/metropass/settlement-engine/internal/infrastructure/provider"
)

// SettlementService turns verified webhook deliveries into exactly-once
// local effects. The dedupe row keyed by provider event id is inserted in
// the same transaction as the side effects, so a duplicate delivery either
// sees the committed row or loses the insert race; both paths apply nothing.
type SettlementService struct {
	verifier    *provider.WebhookVerifier
	coordinator *postgres.TransactionCoordinator
	logger      *slog.Logger
}

func NewSettlementService(
	verifier *provider.WebhookVerifier,
	coordinator *postgres.TransactionCoordinator,
	logger *slog.Logger,
) *SettlementService {
	return &SettlementService{
		verifier:    verifier,
		coordinator: coordinator,
		logger:      logger,
	}
}

// HandleWebhook verifies, parses and applies one webhook delivery.
//
// Non-complete sessions are rejected without side effects. Duplicate
// event ids are acknowledged as already applied. Every amount used here
// comes from the verified payload, never from request parameters.
func (s *SettlementService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*SettlementResult, error) {
	event, err := s.verifier.ParseEvent(payload, signature)
	if err != nil {
		s.logger.Warn("webhook rejected", "error", err)
		return nil, err
	}

	session := event.Data.Object
	if session.Status != provider.SessionStatusComplete {
		s.logger.Info("webhook rejected: session not complete",
			"event_id", event.ID, "session_id", session.ID, "status", session.Status)
		return nil, domain.NewNotCompleteError(session.Status)
	}

	purpose := session.Metadata[provider.MetadataKeyPurpose]

	var result *SettlementResult
	switch purpose {
	case provider.PurposeWalletTopUp:
		result, err = s.settleTopUp(ctx, event)
	case provider.PurposeTicketPurchase:
		result, err = s.settleCartPurchase(ctx, event)
	case provider.PurposeGuestPurchase:
		result, err = s.settleGuestPurchase(ctx, event)
	default:
		return nil, domain.NewInvalidPayloadError("unknown session purpose " + purpose)
	}

	if errors.Is(err, postgres.ErrDuplicateSettlementEvent) {
		s.logger.Info("webhook already settled", "event_id", event.ID, "purpose", purpose)
		return &SettlementResult{EventID: event.ID, Purpose: purpose, AlreadyApplied: true}, nil
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("webhook settled",
		"event_id", event.ID,
		"purpose", purpose,
		"session_id", session.ID,
		"amount", session.AmountTotal)
	return result, nil
}

func (s *SettlementService) settleTopUp(ctx context.Context, event *provider.WebhookEvent) (*SettlementResult, error) {
	session := event.Data.Object
	if session.ClientReference == "" {
		return nil, domain.NewInvalidPayloadError("top-up session without client reference")
	}
	if session.AmountTotal <= 0 {
		return nil, domain.NewInvalidPayloadError("top-up session with non-positive amount")
	}

	result := &SettlementResult{EventID: event.ID, Purpose: provider.PurposeWalletTopUp}
	err := s.coordinator.WithTransaction(ctx, func(ctx context.Context, repos postgres.TxRepos) error {
		if err := repos.Settlements.Record(ctx, settlementRow(event)); err != nil {
			return err
		}

		balance, err := repos.Wallets.Credit(ctx, session.ClientReference, session.AmountTotal)
		if err != nil {
			return err
		}

		record := &domain.TopUpRecord{
			ID:          uuid.New().String(),
			PassengerID: session.ClientReference,
			Amount:      session.AmountTotal,
			CreatedAt:   time.Now(),
		}
		if err := repos.Wallets.AppendTopUp(ctx, record); err != nil {
			return err
		}

		result.Applied = true
		result.NewBalance = balance
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *SettlementService) settleCartPurchase(ctx context.Context, event *provider.WebhookEvent) (*SettlementResult, error) {
	session := event.Data.Object
	if session.ClientReference == "" {
		return nil, domain.NewInvalidPayloadError("ticket purchase session without client reference")
	}

	result := &SettlementResult{EventID: event.ID, Purpose: provider.PurposeTicketPurchase}
	err := s.coordinator.WithTransaction(ctx, func(ctx context.Context, repos postgres.TxRepos) error {
		if err := repos.Settlements.Record(ctx, settlementRow(event)); err != nil {
			return err
		}

		passenger, err := repos.Passengers.FindByID(ctx, session.ClientReference)
		if err != nil {
			return err
		}

		if _, err := repos.Carts.PruneExpired(ctx, passenger.ID); err != nil {
			return err
		}
		cartLines, err := repos.Carts.ListLines(ctx, passenger.ID)
		if err != nil {
			return err
		}

		// Prices may have drifted (or the cart expired) between session
		// creation and settlement. A mismatch rolls everything back,
		// including the dedupe row, so a corrected delivery can retry.
		total := domain.CartTotal(cartLines)
		if total != session.AmountTotal || len(cartLines) == 0 {
			return domain.NewAmountMismatchError(session.AmountTotal, total)
		}

		invoice, err := domain.NewInvoice(
			uuid.New().String(), passenger.ID, passenger.Email, time.Now(),
			invoiceLinesFromCart(cartLines),
			func() string { return uuid.New().String() },
		)
		if err != nil {
			return err
		}
		if err := repos.Invoices.Create(ctx, invoice); err != nil {
			return err
		}
		if err := repos.Carts.Clear(ctx, passenger.ID); err != nil {
			return err
		}

		result.Applied = true
		result.InvoiceID = invoice.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *SettlementService) settleGuestPurchase(ctx context.Context, event *provider.WebhookEvent) (*SettlementResult, error) {
	session := event.Data.Object
	if session.CustomerEmail == "" {
		return nil, domain.NewInvalidPayloadError("guest purchase session without customer email")
	}

	metaLines, err := provider.DecodeMetadataLines(session.Metadata[provider.MetadataKeyLines])
	if err != nil || len(metaLines) == 0 {
		return nil, domain.NewInvalidPayloadError("guest purchase session without ticket lines")
	}

	var total int64
	for _, l := range metaLines {
		total += l.Price
	}
	if total != session.AmountTotal {
		return nil, domain.NewAmountMismatchError(session.AmountTotal, total)
	}

	result := &SettlementResult{EventID: event.ID, Purpose: provider.PurposeGuestPurchase}
	err = s.coordinator.WithTransaction(ctx, func(ctx context.Context, repos postgres.TxRepos) error {
		if err := repos.Settlements.Record(ctx, settlementRow(event)); err != nil {
			return err
		}

		lines := make([]domain.InvoiceLine, 0, len(metaLines))
		for _, l := range metaLines {
			tt, err := repos.Catalog.FindByCode(ctx, l.TicketTypeCode)
			if err != nil {
				return err
			}
			lines = append(lines, domain.InvoiceLine{
				TicketTypeCode: l.TicketTypeCode,
				Price:          l.Price,
				LineID:         l.LineID,
				LineName:       l.LineName,
				StartStation:   l.StartStation,
				EndStation:     l.EndStation,
				Duration:       tt.Validity,
			})
		}

		invoice, err := domain.NewInvoice(
			uuid.New().String(), "", session.CustomerEmail, time.Now(), lines,
			func() string { return uuid.New().String() },
		)
		if err != nil {
			return err
		}
		if err := repos.Invoices.Create(ctx, invoice); err != nil {
			return err
		}

		result.Applied = true
		result.InvoiceID = invoice.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func settlementRow(event *provider.WebhookEvent) *postgres.SettlementEvent {
	session := event.Data.Object
	return &postgres.SettlementEvent{
		EventID:     event.ID,
		SessionID:   session.ID,
		Purpose:     session.Metadata[provider.MetadataKeyPurpose],
		PassengerID: session.ClientReference,
		Email:       session.CustomerEmail,
		Amount:      session.AmountTotal,
		AppliedAt:   time.Now(),
	}
}
