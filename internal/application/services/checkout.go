package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/metropass/settlement-engine/internal/application"
	"github.com/metropass/settlement-engine/internal/config"
	"github.com/metropass/settlement-engine/internal/domain"
	"github.com/metropass/settlement-engine/internal/infrastructure/persistence/postgres"
	"github.com/metropass/settlement-engine/internal/infrastructure/provider"
)

// CheckoutService runs purchases: wallet-paid ones settle immediately in a
// local transaction, hosted ones only open a provider session and leave all
// local writes to the settlement processor.
type CheckoutService struct {
	coordinator    *postgres.TransactionCoordinator
	cartRepo       *postgres.CartRepository
	catalogRepo    *postgres.CatalogRepository
	passengerRepo  *postgres.PassengerRepository
	checkoutClient provider.CheckoutClient
	providerCfg    config.ProviderConfig
	logger         *slog.Logger
}

func NewCheckoutService(
	coordinator *postgres.TransactionCoordinator,
	cartRepo *postgres.CartRepository,
	catalogRepo *postgres.CatalogRepository,
	passengerRepo *postgres.PassengerRepository,
	checkoutClient provider.CheckoutClient,
	providerCfg config.ProviderConfig,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		coordinator:    coordinator,
		cartRepo:       cartRepo,
		catalogRepo:    catalogRepo,
		passengerRepo:  passengerRepo,
		checkoutClient: checkoutClient,
		providerCfg:    providerCfg,
		logger:         logger,
	}
}

// WalletPurchase prices the tickets, debits the wallet, issues the invoice
// and clears the cart in one transaction. Insufficient balance comes back
// as an unpaid PurchaseResult, not an error.
func (s *CheckoutService) WalletPurchase(ctx context.Context, cmd WalletPurchaseCommand) (*PurchaseResult, error) {
	passenger, err := s.passengerRepo.FindByID(ctx, cmd.PassengerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	fromCart := len(cmd.Items) == 0

	var lines []domain.InvoiceLine
	if fromCart {
		if _, err := s.cartRepo.PruneExpired(ctx, cmd.PassengerID); err != nil {
			return nil, err
		}
		cartLines, err := s.cartRepo.ListLines(ctx, cmd.PassengerID)
		if err != nil {
			return nil, err
		}
		lines = invoiceLinesFromCart(cartLines)
	} else {
		lines, err = s.priceSelections(ctx, cmd.Items, passenger.Attributes(), now)
		if err != nil {
			return nil, err
		}
	}
	if len(lines) == 0 {
		return nil, application.NewInvalidInputError("nothing to purchase")
	}

	var total int64
	for _, l := range lines {
		total += l.Price
	}

	result := &PurchaseResult{}
	var shortBalance int64
	err = s.coordinator.WithTransaction(ctx, func(ctx context.Context, repos postgres.TxRepos) error {
		remaining := int64(0)
		if total > 0 {
			var debitErr error
			remaining, debitErr = repos.Wallets.Debit(ctx, cmd.PassengerID, total)
			if debitErr != nil {
				shortBalance = remaining
				return debitErr
			}
		} else {
			wallet, findErr := repos.Wallets.FindByPassengerID(ctx, cmd.PassengerID)
			if findErr != nil {
				return findErr
			}
			remaining = wallet.Balance
		}

		invoice, invErr := domain.NewInvoice(
			uuid.New().String(), passenger.ID, passenger.Email, now, lines,
			func() string { return uuid.New().String() },
		)
		if invErr != nil {
			return invErr
		}
		if createErr := repos.Invoices.Create(ctx, invoice); createErr != nil {
			return createErr
		}

		if fromCart {
			if clearErr := repos.Carts.Clear(ctx, cmd.PassengerID); clearErr != nil {
				return clearErr
			}
		}

		result.Paid = true
		result.Invoice = invoice
		result.RemainingBalance = remaining
		return nil
	})
	if errors.Is(err, postgres.ErrInsufficientBalance) {
		s.logger.Info("wallet purchase declined",
			"passenger_id", cmd.PassengerID, "balance", shortBalance, "required", total)
		return &PurchaseResult{Balance: shortBalance, Required: total}, nil
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("wallet purchase settled",
		"passenger_id", cmd.PassengerID,
		"invoice_id", result.Invoice.ID,
		"total", total,
		"remaining_balance", result.RemainingBalance)
	return result, nil
}

// OperatorPurchase is a wallet purchase performed at a service counter on
// the passenger's behalf. The operator id only feeds the audit log.
func (s *CheckoutService) OperatorPurchase(ctx context.Context, operatorID string, cmd WalletPurchaseCommand) (*PurchaseResult, error) {
	if operatorID == "" {
		return nil, application.NewInvalidInputError("operator id is required")
	}
	s.logger.Info("operator-initiated purchase", "operator_id", operatorID, "passenger_id", cmd.PassengerID)
	return s.WalletPurchase(ctx, cmd)
}

// TopUpSession opens a hosted session that, once completed, credits the
// wallet through the settlement processor. No local state is written here.
func (s *CheckoutService) TopUpSession(ctx context.Context, cmd TopUpSessionCommand) (*CheckoutRedirect, error) {
	if cmd.Amount <= 0 {
		return nil, domain.NewInvalidAmountError(cmd.Amount)
	}
	passenger, err := s.passengerRepo.FindByID(ctx, cmd.PassengerID)
	if err != nil {
		return nil, err
	}

	return s.createSession(ctx, provider.CheckoutSessionRequest{
		SuccessURL:      s.providerCfg.SuccessURL,
		CancelURL:       s.providerCfg.CancelURL,
		ClientReference: passenger.ID,
		CustomerEmail:   passenger.Email,
		LineItems: []provider.LineItem{
			{Name: "Wallet top-up", UnitAmount: cmd.Amount, Quantity: 1},
		},
		Metadata: map[string]string{
			provider.MetadataKeyPurpose: provider.PurposeWalletTopUp,
		},
	})
}

// HostedCheckout opens a hosted session for the passenger's cart. The cart
// itself is untouched; settlement prices and clears it when the provider
// confirms payment.
func (s *CheckoutService) HostedCheckout(ctx context.Context, cmd HostedCheckoutCommand) (*CheckoutRedirect, error) {
	passenger, err := s.passengerRepo.FindByID(ctx, cmd.PassengerID)
	if err != nil {
		return nil, err
	}

	if _, err := s.cartRepo.PruneExpired(ctx, cmd.PassengerID); err != nil {
		return nil, err
	}
	cartLines, err := s.cartRepo.ListLines(ctx, cmd.PassengerID)
	if err != nil {
		return nil, err
	}
	if len(cartLines) == 0 {
		return nil, application.NewInvalidInputError("cart is empty")
	}

	lineItems := make([]provider.LineItem, 0, len(cartLines))
	for _, l := range cartLines {
		lineItems = append(lineItems, provider.LineItem{
			Name:       l.DisplayName,
			UnitAmount: l.Price,
			Quantity:   1,
		})
	}

	return s.createSession(ctx, provider.CheckoutSessionRequest{
		SuccessURL:      s.providerCfg.SuccessURL,
		CancelURL:       s.providerCfg.CancelURL,
		ClientReference: passenger.ID,
		CustomerEmail:   passenger.Email,
		LineItems:       lineItems,
		Metadata: map[string]string{
			provider.MetadataKeyPurpose: provider.PurposeTicketPurchase,
		},
	})
}

// GuestCheckout opens a hosted session keyed by email only. The priced
// tickets travel through session metadata so settlement can issue the
// invoice without any local cart.
func (s *CheckoutService) GuestCheckout(ctx context.Context, cmd GuestCheckoutCommand) (*CheckoutRedirect, error) {
	if cmd.Email == "" {
		return nil, application.NewInvalidInputError("email is required")
	}
	if len(cmd.Items) == 0 {
		return nil, application.NewInvalidInputError("at least one ticket is required")
	}

	var lineItems []provider.LineItem
	var metaLines []provider.MetadataLine
	for _, sel := range cmd.Items {
		tt, err := s.catalogRepo.FindByCode(ctx, sel.TicketTypeCode)
		if err != nil {
			return nil, err
		}
		if tt.Rule != domain.RuleUniversal {
			return nil, application.NewInvalidInputError("ticket type " + tt.Code + " requires a registered passenger")
		}
		qty := sel.Quantity
		if qty <= 0 {
			qty = 1
		}
		lineItems = append(lineItems, provider.LineItem{
			Name:       tt.DisplayName,
			UnitAmount: tt.Price,
			Quantity:   int64(qty),
		})
		for i := 0; i < qty; i++ {
			metaLines = append(metaLines, provider.MetadataLine{
				TicketTypeCode: tt.Code,
				LineID:         sel.LineID,
				LineName:       sel.LineName,
				StartStation:   sel.StartStation,
				EndStation:     sel.EndStation,
				Price:          tt.Price,
			})
		}
	}

	encoded, err := provider.EncodeMetadataLines(metaLines)
	if err != nil {
		return nil, application.NewInternalError(err)
	}

	return s.createSession(ctx, provider.CheckoutSessionRequest{
		SuccessURL:    s.providerCfg.SuccessURL,
		CancelURL:     s.providerCfg.CancelURL,
		CustomerEmail: cmd.Email,
		LineItems:     lineItems,
		Metadata: map[string]string{
			provider.MetadataKeyPurpose: provider.PurposeGuestPurchase,
			provider.MetadataKeyLines:   encoded,
		},
	})
}

func (s *CheckoutService) createSession(ctx context.Context, req provider.CheckoutSessionRequest) (*CheckoutRedirect, error) {
	resp, err := s.checkoutClient.CreateSession(ctx, req)
	if err != nil {
		if provErr, ok := provider.IsProviderError(err); ok && provErr.StatusCode < 500 {
			return nil, err
		}
		return nil, domain.NewProviderUnavailableError(err)
	}
	s.logger.Info("checkout session created",
		"session_id", resp.SessionID,
		"purpose", req.Metadata[provider.MetadataKeyPurpose])
	return &CheckoutRedirect{SessionID: resp.SessionID, URL: resp.URL}, nil
}

// priceSelections resolves explicit ticket selections against the catalog,
// enforcing eligibility and capturing current prices.
func (s *CheckoutService) priceSelections(ctx context.Context, items []TicketSelection, attrs domain.PassengerAttributes, now time.Time) ([]domain.InvoiceLine, error) {
	var lines []domain.InvoiceLine
	for _, sel := range items {
		tt, err := s.catalogRepo.FindByCode(ctx, sel.TicketTypeCode)
		if err != nil {
			return nil, err
		}
		if !tt.Eligible(attrs, now) {
			return nil, application.NewInvalidInputError("passenger is not eligible for ticket type " + tt.Code)
		}
		qty := sel.Quantity
		if qty <= 0 {
			qty = 1
		}
		for i := 0; i < qty; i++ {
			lines = append(lines, domain.InvoiceLine{
				TicketTypeCode: tt.Code,
				Price:          tt.Price,
				LineID:         sel.LineID,
				LineName:       sel.LineName,
				StartStation:   sel.StartStation,
				EndStation:     sel.EndStation,
				Duration:       tt.Validity,
			})
		}
	}
	return lines, nil
}

// invoiceLinesFromCart captures current catalog prices off the cart read
// model. Cart items carry station ids, not display names, so those ids
// stand in on the invoice line.
func invoiceLinesFromCart(cartLines []domain.CartLine) []domain.InvoiceLine {
	lines := make([]domain.InvoiceLine, 0, len(cartLines))
	for _, l := range cartLines {
		lines = append(lines, domain.InvoiceLine{
			TicketTypeCode: l.Item.TicketTypeCode,
			Price:          l.Price,
			LineID:         l.Item.LineID,
			LineName:       "Line " + l.Item.LineID,
			StartStation:   l.Item.StartStationID,
			EndStation:     l.Item.EndStationID,
			Duration:       l.Validity,
		})
	}
	return lines
}
