package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/metropass/settlement-engine/internal/domain"
	"github.com/metropass/settlement-engine/internal/infrastructure/persistence/postgres"
)

type WalletService struct {
	walletRepo    *postgres.WalletRepository
	passengerRepo *postgres.PassengerRepository
	logger        *slog.Logger
}

func NewWalletService(
	walletRepo *postgres.WalletRepository,
	passengerRepo *postgres.PassengerRepository,
	logger *slog.Logger,
) *WalletService {
	return &WalletService{
		walletRepo:    walletRepo,
		passengerRepo: passengerRepo,
		logger:        logger,
	}
}

// Balance returns the passenger's wallet. A known passenger without a
// wallet row is a data-integrity fault, not a not-found.
func (s *WalletService) Balance(ctx context.Context, passengerID string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.FindByPassengerID(ctx, passengerID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, postgres.ErrWalletNotFound) {
		return nil, err
	}

	if _, findErr := s.passengerRepo.FindByID(ctx, passengerID); findErr != nil {
		return nil, findErr
	}
	s.logger.Error("passenger exists but wallet row is missing", "passenger_id", passengerID)
	return nil, domain.NewDataIntegrityError("wallet missing for passenger " + passengerID)
}

// Debit removes funds, returning the new balance. The conditional update in
// the repository is the authoritative overdraft check.
func (s *WalletService) Debit(ctx context.Context, passengerID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.NewInvalidAmountError(amount)
	}

	balance, err := s.walletRepo.Debit(ctx, passengerID, amount)
	if errors.Is(err, postgres.ErrInsufficientBalance) {
		return balance, domain.NewInsufficientBalanceError(balance, amount)
	}
	return balance, err
}

// Credit adds funds, returning the new balance.
func (s *WalletService) Credit(ctx context.Context, passengerID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.NewInvalidAmountError(amount)
	}
	return s.walletRepo.Credit(ctx, passengerID, amount)
}

// TopUpHistory lists confirmed external top-ups, newest first.
func (s *WalletService) TopUpHistory(ctx context.Context, passengerID string, limit int) ([]domain.TopUpRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.walletRepo.TopUpHistory(ctx, passengerID, limit)
}
