package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/metropass/settlement-engine/internal/domain"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// WalletRepository owns all balance mutations. Every change is a single
// conditional UPDATE against the stored balance, so concurrent debits on
// one wallet serialize on the row and can never both pass a stale
// insufficient-funds check.
type WalletRepository struct {
	q Executor
}

func NewWalletRepository(db *DB) *WalletRepository {
	return &WalletRepository{q: db.Pool}
}

func (r *WalletRepository) Create(ctx context.Context, passengerID string) error {
	query := `INSERT INTO wallets (passenger_id, balance, updated_at) VALUES ($1, 0, now())`
	if _, err := r.q.Exec(ctx, query, passengerID); err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

func (r *WalletRepository) FindByPassengerID(ctx context.Context, passengerID string) (*domain.Wallet, error) {
	query := `SELECT passenger_id, balance, updated_at FROM wallets WHERE passenger_id = $1`

	var m walletModel
	err := r.q.QueryRow(ctx, query, passengerID).Scan(&m.PassengerID, &m.Balance, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to scan wallet: %w", err)
	}
	return toDomainWallet(m), nil
}

// Debit atomically decrements the balance and returns the new value.
// The WHERE clause is the insufficient-funds check; losing a race reads a
// committed balance, never a stale one.
func (r *WalletRepository) Debit(ctx context.Context, passengerID string, amount int64) (int64, error) {
	query := `
		UPDATE wallets
		SET balance = balance - $2, updated_at = now()
		WHERE passenger_id = $1 AND balance >= $2
		RETURNING balance
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, passengerID, amount).Scan(&newBalance)
	if err == nil {
		return newBalance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to debit wallet: %w", err)
	}

	// No row matched: either the wallet is missing or the balance was short.
	wallet, findErr := r.FindByPassengerID(ctx, passengerID)
	if findErr != nil {
		return 0, findErr
	}
	return wallet.Balance, ErrInsufficientBalance
}

// Credit atomically increments the balance and returns the new value.
func (r *WalletRepository) Credit(ctx context.Context, passengerID string, amount int64) (int64, error) {
	query := `
		UPDATE wallets
		SET balance = balance + $2, updated_at = now()
		WHERE passenger_id = $1
		RETURNING balance
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, passengerID, amount).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrWalletNotFound
		}
		return 0, fmt.Errorf("failed to credit wallet: %w", err)
	}
	return newBalance, nil
}

// AppendTopUp records one confirmed external top-up in the audit trail.
func (r *WalletRepository) AppendTopUp(ctx context.Context, record *domain.TopUpRecord) error {
	query := `
		INSERT INTO top_up_records (id, passenger_id, amount, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.q.Exec(ctx, query, record.ID, record.PassengerID, record.Amount, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append top-up record: %w", err)
	}
	return nil
}

// TopUpHistory lists top-up records newest first.
func (r *WalletRepository) TopUpHistory(ctx context.Context, passengerID string, limit int) ([]domain.TopUpRecord, error) {
	query := `
		SELECT id, passenger_id, amount, created_at
		FROM top_up_records
		WHERE passenger_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, passengerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query top-up records: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TopUpRecord, error) {
		var rec domain.TopUpRecord
		var createdAt time.Time
		err := row.Scan(&rec.ID, &rec.PassengerID, &rec.Amount, &createdAt)
		rec.CreatedAt = createdAt
		return rec, err
	})
}
