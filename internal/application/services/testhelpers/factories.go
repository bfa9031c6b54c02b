package testhelpers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/metropass/settlement-engine/internal/domain"
	"github.com/metropass/settlement-engine/internal/infrastructure/persistence/postgres"
)

// CreatePassenger inserts a passenger with a zero-balance wallet.
func CreatePassenger(t *testing.T, ctx context.Context, db *postgres.DB, opts ...func(*domain.Passenger)) *domain.Passenger {
	p := &domain.Passenger{
		ID:          uuid.New().String(),
		Email:       "rider-" + uuid.New().String()[:8] + "@example.com",
		DateOfBirth: time.Date(1990, 5, 14, 0, 0, 0, 0, time.UTC),
		CreatedAt:   time.Now(),
	}
	for _, opt := range opts {
		opt(p)
	}

	passengerRepo := postgres.NewPassengerRepository(db)
	require.NoError(t, passengerRepo.Create(ctx, p))

	walletRepo := postgres.NewWalletRepository(db)
	require.NoError(t, walletRepo.Create(ctx, p.ID))

	return p
}

// FundWallet pre-funds the wallet created for the passenger.
func FundWallet(t *testing.T, ctx context.Context, db *postgres.DB, passengerID string, amount int64) {
	walletRepo := postgres.NewWalletRepository(db)
	_, err := walletRepo.Credit(ctx, passengerID, amount)
	require.NoError(t, err)
}

// WithStudentID marks the passenger as a registered student.
func WithStudentID(id string) func(*domain.Passenger) {
	return func(p *domain.Passenger) { p.StudentID = id }
}

// WithDateOfBirth overrides the default adult birth date.
func WithDateOfBirth(dob time.Time) func(*domain.Passenger) {
	return func(p *domain.Passenger) { p.DateOfBirth = dob }
}

// AddCartItem inserts a cart item directly, optionally backdated for TTL
// scenarios.
func AddCartItem(t *testing.T, ctx context.Context, db *postgres.DB, passengerID, ticketTypeCode string, createdAt time.Time) *domain.CartItem {
	item := &domain.CartItem{
		ID:             uuid.New().String(),
		PassengerID:    passengerID,
		LineID:         "L1",
		StartStationID: "ST-01",
		EndStationID:   "ST-09",
		TicketTypeCode: ticketTypeCode,
		CreatedAt:      createdAt,
	}
	cartRepo := postgres.NewCartRepository(db)
	require.NoError(t, cartRepo.AddItem(ctx, item))
	return item
}
