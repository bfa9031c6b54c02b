package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/metropass/settlement-engine/internal/domain"
)

var ErrPassengerNotFound = errors.New("passenger not found")

type PassengerRepository struct {
	q Executor
}

func NewPassengerRepository(db *DB) *PassengerRepository {
	return &PassengerRepository{q: db.Pool}
}

// Create persists a passenger. Registration elsewhere is expected to call
// this together with WalletRepository.Create so the one-wallet-per-passenger
// invariant holds from the start.
func (r *PassengerRepository) Create(ctx context.Context, p *domain.Passenger) error {
	query := `
		INSERT INTO passengers (id, email, date_of_birth, has_disability, is_revolutionary, student_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Email, p.DateOfBirth, p.HasDisability, p.IsRevolutionary, p.StudentID, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create passenger: %w", err)
	}
	return nil
}

func (r *PassengerRepository) FindByID(ctx context.Context, id string) (*domain.Passenger, error) {
	query := `
		SELECT id, email, date_of_birth, has_disability, is_revolutionary, student_id, created_at
		FROM passengers WHERE id = $1
	`

	var m passengerModel
	err := r.q.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Email, &m.DateOfBirth, &m.HasDisability, &m.IsRevolutionary, &m.StudentID, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPassengerNotFound
		}
		return nil, fmt.Errorf("failed to scan passenger: %w", err)
	}
	return toDomainPassenger(m), nil
}
