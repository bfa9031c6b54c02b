package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrDuplicateSettlementEvent reports that a provider event id was already
// recorded; the settlement it describes has been applied.
var ErrDuplicateSettlementEvent = errors.New("settlement event already recorded")

// SettlementEvent is one applied provider callback. The row doubles as the
// dedupe marker: event_id is the primary key.
type SettlementEvent struct {
	EventID     string
	SessionID   string
	Purpose     string
	PassengerID string
	Email       string
	Amount      int64
	AppliedAt   time.Time
}

type SettlementRepository struct {
	q Executor
}

func NewSettlementRepository(db *DB) *SettlementRepository {
	return &SettlementRepository{q: db.Pool}
}

// Record inserts the dedupe row. The insert and the settlement's side
// effects share a transaction, so a unique violation here means the whole
// settlement already committed and the caller short-circuits. This is the
// check-and-mark as one atomic statement, not a read followed by a write.
func (r *SettlementRepository) Record(ctx context.Context, event *SettlementEvent) error {
	query := `
		INSERT INTO settlement_events (event_id, session_id, purpose, passenger_id, email, amount, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	var passengerID *string
	if event.PassengerID != "" {
		passengerID = &event.PassengerID
	}
	_, err := r.q.Exec(ctx, query,
		event.EventID, event.SessionID, event.Purpose, passengerID, event.Email, event.Amount, event.AppliedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicateSettlementEvent
		}
		return fmt.Errorf("failed to record settlement event: %w", err)
	}
	return nil
}

// Exists reports whether an event id has been applied. Read-only helper for
// diagnostics; Record remains the authoritative check.
func (r *SettlementRepository) Exists(ctx context.Context, eventID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM settlement_events WHERE event_id = $1)`

	var exists bool
	if err := r.q.QueryRow(ctx, query, eventID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check settlement event: %w", err)
	}
	return exists, nil
}
