package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/metropass/settlement-engine/internal/domain"
)

var ErrCartItemNotFound = errors.New("cart item not found")

type CartRepository struct {
	q Executor
}

func NewCartRepository(db *DB) *CartRepository {
	return &CartRepository{q: db.Pool}
}

func (r *CartRepository) AddItem(ctx context.Context, item *domain.CartItem) error {
	query := `
		INSERT INTO cart_items (id, passenger_id, line_id, start_station_id, end_station_id, ticket_type_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.q.Exec(ctx, query,
		item.ID,
		item.PassengerID,
		item.LineID,
		item.StartStationID,
		item.EndStationID,
		item.TicketTypeCode,
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

// RemoveItem deletes one item, scoped to the owning passenger so one
// passenger cannot remove another's selections.
func (r *CartRepository) RemoveItem(ctx context.Context, passengerID, itemID string) error {
	query := `DELETE FROM cart_items WHERE id = $1 AND passenger_id = $2`

	tag, err := r.q.Exec(ctx, query, itemID, passengerID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// PruneExpired deletes items older than the cart TTL. Called lazily from
// every read path instead of a scheduled sweep.
func (r *CartRepository) PruneExpired(ctx context.Context, passengerID string) (int64, error) {
	query := `
		DELETE FROM cart_items
		WHERE passenger_id = $1 AND created_at < now() - $2::interval
	`
	tag, err := r.q.Exec(ctx, query, passengerID, domain.CartItemTTL)
	if err != nil {
		return 0, fmt.Errorf("failed to prune expired cart items: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PruneAllExpired is the background variant across all carts.
func (r *CartRepository) PruneAllExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM cart_items WHERE created_at < now() - $1::interval`
	tag, err := r.q.Exec(ctx, query, domain.CartItemTTL)
	if err != nil {
		return 0, fmt.Errorf("failed to prune expired cart items: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListLines returns the passenger's live items joined with the catalog's
// current price. Cart lines are never price-locked; the catalog price at
// read time is authoritative until checkout captures it.
func (r *CartRepository) ListLines(ctx context.Context, passengerID string) ([]domain.CartLine, error) {
	query := `
		SELECT ci.id, ci.passenger_id, ci.line_id, ci.start_station_id, ci.end_station_id,
		       ci.ticket_type_code, ci.created_at,
		       tt.display_name, tt.price, tt.validity_secs
		FROM cart_items ci
		JOIN ticket_types tt ON tt.code = ci.ticket_type_code
		WHERE ci.passenger_id = $1
		  AND ci.created_at >= now() - $2::interval
		ORDER BY ci.created_at ASC
	`

	rows, err := r.q.Query(ctx, query, passengerID, domain.CartItemTTL)
	if err != nil {
		return nil, fmt.Errorf("query cart lines: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CartLine, error) {
		var m cartItemModel
		var tt ticketTypeModel
		err := row.Scan(
			&m.ID, &m.PassengerID, &m.LineID, &m.StartStationID, &m.EndStationID,
			&m.TicketTypeCode, &m.CreatedAt,
			&tt.DisplayName, &tt.Price, &tt.ValiditySecs,
		)
		if err != nil {
			return domain.CartLine{}, err
		}
		line := domain.CartLine{
			Item:        toDomainCartItem(m),
			DisplayName: tt.DisplayName,
			Price:       tt.Price,
		}
		line.Validity = toDomainTicketType(tt).Validity
		return line, nil
	})
}

// Clear deletes every item in the passenger's cart.
func (r *CartRepository) Clear(ctx context.Context, passengerID string) error {
	query := `DELETE FROM cart_items WHERE passenger_id = $1`
	if _, err := r.q.Exec(ctx, query, passengerID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
