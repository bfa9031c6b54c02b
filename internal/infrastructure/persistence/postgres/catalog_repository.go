package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/metropass/settlement-engine/internal/domain"
)

var ErrTicketTypeNotFound = errors.New("ticket type not found")

// CatalogRepository reads the seeded fare catalog. Rows are reference data;
// nothing here writes.
type CatalogRepository struct {
	q Executor
}

func NewCatalogRepository(db *DB) *CatalogRepository {
	return &CatalogRepository{q: db.Pool}
}

// FindByCode returns an active ticket type; inactive and unknown codes both
// read as not found.
func (r *CatalogRepository) FindByCode(ctx context.Context, code string) (domain.TicketType, error) {
	query := `
		SELECT code, display_name, price, validity_secs, rule, active
		FROM ticket_types
		WHERE code = $1 AND active
	`

	var m ticketTypeModel
	err := r.q.QueryRow(ctx, query, code).Scan(
		&m.Code, &m.DisplayName, &m.Price, &m.ValiditySecs, &m.Rule, &m.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TicketType{}, ErrTicketTypeNotFound
		}
		return domain.TicketType{}, fmt.Errorf("failed to scan ticket type: %w", err)
	}
	return toDomainTicketType(m), nil
}

// ListActive returns the catalog snapshot in a stable order, which is also
// the tie-break order for best-ticket selection.
func (r *CatalogRepository) ListActive(ctx context.Context) ([]domain.TicketType, error) {
	query := `
		SELECT code, display_name, price, validity_secs, rule, active
		FROM ticket_types
		WHERE active
		ORDER BY code ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ticket types: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TicketType, error) {
		var m ticketTypeModel
		err := row.Scan(&m.Code, &m.DisplayName, &m.Price, &m.ValiditySecs, &m.Rule, &m.Active)
		return toDomainTicketType(m), err
	})
}

// UpdatePrice exists for catalog maintenance and tests; issued invoices keep
// their captured prices regardless.
func (r *CatalogRepository) UpdatePrice(ctx context.Context, code string, price int64) error {
	query := `UPDATE ticket_types SET price = $2 WHERE code = $1`
	tag, err := r.q.Exec(ctx, query, code, price)
	if err != nil {
		return fmt.Errorf("failed to update ticket type price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTicketTypeNotFound
	}
	return nil
}
