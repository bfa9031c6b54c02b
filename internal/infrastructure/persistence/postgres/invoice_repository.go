package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/metropass/settlement-engine/internal/domain"
)

var (
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrInvoiceItemNotFound = errors.New("invoice item not found")
)

type InvoiceRepository struct {
	q Executor
}

func NewInvoiceRepository(db *DB) *InvoiceRepository {
	return &InvoiceRepository{q: db.Pool}
}

// Create persists the invoice header and every item. Callers wanting
// all-or-nothing semantics run this through the transaction coordinator.
func (r *InvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	query := `
		INSERT INTO invoices (id, passenger_id, email, total_price, purchased_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	var passengerID *string
	if inv.PassengerID != "" {
		passengerID = &inv.PassengerID
	}
	if _, err := r.q.Exec(ctx, query, inv.ID, passengerID, inv.Email, inv.TotalPrice, inv.PurchasedAt); err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	itemQuery := `
		INSERT INTO invoice_items (
			id, invoice_id, ticket_type_code, price, line_id, line_name,
			start_station, end_station, duration_secs, status, activated_at, expired_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	for _, item := range inv.Items {
		_, err := r.q.Exec(ctx, itemQuery,
			item.ID, item.InvoiceID, item.TicketTypeCode, item.Price,
			item.LineID, item.LineName, item.StartStation, item.EndStation,
			int64(item.Duration.Seconds()), string(item.Status), item.ActivatedAt, item.ExpiredAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create invoice item: %w", err)
		}
	}
	return nil
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*domain.Invoice, error) {
	query := `SELECT id, passenger_id, email, total_price, purchased_at FROM invoices WHERE id = $1`

	var m invoiceModel
	err := r.q.QueryRow(ctx, query, id).Scan(&m.ID, &m.PassengerID, &m.Email, &m.TotalPrice, &m.PurchasedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to scan invoice: %w", err)
	}

	inv := toDomainInvoice(m)
	items, err := r.findItems(ctx, `WHERE invoice_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

func (r *InvoiceRepository) ListByPassenger(ctx context.Context, passengerID string) ([]*domain.Invoice, error) {
	return r.list(ctx, `WHERE passenger_id = $1 ORDER BY purchased_at DESC`, passengerID)
}

func (r *InvoiceRepository) ListByEmail(ctx context.Context, email string) ([]*domain.Invoice, error) {
	return r.list(ctx, `WHERE email = $1 ORDER BY purchased_at DESC`, email)
}

func (r *InvoiceRepository) list(ctx context.Context, where string, arg any) ([]*domain.Invoice, error) {
	query := `SELECT id, passenger_id, email, total_price, purchased_at FROM invoices ` + where

	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	invoices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Invoice, error) {
		var m invoiceModel
		err := row.Scan(&m.ID, &m.PassengerID, &m.Email, &m.TotalPrice, &m.PurchasedAt)
		return toDomainInvoice(m), err
	})
	if err != nil {
		return nil, fmt.Errorf("scan invoices: %w", err)
	}

	for _, inv := range invoices {
		items, err := r.findItems(ctx, `WHERE invoice_id = $1 ORDER BY id`, inv.ID)
		if err != nil {
			return nil, err
		}
		inv.Items = items
	}
	return invoices, nil
}

func (r *InvoiceRepository) FindItemByID(ctx context.Context, itemID string) (*domain.InvoiceItem, error) {
	items, err := r.findItems(ctx, `WHERE id = $1`, itemID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrInvoiceItemNotFound
	}
	return &items[0], nil
}

// FindItemByIDForUpdate locks the item row for the duration of the
// surrounding transaction, serializing concurrent activation attempts.
func (r *InvoiceRepository) FindItemByIDForUpdate(ctx context.Context, itemID string) (*domain.InvoiceItem, error) {
	items, err := r.findItems(ctx, `WHERE id = $1 FOR UPDATE`, itemID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrInvoiceItemNotFound
	}
	return &items[0], nil
}

// ListItemsByPassengerAndStatus reads a passenger's items filtered on stored
// status. Callers re-evaluate lazy expiry on top of this.
func (r *InvoiceRepository) ListItemsByPassengerAndStatus(ctx context.Context, passengerID string, status domain.ItemStatus) ([]domain.InvoiceItem, error) {
	query := `
		SELECT ii.id, ii.invoice_id, ii.ticket_type_code, ii.price, ii.line_id, ii.line_name,
		       ii.start_station, ii.end_station, ii.duration_secs, ii.status, ii.activated_at, ii.expired_at
		FROM invoice_items ii
		JOIN invoices i ON i.id = ii.invoice_id
		WHERE i.passenger_id = $1 AND ii.status = $2
		ORDER BY i.purchased_at DESC, ii.id
	`

	rows, err := r.q.Query(ctx, query, passengerID, string(status))
	if err != nil {
		return nil, fmt.Errorf("query invoice items: %w", err)
	}
	return collectItems(rows)
}

// FindOverdueActivated pages through activated items whose validity window
// has closed, for the background expiry sweep.
func (r *InvoiceRepository) FindOverdueActivated(ctx context.Context, limit int) ([]domain.InvoiceItem, error) {
	return r.findItems(ctx, `WHERE status = 'ACTIVATED' AND expired_at < now() ORDER BY expired_at ASC LIMIT $1`, limit)
}

// UpdateItem writes status and lifecycle timestamps.
func (r *InvoiceRepository) UpdateItem(ctx context.Context, item *domain.InvoiceItem) error {
	query := `
		UPDATE invoice_items
		SET status = $2, activated_at = $3, expired_at = $4
		WHERE id = $1
	`
	tag, err := r.q.Exec(ctx, query, item.ID, string(item.Status), item.ActivatedAt, item.ExpiredAt)
	if err != nil {
		return fmt.Errorf("failed to update invoice item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvoiceItemNotFound
	}
	return nil
}

func (r *InvoiceRepository) findItems(ctx context.Context, where string, args ...any) ([]domain.InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, ticket_type_code, price, line_id, line_name,
		       start_station, end_station, duration_secs, status, activated_at, expired_at
		FROM invoice_items ` + where

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query invoice items: %w", err)
	}
	return collectItems(rows)
}

func collectItems(rows pgx.Rows) ([]domain.InvoiceItem, error) {
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.InvoiceItem, error) {
		var m invoiceItemModel
		err := row.Scan(
			&m.ID, &m.InvoiceID, &m.TicketTypeCode, &m.Price, &m.LineID, &m.LineName,
			&m.StartStation, &m.EndStation, &m.DurationSecs, &m.Status, &m.ActivatedAt, &m.ExpiredAt,
		)
		return toDomainInvoiceItem(m), err
	})
	if err != nil {
		return nil, fmt.Errorf("scan invoice items: %w", err)
	}
	return items, nil
}
