package domain

import (
	"errors"
	"time"
)

// ItemStatus represents where a purchased ticket sits in its lifecycle.
// Transitions run strictly forward: ISSUED -> ACTIVATED -> EXPIRED.
type ItemStatus string

const (
	StatusIssued    ItemStatus = "ISSUED"
	StatusActivated ItemStatus = "ACTIVATED"
	StatusExpired   ItemStatus = "EXPIRED"
)

// Invoice is an immutable record of a completed purchase. TotalPrice equals
// the sum of its items' captured prices at creation time and is never
// recomputed from the catalog.
type Invoice struct {
	ID          string
	PassengerID string
	Email       string
	TotalPrice  int64
	PurchasedAt time.Time
	Items       []InvoiceItem
}

// InvoiceItem is one purchased ticket inside an invoice. Price is captured
// at purchase time; later catalog changes do not touch it.
type InvoiceItem struct {
	ID             string
	InvoiceID      string
	TicketTypeCode string
	Price          int64
	LineID         string
	LineName       string
	StartStation   string
	EndStation     string
	Duration       time.Duration
	Status         ItemStatus
	ActivatedAt    *time.Time
	ExpiredAt      *time.Time
}

// InvoiceLine is the priced input InvoiceIssuer consumes. Prices here are
// already captured by the caller and are persisted as-is.
type InvoiceLine struct {
	TicketTypeCode string
	Price          int64
	LineID         string
	LineName       string
	StartStation   string
	EndStation     string
	Duration       time.Duration
}

func NewInvoice(id, passengerID, email string, purchasedAt time.Time, lines []InvoiceLine, itemID func() string) (*Invoice, error) {
	if id == "" {
		return nil, errors.New("invoice ID is required")
	}
	if email == "" {
		return nil, NewMissingRequiredFieldError("email")
	}
	if len(lines) == 0 {
		return nil, errors.New("invoice requires at least one line")
	}

	inv := &Invoice{
		ID:          id,
		PassengerID: passengerID,
		Email:       email,
		PurchasedAt: purchasedAt,
	}
	for _, l := range lines {
		if l.Price < 0 {
			return nil, NewInvalidAmountError(l.Price)
		}
		inv.Items = append(inv.Items, InvoiceItem{
			ID:             itemID(),
			InvoiceID:      id,
			TicketTypeCode: l.TicketTypeCode,
			Price:          l.Price,
			LineID:         l.LineID,
			LineName:       l.LineName,
			StartStation:   l.StartStation,
			EndStation:     l.EndStation,
			Duration:       l.Duration,
			Status:         StatusIssued,
		})
		inv.TotalPrice += l.Price
	}
	return inv, nil
}

// Activate stamps the validity window and moves the item to ACTIVATED.
// Re-activating is rejected with an invalid-state error, never a silent
// reset of the window.
func (i *InvoiceItem) Activate(now time.Time, validity time.Duration) error {
	if i.Status != StatusIssued {
		return NewInvalidStateError(string(i.EffectiveStatus(now)), string(StatusIssued))
	}
	expires := now.Add(validity)
	i.Status = StatusActivated
	i.ActivatedAt = &now
	i.ExpiredAt = &expires
	return nil
}

// EffectiveStatus evaluates expiry lazily: an activated item whose window
// has closed reads as EXPIRED even if no write has happened yet.
func (i InvoiceItem) EffectiveStatus(now time.Time) ItemStatus {
	if i.Status == StatusActivated && i.ExpiredAt != nil && i.ExpiredAt.Before(now) {
		return StatusExpired
	}
	return i.Status
}

// MarkExpired persistently closes an activated item whose window has passed.
// Used by the background sweep; reads never depend on it.
func (i *InvoiceItem) MarkExpired(now time.Time) error {
	if i.EffectiveStatus(now) != StatusExpired {
		return NewInvalidStateError(string(i.Status), string(StatusExpired))
	}
	i.Status = StatusExpired
	return nil
}
