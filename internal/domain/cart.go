package domain

import "time"

// CartItemTTL is how long a cart item stays billable after creation.
// Items past this age are excluded from every read and never invoiced.
const CartItemTTL = time.Hour

// CartItem is one not-yet-purchased ticket selection. Cart items are not
// price-locked: the catalog's current price is applied on every read.
type CartItem struct {
	ID             string
	PassengerID    string
	LineID         string
	StartStationID string
	EndStationID   string
	TicketTypeCode string
	CreatedAt      time.Time
}

// Expired reports whether the item has outlived its TTL.
func (i CartItem) Expired(now time.Time) bool {
	return now.Sub(i.CreatedAt) > CartItemTTL
}

// CartLine is a cart item joined with its current catalog price.
type CartLine struct {
	Item        CartItem
	DisplayName string
	Price       int64
	Validity    time.Duration
}

// PruneExpired splits items into live and expired sets relative to now,
// preserving order.
func PruneExpired(items []CartItem, now time.Time) (live, expired []CartItem) {
	for _, it := range items {
		if it.Expired(now) {
			expired = append(expired, it)
		} else {
			live = append(live, it)
		}
	}
	return live, expired
}

// CartTotal sums current line prices.
func CartTotal(lines []CartLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.Price
	}
	return total
}
