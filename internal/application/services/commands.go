package services

import (
	"github.com/metropass/settlement-engine/internal/domain"
)

// AddCartItemCommand holds the fields for adding a ticket selection to a cart.
type AddCartItemCommand struct {
	PassengerID    string
	LineID         string
	StartStationID string
	EndStationID   string
	TicketTypeCode string
}

// TicketSelection is one requested ticket in an explicit purchase.
type TicketSelection struct {
	TicketTypeCode string
	LineID         string
	LineName       string
	StartStation   string
	EndStation     string
	Quantity       int
}

// WalletPurchaseCommand pays for tickets from the passenger's wallet.
// An empty Items slice means "buy whatever is in the cart".
type WalletPurchaseCommand struct {
	PassengerID string
	Items       []TicketSelection
}

// TopUpSessionCommand opens a hosted checkout session that credits the
// wallet once the provider confirms payment.
type TopUpSessionCommand struct {
	PassengerID string
	Amount      int64
}

// HostedCheckoutCommand pays for the cart through the hosted checkout page
// instead of the wallet.
type HostedCheckoutCommand struct {
	PassengerID string
}

// GuestCheckoutCommand is a hosted checkout keyed by email only.
type GuestCheckoutCommand struct {
	Email string
	Items []TicketSelection
}

// PurchaseResult is the outcome of a wallet purchase. Insufficient balance
// is a result, not an error: Paid is false and Balance/Required tell the
// caller how short the wallet is.
type PurchaseResult struct {
	Paid             bool
	Invoice          *domain.Invoice
	RemainingBalance int64
	Balance          int64
	Required         int64
}

// CheckoutRedirect is where to send the customer to pay.
type CheckoutRedirect struct {
	SessionID string
	URL       string
}

// CartView is the cart read model: live lines at current catalog prices.
type CartView struct {
	Lines []domain.CartLine
	Total int64
}

// SettlementResult reports what a webhook delivery did. AlreadyApplied
// deliveries are acknowledged successes with no mutation.
type SettlementResult struct {
	EventID        string
	Purpose        string
	Applied        bool
	AlreadyApplied bool
	InvoiceID      string
	NewBalance     int64
}
