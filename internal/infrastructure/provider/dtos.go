package provider

import (
	"encoding/json"
	"time"
)

// Session purposes carried in checkout metadata and echoed back by the
// provider's webhook. Settlement dispatches on this value.
const (
	PurposeWalletTopUp    = "wallet_topup"
	PurposeTicketPurchase = "ticket_purchase"
	PurposeGuestPurchase  = "guest_purchase"
)

// SessionStatusComplete is the only session status settlement acts on.
const SessionStatusComplete = "complete"

// Metadata keys used on checkout sessions.
const (
	MetadataKeyPurpose = "purpose"
	MetadataKeyLines   = "items"
)

// LineItem is one priced entry in a hosted checkout session. UnitAmount is
// in minor currency units.
type LineItem struct {
	Name       string `json:"name"`
	UnitAmount int64  `json:"unit_amount"`
	Quantity   int64  `json:"quantity"`
}

// CheckoutSessionRequest asks the provider to open a one-time-payment
// hosted session. ClientReference carries the passenger id; guests leave it
// empty and are keyed by email.
type CheckoutSessionRequest struct {
	Mode            string            `json:"mode"`
	SuccessURL      string            `json:"success_url"`
	CancelURL       string            `json:"cancel_url"`
	ClientReference string            `json:"client_reference_id,omitempty"`
	CustomerEmail   string            `json:"customer_email"`
	LineItems       []LineItem        `json:"line_items"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// CheckoutSessionResponse is the provider's answer: where to send the
// passenger to pay.
type CheckoutSessionResponse struct {
	SessionID string    `json:"id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CheckoutSession is the session object inside a webhook event. Only the
// provider-confirmed AmountTotal is trusted for settlement.
type CheckoutSession struct {
	ID              string            `json:"id"`
	Status          string            `json:"status"`
	ClientReference string            `json:"client_reference_id"`
	CustomerEmail   string            `json:"customer_email"`
	AmountTotal     int64             `json:"amount_total"`
	Metadata        map[string]string `json:"metadata"`
}

// WebhookEvent is the envelope the provider delivers callbacks in.
type WebhookEvent struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object CheckoutSession `json:"object"`
	} `json:"data"`
}

// MetadataLine is one priced ticket echoed through session metadata on
// guest checkouts, so settlement can issue the invoice without local state.
type MetadataLine struct {
	TicketTypeCode string `json:"code"`
	LineID         string `json:"line_id"`
	LineName       string `json:"line_name"`
	StartStation   string `json:"start"`
	EndStation     string `json:"end"`
	Price          int64  `json:"price"`
}

// EncodeMetadataLines packs lines into the metadata string value.
func EncodeMetadataLines(lines []MetadataLine) (string, error) {
	b, err := json.Marshal(lines)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeMetadataLines unpacks the metadata string value.
func DecodeMetadataLines(raw string) ([]MetadataLine, error) {
	var lines []MetadataLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type providerErrorResponse struct {
	Err     string `json:"error"`
	Message string `json:"message"`
}
