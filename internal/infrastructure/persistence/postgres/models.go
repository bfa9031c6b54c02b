package postgres

import "time"

// Row models kept separate from domain types so scanning stays mechanical.

type walletModel struct {
	PassengerID string
	Balance     int64
	UpdatedAt   time.Time
}

type cartItemModel struct {
	ID             string
	PassengerID    string
	LineID         string
	StartStationID string
	EndStationID   string
	TicketTypeCode string
	CreatedAt      time.Time
}

type ticketTypeModel struct {
	Code         string
	DisplayName  string
	Price        int64
	ValiditySecs int64
	Rule         string
	Active       bool
}

type invoiceModel struct {
	ID          string
	PassengerID *string
	Email       string
	TotalPrice  int64
	PurchasedAt time.Time
}

type invoiceItemModel struct {
	ID             string
	InvoiceID      string
	TicketTypeCode string
	Price          int64
	LineID         string
	LineName       string
	StartStation   string
	EndStation     string
	DurationSecs   int64
	Status         string
	ActivatedAt    *time.Time
	ExpiredAt      *time.Time
}

type passengerModel struct {
	ID              string
	Email           string
	DateOfBirth     time.Time
	HasDisability   bool
	IsRevolutionary bool
	StudentID       string
	CreatedAt       time.Time
}
