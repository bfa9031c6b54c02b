package domain

import "time"

// Passenger is the minimal local record the engine needs: identity, the
// email invoices are addressed to, and the attributes eligibility rules
// read. Registration and profile management live elsewhere.
type Passenger struct {
	ID              string
	Email           string
	DateOfBirth     time.Time
	HasDisability   bool
	IsRevolutionary bool
	StudentID       string
	CreatedAt       time.Time
}

// Attributes projects the passenger onto the eligibility input.
func (p Passenger) Attributes() PassengerAttributes {
	return PassengerAttributes{
		DateOfBirth:     p.DateOfBirth,
		HasDisability:   p.HasDisability,
		IsRevolutionary: p.IsRevolutionary,
		StudentID:       p.StudentID,
	}
}
