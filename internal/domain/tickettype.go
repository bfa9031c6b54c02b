// Package domain encodes the fare catalog, wallet, cart and invoice
// entities and their business rules.
package domain

import "time"

// EligibilityRule classifies who may purchase a ticket type.
type EligibilityRule string

const (
	// RuleUniversal tickets can be purchased by anyone.
	RuleUniversal EligibilityRule = "UNIVERSAL"
	// RuleStudent tickets require a registered student id.
	RuleStudent EligibilityRule = "STUDENT"
	// RuleConcession marks zero-price tickets reserved for seniors,
	// small children, disabled passengers and revolutionary contributors.
	RuleConcession EligibilityRule = "CONCESSION"
)

// TicketType is a catalog entry. Catalog rows are seeded once and are
// read-only at runtime; prices on issued invoices are captured at purchase
// time and never recomputed from here.
type TicketType struct {
	Code        string
	DisplayName string
	Price       int64
	Validity    time.Duration
	Rule        EligibilityRule
	Active      bool
}

// PassengerAttributes carries the facts eligibility rules are evaluated over.
type PassengerAttributes struct {
	DateOfBirth     time.Time
	HasDisability   bool
	IsRevolutionary bool
	StudentID       string
}

// AgeAt computes the passenger's age in whole years at the given instant.
func (a PassengerAttributes) AgeAt(now time.Time) int {
	years := now.Year() - a.DateOfBirth.Year()
	anniversary := a.DateOfBirth.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}

// Eligible reports whether the passenger may purchase this ticket type.
func (t TicketType) Eligible(attrs PassengerAttributes, now time.Time) bool {
	if !t.Active {
		return false
	}
	switch t.Rule {
	case RuleStudent:
		return attrs.StudentID != ""
	case RuleConcession:
		age := attrs.AgeAt(now)
		return age >= 60 || age < 6 || attrs.HasDisability || attrs.IsRevolutionary
	default:
		return true
	}
}

// EligibleTypes filters the catalog snapshot down to what the passenger
// may purchase, preserving catalog order.
func EligibleTypes(catalog []TicketType, attrs PassengerAttributes, now time.Time) []TicketType {
	var eligible []TicketType
	for _, t := range catalog {
		if t.Eligible(attrs, now) {
			eligible = append(eligible, t)
		}
	}
	return eligible
}

// BestTicket picks the most advantageous eligible ticket type.
//
// If any eligible ticket is free, the free ticket with the longest validity
// wins. Otherwise the eligible ticket with the highest validity-per-price
// density wins. Ties are broken by catalog order. Returns false when the
// passenger is eligible for nothing.
func BestTicket(catalog []TicketType, attrs PassengerAttributes, now time.Time) (TicketType, bool) {
	eligible := EligibleTypes(catalog, attrs, now)
	if len(eligible) == 0 {
		return TicketType{}, false
	}

	var best TicketType
	var haveFree bool
	for _, t := range eligible {
		if t.Price != 0 {
			continue
		}
		if !haveFree || t.Validity > best.Validity {
			best = t
			haveFree = true
		}
	}
	if haveFree {
		return best, true
	}

	// All candidates are paid here, so the density division is safe.
	var bestDensity float64
	var havePaid bool
	for _, t := range eligible {
		density := float64(t.Validity) / float64(t.Price)
		if !havePaid || density > bestDensity {
			best = t
			bestDensity = density
			havePaid = true
		}
	}
	return best, havePaid
}
