package domain

import (
	"errors"
	"time"
)

// Wallet holds a passenger's stored monetary balance. One wallet exists per
// passenger, created alongside the passenger record, and its balance is
// mutated only through the wallet ledger's credit/debit operations.
type Wallet struct {
	PassengerID string
	Balance     int64
	UpdatedAt   time.Time
}

// TopUpRecord is the append-only audit trail of confirmed external top-ups.
type TopUpRecord struct {
	ID          string
	PassengerID string
	Amount      int64
	CreatedAt   time.Time
}

func NewWallet(passengerID string) (*Wallet, error) {
	if passengerID == "" {
		return nil, errors.New("passenger ID is required")
	}
	return &Wallet{PassengerID: passengerID}, nil
}

// CanDebit reports whether the wallet covers the amount. The authoritative
// check happens in the storage layer's conditional update; this exists for
// in-memory evaluation and tests.
func (w *Wallet) CanDebit(amount int64) bool {
	return amount >= 0 && w.Balance >= amount
}

// Debit decrements the balance, rejecting overdrafts.
func (w *Wallet) Debit(amount int64) error {
	if amount <= 0 {
		return NewInvalidAmountError(amount)
	}
	if w.Balance < amount {
		return NewInsufficientBalanceError(w.Balance, amount)
	}
	w.Balance -= amount
	return nil
}

// Credit increments the balance. There is no upper bound.
func (w *Wallet) Credit(amount int64) error {
	if amount <= 0 {
		return NewInvalidAmountError(amount)
	}
	w.Balance += amount
	return nil
}
