package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Domain error codes
const (
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeInsufficientBalance  = "INSUFFICIENT_BALANCE"
	ErrCodeInvalidPayload       = "INVALID_PAYLOAD"
	ErrCodeNotComplete          = "NOT_COMPLETE"
	ErrCodeDuplicateSettlement  = "DUPLICATE_SETTLEMENT"
	ErrCodeInvalidState         = "INVALID_STATE"
	ErrCodeProviderUnavailable  = "PROVIDER_UNAVAILABLE"
	ErrCodeDataIntegrity        = "DATA_INTEGRITY"
	ErrCodeAmountMismatch       = "AMOUNT_MISMATCH"
	ErrCodeInvalidAmount        = "INVALID_AMOUNT"
	ErrCodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
)

func NewNotFoundError(kind, id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s %s not found", kind, id),
	}
}

func NewInsufficientBalanceError(balance, amount int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeInsufficientBalance,
		Message: fmt.Sprintf("insufficient balance: have %d, need %d", balance, amount),
	}
}

func NewInvalidPayloadError(reason string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidPayload,
		Message: fmt.Sprintf("invalid webhook payload: %s", reason),
	}
}

func NewNotCompleteError(status string) *DomainError {
	return &DomainError{
		Code:    ErrCodeNotComplete,
		Message: fmt.Sprintf("session status is %q, expected complete", status),
	}
}

func NewInvalidStateError(current, expected string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidState,
		Message: fmt.Sprintf("invalid state: item is %s, expected %s", current, expected),
	}
}

func NewProviderUnavailableError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeProviderUnavailable,
		Message: "payment provider unavailable",
		Err:     err,
	}
}

func NewDataIntegrityError(detail string) *DomainError {
	return &DomainError{
		Code:    ErrCodeDataIntegrity,
		Message: fmt.Sprintf("data integrity fault: %s", detail),
	}
}

func NewAmountMismatchError(expected, actual int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeAmountMismatch,
		Message: fmt.Sprintf("amount mismatch: expected %d, got %d", expected, actual),
	}
}

func NewInvalidAmountError(amount int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidAmount,
		Message: fmt.Sprintf("invalid amount %d", amount),
	}
}

func NewMissingRequiredFieldError(field string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMissingRequiredField,
		Message: fmt.Sprintf("%s is required", field),
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
