package provider

import (
	"errors"
	"fmt"
)

// ProviderError is a structured failure from the checkout provider's API.
type ProviderError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error [%s]: %s (status %d)", e.Code, e.Message, e.StatusCode)
}

// IsProviderError extracts a ProviderError if err wraps one.
func IsProviderError(err error) (*ProviderError, bool) {
	var provErr *ProviderError
	ok := errors.As(err, &provErr)
	return provErr, ok
}
