package application

import (
	"context"
	"errors"
	"net/http"

	"github.com/metropass/settlement-engine/internal/domain"
	"github.com/metropass/settlement-engine/internal/infrastructure/persistence/postgres"
	"github.com/metropass/settlement-engine/internal/infrastructure/provider"
)

// ErrorCategory represents the nature of an error for retry and logging
type ErrorCategory string

const (
	CategoryTransient      ErrorCategory = "TRANSIENT"
	CategoryPermanent      ErrorCategory = "PERMANENT"
	CategoryBusinessRule   ErrorCategory = "BUSINESS_RULE"
	CategoryClientError    ErrorCategory = "CLIENT_ERROR"
	CategoryInfrastructure ErrorCategory = "INFRASTRUCTURE"
)

// CategorizeError determines error category for retry and logging purposes
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	// Context Errors (Transient - network/timeout issues)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CategoryTransient
	}

	// Domain Errors (Business Rules)
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case domain.ErrCodeInsufficientBalance,
			domain.ErrCodeNotComplete,
			domain.ErrCodeInvalidState,
			domain.ErrCodeAmountMismatch,
			domain.ErrCodeInvalidAmount:
			return CategoryBusinessRule
		case domain.ErrCodeNotFound,
			domain.ErrCodeInvalidPayload,
			domain.ErrCodeMissingRequiredField:
			return CategoryClientError
		case domain.ErrCodeDataIntegrity:
			return CategoryInfrastructure
		case domain.ErrCodeProviderUnavailable:
			return CategoryTransient
		}
	}

	// Persistence Errors
	if errors.Is(err, postgres.ErrWalletNotFound) ||
		errors.Is(err, postgres.ErrPassengerNotFound) ||
		errors.Is(err, postgres.ErrTicketTypeNotFound) ||
		errors.Is(err, postgres.ErrInvoiceNotFound) ||
		errors.Is(err, postgres.ErrInvoiceItemNotFound) ||
		errors.Is(err, postgres.ErrCartItemNotFound) {
		return CategoryClientError
	}
	if errors.Is(err, postgres.ErrInsufficientBalance) {
		return CategoryBusinessRule
	}
	if errors.Is(err, postgres.ErrDuplicateSettlementEvent) {
		return CategoryBusinessRule
	}

	// Service/Application Errors
	if svcErr, ok := IsServiceError(err); ok {
		switch svcErr.Code {
		case ErrCodeInvalidInput:
			return CategoryClientError
		case ErrCodeInternal:
			return CategoryInfrastructure
		case ErrCodeTimeout:
			return CategoryTransient
		}
	}

	// Provider Errors (External API)
	if provErr, ok := provider.IsProviderError(err); ok {
		if provErr.StatusCode >= 500 {
			return CategoryTransient
		}
		return CategoryPermanent
	}

	// Default: Transient (safe fallback)
	return CategoryTransient
}

// IsRetryable returns true if the error category suggests retry
func IsRetryable(err error) bool {
	category := CategorizeError(err)
	return category == CategoryTransient || category == CategoryInfrastructure
}

// ToHTTPStatus maps error to appropriate HTTP status code
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.HTTPStatus
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case domain.ErrCodeNotFound:
			return http.StatusNotFound
		case domain.ErrCodeInvalidPayload,
			domain.ErrCodeInvalidAmount,
			domain.ErrCodeMissingRequiredField:
			return http.StatusBadRequest
		case domain.ErrCodeInsufficientBalance:
			return http.StatusPaymentRequired
		case domain.ErrCodeNotComplete,
			domain.ErrCodeInvalidState,
			domain.ErrCodeDuplicateSettlement,
			domain.ErrCodeAmountMismatch:
			return http.StatusConflict
		case domain.ErrCodeProviderUnavailable:
			return http.StatusBadGateway
		case domain.ErrCodeDataIntegrity:
			return http.StatusInternalServerError
		}
	}

	switch {
	case errors.Is(err, postgres.ErrWalletNotFound),
		errors.Is(err, postgres.ErrPassengerNotFound),
		errors.Is(err, postgres.ErrTicketTypeNotFound),
		errors.Is(err, postgres.ErrInvoiceNotFound),
		errors.Is(err, postgres.ErrInvoiceItemNotFound),
		errors.Is(err, postgres.ErrCartItemNotFound):
		return http.StatusNotFound

	case errors.Is(err, postgres.ErrInsufficientBalance):
		return http.StatusPaymentRequired

	case errors.Is(err, postgres.ErrDuplicateSettlementEvent):
		return http.StatusConflict

	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}

	if provErr, ok := provider.IsProviderError(err); ok {
		if provErr.StatusCode >= 500 {
			return http.StatusBadGateway
		}
		return provErr.StatusCode
	}

	// Default to 500
	return http.StatusInternalServerError
}

// ToErrorCode clear error code for API responses
func ToErrorCode(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.Code
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}

	switch {
	case errors.Is(err, postgres.ErrWalletNotFound):
		return "WALLET_NOT_FOUND"
	case errors.Is(err, postgres.ErrPassengerNotFound):
		return "PASSENGER_NOT_FOUND"
	case errors.Is(err, postgres.ErrTicketTypeNotFound):
		return "TICKET_TYPE_NOT_FOUND"
	case errors.Is(err, postgres.ErrInvoiceNotFound):
		return "INVOICE_NOT_FOUND"
	case errors.Is(err, postgres.ErrInvoiceItemNotFound):
		return "INVOICE_ITEM_NOT_FOUND"
	case errors.Is(err, postgres.ErrCartItemNotFound):
		return "CART_ITEM_NOT_FOUND"
	case errors.Is(err, postgres.ErrInsufficientBalance):
		return domain.ErrCodeInsufficientBalance
	case errors.Is(err, postgres.ErrDuplicateSettlementEvent):
		return domain.ErrCodeDuplicateSettlement
	}

	if provErr, ok := provider.IsProviderError(err); ok {
		if provErr.StatusCode >= 500 {
			return domain.ErrCodeProviderUnavailable
		}
		return "PROVIDER_REJECTED"
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "TIMEOUT"
	}

	return "INTERNAL_ERROR"
}
