package provider

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/metropass/settlement-engine/internal/config"
)

// RetryCheckoutClient wraps a CheckoutClient with exponential backoff and
// jitter. Only transient failures are retried; the provider's own
// idempotency on session creation makes the retries safe.
type RetryCheckoutClient struct {
	inner      CheckoutClient
	baseDelay  time.Duration
	maxRetries int
}

func NewRetryCheckoutClient(inner CheckoutClient, cfg config.RetryConfig) *RetryCheckoutClient {
	return &RetryCheckoutClient{
		inner:      inner,
		baseDelay:  time.Duration(cfg.BaseDelay) * time.Second,
		maxRetries: int(cfg.MaxRetries),
	}
}

func (r *RetryCheckoutClient) CreateSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSessionResponse, error) {
	return retry(r, ctx, func(ctx context.Context) (*CheckoutSessionResponse, error) {
		return r.inner.CreateSession(ctx, req)
	})
}

func retry[T any](r *RetryCheckoutClient, ctx context.Context, operation func(ctx context.Context) (*T, error)) (*T, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := operation(ctx)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < r.maxRetries-1 {
			time.Sleep(r.backoff(attempt))
		}
	}

	return nil, fmt.Errorf("maximum retries exceeded: %w", lastErr)
}

func isRetryable(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		if provErr.StatusCode >= 500 {
			return true
		}

		if provErr.Code == "internal_error" {
			return true
		}

		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	// Timeouts and transport errors are worth another attempt.
	return true
}

// Backoff calculation with exponential delay and jitter
func (r *RetryCheckoutClient) backoff(attempt int) time.Duration {
	base := r.baseDelay * time.Duration(1<<attempt)

	jitter := time.Duration(rand.Intn(1000)) * time.Millisecond

	return base + jitter
}
