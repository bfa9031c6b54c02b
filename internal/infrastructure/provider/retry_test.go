package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metropass/settlement-engine/internal/config"
)

type mockCheckoutClient struct {
	createSessionFunc func(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSessionResponse, error)
}

func (m *mockCheckoutClient) CreateSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSessionResponse, error) {
	return m.createSessionFunc(ctx, req)
}

func retryConfig() config.RetryConfig {
	return config.RetryConfig{BaseDelay: 0, MaxRetries: 3}
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	attempts := 0
	inner := &mockCheckoutClient{
		createSessionFunc: func(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSessionResponse, error) {
			attempts++
			if attempts < 3 {
				return nil, &ProviderError{Code: "internal_error", Message: "boom", StatusCode: 500}
			}
			return &CheckoutSessionResponse{SessionID: "cs_1", URL: "https://pay.example/cs_1"}, nil
		},
	}

	client := NewRetryCheckoutClient(inner, retryConfig())

	resp, err := client.CreateSession(context.Background(), CheckoutSessionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", resp.SessionID)
	assert.Equal(t, 3, attempts)
}

func TestRetryDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	inner := &mockCheckoutClient{
		createSessionFunc: func(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSessionResponse, error) {
			attempts++
			return nil, &ProviderError{Code: "invalid_request", Message: "bad line items", StatusCode: 400}
		},
	}

	client := NewRetryCheckoutClient(inner, retryConfig())

	_, err := client.CreateSession(context.Background(), CheckoutSessionRequest{})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	provErr, ok := IsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, 400, provErr.StatusCode)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	inner := &mockCheckoutClient{
		createSessionFunc: func(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSessionResponse, error) {
			attempts++
			return nil, &ProviderError{Code: "internal_error", Message: "boom", StatusCode: 503}
		},
	}

	client := NewRetryCheckoutClient(inner, retryConfig())

	_, err := client.CreateSession(context.Background(), CheckoutSessionRequest{})
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "maximum retries exceeded")
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	inner := &mockCheckoutClient{
		createSessionFunc: func(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSessionResponse, error) {
			return nil, errors.New("connection reset")
		},
	}

	client := NewRetryCheckoutClient(inner, retryConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CreateSession(ctx, CheckoutSessionRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}
