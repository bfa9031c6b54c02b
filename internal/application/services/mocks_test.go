package services_test

import (
	"context"
	"sync"

	"github.com/metropass/settlement-engine/internal/infrastructure/provider"
)

// mockCheckoutClient is a function-field mock for the hosted checkout
// provider. It records every request it sees.
type mockCheckoutClient struct {
	mu                sync.Mutex
	createSessionFunc func(ctx context.Context, req provider.CheckoutSessionRequest) (*provider.CheckoutSessionResponse, error)
	requests          []provider.CheckoutSessionRequest
}

func (m *mockCheckoutClient) CreateSession(ctx context.Context, req provider.CheckoutSessionRequest) (*provider.CheckoutSessionResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.createSessionFunc != nil {
		return m.createSessionFunc(ctx, req)
	}
	return &provider.CheckoutSessionResponse{
		SessionID: "cs_test",
		URL:       "https://checkout.example/cs_test",
	}, nil
}

func (m *mockCheckoutClient) lastRequest() provider.CheckoutSessionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[len(m.requests)-1]
}
