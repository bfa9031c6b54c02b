// Package provider integrates the hosted checkout provider: session
// creation, webhook verification, and the retry/backoff policy around the
// provider's API.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/metropass/settlement-engine/internal/config"
)

// CheckoutClient is the outbound port to the hosted checkout provider.
type CheckoutClient interface {
	CreateSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSessionResponse, error)
}

type HTTPCheckoutClient struct {
	baseURL    string
	httpClient *http.Client
	token      *CachedCredential
}

// NewCheckoutClient builds the HTTP client with the configured bounded
// timeout. API credentials are exchanged for a short-lived bearer token,
// cached until its TTL lapses.
func NewCheckoutClient(cfg config.ProviderConfig) *HTTPCheckoutClient {
	c := &HTTPCheckoutClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	c.token = NewCachedCredential(ttl, func(ctx context.Context) (string, error) {
		return c.fetchToken(ctx, cfg.APIKey)
	})
	return c
}

// CreateSession opens a one-time-payment hosted session and returns its
// redirect URL.
func (c *HTTPCheckoutClient) CreateSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSessionResponse, error) {
	if req.Mode == "" {
		req.Mode = "payment"
	}
	url := fmt.Sprintf("%s/v1/checkout/sessions", c.baseURL)
	return sendRequest[CheckoutSessionRequest, CheckoutSessionResponse](c, ctx, http.MethodPost, url, &req)
}

func (c *HTTPCheckoutClient) fetchToken(ctx context.Context, apiKey string) (string, error) {
	url := fmt.Sprintf("%s/v1/oauth/token", c.baseURL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", fmt.Errorf("error creating token request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("error fetching provider token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &ProviderError{
			Code:       "token_error",
			Message:    string(body),
			StatusCode: resp.StatusCode,
		}
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("error decoding token response: %w", err)
	}
	return tok.AccessToken, nil
}

func sendRequest[Req any, Resp any](c *HTTPCheckoutClient, ctx context.Context, method, url string, reqBody *Req) (*Resp, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("error marshalling json: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	token, err := c.token.Get(ctx)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.token.Invalidate()
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var provErrResp providerErrorResponse
		if err := json.Unmarshal(body, &provErrResp); err != nil {
			return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, &ProviderError{
			Code:       provErrResp.Err,
			Message:    provErrResp.Message,
			StatusCode: resp.StatusCode,
		}
	}

	var provResp Resp
	if err := json.NewDecoder(resp.Body).Decode(&provResp); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}

	return &provResp, nil
}
