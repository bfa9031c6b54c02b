package provider

import (
	"context"
	"sync"
	"time"
)

// CachedCredential holds a short-lived API credential with its expiry and
// refreshes it on demand. Callers share one instance; refresh is
// single-flight under the mutex so a burst of expired reads triggers one
// fetch, not many.
type CachedCredential struct {
	mu        sync.Mutex
	value     string
	expiresAt time.Time
	ttl       time.Duration
	refresh   func(ctx context.Context) (string, error)
	now       func() time.Time
}

// NewCachedCredential builds a cache around refresh. A zero ttl means the
// refresh result is used once and refetched every call.
func NewCachedCredential(ttl time.Duration, refresh func(ctx context.Context) (string, error)) *CachedCredential {
	return &CachedCredential{
		ttl:     ttl,
		refresh: refresh,
		now:     time.Now,
	}
}

// Get returns the cached credential, refreshing it first if expired.
func (c *CachedCredential) Get(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.value != "" && c.now().Before(c.expiresAt) {
		return c.value, nil
	}

	value, err := c.refresh(ctx)
	if err != nil {
		return "", err
	}
	c.value = value
	c.expiresAt = c.now().Add(c.ttl)
	return value, nil
}

// Invalidate drops the cached value so the next Get refreshes. Used when
// the provider rejects a credential before its expected expiry.
func (c *CachedCredential) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = ""
	c.expiresAt = time.Time{}
}
