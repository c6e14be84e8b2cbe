package paypal

import (
	"context"
	"sync"
	"time"

	"tourbook/internal/pkg/clock"
)

// TokenCache holds one OAuth access token until expires_in minus the refresh skew has passed.
// Concurrent callers share a single fetch.
type TokenCache struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
	skew      time.Duration
	clock     clock.Clock
}

func NewTokenCache(skew time.Duration, clk clock.Clock) *TokenCache {
	return &TokenCache{skew: skew, clock: clk}
}

type tokenFetcher func(ctx context.Context) (token string, expiresIn time.Duration, err error)

func (c *TokenCache) Get(ctx context.Context, fetch tokenFetcher) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.clock.Now().Before(c.expiresAt) {
		return c.token, nil
	}

	token, expiresIn, err := fetch(ctx)
	if err != nil {
		return "", err
	}
	ttl := expiresIn - c.skew
	if ttl < 0 {
		ttl = 0
	}
	c.token = token
	c.expiresAt = c.clock.Now().Add(ttl)
	return token, nil
}

// Invalidate drops the cached token, e.g. after the API rejected it
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiresAt = time.Time{}
}
