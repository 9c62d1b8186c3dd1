package rates

import (
	"context"
	"sync"
	"time"

	"github.com/Alias1177/GoldPredictor/models"
)

// Clock returns the current time. Tests inject a fake one.
type Clock func() time.Time

// MemoryCache keeps a single quote and the moment it expires.
type MemoryCache struct {
	mu        sync.Mutex
	quote     models.RateQuote
	expiresAt time.Time
	valid     bool
	now       Clock
}

var _ models.RateCache = (*MemoryCache)(nil)

// NewMemoryCache returns an empty cache. A nil clock means time.Now.
func NewMemoryCache(now Clock) *MemoryCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{now: now}
}

// Get returns the stored quote while now is strictly before its expiry.
func (c *MemoryCache) Get(_ context.Context) (models.RateQuote, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.valid || !c.now().Before(c.expiresAt) {
		return models.RateQuote{}, false, nil
	}
	return c.quote, true, nil
}

// Set replaces the stored quote.
func (c *MemoryCache) Set(_ context.Context, quote models.RateQuote, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.quote = quote
	c.expiresAt = c.now().Add(ttl)
	c.valid = true
	return nil
}
