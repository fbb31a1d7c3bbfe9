// Package catalog keeps a time-boxed in-memory copy of the provider's
// payment-gateway list. Gateways are provider-managed and read-only here,
// so the cache is invalidated by TTL only.
package catalog

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"foxgate/internal/foxpays"
)

const DefaultTTL = 5 * time.Minute

type FetchFunc func(ctx context.Context) ([]foxpays.PaymentGateway, error)

// Result tells the caller where the data came from.
// Stale implies Cached: the last refresh failed and the previous entry was served.
type Result struct {
	Cached bool
	Stale  bool
}

type Cache struct {
	fetch FetchFunc
	ttl   time.Duration
	now   func() time.Time
	log   *zap.Logger

	mu        sync.Mutex
	data      []foxpays.PaymentGateway
	fetchedAt time.Time
}

type Option func(*Cache)

// WithClock replaces the time source; tests use it to step through the TTL.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Cache) { c.log = log }
}

func New(fetch FetchFunc, ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		fetch: fetch,
		ttl:   ttl,
		now:   time.Now,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get serves the cached catalog while it is fresh, refreshing from the
// provider otherwise. A failed refresh never overwrites the previous entry;
// if one exists it is served stale, which beats no data for this catalog.
func (c *Cache) Get(ctx context.Context) ([]foxpays.PaymentGateway, Result, error) {
	c.mu.Lock()
	if c.data != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		data := c.data
		c.mu.Unlock()
		return data, Result{Cached: true}, nil
	}
	c.mu.Unlock()

	// Concurrent callers past an expired entry may each hit the provider
	// once; the write below is a plain overwrite, so that is harmless.
	gateways, err := c.fetch(ctx)
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.data != nil {
			c.log.Warn("gateway catalog refresh failed, serving stale entry", zap.Error(err))
			return c.data, Result{Cached: true, Stale: true}, nil
		}
		return nil, Result{}, err
	}

	c.mu.Lock()
	c.data = gateways
	c.fetchedAt = c.now()
	c.mu.Unlock()
	return gateways, Result{}, nil
}
