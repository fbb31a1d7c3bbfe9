package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"foxgate/internal/foxpays"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCacheServesWithinTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_900_000_000, 0)}
	calls := 0
	cache := New(func(ctx context.Context) ([]foxpays.PaymentGateway, error) {
		calls++
		return []foxpays.PaymentGateway{{Code: "sberbank"}}, nil
	}, 5*time.Minute, WithClock(clock.Now))

	ctx := context.Background()

	gateways, res, err := cache.Get(ctx)
	require.NoError(t, err)
	require.Len(t, gateways, 1)
	require.False(t, res.Cached)
	require.Equal(t, 1, calls)

	clock.Advance(4 * time.Minute)
	gateways, res, err = cache.Get(ctx)
	require.NoError(t, err)
	require.Len(t, gateways, 1)
	require.True(t, res.Cached)
	require.False(t, res.Stale)
	require.Equal(t, 1, calls, "second call within TTL must not hit upstream")
}

func TestCacheRefreshesAfterTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_900_000_000, 0)}
	calls := 0
	cache := New(func(ctx context.Context) ([]foxpays.PaymentGateway, error) {
		calls++
		return []foxpays.PaymentGateway{{Code: "sberbank"}}, nil
	}, 5*time.Minute, WithClock(clock.Now))

	ctx := context.Background()
	_, _, err := cache.Get(ctx)
	require.NoError(t, err)

	clock.Advance(5*time.Minute + time.Second)
	_, res, err := cache.Get(ctx)
	require.NoError(t, err)
	require.False(t, res.Cached)
	require.Equal(t, 2, calls, "call after TTL expiry must refresh")
}

func TestCacheServesStaleOnRefreshFailure(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_900_000_000, 0)}
	calls := 0
	cache := New(func(ctx context.Context) ([]foxpays.PaymentGateway, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("provider down")
		}
		return []foxpays.PaymentGateway{{Code: "sberbank"}}, nil
	}, 5*time.Minute, WithClock(clock.Now))

	ctx := context.Background()
	_, _, err := cache.Get(ctx)
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	gateways, res, err := cache.Get(ctx)
	require.NoError(t, err, "failed refresh with a previous entry serves stale data")
	require.Len(t, gateways, 1)
	require.True(t, res.Cached)
	require.True(t, res.Stale)

	// The failed refresh must not have corrupted the entry.
	gateways, _, err = cache.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "sberbank", gateways[0].Code)
}

func TestCachePropagatesErrorWithoutEntry(t *testing.T) {
	cache := New(func(ctx context.Context) ([]foxpays.PaymentGateway, error) {
		return nil, errors.New("provider down")
	}, 5*time.Minute)

	_, _, err := cache.Get(context.Background())
	require.Error(t, err)
}

func TestRegistryIsolatesCredentials(t *testing.T) {
	reg := NewRegistry(5*time.Minute, nil)

	fetchA := func(ctx context.Context) ([]foxpays.PaymentGateway, error) {
		return []foxpays.PaymentGateway{{Code: "a"}}, nil
	}
	fetchB := func(ctx context.Context) ([]foxpays.PaymentGateway, error) {
		return []foxpays.PaymentGateway{{Code: "b"}}, nil
	}

	cacheA := reg.For("https://one.example", "token-1", fetchA)
	cacheB := reg.For("https://two.example", "token-2", fetchB)
	require.NotSame(t, cacheA, cacheB)

	gws, _, err := cacheA.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "a", gws[0].Code)

	gws, _, err = cacheB.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "b", gws[0].Code)

	// Same credentials return the same cache.
	require.Same(t, cacheA, reg.For("https://one.example", "token-1", fetchA))
}
