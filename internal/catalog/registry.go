package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Registry holds one Cache per merchant credential set, so multi-tenant
// deployments do not leak one merchant's catalog to another.
type Registry struct {
	ttl  time.Duration
	now  func() time.Time
	log  *zap.Logger
	mu   sync.Mutex
	byID map[string]*Cache
}

func NewRegistry(ttl time.Duration, log *zap.Logger) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		ttl:  ttl,
		now:  time.Now,
		log:  log,
		byID: make(map[string]*Cache),
	}
}

// For returns the cache for the given credential set, creating it on first
// use. fetch is only consulted when a new cache is created.
func (r *Registry) For(baseURL, accessToken string, fetch FetchFunc) *Cache {
	key := credentialKey(baseURL, accessToken)

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byID[key]; ok {
		return c
	}
	c := New(fetch, r.ttl, WithClock(r.now), WithLogger(r.log))
	r.byID[key] = c
	return c
}

// credentialKey hashes the credentials so raw tokens never sit in map keys.
func credentialKey(baseURL, accessToken string) string {
	sum := sha256.Sum256([]byte(baseURL + "\x00" + accessToken))
	return hex.EncodeToString(sum[:])
}
