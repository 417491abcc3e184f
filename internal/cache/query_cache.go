// Package cache holds the client-side views of pools and bets fetched from the
// backend. Entries are refetched on demand after they are invalidated.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yourusername/trader-arena/internal/metrics"
)

// View keys.
const (
	PoolsKey       = "pools"
	ActivePoolsKey = "pools:active"
)

// PoolKey is the view key of a single pool.
func PoolKey(poolID string) string {
	return "pool:" + poolID
}

// PoolBetsKey is the view key of the bets placed on a pool.
func PoolBetsKey(poolID string) string {
	return "poolBets:" + poolID
}

// UserBetsKey is the view key of the bets owned by a wallet.
func UserBetsKey(wallet string) string {
	return "userBets:" + wallet
}

// viewKind returns the key prefix used as the metrics label.
func viewKind(key string) string {
	if key == ActivePoolsKey {
		return key
	}
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}

// QueryCache caches fetched views keyed by view key.
type QueryCache struct {
	cache *gocache.Cache
	ttl   time.Duration

	mu        sync.RWMutex
	hooks     []func(key string)
	hitCount  uint64
	missCount uint64
	// generations counts invalidations per key; epoch counts Clear calls.
	generations map[string]uint64
	epoch       uint64
}

// NewQueryCache creates a cache whose entries live for at most ttl.
func NewQueryCache(ttl time.Duration) *QueryCache {
	return &QueryCache{
		cache:       gocache.New(ttl, ttl*2),
		ttl:         ttl,
		generations: make(map[string]uint64),
	}
}

// Get returns the cached value for key.
func (qc *QueryCache) Get(key string) (interface{}, bool) {
	v, found := qc.cache.Get(key)

	qc.mu.Lock()
	if found {
		qc.hitCount++
	} else {
		qc.missCount++
	}
	qc.mu.Unlock()

	return v, found
}

// Set stores value under key.
func (qc *QueryCache) Set(key string, value interface{}) {
	qc.cache.Set(key, value, qc.ttl)
}

// Invalidate drops the given keys and notifies hooks. Dropping a key that is
// not cached still notifies, so repeated invalidation is harmless.
func (qc *QueryCache) Invalidate(keys ...string) {
	for _, key := range keys {
		qc.mu.Lock()
		qc.generations[key]++
		qc.cache.Delete(key)
		qc.mu.Unlock()

		metrics.RecordCacheInvalidation(viewKind(key))
		qc.notify(key)
	}
}

// InvalidatePrefix drops every key starting with prefix.
func (qc *QueryCache) InvalidatePrefix(prefix string) int {
	n := 0
	for key := range qc.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			qc.Invalidate(key)
			n++
		}
	}
	return n
}

// OnInvalidate registers fn to be called with every invalidated key.
func (qc *QueryCache) OnInvalidate(fn func(key string)) {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	qc.hooks = append(qc.hooks, fn)
}

func (qc *QueryCache) notify(key string) {
	qc.mu.RLock()
	hooks := make([]func(string), len(qc.hooks))
	copy(hooks, qc.hooks)
	qc.mu.RUnlock()

	for _, fn := range hooks {
		fn(key)
	}
}

// Clear flushes the entire cache
func (qc *QueryCache) Clear() {
	qc.mu.Lock()
	qc.epoch++
	qc.cache.Flush()
	qc.hitCount = 0
	qc.missCount = 0
	qc.mu.Unlock()
}

// Stats returns cache statistics
func (qc *QueryCache) Stats() (hits, misses uint64, ratio float64) {
	qc.mu.RLock()
	defer qc.mu.RUnlock()

	hits = qc.hitCount
	misses = qc.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (qc *QueryCache) ItemCount() int {
	return qc.cache.ItemCount()
}

// version identifies the state of key that a fetch started from.
type version struct {
	gen   uint64
	epoch uint64
}

func (qc *QueryCache) version(key string) version {
	qc.mu.RLock()
	defer qc.mu.RUnlock()
	return version{gen: qc.generations[key], epoch: qc.epoch}
}

// setIfCurrent stores value only if key has not been invalidated since v.
func (qc *QueryCache) setIfCurrent(key string, value interface{}, v version) bool {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	if qc.generations[key] != v.gen || qc.epoch != v.epoch {
		return false
	}
	qc.cache.Set(key, value, qc.ttl)
	return true
}

// GetOrFetch returns the cached view for key, calling fetch and caching its
// result on a miss. Fetch errors are not cached, and neither is a result whose
// key was invalidated while the fetch was running.
func GetOrFetch[T any](ctx context.Context, qc *QueryCache, key string, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := qc.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	v := qc.version(key)
	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("fetch %s: %w", key, err)
	}
	qc.setIfCurrent(key, value, v)
	return value, nil
}
