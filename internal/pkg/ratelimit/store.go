package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CounterStore is an atomic fixed-window counter. Incr bumps the counter for
// key and returns the post-increment count; the window TTL is attached on the
// first increment of a fresh window.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// defaultStoreTimeout bounds a single shared-store round trip. A slow store
// must not stall admission; the limiter falls back on timeout.
const defaultStoreTimeout = 250 * time.Millisecond

// RedisCounterStore counts in Redis so that all instances share windows.
type RedisCounterStore struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisCounterStore creates a shared counter store on the given client.
func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{
		client:  client,
		timeout: defaultStoreTimeout,
	}
}

// Incr atomically increments the window counter and sets its expiry on first
// increment (EXPIRE NX leaves an existing TTL alone).
func (s *RedisCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

type localWindow struct {
	count     int64
	expiresAt time.Time
}

// LocalCounterStore is the in-process fallback. Same fixed-window semantics as
// the Redis store, scoped to one instance; counts are lost on restart, which
// only ever under-counts.
type LocalCounterStore struct {
	mu      sync.Mutex
	windows map[string]*localWindow
}

// NewLocalCounterStore creates an empty in-process counter store.
func NewLocalCounterStore() *LocalCounterStore {
	return &LocalCounterStore{
		windows: make(map[string]*localWindow),
	}
}

// Incr increments the window counter for key, starting a fresh window when the
// previous one has expired.
func (s *LocalCounterStore) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || now.After(w.expiresAt) {
		s.windows[key] = &localWindow{count: 1, expiresAt: now.Add(window)}
		s.pruneLocked(now)
		return 1, nil
	}
	w.count++
	return w.count, nil
}

// pruneLocked drops expired windows once the map has grown past a threshold.
// Called with the mutex held.
func (s *LocalCounterStore) pruneLocked(now time.Time) {
	if len(s.windows) < 4096 {
		return
	}
	for key, w := range s.windows {
		if now.After(w.expiresAt) {
			delete(s.windows, key)
		}
	}
}
