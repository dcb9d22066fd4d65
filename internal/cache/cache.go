// Package cache is a process-local TTL store used to memoize the expensive
// scoring aggregations. Entries expire on read and are also swept on a fixed
// interval; families of keys are invalidated with a '*' glob.
package cache

import (
	"strings"
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// Store is a string-keyed TTL cache for values of one result type.
type Store[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]

	sweepInterval time.Duration
	stop          chan struct{}
	stopOnce      sync.Once

	onHit   func()
	onMiss  func()
	onEvict func(n int)
}

// Option configures a Store.
type Option[T any] func(*Store[T])

// WithSweepInterval overrides how often the background sweep runs.
func WithSweepInterval[T any](interval time.Duration) Option[T] {
	return func(s *Store[T]) {
		if interval > 0 {
			s.sweepInterval = interval
		}
	}
}

// WithHitMissHooks installs counters fired on cache hits and misses.
func WithHitMissHooks[T any](onHit, onMiss func()) Option[T] {
	return func(s *Store[T]) {
		s.onHit = onHit
		s.onMiss = onMiss
	}
}

// WithEvictHook installs a counter fired with the number of swept entries.
func WithEvictHook[T any](onEvict func(n int)) Option[T] {
	return func(s *Store[T]) {
		s.onEvict = onEvict
	}
}

// New creates a Store and starts its eviction sweep. Call Close to stop the
// sweep goroutine.
func New[T any](opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		entries:       make(map[string]entry[T]),
		sweepInterval: time.Minute,
		stop:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.sweepLoop()
	return s
}

// Get returns the cached value for key. An expired entry behaves exactly
// like a miss and is evicted on the spot.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if ok && time.Now().After(e.expiresAt) {
		s.mu.Lock()
		// Re-check: a concurrent Set may have refreshed the entry.
		if cur, still := s.entries[key]; still && time.Now().After(cur.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		ok = false
	}

	if !ok {
		if s.onMiss != nil {
			s.onMiss()
		}
		var zero T
		return zero, false
	}

	if s.onHit != nil {
		s.onHit()
	}
	return e.value, true
}

// Set stores value under key for ttl.
func (s *Store[T]) Set(key string, value T, ttl time.Duration) {
	s.mu.Lock()
	s.entries[key] = entry[T]{value: value, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *Store[T]) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// DeletePattern removes every key matching pattern, where '*' matches any
// run of characters ("leaderboard:*", "user:stats:*").
func (s *Store[T]) DeletePattern(pattern string) {
	s.mu.Lock()
	for key := range s.entries {
		if matchPattern(pattern, key) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}

// GetOrSet returns the cached value for key, computing and storing it via
// compute on a miss. Errors from compute are returned without caching.
func (s *Store[T]) GetOrSet(key string, ttl time.Duration, compute func() (T, error)) (T, error) {
	if v, ok := s.Get(key); ok {
		return v, nil
	}

	v, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}
	s.Set(key, v, ttl)
	return v, nil
}

// Clear drops every entry.
func (s *Store[T]) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]entry[T])
	s.mu.Unlock()
}

// Len returns the number of entries, expired ones included until swept.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Keys returns a snapshot of the current keys.
func (s *Store[T]) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	return keys
}

// Close stops the background sweep. The store stays usable afterwards.
func (s *Store[T]) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

func (s *Store[T]) sweepLoop() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep evicts expired entries. Expired keys are collected under the read
// lock first so the write lock is held only for the deletes.
func (s *Store[T]) sweep() {
	now := time.Now()

	s.mu.RLock()
	var expired []string
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			expired = append(expired, key)
		}
	}
	s.mu.RUnlock()

	if len(expired) == 0 {
		return
	}

	evicted := 0
	s.mu.Lock()
	for _, key := range expired {
		// Re-check expiry: the entry may have been refreshed in between.
		if e, ok := s.entries[key]; ok && now.After(e.expiresAt) {
			delete(s.entries, key)
			evicted++
		}
	}
	s.mu.Unlock()

	if s.onEvict != nil && evicted > 0 {
		s.onEvict(evicted)
	}
}

// matchPattern reports whether key matches pattern, with '*' standing for
// any (possibly empty) run of characters.
func matchPattern(pattern, key string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == key
	}

	if !strings.HasPrefix(key, parts[0]) {
		return false
	}
	key = key[len(parts[0]):]

	last := len(parts) - 1
	for i := 1; i < last; i++ {
		idx := strings.Index(key, parts[i])
		if idx < 0 {
			return false
		}
		key = key[idx+len(parts[i]):]
	}

	return strings.HasSuffix(key, parts[last])
}
