package cache

import (
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSet(t *testing.T) {
	s := New[string]()
	defer s.Close()

	_, ok := s.Get("missing")
	assert.False(t, ok)

	s.Set("k", "v", time.Minute)
	v, ok := s.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestExpiredEntryIsAMiss(t *testing.T) {
	s := New[int]()
	defer s.Close()

	s.Set("k", 42, 10*time.Millisecond)

	v, ok := s.Get("k")
	require.True(t, ok)
	require.Equal(t, 42, v)

	time.Sleep(20 * time.Millisecond)

	_, ok = s.Get("k")
	assert.False(t, ok)
	// the expired read evicted the entry
	assert.Equal(t, 0, s.Len())
}

func TestDelete(t *testing.T) {
	s := New[int]()
	defer s.Close()

	s.Set("k", 1, time.Minute)
	s.Delete("k")
	_, ok := s.Get("k")
	assert.False(t, ok)

	// deleting an absent key is a no-op
	s.Delete("k")
}

func TestClear(t *testing.T) {
	s := New[int]()
	defer s.Close()

	s.Set("a", 1, time.Minute)
	s.Set("b", 2, time.Minute)
	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestDeletePattern(t *testing.T) {
	s := New[int]()
	defer s.Close()

	s.Set("leaderboard:global:1", 1, time.Minute)
	s.Set("leaderboard:global:2", 2, time.Minute)
	s.Set("leaderboard:friends:1", 3, time.Minute)
	s.Set("user:rank:alice", 4, time.Minute)
	s.Set("user:stats:alice", 5, time.Minute)

	s.DeletePattern("leaderboard:*")

	keys := s.Keys()
	sort.Strings(keys)
	assert.Equal(t, []string{"user:rank:alice", "user:stats:alice"}, keys)
}

func TestDeletePatternExactAndMiddleWildcard(t *testing.T) {
	s := New[int]()
	defer s.Close()

	s.Set("user:rank:alice", 1, time.Minute)
	s.Set("user:stats:alice", 2, time.Minute)
	s.Set("user:rank:bob", 3, time.Minute)

	// no wildcard: exact match only
	s.DeletePattern("user:rank:bob")
	_, ok := s.Get("user:rank:bob")
	assert.False(t, ok)
	assert.Equal(t, 2, s.Len())

	// wildcard in the middle
	s.DeletePattern("user:*:alice")
	assert.Equal(t, 0, s.Len())
}

func TestGetOrSet(t *testing.T) {
	s := New[int]()
	defer s.Close()

	calls := 0
	compute := func() (int, error) {
		calls++
		return 7, nil
	}

	v, err := s.GetOrSet("k", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	v, err = s.GetOrSet("k", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 1, calls, "second call must be served from cache")
}

func TestGetOrSetErrorNotCached(t *testing.T) {
	s := New[int]()
	defer s.Close()

	boom := errors.New("boom")
	_, err := s.GetOrSet("k", time.Minute, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	_, ok := s.Get("k")
	assert.False(t, ok)
}

func TestSweepEvictsExpired(t *testing.T) {
	onEvict := make(chan int, 1)
	s := New[int](
		WithSweepInterval[int](20*time.Millisecond),
		WithEvictHook[int](func(n int) { onEvict <- n }),
	)
	defer s.Close()

	s.Set("stale", 1, 5*time.Millisecond)
	s.Set("fresh", 2, time.Minute)

	select {
	case n := <-onEvict:
		assert.Equal(t, 1, n)
	case <-time.After(time.Second):
		t.Fatal("sweep did not run")
	}

	assert.Equal(t, 1, s.Len())
	_, ok := s.Get("fresh")
	assert.True(t, ok)
}

func TestHitMissHooks(t *testing.T) {
	var mu sync.Mutex
	hits, misses := 0, 0
	s := New[int](WithHitMissHooks[int](
		func() { mu.Lock(); hits++; mu.Unlock() },
		func() { mu.Lock(); misses++; mu.Unlock() },
	))
	defer s.Close()

	s.Get("k")
	s.Set("k", 1, time.Minute)
	s.Get("k")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestConcurrentAccess(t *testing.T) {
	s := New[int]()
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				s.Set("shared", j, time.Minute)
				s.Get("shared")
				s.DeletePattern("sha*")
				s.Get("other")
			}
		}()
	}
	wg.Wait()
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"leaderboard:*", "leaderboard:global:1", true},
		{"leaderboard:*", "leaderboard:", true},
		{"leaderboard:*", "user:rank:a", false},
		{"user:*:alice", "user:stats:alice", true},
		{"user:*:alice", "user:stats:bob", false},
		{"exact", "exact", true},
		{"exact", "exact2", false},
		{"*", "anything", true},
		{"*", "", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchPattern(tt.pattern, tt.key), "%s vs %s", tt.pattern, tt.key)
	}
}
