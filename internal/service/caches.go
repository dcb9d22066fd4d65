package service

import (
	"fmt"

	"crux-tracker/internal/cache"
	"crux-tracker/internal/constants"
	"crux-tracker/internal/domain"
	"crux-tracker/internal/metrics"
)

// Cache keys. One family per derived result; families are invalidated by
// pattern whenever the validation set changes.
const (
	routeFactorsKey      = "route:difficulty:factors"
	leaderboardKeyPrefix = "leaderboard:"
	userRankKeyPrefix    = "user:rank:"
	userStatsKeyPrefix   = "user:stats:"
)

func leaderboardKey(scope Scope, page int) string {
	return fmt.Sprintf("%s%s:%d", leaderboardKeyPrefix, scope, page)
}

func userRankKey(userID string) string {
	return userRankKeyPrefix + userID
}

func userStatsKey(userID string) string {
	return userStatsKeyPrefix + userID
}

// Caches owns the typed stores for every derived result. One instance is
// shared by the services; mutations invalidate through it.
type Caches struct {
	Factors *cache.Store[map[string]float64]
	Boards  *cache.Store[domain.Leaderboard]
	Ranks   *cache.Store[domain.LeaderboardEntry]
	Stats   *cache.Store[domain.UserStats]
}

func NewCaches(m *metrics.Metrics) *Caches {
	return &Caches{
		Factors: newStore[map[string]float64](m, "factors"),
		Boards:  newStore[domain.Leaderboard](m, "leaderboard"),
		Ranks:   newStore[domain.LeaderboardEntry](m, "rank"),
		Stats:   newStore[domain.UserStats](m, "stats"),
	}
}

func newStore[T any](m *metrics.Metrics, name string) *cache.Store[T] {
	return cache.New[T](
		cache.WithSweepInterval[T](constants.CacheSweepInterval),
		cache.WithHitMissHooks[T](
			func() { m.CacheHits.WithLabelValues(name).Inc() },
			func() { m.CacheMisses.WithLabelValues(name).Inc() },
		),
		cache.WithEvictHook[T](func(n int) {
			m.CacheEvictions.WithLabelValues(name).Add(float64(n))
		}),
	)
}

// Close stops every sweep goroutine.
func (c *Caches) Close() {
	c.Factors.Close()
	c.Boards.Close()
	c.Ranks.Close()
	c.Stats.Close()
}
