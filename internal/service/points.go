package service

import (
	"context"
	"time"

	"crux-tracker/internal/constants"
	"crux-tracker/internal/scoring"

	"github.com/rs/zerolog"
)

// PointsService owns the route difficulty factors and the cache
// invalidation contract around them.
type PointsService struct {
	source     ValidationSource
	difficulty *scoring.DifficultyCalculator
	caches     *Caches
	logger     zerolog.Logger

	now func() time.Time
}

func NewPointsService(
	source ValidationSource,
	difficulty *scoring.DifficultyCalculator,
	caches *Caches,
	logger zerolog.Logger,
) *PointsService {
	return &PointsService{
		source:     source,
		difficulty: difficulty,
		caches:     caches,
		logger:     logger,
		now:        time.Now,
	}
}

// WindowStart is the lower bound of the scoring window: six months back
// from now.
func (s *PointsService) WindowStart() time.Time {
	return s.now().AddDate(0, -constants.ScoringWindowMonths, 0)
}

// RouteDifficultyFactors returns the routeID → factor map for the current
// window, computing it from one grouped aggregation on a cache miss.
func (s *PointsService) RouteDifficultyFactors(ctx context.Context) (map[string]float64, error) {
	return s.caches.Factors.GetOrSet(routeFactorsKey, constants.RouteDifficultyCacheTTL, func() (map[string]float64, error) {
		stats, err := s.source.RouteStatsSince(ctx, s.WindowStart())
		if err != nil {
			return nil, err
		}

		factors := s.difficulty.FactorsByRoute(stats)
		s.logger.Debug().Int("routes", len(factors)).Msg("route difficulty factors computed")
		return factors, nil
	})
}

// InvalidateDerivedCaches drops every derived result: the factor map first,
// then the leaderboard, stats and rank families. Safe to call repeatedly;
// called on every validation create, update or delete.
func (s *PointsService) InvalidateDerivedCaches() {
	s.caches.Factors.Delete(routeFactorsKey)
	s.caches.Boards.DeletePattern(leaderboardKeyPrefix + "*")
	s.caches.Stats.DeletePattern(userStatsKeyPrefix + "*")
	s.caches.Ranks.DeletePattern(userRankKeyPrefix + "*")
	s.logger.Debug().Msg("derived caches invalidated")
}
