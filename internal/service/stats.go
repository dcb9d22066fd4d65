package service

import (
	"context"

	"crux-tracker/internal/constants"
	"crux-tracker/internal/domain"
	"crux-tracker/internal/ranking"
	"crux-tracker/internal/scoring"

	"github.com/rs/zerolog"
)

// StatsService summarizes one user's window: total points, per-grade
// counts, flash rate and validated grade.
type StatsService struct {
	source ValidationSource
	points *PointsService
	caches *Caches
	logger zerolog.Logger
}

func NewStatsService(source ValidationSource, points *PointsService, caches *Caches, logger zerolog.Logger) *StatsService {
	return &StatsService{source: source, points: points, caches: caches, logger: logger}
}

// GetUserStats computes the user's summary over the scoring window. A user
// with no completions gets a well-formed zero summary.
func (s *StatsService) GetUserStats(ctx context.Context, userID string) (domain.UserStats, error) {
	return s.caches.Stats.GetOrSet(userStatsKey(userID), constants.UserStatsCacheTTL, func() (domain.UserStats, error) {
		factors, err := s.points.RouteDifficultyFactors(ctx)
		if err != nil {
			return domain.UserStats{}, err
		}

		details, err := s.source.ListUserCompletedSince(ctx, userID, s.points.WindowStart())
		if err != nil {
			return domain.UserStats{}, err
		}

		stats := domain.UserStats{UserID: userID}
		type gradeAgg struct {
			count  int
			points int
		}
		byGrade := make(map[domain.Grade]*gradeAgg)

		for _, d := range details {
			factor, ok := factors[d.RouteID]
			if !ok {
				factor = 1.0
			}
			pts := scoring.GradePoints(d.Grade, factor, d.Attempts)

			stats.TotalPoints += pts
			stats.TotalValidations++
			if d.IsFlashed {
				stats.FlashCount++
			}

			agg, ok := byGrade[d.Grade]
			if !ok {
				agg = &gradeAgg{}
				byGrade[d.Grade] = agg
			}
			agg.count++
			agg.points += pts
		}

		stats.FlashRate = ranking.FlashRate(stats.FlashCount, stats.TotalValidations)

		counts := make(map[domain.Grade]int, len(byGrade))
		for _, grade := range domain.GradeOrder {
			agg, ok := byGrade[grade]
			if !ok {
				continue
			}
			counts[grade] = agg.count
			stats.ByGrade = append(stats.ByGrade, domain.GradeCount{
				Grade:  grade,
				Count:  agg.count,
				Points: agg.points,
			})
		}
		stats.ValidatedGrade = ranking.ValidatedGrade(counts)

		return stats, nil
	})
}
