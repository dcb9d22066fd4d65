// Package ranking turns completion rows into an ordered, paginated
// leaderboard with deterministic tie-breaking.
package ranking

import (
	"math"
	"sort"

	"crux-tracker/internal/domain"
	"crux-tracker/internal/scoring"
)

// ValidatedGradeThreshold is how many completions at one grade a climber
// needs before that grade counts as validated.
const ValidatedGradeThreshold = 3

// Engine aggregates per-user scores and produces dense 1-based ranks.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Rank aggregates the given completion rows per user, sorts by the four-key
// chain (points, validations, flash rate, validated grade index — all
// descending) and assigns contiguous 1-based ranks. The input rows must
// already be filtered to completed events within the scoring window; factors
// is the routeID → difficulty factor map.
func (e *Engine) Rank(rows []domain.CompletionRow, factors map[string]float64) []domain.LeaderboardEntry {
	type userAgg struct {
		points      int
		validations int
		flashes     int
		byGrade     map[domain.Grade]int
	}

	aggs := make(map[string]*userAgg)
	order := make([]string, 0) // first-seen order keeps the sort input deterministic

	for _, row := range rows {
		agg, ok := aggs[row.UserID]
		if !ok {
			agg = &userAgg{byGrade: make(map[domain.Grade]int)}
			aggs[row.UserID] = agg
			order = append(order, row.UserID)
		}

		factor, ok := factors[row.RouteID]
		if !ok {
			factor = 1.0
		}

		agg.points += scoring.GradePoints(row.Grade, factor, row.Attempts)
		agg.validations++
		if row.IsFlashed {
			agg.flashes++
		}
		agg.byGrade[row.Grade]++
	}

	entries := make([]domain.LeaderboardEntry, 0, len(order))
	for _, userID := range order {
		agg := aggs[userID]
		entries = append(entries, domain.LeaderboardEntry{
			UserID:           userID,
			Points:           agg.points,
			TotalValidations: agg.validations,
			FlashCount:       agg.flashes,
			FlashRate:        FlashRate(agg.flashes, agg.validations),
			ValidatedGrade:   ValidatedGrade(agg.byGrade),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return less(entries[i], entries[j])
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// less orders entry a before b. Ties fall through points → validations →
// flash rate → validated grade index; climbers with no validated grade sort
// below every graded climber.
func less(a, b domain.LeaderboardEntry) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.TotalValidations != b.TotalValidations {
		return a.TotalValidations > b.TotalValidations
	}
	if a.FlashRate != b.FlashRate {
		return a.FlashRate > b.FlashRate
	}
	return domain.GradeIndex(a.ValidatedGrade) > domain.GradeIndex(b.ValidatedGrade)
}

// ValidatedGrade returns the highest grade with at least
// ValidatedGradeThreshold completions, scanning GradeOrder low to high so a
// qualifying higher grade overrides lower ones. Empty when no grade
// qualifies.
func ValidatedGrade(byGrade map[domain.Grade]int) domain.Grade {
	var validated domain.Grade
	for _, grade := range domain.GradeOrder {
		if byGrade[grade] >= ValidatedGradeThreshold {
			validated = grade
		}
	}
	return validated
}

// FlashRate is the percentage of completions that were flashes, rounded to
// one decimal. Zero completions yield 0, not a division by zero.
func FlashRate(flashes, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(flashes)/float64(total)*1000) / 10
}

// Paginate slices ranked entries into one page. Out-of-range pages return an
// empty, well-formed result.
func Paginate(entries []domain.LeaderboardEntry, page, limit int) domain.Leaderboard {
	totalUsers := len(entries)
	totalPages := 0
	if limit > 0 {
		totalPages = (totalUsers + limit - 1) / limit
	}

	start := (page - 1) * limit
	end := start + limit
	if start < 0 || start >= totalUsers {
		start, end = 0, 0
	} else if end > totalUsers {
		end = totalUsers
	}

	return domain.Leaderboard{
		Entries: append([]domain.LeaderboardEntry(nil), entries[start:end]...),
		Pagination: domain.Pagination{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalUsers:  totalUsers,
			HasMore:     page < totalPages,
		},
	}
}

// Empty is the zero-page result returned for cohorts with no scorable
// members.
func Empty(page int) domain.Leaderboard {
	return domain.Leaderboard{
		Entries: []domain.LeaderboardEntry{},
		Pagination: domain.Pagination{
			CurrentPage: page,
			TotalPages:  0,
			TotalUsers:  0,
			HasMore:     false,
		},
	}
}
