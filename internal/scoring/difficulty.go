package scoring

import (
	"crux-tracker/internal/domain"
)

const (
	// MinSampleSize is the completion count below which a route keeps a
	// neutral factor: fewer than 3 successes is no statistical signal.
	MinSampleSize = 3

	minFactor = 0.8
	maxFactor = 2.0
)

// DifficultyCalculator derives the practiced-difficulty multiplier of a route
// from how climbers actually fared on it.
type DifficultyCalculator struct{}

func NewDifficultyCalculator() *DifficultyCalculator {
	return &DifficultyCalculator{}
}

// Factor computes the difficulty multiplier for one route aggregate,
// clamped to [0.8, 2.0]. Routes with fewer than MinSampleSize completions
// return exactly 1.0.
func (c *DifficultyCalculator) Factor(stat domain.RouteStat) float64 {
	if stat.SuccessCount < MinSampleSize {
		return 1.0
	}

	factor := rarityFactor(stat.SuccessCount) *
		effortFactor(stat.AvgAttempts) *
		flashRarityFactor(stat.FlashRate)

	return clamp(factor, minFactor, maxFactor)
}

// FactorsByRoute computes the factor for every route aggregate in one pass,
// keyed by route ID. Callers cache the result; recomputing it per route
// would re-scan the validation set once per route.
func (c *DifficultyCalculator) FactorsByRoute(stats []domain.RouteStat) map[string]float64 {
	factors := make(map[string]float64, len(stats))
	for _, stat := range stats {
		factors[stat.RouteID] = c.Factor(stat)
	}
	return factors
}

// rarityFactor rewards routes few climbers manage to finish.
func rarityFactor(successCount int) float64 {
	switch {
	case successCount <= 2:
		return 1.4
	case successCount <= 5:
		return 1.3
	case successCount <= 10:
		return 1.2
	case successCount <= 20:
		return 1.1
	case successCount <= 30:
		return 1.0
	case successCount <= 50:
		return 0.95
	default:
		return 0.9
	}
}

// effortFactor rewards routes that demand many attempts on average.
func effortFactor(avgAttempts float64) float64 {
	switch {
	case avgAttempts >= 6:
		return 1.3
	case avgAttempts >= 5:
		return 1.2
	case avgAttempts >= 4:
		return 1.1
	case avgAttempts >= 3:
		return 1.0
	default:
		return 0.95
	}
}

// flashRarityFactor rewards routes almost nobody flashes.
func flashRarityFactor(flashRate float64) float64 {
	switch {
	case flashRate <= 0.05:
		return 1.2
	case flashRate <= 0.10:
		return 1.15
	case flashRate <= 0.20:
		return 1.10
	case flashRate <= 0.30:
		return 1.0
	case flashRate <= 0.50:
		return 0.95
	default:
		return 0.9
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
