// Package scoring holds the point math: the statistically-derived route
// difficulty factor and the per-completion point value. Everything here is
// pure; I/O stays in the repositories.
package scoring

import (
	"math"

	"crux-tracker/internal/domain"
)

// AttemptsMultiplier maps the number of attempts a climber needed to the
// reward/penalty curve. A flash (1 attempt) pays 30% extra; anything from 7
// attempts up pays 0.7.
func AttemptsMultiplier(attempts int) float64 {
	switch attempts {
	case 1:
		return 1.3
	case 2:
		return 1.2
	case 3:
		return 1.1
	case 4:
		return 1.0
	case 5:
		return 0.9
	case 6:
		return 0.8
	default:
		return 0.7
	}
}

// Points computes the point value of one completion from the route's base
// points, its difficulty factor and the climber's attempt count.
func Points(basePoints int, difficultyFactor float64, attempts int) int {
	return int(math.Round(float64(basePoints) * difficultyFactor * AttemptsMultiplier(attempts)))
}

// GradePoints is Points looked up from the grade table. Unknown grades carry
// zero base points and therefore score zero.
func GradePoints(grade domain.Grade, difficultyFactor float64, attempts int) int {
	return Points(domain.BasePoints(grade), difficultyFactor, attempts)
}
