package domain

import (
	"time"
)

type ValidationStatus string

const (
	// StatusInProgress marks a route the climber is still working.
	StatusInProgress ValidationStatus = "EN_PROJET"
	// StatusCompleted marks a successful completion; only these events score.
	StatusCompleted ValidationStatus = "VALIDE"
)

// Validation is one climber/route completion record.
type Validation struct {
	ID           string
	UserID       string
	RouteID      string
	Status       ValidationStatus
	Attempts     int
	IsFlashed    bool // completed on the first attempt
	IsFavorite   bool
	PersonalNote string
	ValidatedAt  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CompletionRow is a completed validation joined with its route's grade,
// the shape the ranking engine consumes.
type CompletionRow struct {
	UserID      string
	RouteID     string
	Grade       Grade
	Attempts    int
	IsFlashed   bool
	ValidatedAt time.Time
}

// RouteStat is the per-route aggregate over completed validations within the
// scoring window, produced by one grouped query.
type RouteStat struct {
	RouteID      string
	SuccessCount int
	AvgAttempts  float64
	FlashRate    float64 // flashed / successes, in [0, 1]
}

// UserDisplay is the name/avatar pair joined onto leaderboard entries.
type UserDisplay struct {
	UserID string
	Name   string
	Avatar string
}

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	Rank             int     `json:"rank"`
	UserID           string  `json:"userId"`
	Name             string  `json:"name"`
	Avatar           string  `json:"avatar,omitempty"`
	Points           int     `json:"points"`
	TotalValidations int     `json:"totalValidations"`
	FlashCount       int     `json:"flashCount"`
	FlashRate        float64 `json:"flashRate"`
	ValidatedGrade   Grade   `json:"validatedGrade,omitempty"`
}

// Pagination describes one leaderboard page.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalUsers  int  `json:"totalUsers"`
	HasMore     bool `json:"hasMore"`
}

// Leaderboard is one page of ranked entries.
type Leaderboard struct {
	Entries    []LeaderboardEntry `json:"users"`
	Pagination Pagination         `json:"pagination"`
}

// ValidationBreakdownRow is the audit detail for a single completion: every
// factor that went into its point value.
type ValidationBreakdownRow struct {
	RouteID            string    `json:"routeId"`
	RouteName          string    `json:"routeName"`
	Grade              Grade     `json:"difficulty"`
	Sector             string    `json:"sector"`
	Attempts           int       `json:"attempts"`
	IsFlashed          bool      `json:"isFlashed"`
	ValidatedAt        time.Time `json:"validatedAt"`
	BasePoints         int       `json:"basePoints"`
	DifficultyFactor   float64   `json:"routeDifficultyFactor"`
	AttemptsMultiplier float64   `json:"attemptsMultiplier"`
	Points             int       `json:"totalPoints"`
}

// ValidationBreakdown is the full audit response for one user.
type ValidationBreakdown struct {
	TotalPoints int                      `json:"totalPoints"`
	Validations []ValidationBreakdownRow `json:"validations"`
}

// GradeCount is a per-grade completion count, reported in GradeOrder.
type GradeCount struct {
	Grade  Grade `json:"difficulty"`
	Count  int   `json:"count"`
	Points int   `json:"points"`
}

// UserStats is the per-user summary over the scoring window.
type UserStats struct {
	UserID           string       `json:"userId"`
	TotalPoints      int          `json:"totalPoints"`
	TotalValidations int          `json:"totalValidations"`
	FlashCount       int          `json:"flashCount"`
	FlashRate        float64      `json:"flashRate"`
	ValidatedGrade   Grade        `json:"validatedGrade,omitempty"`
	ByGrade          []GradeCount `json:"validationsByDifficulty"`
}
