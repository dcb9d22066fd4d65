package constants

import "time"

// Scoring window: only validations from the trailing six months count.
const (
	ScoringWindowMonths = 6
)

// Cache TTLs. Policy values, tunable without affecting correctness.
const (
	RouteDifficultyCacheTTL = 5 * time.Minute
	LeaderboardCacheTTL     = 1 * time.Minute
	UserRankCacheTTL        = 1 * time.Minute
	UserStatsCacheTTL       = 2 * time.Minute
	CacheSweepInterval      = 1 * time.Minute
)

const (
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100

	// RankLookupLimit is the page size used when locating a single user's
	// rank: large enough to cover the whole cohort in one page.
	RankLookupLimit = 1_000_000
)
