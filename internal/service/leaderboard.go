package service

import (
	"context"
	"errors"
	"math"
	"time"

	"crux-tracker/internal/constants"
	"crux-tracker/internal/domain"
	"crux-tracker/internal/metrics"
	"crux-tracker/internal/ranking"
	"crux-tracker/internal/scoring"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Scope selects the leaderboard cohort.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeFriends Scope = "friends"
)

// ErrUserNotRanked means the user has no qualifying completion in the
// window. Not a failure; callers render it as "not ranked".
var ErrUserNotRanked = errors.New("user not ranked")

type LeaderboardService struct {
	source  ValidationSource
	friends FriendIdsProvider
	users   UserDirectory
	points  *PointsService
	engine  *ranking.Engine
	caches  *Caches
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewLeaderboardService(
	source ValidationSource,
	friends FriendIdsProvider,
	users UserDirectory,
	points *PointsService,
	engine *ranking.Engine,
	caches *Caches,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *LeaderboardService {
	return &LeaderboardService{
		source:  source,
		friends: friends,
		users:   users,
		points:  points,
		engine:  engine,
		caches:  caches,
		metrics: m,
		logger:  logger,
	}
}

// GetLeaderboard returns one ranked page for the requested scope. The
// friends scope ranks the requesting user's friend group (caller included)
// and is never cached since it is user-specific.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, scope Scope, page, limit int, requestingUserID string) (domain.Leaderboard, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = constants.DefaultPageLimit
	}
	if limit > constants.MaxPageLimit {
		limit = constants.MaxPageLimit
	}

	cacheKey := leaderboardKey(scope, page)
	if scope != ScopeFriends {
		if board, ok := s.caches.Boards.Get(cacheKey); ok {
			return board, nil
		}
	}

	var cohort []string
	if scope == ScopeFriends {
		if requestingUserID == "" {
			return ranking.Empty(page), nil
		}
		friendIDs, err := s.friends.FriendIDs(ctx, requestingUserID)
		if err != nil {
			return domain.Leaderboard{}, err
		}
		cohort = append(friendIDs, requestingUserID)
		if len(cohort) == 1 {
			return ranking.Empty(page), nil
		}
	}

	start := time.Now()
	entries, err := s.rankCohort(ctx, cohort)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	s.metrics.LeaderboardDuration.Observe(time.Since(start).Seconds())

	board := ranking.Paginate(entries, page, limit)
	if err := s.attachDisplay(ctx, board.Entries); err != nil {
		return domain.Leaderboard{}, err
	}

	if scope != ScopeFriends {
		s.caches.Boards.Set(cacheKey, board, constants.LeaderboardCacheTTL)
	}

	s.logger.Info().
		Str("scope", string(scope)).
		Int("page", page).
		Int("total_users", board.Pagination.TotalUsers).
		Msg("leaderboard computed")
	return board, nil
}

// GetUserRank locates one user's entry in the full-cohort ranking. Returns
// ErrUserNotRanked when the user has no qualifying completion.
func (s *LeaderboardService) GetUserRank(ctx context.Context, userID string) (domain.LeaderboardEntry, error) {
	return s.caches.Ranks.GetOrSet(userRankKey(userID), constants.UserRankCacheTTL, func() (domain.LeaderboardEntry, error) {
		entries, err := s.rankCohort(ctx, nil)
		if err != nil {
			return domain.LeaderboardEntry{}, err
		}

		page := ranking.Paginate(entries, 1, constants.RankLookupLimit)
		for _, entry := range page.Entries {
			if entry.UserID == userID {
				found := []domain.LeaderboardEntry{entry}
				if err := s.attachDisplay(ctx, found); err != nil {
					return domain.LeaderboardEntry{}, err
				}
				return found[0], nil
			}
		}
		return domain.LeaderboardEntry{}, ErrUserNotRanked
	})
}

// GetUserValidationBreakdown returns the per-completion audit for one user:
// base points, difficulty factor, attempts multiplier and the resulting
// point value, summed into a total. Uses the exact same point computation
// as the ranking path so the totals reconcile.
func (s *LeaderboardService) GetUserValidationBreakdown(ctx context.Context, userID string) (domain.ValidationBreakdown, error) {
	factors, err := s.points.RouteDifficultyFactors(ctx)
	if err != nil {
		return domain.ValidationBreakdown{}, err
	}

	details, err := s.source.ListUserCompletedSince(ctx, userID, s.points.WindowStart())
	if err != nil {
		return domain.ValidationBreakdown{}, err
	}

	breakdown := domain.ValidationBreakdown{
		Validations: make([]domain.ValidationBreakdownRow, 0, len(details)),
	}
	for _, d := range details {
		factor, ok := factors[d.RouteID]
		if !ok {
			factor = 1.0
		}
		pts := scoring.GradePoints(d.Grade, factor, d.Attempts)
		breakdown.TotalPoints += pts
		breakdown.Validations = append(breakdown.Validations, domain.ValidationBreakdownRow{
			RouteID:            d.RouteID,
			RouteName:          d.RouteName,
			Grade:              d.Grade,
			Sector:             d.Sector,
			Attempts:           d.Attempts,
			IsFlashed:          d.IsFlashed,
			ValidatedAt:        d.ValidatedAt,
			BasePoints:         domain.BasePoints(d.Grade),
			DifficultyFactor:   math.Round(factor*100) / 100,
			AttemptsMultiplier: scoring.AttemptsMultiplier(d.Attempts),
			Points:             pts,
		})
	}
	return breakdown, nil
}

// rankCohort fetches the factor map and the completion rows concurrently,
// then runs the ranking engine. A nil cohort means everyone.
func (s *LeaderboardService) rankCohort(ctx context.Context, cohort []string) ([]domain.LeaderboardEntry, error) {
	var (
		factors map[string]float64
		rows    []domain.CompletionRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		factors, err = s.points.RouteDifficultyFactors(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = s.source.ListCompletedSince(gctx, s.points.WindowStart(), cohort)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s.engine.Rank(rows, factors), nil
}

func (s *LeaderboardService) attachDisplay(ctx context.Context, entries []domain.LeaderboardEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.UserID
	}

	displays, err := s.users.DisplayByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range entries {
		if d, ok := displays[entries[i].UserID]; ok {
			entries[i].Name = d.Name
			entries[i].Avatar = d.Avatar
		}
	}
	return nil
}
