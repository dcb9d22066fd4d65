package service

import (
	"context"
	"time"

	"crux-tracker/internal/domain"
	"crux-tracker/internal/repository"
)

// ValidationSource supplies completion snapshots to the scoring engine. The
// engine itself never touches storage.
type ValidationSource interface {
	RouteStatsSince(ctx context.Context, since time.Time) ([]domain.RouteStat, error)
	ListCompletedSince(ctx context.Context, since time.Time, userIDs []string) ([]domain.CompletionRow, error)
	ListUserCompletedSince(ctx context.Context, userID string, since time.Time) ([]repository.UserCompletionDetail, error)
}

// ValidationStore is the mutation surface for validations.
type ValidationStore interface {
	GetByUserRoute(ctx context.Context, userID, routeID string) (*domain.Validation, error)
	Create(ctx context.Context, v *domain.Validation) error
	Update(ctx context.Context, v *domain.Validation) error
	Delete(ctx context.Context, userID, routeID string) error
}

// FriendIdsProvider resolves the friend group used for the friends-scoped
// leaderboard. Injected at construction so the leaderboard never reaches
// into the friendship module directly.
type FriendIdsProvider interface {
	FriendIDs(ctx context.Context, userID string) ([]string, error)
}

// UserDirectory resolves display name and avatar for leaderboard entries.
type UserDirectory interface {
	DisplayByIDs(ctx context.Context, userIDs []string) (map[string]domain.UserDisplay, error)
}

// Invalidator is implemented by the points service; every validation
// mutation must call it before the next read is guaranteed fresh.
type Invalidator interface {
	InvalidateDerivedCaches()
}
