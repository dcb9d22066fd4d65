package fx

import (
	"crux-tracker/internal/config"
	"crux-tracker/internal/database"
	"crux-tracker/internal/logger"
	"crux-tracker/internal/metrics"
	"crux-tracker/internal/ranking"
	"crux-tracker/internal/repository"
	"crux-tracker/internal/scoring"
	"crux-tracker/internal/server"
	"crux-tracker/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(metrics.New),
	// repos
	fx.Provide(repository.NewValidationRepository),
	fx.Provide(repository.NewUserRepository),
	fx.Provide(repository.NewFriendshipRepository),
	fx.Provide(func(r *repository.ValidationRepository) service.ValidationSource { return r }),
	fx.Provide(func(r *repository.ValidationRepository) service.ValidationStore { return r }),
	fx.Provide(func(r *repository.FriendshipRepository) service.FriendIdsProvider { return r }),
	fx.Provide(func(r *repository.UserRepository) service.UserDirectory { return r }),
	// scoring core
	fx.Provide(scoring.NewDifficultyCalculator),
	fx.Provide(ranking.NewEngine),
	fx.Provide(service.NewCaches),
	// svc
	fx.Provide(service.NewPointsService),
	fx.Provide(func(p *service.PointsService) service.Invalidator { return p }),
	fx.Provide(service.NewLeaderboardService),
	fx.Provide(service.NewStatsService),
	fx.Provide(service.NewValidationService),
	// server
	fx.Provide(server.New),
)
