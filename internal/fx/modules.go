package fx

import (
	"deadlock-tracker/internal/api"
	"deadlock-tracker/internal/assets"
	"deadlock-tracker/internal/config"
	"deadlock-tracker/internal/logger"
	"deadlock-tracker/internal/server"
	"deadlock-tracker/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideStatsService(live *service.LiveSource, mock *service.MockSource, cfg *config.Config, log zerolog.Logger) *service.StatsService {
	return service.NewStatsService(live, mock, cfg.FallbackAllowed(), log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	// api clients
	fx.Provide(api.NewDeadlockClient),
	fx.Provide(api.NewAssetsClient),
	// asset catalog
	fx.Provide(assets.NewLoader),
	// sources
	fx.Provide(service.NewLiveSource),
	fx.Provide(service.NewMockSource),
	fx.Provide(ProvideStatsService),
	// server
	fx.Provide(server.New),
)
