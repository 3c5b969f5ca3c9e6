package fx

import (
	"context"
	"database/sql"

	"portal-tournaments/internal/api"
	"portal-tournaments/internal/config"
	"portal-tournaments/internal/database"
	"portal-tournaments/internal/db"
	"portal-tournaments/internal/lifecycle"
	"portal-tournaments/internal/logger"
	"portal-tournaments/internal/metrics"
	"portal-tournaments/internal/poller"
	"portal-tournaments/internal/repository"
	"portal-tournaments/internal/server"
	"portal-tournaments/internal/service"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// ProvideConfig loads the config with a bootstrap logger, since the app
// logger's level comes from the config.
func ProvideConfig() (*config.Config, error) {
	return config.Load(logger.New())
}

func ProvideLogger(cfg *config.Config) zerolog.Logger {
	return logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
}

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

func ProvideClock() clockwork.Clock {
	return clockwork.NewRealClock()
}

func ProvideBackend(client *api.BackendClient) service.Backend {
	return client
}

func ProvideRefresher(svc *service.TournamentService) poller.Refresher {
	return svc
}

// CloseDatabase is registered before the hooks that use the database, so
// it runs after them on stop.
func CloseDatabase(lc fx.Lifecycle, sqlDB *sql.DB, logger zerolog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			if err := sqlDB.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			return nil
		},
	})
}

// ManagePoller ties the poller to the app lifecycle.
func ManagePoller(lc fx.Lifecycle, p *poller.Poller) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return p.Start()
		},
		OnStop: func(context.Context) error {
			return p.Stop()
		},
	})
}

var Module = fx.Options(
	fx.Provide(ProvideConfig),
	fx.Provide(ProvideLogger),
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	fx.Invoke(CloseDatabase),
	metrics.Module,
	// repos
	fx.Provide(repository.NewTournamentRepository),
	fx.Provide(repository.NewActionLogRepository),
	// api client
	fx.Provide(api.NewBackendClient),
	fx.Provide(ProvideBackend),
	// lifecycle
	fx.Provide(ProvideClock),
	fx.Provide(lifecycle.NewEngine),
	// svc
	fx.Provide(service.NewTournamentService),
	fx.Provide(ProvideRefresher),
	fx.Provide(poller.New),
	fx.Invoke(ManagePoller),
	// server
	fx.Provide(server.NewTournamentServer),
)
