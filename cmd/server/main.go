package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"portal-tournaments/internal/config"
	"portal-tournaments/internal/constants"
	fxmodules "portal-tournaments/internal/fx"
	"portal-tournaments/internal/metrics"
	"portal-tournaments/internal/middleware"
	"portal-tournaments/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Provide(newHandler),
		fx.Invoke(runServer),
	).Run()
}

// newHandler routes the tournament service and /metrics. Request ids wrap
// everything, CORS wraps the routes and metrics sit next to the mux so
// they see the matched pattern.
func newHandler(
	tournamentServer *server.TournamentServer,
	cfg *config.Config,
	reg *prometheus.Registry,
	m *metrics.Metrics,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	path, handler := server.NewTournamentServiceHandler(tournamentServer, logger)
	mux.Handle(path, handler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-ID"},
	})

	return middleware.RequestID(logger)(c.Handler(middleware.Metrics(m)(mux)))
}

func runServer(lc fx.Lifecycle, handler http.Handler, cfg *config.Config, logger zerolog.Logger) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           handler,
		ReadHeaderTimeout: constants.ExternalAPITimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
			}
			logger.Info().Str("addr", srv.Addr).Msg("server listening")

			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	})
}
