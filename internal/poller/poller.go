package poller

import (
	"context"
	"fmt"
	"time"

	"portal-tournaments/internal/config"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const jobName = "refresh-tournament-snapshots"

type Refresher interface {
	Refresh(ctx context.Context) error
}

// Poller keeps tournament snapshots warm by refreshing them on a fixed
// interval. A slow refresh skips the next tick instead of piling up.
type Poller struct {
	scheduler gocron.Scheduler
	refresher Refresher
	interval  time.Duration
	logger    zerolog.Logger
}

func New(refresher Refresher, clock clockwork.Clock, cfg *config.Config, logger zerolog.Logger) (*Poller, error) {
	logger = logger.With().Str("component", "poller").Logger()

	scheduler, err := gocron.NewScheduler(
		gocron.WithClock(clock),
		gocron.WithLogger(schedulerLogger{logger}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Poller{
		scheduler: scheduler,
		refresher: refresher,
		interval:  cfg.PollInterval,
		logger:    logger,
	}, nil
}

func (p *Poller) Start() error {
	_, err := p.scheduler.NewJob(
		gocron.DurationJob(p.interval),
		gocron.NewTask(p.run),
		gocron.WithName(jobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithEventListeners(
			gocron.AfterJobRunsWithError(func(_ uuid.UUID, name string, err error) {
				p.logger.Warn().Err(err).Str("job", name).Msg("snapshot refresh failed")
			}),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", jobName, err)
	}

	p.scheduler.Start()
	p.logger.Info().Dur("interval", p.interval).Msg("poller started")
	return nil
}

func (p *Poller) Stop() error {
	if err := p.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	p.logger.Info().Msg("poller stopped")
	return nil
}

// gocron cancels ctx on shutdown
func (p *Poller) run(ctx context.Context) error {
	return p.refresher.Refresh(ctx)
}

// schedulerLogger adapts zerolog to gocron's key/value logger.
type schedulerLogger struct {
	logger zerolog.Logger
}

func (l schedulerLogger) Debug(msg string, args ...any) {
	l.logger.Debug().Fields(args).Msg(msg)
}

func (l schedulerLogger) Error(msg string, args ...any) {
	l.logger.Error().Fields(args).Msg(msg)
}

func (l schedulerLogger) Info(msg string, args ...any) {
	l.logger.Info().Fields(args).Msg(msg)
}

func (l schedulerLogger) Warn(msg string, args ...any) {
	l.logger.Warn().Fields(args).Msg(msg)
}
