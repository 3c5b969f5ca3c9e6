package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"portal-tournaments/internal/api"
	"portal-tournaments/internal/config"
	"portal-tournaments/internal/domain"
	"portal-tournaments/internal/lifecycle"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

const (
	urlFlag         = "url"
	steamIDFlag     = "steam-id"
	atFlag          = "at"
	zoneFlag        = "zone"
	startFlag       = "start"
	nowFlag         = "now"
	registeredFlag  = "registered"
	confirmedAtFlag = "confirmed-at"
	countFlag       = "count"
	maxFlag         = "max"
)

var version = "v0.1.0-dev"

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

	return &cli.App{
		Name:    "portalctl",
		Usage:   "Inspect tournament phases and allowed actions",
		Version: version,
		Writer:  out,
		Before: func(cCtx *cli.Context) error {
			_ = godotenv.Load()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "tournaments",
				Usage: "Fetch tournaments from the backend and evaluate them",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     urlFlag,
						Usage:    "tournaments function URL",
						EnvVars:  []string{"TOURNAMENTS_FUNCTION_URL"},
						Required: true,
					},
					&cli.StringFlag{
						Name:  steamIDFlag,
						Usage: "evaluate for this participant",
					},
					&cli.StringFlag{
						Name:  atFlag,
						Usage: "evaluate at this instant instead of now",
					},
					zoneFlagDef(),
				},
				Action: func(cCtx *cli.Context) error {
					loc, err := time.LoadLocation(cCtx.String(zoneFlag))
					if err != nil {
						return fmt.Errorf("invalid zone: %w", err)
					}
					clock, err := clockAt(cCtx.String(atFlag))
					if err != nil {
						return err
					}

					client := api.NewBackendClient(&config.Config{TournamentsURL: cCtx.String(urlFlag)}, logger)
					steamID := cCtx.String(steamIDFlag)
					list, err := client.ListTournaments(cCtx.Context, steamID)
					if err != nil {
						return fmt.Errorf("failed to list tournaments: %w", err)
					}

					engine := lifecycle.NewEngine(clock)
					now := engine.Now()
					out := report{EvaluatedAt: now.UTC().Format(time.RFC3339)}
					for _, t := range list {
						var participant *domain.Participant
						if steamID != "" {
							participant = t.CallerParticipant(steamID)
						}
						ev := engine.Evaluate(t, participant, now)
						out.Tournaments = append(out.Tournaments, newTournamentReport(t, participant, ev, loc))
					}
					return writeYAML(cCtx.App.Writer, out)
				},
			},
			{
				Name:  "evaluate",
				Usage: "Evaluate a tournament described by flags, without the backend",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     startFlag,
						Usage:    "tournament start (RFC3339)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  nowFlag,
						Usage: "evaluation instant, defaults to now",
					},
					&cli.BoolFlag{
						Name:  registeredFlag,
						Usage: "the caller is registered",
					},
					&cli.StringFlag{
						Name:  confirmedAtFlag,
						Usage: "when the caller confirmed, implies --registered",
					},
					&cli.IntFlag{
						Name:  countFlag,
						Usage: "registered participants",
					},
					&cli.IntFlag{
						Name:  maxFlag,
						Usage: "tournament capacity",
						Value: 16,
					},
					zoneFlagDef(),
				},
				Action: func(cCtx *cli.Context) error {
					start, err := api.ParseTimestamp(cCtx.String(startFlag))
					if err != nil {
						return fmt.Errorf("invalid --%s: %w", startFlag, err)
					}
					loc, err := time.LoadLocation(cCtx.String(zoneFlag))
					if err != nil {
						return fmt.Errorf("invalid zone: %w", err)
					}
					clock, err := clockAt(cCtx.String(nowFlag))
					if err != nil {
						return err
					}

					t := domain.Tournament{
						StartDate:         start,
						ParticipantsCount: cCtx.Int(countFlag),
						MaxParticipants:   cCtx.Int(maxFlag),
					}

					var participant *domain.Participant
					if raw := cCtx.String(confirmedAtFlag); raw != "" {
						confirmedAt, err := api.ParseTimestamp(raw)
						if err != nil {
							return fmt.Errorf("invalid --%s: %w", confirmedAtFlag, err)
						}
						participant = &domain.Participant{ConfirmedAt: &confirmedAt}
					} else if cCtx.Bool(registeredFlag) {
						participant = &domain.Participant{}
					}

					engine := lifecycle.NewEngine(clock)
					now := engine.Now()
					ev := engine.Evaluate(t, participant, now)
					return writeYAML(cCtx.App.Writer, report{
						EvaluatedAt: now.UTC().Format(time.RFC3339),
						Tournaments: []tournamentReport{newTournamentReport(t, participant, ev, loc)},
					})
				},
			},
		},
	}
}

func zoneFlagDef() cli.Flag {
	return &cli.StringFlag{
		Name:    zoneFlag,
		Usage:   "time zone for local start times",
		EnvVars: []string{"DISPLAY_TIMEZONE"},
		Value:   "Europe/Moscow",
	}
}

// clockAt freezes the clock at raw, or returns the real clock when raw is empty.
func clockAt(raw string) (clockwork.Clock, error) {
	if raw == "" {
		return clockwork.NewRealClock(), nil
	}
	at, err := api.ParseTimestamp(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q: %w", raw, err)
	}
	return clockwork.NewFakeClockAt(at), nil
}
