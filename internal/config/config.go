package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"portal-tournaments/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	TournamentsURL string
	DBPath         string
	ServerPort     string
	LogLevel       string
	PollInterval   time.Duration
	SnapshotTTL    time.Duration
	DisplayZone    *time.Location
	AllowedOrigins []string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}
	return FromEnv(logger)
}

// FromEnv builds the config from the process environment only.
func FromEnv(logger zerolog.Logger) (*Config, error) {
	cfg := &Config{
		TournamentsURL: getEnv("TOURNAMENTS_FUNCTION_URL", ""),
		DBPath:         getEnv("DB_PATH", "portal.db"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
	}

	if cfg.TournamentsURL == "" {
		return nil, fmt.Errorf("TOURNAMENTS_FUNCTION_URL is required")
	}

	var err error
	if cfg.PollInterval, err = getDuration("POLL_INTERVAL", constants.DefaultPollInterval); err != nil {
		return nil, err
	}
	if cfg.PollInterval < constants.MinPollInterval {
		return nil, fmt.Errorf("POLL_INTERVAL must be at least %s", constants.MinPollInterval)
	}
	if cfg.SnapshotTTL, err = getDuration("SNAPSHOT_TTL", constants.DefaultSnapshotTTL); err != nil {
		return nil, err
	}

	zone := getEnv("DISPLAY_TIMEZONE", "Europe/Moscow")
	if cfg.DisplayZone, err = time.LoadLocation(zone); err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", zone, err)
	}

	logger.Info().
		Str("tournaments_url", cfg.TournamentsURL).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Dur("poll_interval", cfg.PollInterval).
		Dur("snapshot_ttl", cfg.SnapshotTTL).
		Str("display_zone", cfg.DisplayZone.String()).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
