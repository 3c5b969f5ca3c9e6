package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("TOURNAMENTS_FUNCTION_URL", "https://functions.example.com/tournaments")
	t.Setenv("DB_PATH", "")
	t.Setenv("POLL_INTERVAL", "")
	t.Setenv("SNAPSHOT_TTL", "")
	t.Setenv("DISPLAY_TIMEZONE", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := FromEnv(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "portal.db", cfg.DBPath)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, time.Minute, cfg.SnapshotTTL)
	assert.Equal(t, "Europe/Moscow", cfg.DisplayZone.String())
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("TOURNAMENTS_FUNCTION_URL", "http://backend.local")
	t.Setenv("POLL_INTERVAL", "1m")
	t.Setenv("SNAPSHOT_TTL", "90s")
	t.Setenv("DISPLAY_TIMEZONE", "UTC")
	t.Setenv("ALLOWED_ORIGINS", "https://portal.example.com, https://admin.example.com,")

	cfg, err := FromEnv(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.Equal(t, 90*time.Second, cfg.SnapshotTTL)
	assert.Equal(t, time.UTC, cfg.DisplayZone)
	assert.Equal(t, []string{"https://portal.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "missing backend url",
			env:  map[string]string{"TOURNAMENTS_FUNCTION_URL": ""},
			want: "TOURNAMENTS_FUNCTION_URL is required",
		},
		{
			name: "bad poll interval",
			env:  map[string]string{"TOURNAMENTS_FUNCTION_URL": "http://x", "POLL_INTERVAL": "often"},
			want: "invalid POLL_INTERVAL",
		},
		{
			name: "poll interval too short",
			env:  map[string]string{"TOURNAMENTS_FUNCTION_URL": "http://x", "POLL_INTERVAL": "1s"},
			want: "POLL_INTERVAL must be at least",
		},
		{
			name: "unknown zone",
			env:  map[string]string{"TOURNAMENTS_FUNCTION_URL": "http://x", "DISPLAY_TIMEZONE": "Mars/Olympus"},
			want: "invalid DISPLAY_TIMEZONE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("POLL_INTERVAL", "")
			t.Setenv("DISPLAY_TIMEZONE", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := FromEnv(zerolog.Nop())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
