package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func runEvaluate(t *testing.T, args ...string) tournamentReport {
	t.Helper()

	var buf bytes.Buffer
	argv := append([]string{"portalctl", "evaluate", "--zone", "UTC", "--start", "2025-10-29T18:00:00Z"}, args...)
	require.NoError(t, newApp(&buf).Run(argv))

	var out report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out.Tournaments, 1)
	return out.Tournaments[0]
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		phase     string
		actions   string
		countdown string
	}{
		{
			name:      "open with room",
			args:      []string{"--now", "2025-10-28T15:30:00Z", "--count", "3"},
			phase:     "OPEN",
			actions:   "CAN_REGISTER",
			countdown: "1d 01:30:00",
		},
		{
			name:      "open and full",
			args:      []string{"--now", "2025-10-29T12:00:00Z", "--count", "16"},
			phase:     "OPEN",
			actions:   "FULL",
			countdown: "05:00:00",
		},
		{
			name:      "registered inside the window",
			args:      []string{"--now", "2025-10-29T17:15:30Z", "--registered"},
			phase:     "CONFIRMATION",
			actions:   "MUST_CONFIRM",
			countdown: "00:44:30",
		},
		{
			name:    "confirmed before start",
			args:    []string{"--now", "2025-10-29T17:30:00Z", "--confirmed-at", "2025-10-29T17:05:00Z"},
			phase:   "CONFIRMATION",
			actions: "CONFIRMED",
		},
		{
			name:    "unconfirmed after start",
			args:    []string{"--now", "2025-10-29T18:00:00Z", "--registered"},
			phase:   "STARTED",
			actions: "LOCKED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runEvaluate(t, tt.args...)
			assert.Equal(t, tt.phase, got.Phase)
			assert.Equal(t, tt.actions, got.Actions)
			if tt.countdown != "" {
				assert.Equal(t, tt.countdown, got.Countdown)
			}
		})
	}
}

func TestEvaluate_Report(t *testing.T) {
	got := runEvaluate(t, "--now", "2025-10-29T17:15:00Z", "--registered", "--count", "5", "--max", "8")

	assert.Equal(t, "2025-10-29T18:00:00Z", got.Start)
	assert.Equal(t, "29.10.2025 18:00 UTC", got.StartLocal)
	assert.Equal(t, "5/8", got.Participants)
	assert.True(t, got.Registered)
	assert.False(t, got.Confirmed)
	assert.True(t, got.CanUnregister)
	require.NotNil(t, got.UntilStart)
	assert.EqualValues(t, 45, got.UntilStart.Minutes)
}

func TestEvaluate_InvalidStart(t *testing.T) {
	var buf bytes.Buffer
	err := newApp(&buf).Run([]string{"portalctl", "evaluate", "--start", "tomorrow"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--start")
}
