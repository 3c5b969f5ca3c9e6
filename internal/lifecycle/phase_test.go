package lifecycle_test

import (
	"testing"
	"time"

	"portal-tournaments/internal/lifecycle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 10, 29, 18, 0, 0, 0, time.UTC)

func TestComputePhase(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		phase     lifecycle.Phase
		remaining time.Duration
	}{
		{
			name:      "two hours before start",
			now:       time.Date(2025, 10, 29, 16, 0, 0, 0, time.UTC),
			phase:     lifecycle.PhaseOpen,
			remaining: time.Hour,
		},
		{
			name:      "one nanosecond before the window",
			now:       start.Add(-time.Hour - time.Nanosecond),
			phase:     lifecycle.PhaseOpen,
			remaining: time.Nanosecond,
		},
		{
			name:      "window opens exactly",
			now:       time.Date(2025, 10, 29, 17, 0, 0, 0, time.UTC),
			phase:     lifecycle.PhaseConfirmation,
			remaining: time.Hour,
		},
		{
			name:      "thirty minutes before start",
			now:       time.Date(2025, 10, 29, 17, 30, 0, 0, time.UTC),
			phase:     lifecycle.PhaseConfirmation,
			remaining: 30 * time.Minute,
		},
		{
			name:      "one nanosecond before start",
			now:       start.Add(-time.Nanosecond),
			phase:     lifecycle.PhaseConfirmation,
			remaining: time.Nanosecond,
		},
		{
			name:  "start exactly",
			now:   start,
			phase: lifecycle.PhaseStarted,
		},
		{
			name:  "a day after start",
			now:   start.Add(24 * time.Hour),
			phase: lifecycle.PhaseStarted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window := lifecycle.ComputePhase(start, tt.now)
			assert.Equal(t, tt.phase, window.Phase)

			if tt.phase == lifecycle.PhaseStarted {
				assert.Nil(t, window.Remaining)
				return
			}
			require.NotNil(t, window.Remaining)
			assert.Equal(t, tt.remaining, *window.Remaining)
		})
	}
}

func TestComputePhase_Partition(t *testing.T) {
	// sweep across both boundaries in uneven steps
	from := start.Add(-3 * time.Hour)
	to := start.Add(time.Hour)
	step := 7*time.Minute + 13*time.Second

	for now := from; now.Before(to); now = now.Add(step) {
		window := lifecycle.ComputePhase(start, now)
		confirmAt := start.Add(-lifecycle.ConfirmationWindow)

		switch {
		case now.Before(confirmAt):
			require.Equal(t, lifecycle.PhaseOpen, window.Phase, now)
			require.Equal(t, confirmAt.Sub(now), *window.Remaining)
		case now.Before(start):
			require.Equal(t, lifecycle.PhaseConfirmation, window.Phase, now)
			require.Equal(t, start.Sub(now), *window.Remaining)
		default:
			require.Equal(t, lifecycle.PhaseStarted, window.Phase, now)
			require.Nil(t, window.Remaining)
		}

		if window.Remaining != nil {
			require.Positive(t, int64(*window.Remaining))
		}
	}
}

func TestDecompose(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want lifecycle.Countdown
		str  string
	}{
		{
			name: "one hour",
			in:   time.Hour,
			want: lifecycle.Countdown{Hours: 1},
			str:  "01:00:00",
		},
		{
			name: "never rounds up",
			in:   2*time.Hour - time.Millisecond,
			want: lifecycle.Countdown{Hours: 1, Minutes: 59, Seconds: 59},
			str:  "01:59:59",
		},
		{
			name: "days first",
			in:   3*24*time.Hour + 4*time.Hour + 5*time.Minute + 6*time.Second,
			want: lifecycle.Countdown{Days: 3, Hours: 4, Minutes: 5, Seconds: 6},
			str:  "3d 04:05:06",
		},
		{
			name: "sub-second",
			in:   999 * time.Millisecond,
			want: lifecycle.Countdown{},
			str:  "00:00:00",
		},
		{
			name: "negative clamps to zero",
			in:   -time.Minute,
			want: lifecycle.Countdown{},
			str:  "00:00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lifecycle.Decompose(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.str, got.String())
			assert.LessOrEqual(t, got.Duration(), max(tt.in, 0))
		})
	}
}

func TestCountdown_Clock(t *testing.T) {
	c := lifecycle.Decompose(59*time.Minute + 7*time.Second)
	assert.Equal(t, "59:07", c.Clock())

	c = lifecycle.Decompose(time.Hour)
	assert.Equal(t, "60:00", c.Clock())
}

func TestUntilStart(t *testing.T) {
	c := lifecycle.UntilStart(start, start.Add(-26*time.Hour-30*time.Second))
	require.NotNil(t, c)
	assert.Equal(t, lifecycle.Countdown{Days: 1, Hours: 2, Seconds: 30}, *c)

	assert.Nil(t, lifecycle.UntilStart(start, start))
	assert.Nil(t, lifecycle.UntilStart(start, start.Add(time.Second)))
}
