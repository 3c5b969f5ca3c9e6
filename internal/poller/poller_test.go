package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"portal-tournaments/internal/config"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) Refresh(ctx context.Context) error {
	r.calls.Add(1)
	return r.err
}

func TestPoller_RefreshesOnInterval(t *testing.T) {
	clock := clockwork.NewFakeClock()
	refresher := &countingRefresher{}

	p, err := New(refresher, clock, &config.Config{PollInterval: 30 * time.Second}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, p.Start())
	t.Cleanup(func() { _ = p.Stop() })

	require.Eventually(t, func() bool {
		return refresher.calls.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond, "runs immediately on start")

	require.Eventually(t, func() bool {
		clock.Advance(30 * time.Second)
		return refresher.calls.Load() >= 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPoller_KeepsRunningAfterFailure(t *testing.T) {
	clock := clockwork.NewFakeClock()
	refresher := &countingRefresher{err: errors.New("backend unavailable")}

	p, err := New(refresher, clock, &config.Config{PollInterval: time.Minute}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, p.Start())

	require.Eventually(t, func() bool {
		clock.Advance(time.Minute)
		return refresher.calls.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, p.Stop())
	stopped := refresher.calls.Load()

	clock.Advance(time.Hour)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, refresher.calls.Load())
}
