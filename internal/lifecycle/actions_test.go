package lifecycle_test

import (
	"errors"
	"testing"
	"time"

	"portal-tournaments/internal/domain"
	"portal-tournaments/internal/lifecycle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registered() *domain.Participant {
	return &domain.Participant{
		SteamID:      "76561198000000001",
		RegisteredAt: time.Date(2025, 10, 29, 10, 0, 0, 0, time.UTC),
	}
}

func confirmed() *domain.Participant {
	p := registered()
	at := time.Date(2025, 10, 29, 17, 10, 0, 0, time.UTC)
	p.ConfirmedAt = &at
	return p
}

func TestResolveActions(t *testing.T) {
	tests := []struct {
		name        string
		phase       lifecycle.Phase
		participant *domain.Participant
		isFull      bool
		want        lifecycle.ActionSet
	}{
		{"open with seats", lifecycle.PhaseOpen, nil, false, lifecycle.ActionsCanRegister},
		{"open and full", lifecycle.PhaseOpen, nil, true, lifecycle.ActionsFull},
		{"confirmation, not registered", lifecycle.PhaseConfirmation, nil, false, lifecycle.ActionsRegistrationClosed},
		{"confirmation, not registered, full", lifecycle.PhaseConfirmation, nil, true, lifecycle.ActionsRegistrationClosed},
		{"started, not registered", lifecycle.PhaseStarted, nil, false, lifecycle.ActionsRegistrationClosed},
		{"open, registered", lifecycle.PhaseOpen, registered(), false, lifecycle.ActionsRegisteredAwaitingWindow},
		{"open, registered, full", lifecycle.PhaseOpen, registered(), true, lifecycle.ActionsRegisteredAwaitingWindow},
		{"confirmation, unconfirmed", lifecycle.PhaseConfirmation, registered(), false, lifecycle.ActionsMustConfirm},
		{"confirmation, confirmed", lifecycle.PhaseConfirmation, confirmed(), false, lifecycle.ActionsConfirmed},
		{"started, confirmed", lifecycle.PhaseStarted, confirmed(), false, lifecycle.ActionsConfirmed},
		{"started, unconfirmed", lifecycle.PhaseStarted, registered(), false, lifecycle.ActionsLocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lifecycle.ResolveActions(tt.phase, tt.participant, tt.isFull))
		})
	}
}

func TestResolveActions_Properties(t *testing.T) {
	phases := []lifecycle.Phase{lifecycle.PhaseOpen, lifecycle.PhaseConfirmation, lifecycle.PhaseStarted}
	participants := []*domain.Participant{nil, registered(), confirmed()}

	for _, phase := range phases {
		for _, p := range participants {
			got := lifecycle.ResolveActions(phase, p, true)
			assert.NotEqual(t, lifecycle.ActionsCanRegister, got, "full tournaments never allow registration")

			for _, isFull := range []bool{true, false} {
				got = lifecycle.ResolveActions(phase, p, isFull)
				if p != nil && p.IsConfirmed() {
					assert.NotEqual(t, lifecycle.ActionsMustConfirm, got, "confirmed participants never need to confirm")
				}
			}
		}
	}
}

func TestCanUnregister(t *testing.T) {
	assert.False(t, lifecycle.CanUnregister(lifecycle.PhaseOpen, nil))
	assert.True(t, lifecycle.CanUnregister(lifecycle.PhaseOpen, registered()))
	assert.True(t, lifecycle.CanUnregister(lifecycle.PhaseConfirmation, registered()))
	assert.True(t, lifecycle.CanUnregister(lifecycle.PhaseConfirmation, confirmed()))
	assert.False(t, lifecycle.CanUnregister(lifecycle.PhaseStarted, confirmed()))
	assert.False(t, lifecycle.CanUnregister(lifecycle.PhaseStarted, registered()))
}

func TestAuthorize(t *testing.T) {
	engine := lifecycle.NewEngine(nil)
	tour := domain.Tournament{ID: 1, StartDate: start, MaxParticipants: 16, ParticipantsCount: 3}

	open := start.Add(-2 * time.Hour)
	window := start.Add(-15 * time.Minute)
	after := start.Add(time.Second)

	tests := []struct {
		name        string
		action      lifecycle.Action
		participant *domain.Participant
		now         time.Time
		wantErr     bool
	}{
		{"register while open", domain.ActionRegister, nil, open, false},
		{"register during confirmation", domain.ActionRegister, nil, window, true},
		{"register twice", domain.ActionRegister, registered(), open, true},
		{"unregister while open", domain.ActionUnregister, registered(), open, false},
		{"unregister after confirming", domain.ActionUnregister, confirmed(), window, false},
		{"unregister after start", domain.ActionUnregister, confirmed(), after, true},
		{"unregister when not registered", domain.ActionUnregister, nil, open, true},
		{"confirm in window", domain.ActionConfirm, registered(), window, false},
		{"confirm before window", domain.ActionConfirm, registered(), open, true},
		{"confirm twice", domain.ActionConfirm, confirmed(), window, true},
		{"confirm after start", domain.ActionConfirm, registered(), after, true},
		{"confirm when not registered", domain.ActionConfirm, nil, window, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := engine.Evaluate(tour, tt.participant, tt.now)
			err := lifecycle.Authorize(tt.action, ev)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, lifecycle.ErrInvalidTransition))

			var terr *lifecycle.TransitionError
			require.True(t, errors.As(err, &terr))
			assert.Equal(t, tt.action, terr.Action)
			assert.Equal(t, ev.Actions, terr.Actions)
			assert.NotEmpty(t, terr.Reason)
		})
	}
}

func TestAuthorize_FullTournament(t *testing.T) {
	engine := lifecycle.NewEngine(nil)
	tour := domain.Tournament{ID: 1, StartDate: start, MaxParticipants: 2, ParticipantsCount: 2}

	err := lifecycle.Authorize(domain.ActionRegister, engine.Evaluate(tour, nil, start.Add(-3*time.Hour)))
	require.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
	assert.Contains(t, err.Error(), "tournament is full")
}
