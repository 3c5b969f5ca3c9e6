package lifecycle

import (
	"time"

	"portal-tournaments/internal/domain"

	"github.com/jonboulle/clockwork"
)

type Evaluation struct {
	Phase Phase
	// Remaining is the time left in the current phase: until the confirmation
	// window opens while OPEN, until the start while CONFIRMATION.
	Remaining     *time.Duration
	Display       *Countdown
	UntilStart    *Countdown
	Actions       ActionSet
	CanUnregister bool
	IsFull        bool
	EvaluatedAt   time.Time
}

// Engine is the single entry point list, detail and admin views use to
// derive phase, countdowns and allowed actions. Safe for concurrent use.
type Engine struct {
	clock clockwork.Clock
}

func NewEngine(clock clockwork.Clock) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{clock: clock}
}

func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

func (e *Engine) Evaluate(t domain.Tournament, participant *domain.Participant, now time.Time) Evaluation {
	window := ComputePhase(t.StartDate, now)
	isFull := t.IsFull()

	ev := Evaluation{
		Phase:         window.Phase,
		Remaining:     window.Remaining,
		UntilStart:    UntilStart(t.StartDate, now),
		Actions:       ResolveActions(window.Phase, participant, isFull),
		CanUnregister: CanUnregister(window.Phase, participant),
		IsFull:        isFull,
		EvaluatedAt:   now,
	}
	if window.Remaining != nil {
		display := Decompose(*window.Remaining)
		ev.Display = &display
	}
	return ev
}

func (e *Engine) EvaluateNow(t domain.Tournament, participant *domain.Participant) Evaluation {
	return e.Evaluate(t, participant, e.clock.Now())
}

type Roster struct {
	Registered int
	Confirmed  int
	// Awaiting counts unconfirmed participants while confirmation is still possible.
	Awaiting int
	// Forfeited lists participants that were not confirmed when the tournament started.
	Forfeited []string
}

// SummarizeRoster reports confirmation progress for the admin view. It never
// acts on forfeits; removing participants is up to the backend.
func SummarizeRoster(t domain.Tournament, participants []domain.Participant, now time.Time) Roster {
	phase := ComputePhase(t.StartDate, now).Phase

	roster := Roster{Registered: len(participants)}
	for i := range participants {
		p := &participants[i]
		switch ResolveActions(phase, p, false) {
		case ActionsConfirmed:
			roster.Confirmed++
		case ActionsLocked:
			roster.Forfeited = append(roster.Forfeited, p.SteamID)
		default:
			roster.Awaiting++
		}
	}
	return roster
}
