// Package lifecycle derives a tournament's registration and confirmation state
// from its start time, a participant record and the current instant.
//
// Everything here is pure: no I/O and no state beyond the injected clock.
// Callers re-evaluate on every tick instead of decrementing cached countdowns.
package lifecycle

import (
	"fmt"
	"time"
)

// ConfirmationWindow is how long before the start registered participants
// must confirm. Registration closes when the window opens.
const ConfirmationWindow = time.Hour

type Phase string

const (
	PhaseOpen         Phase = "OPEN"
	PhaseConfirmation Phase = "CONFIRMATION"
	PhaseStarted      Phase = "STARTED"
)

func (p Phase) String() string {
	return string(p)
}

type PhaseWindow struct {
	Phase Phase
	// Remaining is nil once the tournament started and strictly positive otherwise.
	Remaining *time.Duration
}

// ComputePhase partitions the timeline at start-1h and start. Both boundaries
// are inclusive lower bounds of the later phase.
func ComputePhase(start, now time.Time) PhaseWindow {
	confirmAt := start.Add(-ConfirmationWindow)

	switch {
	case now.Before(confirmAt):
		remaining := confirmAt.Sub(now)
		return PhaseWindow{Phase: PhaseOpen, Remaining: &remaining}
	case now.Before(start):
		remaining := start.Sub(now)
		return PhaseWindow{Phase: PhaseConfirmation, Remaining: &remaining}
	default:
		return PhaseWindow{Phase: PhaseStarted}
	}
}

type Countdown struct {
	Days    int64 `json:"days" yaml:"days"`
	Hours   int64 `json:"hours" yaml:"hours"`
	Minutes int64 `json:"minutes" yaml:"minutes"`
	Seconds int64 `json:"seconds" yaml:"seconds"`
}

// Decompose splits d into whole days, hours, minutes and seconds using floor
// division at every unit. Sub-second precision is dropped, never rounded.
func Decompose(d time.Duration) Countdown {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)

	return Countdown{
		Days:    total / 86400,
		Hours:   total % 86400 / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}
}

// UntilStart is the countdown to the tournament start, nil once it started.
func UntilStart(start, now time.Time) *Countdown {
	if !now.Before(start) {
		return nil
	}
	c := Decompose(start.Sub(now))
	return &c
}

func (c Countdown) Duration() time.Duration {
	return time.Duration(c.Days)*24*time.Hour +
		time.Duration(c.Hours)*time.Hour +
		time.Duration(c.Minutes)*time.Minute +
		time.Duration(c.Seconds)*time.Second
}

// String renders HH:MM:SS, prefixed with the day count when there is one.
func (c Countdown) String() string {
	hms := fmt.Sprintf("%02d:%02d:%02d", c.Hours, c.Minutes, c.Seconds)
	if c.Days > 0 {
		return fmt.Sprintf("%dd %s", c.Days, hms)
	}
	return hms
}

// Clock renders MM:SS with minutes not wrapped at the hour.
func (c Countdown) Clock() string {
	minutes := c.Days*24*60 + c.Hours*60 + c.Minutes
	return fmt.Sprintf("%02d:%02d", minutes, c.Seconds)
}
