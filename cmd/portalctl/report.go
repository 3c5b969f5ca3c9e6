package main

import (
	"fmt"
	"io"
	"time"

	"portal-tournaments/internal/domain"
	"portal-tournaments/internal/lifecycle"

	"gopkg.in/yaml.v3"
)

type report struct {
	EvaluatedAt string             `yaml:"evaluated_at"`
	Tournaments []tournamentReport `yaml:"tournaments"`
}

type tournamentReport struct {
	ID            int64                `yaml:"id,omitempty"`
	Name          string               `yaml:"name,omitempty"`
	Start         string               `yaml:"start"`
	StartLocal    string               `yaml:"start_local"`
	Participants  string               `yaml:"participants"`
	Registered    bool                 `yaml:"registered"`
	Confirmed     bool                 `yaml:"confirmed"`
	Phase         string               `yaml:"phase"`
	Countdown     string               `yaml:"countdown,omitempty"`
	UntilStart    *lifecycle.Countdown `yaml:"until_start,omitempty"`
	Actions       string               `yaml:"actions"`
	Reason        string               `yaml:"reason"`
	CanUnregister bool                 `yaml:"can_unregister"`
}

func newTournamentReport(t domain.Tournament, participant *domain.Participant, ev lifecycle.Evaluation, zone *time.Location) tournamentReport {
	r := tournamentReport{
		ID:            t.ID,
		Name:          t.Name,
		Start:         t.StartDate.UTC().Format(time.RFC3339),
		StartLocal:    t.StartDate.In(zone).Format("02.01.2006 15:04 MST"),
		Participants:  fmt.Sprintf("%d/%d", t.ParticipantsCount, t.MaxParticipants),
		Registered:    participant != nil,
		Confirmed:     participant != nil && participant.IsConfirmed(),
		Phase:         ev.Phase.String(),
		UntilStart:    ev.UntilStart,
		Actions:       ev.Actions.String(),
		Reason:        ev.Actions.Reason(),
		CanUnregister: ev.CanUnregister,
	}
	if ev.Display != nil {
		r.Countdown = ev.Display.String()
	}
	return r
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding to yaml failed: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding to yaml failed on close: %w", err)
	}
	return nil
}
