package domain

import (
	"time"
)

type TournamentStatus string

const (
	StatusUpcoming  TournamentStatus = "upcoming"
	StatusOngoing   TournamentStatus = "ongoing"
	StatusCompleted TournamentStatus = "completed"
)

type Tournament struct {
	ID                int64
	Name              string
	Description       string
	PrizePool         int64
	MaxParticipants   int
	ParticipantsCount int
	Status            TournamentStatus
	TournamentType    string
	Game              string
	StartDate         time.Time

	// set only on rows fetched for a specific steam id
	IsRegistered bool
	ConfirmedAt  *time.Time

	FetchedAt time.Time
}

// IsFull is advisory: the backend decides whether a registration fits.
func (t Tournament) IsFull() bool {
	return t.ParticipantsCount >= t.MaxParticipants
}

// CallerParticipant builds the caller's registration from a user-scoped list row.
// List rows carry no registration time, so RegisteredAt stays zero.
func (t Tournament) CallerParticipant(steamID string) *Participant {
	if !t.IsRegistered {
		return nil
	}
	return &Participant{
		SteamID:     steamID,
		ConfirmedAt: t.ConfirmedAt,
	}
}

type Participant struct {
	SteamID      string
	PersonaName  string
	AvatarURL    string
	RegisteredAt time.Time
	ConfirmedAt  *time.Time
	IsAdmin      bool
	IsModerator  bool
}

func (p Participant) IsConfirmed() bool {
	return p.ConfirmedAt != nil
}

type BracketMatch struct {
	ID             int64
	RoundNumber    int
	MatchNumber    int
	Player1SteamID string
	Player2SteamID string
	Player1Name    string
	Player2Name    string
	WinnerSteamID  string
	Player1Score   int
	Player2Score   int
	Status         string
}

type TournamentDetail struct {
	Tournament
	Participants []Participant
	Bracket      []BracketMatch
}

func (d TournamentDetail) Participant(steamID string) *Participant {
	if steamID == "" {
		return nil
	}
	for i := range d.Participants {
		if d.Participants[i].SteamID == steamID {
			p := d.Participants[i]
			return &p
		}
	}
	return nil
}

type Identity struct {
	SteamID     string
	PersonaName string
	AvatarURL   string
}

type ActionKind string

const (
	ActionRegister   ActionKind = "register"
	ActionUnregister ActionKind = "unregister"
	ActionConfirm    ActionKind = "confirm"
)

// ActionLogEntry records a participant action forwarded to the backend.
type ActionLogEntry struct {
	ID           string // nanoid
	TournamentID int64
	SteamID      string
	Action       ActionKind
	Phase        string
	Accepted     bool
	Reason       string
	CreatedAt    time.Time
}
