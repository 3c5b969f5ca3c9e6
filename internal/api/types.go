package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"portal-tournaments/internal/domain"
)

type TournamentListResponse struct {
	Tournaments []TournamentRow `json:"tournaments"`
}

type TournamentRow struct {
	ID                int64       `json:"id"`
	Name              string      `json:"name"`
	Description       string      `json:"description"`
	PrizePool         json.Number `json:"prize_pool"`
	MaxParticipants   int         `json:"max_participants"`
	Status            string      `json:"status"`
	TournamentType    string      `json:"tournament_type"`
	Game              string      `json:"game"`
	StartDate         Timestamp   `json:"start_date"`
	ParticipantsCount int         `json:"participants_count"`

	// only present on user-scoped lists
	IsRegistered bool       `json:"is_registered"`
	ConfirmedAt  *Timestamp `json:"confirmed_at"`
}

type TournamentDetailResponse struct {
	TournamentRow
	Participants []ParticipantRow `json:"participants"`
	Bracket      []BracketRow     `json:"bracket"`
}

type ParticipantRow struct {
	SteamID      string     `json:"steam_id"`
	PersonaName  string     `json:"persona_name"`
	AvatarURL    string     `json:"avatar_url"`
	RegisteredAt Timestamp  `json:"registered_at"`
	ConfirmedAt  *Timestamp `json:"confirmed_at"`
	IsAdmin      bool       `json:"is_admin"`
	IsModerator  bool       `json:"is_moderator"`
}

type BracketRow struct {
	ID             int64  `json:"id"`
	RoundNumber    int    `json:"round_number"`
	MatchNumber    int    `json:"match_number"`
	Player1SteamID string `json:"player1_steam_id"`
	Player2SteamID string `json:"player2_steam_id"`
	Player1Name    string `json:"player1_name"`
	Player2Name    string `json:"player2_name"`
	WinnerSteamID  string `json:"winner_steam_id"`
	Player1Score   int    `json:"player1_score"`
	Player2Score   int    `json:"player2_score"`
	Status         string `json:"status"`
}

type RegistrationRequest struct {
	TournamentID int64  `json:"tournament_id"`
	SteamID      string `json:"steam_id"`
	PersonaName  string `json:"persona_name"`
	AvatarURL    string `json:"avatar_url,omitempty"`
}

type RegistrationRef struct {
	TournamentID int64  `json:"tournament_id"`
	SteamID      string `json:"steam_id"`
}

type MessageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Timestamp accepts the ISO-8601 variants the backend emits. Values without
// a zone are read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

func prizePool(n json.Number) int64 {
	if n == "" {
		return 0
	}
	if v, err := n.Int64(); err == nil {
		return v
	}
	f, err := n.Float64()
	if err != nil {
		return 0
	}
	return int64(f)
}

func (r TournamentRow) toDomain(fetchedAt time.Time) domain.Tournament {
	return domain.Tournament{
		ID:                r.ID,
		Name:              r.Name,
		Description:       r.Description,
		PrizePool:         prizePool(r.PrizePool),
		MaxParticipants:   r.MaxParticipants,
		ParticipantsCount: r.ParticipantsCount,
		Status:            domain.TournamentStatus(r.Status),
		TournamentType:    r.TournamentType,
		Game:              r.Game,
		StartDate:         r.StartDate.Time,
		IsRegistered:      r.IsRegistered,
		ConfirmedAt:       r.ConfirmedAt.ptr(),
		FetchedAt:         fetchedAt,
	}
}

func (r TournamentDetailResponse) toDomain(fetchedAt time.Time) domain.TournamentDetail {
	detail := domain.TournamentDetail{
		Tournament:   r.TournamentRow.toDomain(fetchedAt),
		Participants: make([]domain.Participant, 0, len(r.Participants)),
		Bracket:      make([]domain.BracketMatch, 0, len(r.Bracket)),
	}
	for _, p := range r.Participants {
		detail.Participants = append(detail.Participants, domain.Participant{
			SteamID:      p.SteamID,
			PersonaName:  p.PersonaName,
			AvatarURL:    p.AvatarURL,
			RegisteredAt: p.RegisteredAt.Time,
			ConfirmedAt:  p.ConfirmedAt.ptr(),
			IsAdmin:      p.IsAdmin,
			IsModerator:  p.IsModerator,
		})
	}
	for _, b := range r.Bracket {
		detail.Bracket = append(detail.Bracket, domain.BracketMatch{
			ID:             b.ID,
			RoundNumber:    b.RoundNumber,
			MatchNumber:    b.MatchNumber,
			Player1SteamID: b.Player1SteamID,
			Player2SteamID: b.Player2SteamID,
			Player1Name:    b.Player1Name,
			Player2Name:    b.Player2Name,
			WinnerSteamID:  b.WinnerSteamID,
			Player1Score:   b.Player1Score,
			Player2Score:   b.Player2Score,
			Status:         b.Status,
		})
	}
	if len(detail.Participants) > detail.ParticipantsCount {
		detail.ParticipantsCount = len(detail.Participants)
	}
	return detail
}
