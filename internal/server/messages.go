package server

import (
	"time"

	"portal-tournaments/internal/domain"
	"portal-tournaments/internal/lifecycle"
	"portal-tournaments/internal/service"
)

const localLayout = "02.01.2006 15:04"

type ListTournamentsRequest struct {
	SteamID string `json:"steam_id,omitempty"`
	Refresh bool   `json:"refresh,omitempty"`
}

type ListTournamentsResponse struct {
	Tournaments []Tournament `json:"tournaments"`
}

type GetTournamentRequest struct {
	TournamentID int64  `json:"tournament_id"`
	SteamID      string `json:"steam_id,omitempty"`
	Refresh      bool   `json:"refresh,omitempty"`
}

type GetTournamentResponse struct {
	Tournament   Tournament     `json:"tournament"`
	Participants []Participant  `json:"participants"`
	Bracket      []BracketMatch `json:"bracket"`
	Caller       *Participant   `json:"caller,omitempty"`
	Roster       Roster         `json:"roster"`
	Stale        bool           `json:"stale,omitempty"`
}

type RegisterRequest struct {
	TournamentID int64  `json:"tournament_id"`
	SteamID      string `json:"steam_id"`
	PersonaName  string `json:"persona_name"`
	AvatarURL    string `json:"avatar_url,omitempty"`
}

// ParticipantRequest identifies a caller's registration for Unregister and Confirm.
type ParticipantRequest struct {
	TournamentID int64  `json:"tournament_id"`
	SteamID      string `json:"steam_id"`
}

type AdminOverviewRequest struct{}

type AdminOverviewResponse struct {
	Tournaments []AdminTournament `json:"tournaments"`
}

type Tournament struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description,omitempty"`
	PrizePool         int64      `json:"prize_pool"`
	MaxParticipants   int        `json:"max_participants"`
	ParticipantsCount int        `json:"participants_count"`
	Status            string     `json:"status"`
	TournamentType    string     `json:"tournament_type,omitempty"`
	Game              string     `json:"game,omitempty"`
	StartDate         string     `json:"start_date"`
	StartLocal        string     `json:"start_local"`
	IsRegistered      bool       `json:"is_registered"`
	ConfirmedAt       string     `json:"confirmed_at,omitempty"`
	Evaluation        Evaluation `json:"evaluation"`
}

type Evaluation struct {
	Phase            string               `json:"phase"`
	RemainingSeconds *int64               `json:"remaining_seconds,omitempty"`
	Countdown        *lifecycle.Countdown `json:"countdown,omitempty"`
	CountdownText    string               `json:"countdown_text,omitempty"`
	UntilStart       *lifecycle.Countdown `json:"until_start,omitempty"`
	Actions          string               `json:"actions"`
	Reason           string               `json:"reason"`
	CanUnregister    bool                 `json:"can_unregister"`
	IsFull           bool                 `json:"is_full"`
	EvaluatedAt      string               `json:"evaluated_at"`
}

type Participant struct {
	SteamID      string `json:"steam_id"`
	PersonaName  string `json:"persona_name"`
	AvatarURL    string `json:"avatar_url,omitempty"`
	RegisteredAt string `json:"registered_at,omitempty"`
	ConfirmedAt  string `json:"confirmed_at,omitempty"`
	IsAdmin      bool   `json:"is_admin,omitempty"`
	IsModerator  bool   `json:"is_moderator,omitempty"`
}

type BracketMatch struct {
	ID             int64  `json:"id"`
	RoundNumber    int    `json:"round_number"`
	MatchNumber    int    `json:"match_number"`
	Player1SteamID string `json:"player1_steam_id,omitempty"`
	Player2SteamID string `json:"player2_steam_id,omitempty"`
	Player1Name    string `json:"player1_name,omitempty"`
	Player2Name    string `json:"player2_name,omitempty"`
	WinnerSteamID  string `json:"winner_steam_id,omitempty"`
	Player1Score   int    `json:"player1_score"`
	Player2Score   int    `json:"player2_score"`
	Status         string `json:"status"`
}

type Roster struct {
	Registered int      `json:"registered"`
	Confirmed  int      `json:"confirmed"`
	Awaiting   int      `json:"awaiting"`
	Forfeited  []string `json:"forfeited,omitempty"`
}

type AdminTournament struct {
	Tournament    Tournament `json:"tournament"`
	Roster        Roster     `json:"roster"`
	RecentActions []Action   `json:"recent_actions"`
}

type Action struct {
	ID        string `json:"id"`
	SteamID   string `json:"steam_id"`
	Action    string `json:"action"`
	Phase     string `json:"phase"`
	Accepted  bool   `json:"accepted"`
	Reason    string `json:"reason,omitempty"`
	CreatedAt string `json:"created_at"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func toTournament(t domain.Tournament, ev lifecycle.Evaluation, zone *time.Location) Tournament {
	return Tournament{
		ID:                t.ID,
		Name:              t.Name,
		Description:       t.Description,
		PrizePool:         t.PrizePool,
		MaxParticipants:   t.MaxParticipants,
		ParticipantsCount: t.ParticipantsCount,
		Status:            string(t.Status),
		TournamentType:    t.TournamentType,
		Game:              t.Game,
		StartDate:         formatTime(t.StartDate),
		StartLocal:        t.StartDate.In(zone).Format(localLayout),
		IsRegistered:      t.IsRegistered,
		ConfirmedAt:       formatTimePtr(t.ConfirmedAt),
		Evaluation:        toEvaluation(ev),
	}
}

func toEvaluation(ev lifecycle.Evaluation) Evaluation {
	out := Evaluation{
		Phase:         ev.Phase.String(),
		Countdown:     ev.Display,
		UntilStart:    ev.UntilStart,
		Actions:       ev.Actions.String(),
		Reason:        ev.Actions.Reason(),
		CanUnregister: ev.CanUnregister,
		IsFull:        ev.IsFull,
		EvaluatedAt:   formatTime(ev.EvaluatedAt),
	}
	if ev.Remaining != nil {
		secs := int64(*ev.Remaining / time.Second)
		out.RemainingSeconds = &secs
	}
	if ev.Display != nil {
		out.CountdownText = ev.Display.String()
	}
	return out
}

func toParticipant(p domain.Participant) Participant {
	return Participant{
		SteamID:      p.SteamID,
		PersonaName:  p.PersonaName,
		AvatarURL:    p.AvatarURL,
		RegisteredAt: formatTime(p.RegisteredAt),
		ConfirmedAt:  formatTimePtr(p.ConfirmedAt),
		IsAdmin:      p.IsAdmin,
		IsModerator:  p.IsModerator,
	}
}

func toRoster(r lifecycle.Roster) Roster {
	return Roster{
		Registered: r.Registered,
		Confirmed:  r.Confirmed,
		Awaiting:   r.Awaiting,
		Forfeited:  r.Forfeited,
	}
}

func toDetail(v *service.DetailView, zone *time.Location) *GetTournamentResponse {
	resp := &GetTournamentResponse{
		Tournament:   toTournament(v.Detail.Tournament, v.Evaluation, zone),
		Participants: make([]Participant, 0, len(v.Detail.Participants)),
		Bracket:      make([]BracketMatch, 0, len(v.Detail.Bracket)),
		Roster:       toRoster(v.Roster),
		Stale:        v.Stale,
	}
	if v.Caller != nil {
		caller := toParticipant(*v.Caller)
		resp.Caller = &caller
		resp.Tournament.IsRegistered = true
		resp.Tournament.ConfirmedAt = caller.ConfirmedAt
	}
	for _, p := range v.Detail.Participants {
		resp.Participants = append(resp.Participants, toParticipant(p))
	}
	for _, m := range v.Detail.Bracket {
		resp.Bracket = append(resp.Bracket, BracketMatch{
			ID:             m.ID,
			RoundNumber:    m.RoundNumber,
			MatchNumber:    m.MatchNumber,
			Player1SteamID: m.Player1SteamID,
			Player2SteamID: m.Player2SteamID,
			Player1Name:    m.Player1Name,
			Player2Name:    m.Player2Name,
			WinnerSteamID:  m.WinnerSteamID,
			Player1Score:   m.Player1Score,
			Player2Score:   m.Player2Score,
			Status:         m.Status,
		})
	}
	return resp
}

func toAdminTournament(v service.AdminView, zone *time.Location) AdminTournament {
	out := AdminTournament{
		Tournament:    toTournament(v.Tournament, v.Evaluation, zone),
		Roster:        toRoster(v.Roster),
		RecentActions: make([]Action, 0, len(v.RecentActions)),
	}
	for _, a := range v.RecentActions {
		out.RecentActions = append(out.RecentActions, Action{
			ID:        a.ID,
			SteamID:   a.SteamID,
			Action:    string(a.Action),
			Phase:     a.Phase,
			Accepted:  a.Accepted,
			Reason:    a.Reason,
			CreatedAt: formatTime(a.CreatedAt),
		})
	}
	return out
}
