package db

import (
	"time"
)

type TournamentSnapshot struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	PrizePool         int64      `json:"prize_pool"`
	MaxParticipants   int64      `json:"max_participants"`
	ParticipantsCount int64      `json:"participants_count"`
	Status            string     `json:"status"`
	TournamentType    string     `json:"tournament_type"`
	Game              string     `json:"game"`
	StartDate         time.Time  `json:"start_date"`
	FetchedAt         time.Time  `json:"fetched_at"`
	DetailFetchedAt   *time.Time `json:"detail_fetched_at"`
}

type ParticipantSnapshot struct {
	TournamentID int64      `json:"tournament_id"`
	SteamID      string     `json:"steam_id"`
	PersonaName  string     `json:"persona_name"`
	AvatarUrl    string     `json:"avatar_url"`
	RegisteredAt time.Time  `json:"registered_at"`
	ConfirmedAt  *time.Time `json:"confirmed_at"`
	IsAdmin      bool       `json:"is_admin"`
	IsModerator  bool       `json:"is_moderator"`
}

type BracketSnapshot struct {
	TournamentID   int64  `json:"tournament_id"`
	ID             int64  `json:"id"`
	RoundNumber    int64  `json:"round_number"`
	MatchNumber    int64  `json:"match_number"`
	Player1SteamID string `json:"player1_steam_id"`
	Player2SteamID string `json:"player2_steam_id"`
	Player1Name    string `json:"player1_name"`
	Player2Name    string `json:"player2_name"`
	WinnerSteamID  string `json:"winner_steam_id"`
	Player1Score   int64  `json:"player1_score"`
	Player2Score   int64  `json:"player2_score"`
	Status         string `json:"status"`
}

type ActionLog struct {
	ID           string    `json:"id"`
	TournamentID int64     `json:"tournament_id"`
	SteamID      string    `json:"steam_id"`
	Action       string    `json:"action"`
	Phase        string    `json:"phase"`
	Accepted     bool      `json:"accepted"`
	Reason       string    `json:"reason"`
	CreatedAt    time.Time `json:"created_at"`
}
