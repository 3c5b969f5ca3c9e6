package db

import (
	"context"
	"time"
)

const upsertTournament = `
INSERT INTO tournament_snapshots (
    id, name, description, prize_pool, max_participants, participants_count,
    status, tournament_type, game, start_date, fetched_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    name = excluded.name,
    description = excluded.description,
    prize_pool = excluded.prize_pool,
    max_participants = excluded.max_participants,
    participants_count = excluded.participants_count,
    status = excluded.status,
    tournament_type = excluded.tournament_type,
    game = excluded.game,
    start_date = excluded.start_date,
    fetched_at = excluded.fetched_at
`

type UpsertTournamentParams struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	PrizePool         int64     `json:"prize_pool"`
	MaxParticipants   int64     `json:"max_participants"`
	ParticipantsCount int64     `json:"participants_count"`
	Status            string    `json:"status"`
	TournamentType    string    `json:"tournament_type"`
	Game              string    `json:"game"`
	StartDate         time.Time `json:"start_date"`
	FetchedAt         time.Time `json:"fetched_at"`
}

func (q *Queries) UpsertTournament(ctx context.Context, arg UpsertTournamentParams) error {
	_, err := q.db.ExecContext(ctx, upsertTournament,
		arg.ID,
		arg.Name,
		arg.Description,
		arg.PrizePool,
		arg.MaxParticipants,
		arg.ParticipantsCount,
		arg.Status,
		arg.TournamentType,
		arg.Game,
		arg.StartDate,
		arg.FetchedAt,
	)
	return err
}

const getTournament = `
SELECT id, name, description, prize_pool, max_participants, participants_count,
       status, tournament_type, game, start_date, fetched_at, detail_fetched_at
FROM tournament_snapshots
WHERE id = ?
`

func (q *Queries) GetTournament(ctx context.Context, id int64) (TournamentSnapshot, error) {
	row := q.db.QueryRowContext(ctx, getTournament, id)
	var i TournamentSnapshot
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.PrizePool,
		&i.MaxParticipants,
		&i.ParticipantsCount,
		&i.Status,
		&i.TournamentType,
		&i.Game,
		&i.StartDate,
		&i.FetchedAt,
		&i.DetailFetchedAt,
	)
	return i, err
}

const listTournaments = `
SELECT id, name, description, prize_pool, max_participants, participants_count,
       status, tournament_type, game, start_date, fetched_at, detail_fetched_at
FROM tournament_snapshots
ORDER BY start_date ASC, id ASC
`

func (q *Queries) ListTournaments(ctx context.Context) ([]TournamentSnapshot, error) {
	rows, err := q.db.QueryContext(ctx, listTournaments)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TournamentSnapshot
	for rows.Next() {
		var i TournamentSnapshot
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Description,
			&i.PrizePool,
			&i.MaxParticipants,
			&i.ParticipantsCount,
			&i.Status,
			&i.TournamentType,
			&i.Game,
			&i.StartDate,
			&i.FetchedAt,
			&i.DetailFetchedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const setDetailFetchedAt = `
UPDATE tournament_snapshots
SET detail_fetched_at = ?, participants_count = ?
WHERE id = ?
`

type SetDetailFetchedAtParams struct {
	DetailFetchedAt   *time.Time `json:"detail_fetched_at"`
	ParticipantsCount int64      `json:"participants_count"`
	ID                int64      `json:"id"`
}

func (q *Queries) SetDetailFetchedAt(ctx context.Context, arg SetDetailFetchedAtParams) error {
	_, err := q.db.ExecContext(ctx, setDetailFetchedAt, arg.DetailFetchedAt, arg.ParticipantsCount, arg.ID)
	return err
}

const deleteStaleTournaments = `
DELETE FROM tournament_snapshots
WHERE fetched_at < ?
`

func (q *Queries) DeleteStaleTournaments(ctx context.Context, fetchedAt time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteStaleTournaments, fetchedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteParticipants = `
DELETE FROM participant_snapshots
WHERE tournament_id = ?
`

func (q *Queries) DeleteParticipants(ctx context.Context, tournamentID int64) error {
	_, err := q.db.ExecContext(ctx, deleteParticipants, tournamentID)
	return err
}

const insertParticipant = `
INSERT INTO participant_snapshots (
    tournament_id, steam_id, persona_name, avatar_url, registered_at, confirmed_at, is_admin, is_moderator
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertParticipantParams struct {
	TournamentID int64      `json:"tournament_id"`
	SteamID      string     `json:"steam_id"`
	PersonaName  string     `json:"persona_name"`
	AvatarUrl    string     `json:"avatar_url"`
	RegisteredAt time.Time  `json:"registered_at"`
	ConfirmedAt  *time.Time `json:"confirmed_at"`
	IsAdmin      bool       `json:"is_admin"`
	IsModerator  bool       `json:"is_moderator"`
}

func (q *Queries) InsertParticipant(ctx context.Context, arg InsertParticipantParams) error {
	_, err := q.db.ExecContext(ctx, insertParticipant,
		arg.TournamentID,
		arg.SteamID,
		arg.PersonaName,
		arg.AvatarUrl,
		arg.RegisteredAt,
		arg.ConfirmedAt,
		arg.IsAdmin,
		arg.IsModerator,
	)
	return err
}

const listParticipants = `
SELECT tournament_id, steam_id, persona_name, avatar_url, registered_at, confirmed_at, is_admin, is_moderator
FROM participant_snapshots
WHERE tournament_id = ?
ORDER BY registered_at ASC, steam_id ASC
`

func (q *Queries) ListParticipants(ctx context.Context, tournamentID int64) ([]ParticipantSnapshot, error) {
	rows, err := q.db.QueryContext(ctx, listParticipants, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ParticipantSnapshot
	for rows.Next() {
		var i ParticipantSnapshot
		if err := rows.Scan(
			&i.TournamentID,
			&i.SteamID,
			&i.PersonaName,
			&i.AvatarUrl,
			&i.RegisteredAt,
			&i.ConfirmedAt,
			&i.IsAdmin,
			&i.IsModerator,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteBracket = `
DELETE FROM bracket_snapshots
WHERE tournament_id = ?
`

func (q *Queries) DeleteBracket(ctx context.Context, tournamentID int64) error {
	_, err := q.db.ExecContext(ctx, deleteBracket, tournamentID)
	return err
}

const insertBracketMatch = `
INSERT INTO bracket_snapshots (
    tournament_id, id, round_number, match_number, player1_steam_id, player2_steam_id,
    player1_name, player2_name, winner_steam_id, player1_score, player2_score, status
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertBracketMatchParams struct {
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

func (q *Queries) InsertBracketMatch(ctx context.Context, arg InsertBracketMatchParams) error {
	_, err := q.db.ExecContext(ctx, insertBracketMatch,
		arg.TournamentID,
		arg.ID,
		arg.RoundNumber,
		arg.MatchNumber,
		arg.Player1SteamID,
		arg.Player2SteamID,
		arg.Player1Name,
		arg.Player2Name,
		arg.WinnerSteamID,
		arg.Player1Score,
		arg.Player2Score,
		arg.Status,
	)
	return err
}

const listBracket = `
SELECT tournament_id, id, round_number, match_number, player1_steam_id, player2_steam_id,
       player1_name, player2_name, winner_steam_id, player1_score, player2_score, status
FROM bracket_snapshots
WHERE tournament_id = ?
ORDER BY round_number ASC, match_number ASC
`

func (q *Queries) ListBracket(ctx context.Context, tournamentID int64) ([]BracketSnapshot, error) {
	rows, err := q.db.QueryContext(ctx, listBracket, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BracketSnapshot
	for rows.Next() {
		var i BracketSnapshot
		if err := rows.Scan(
			&i.TournamentID,
			&i.ID,
			&i.RoundNumber,
			&i.MatchNumber,
			&i.Player1SteamID,
			&i.Player2SteamID,
			&i.Player1Name,
			&i.Player2Name,
			&i.WinnerSteamID,
			&i.Player1Score,
			&i.Player2Score,
			&i.Status,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
