package db

import (
	"context"
	"time"
)

const insertActionLog = `
INSERT INTO action_log (id, tournament_id, steam_id, action, phase, accepted, reason, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertActionLogParams struct {
	ID           string    `json:"id"`
	TournamentID int64     `json:"tournament_id"`
	SteamID      string    `json:"steam_id"`
	Action       string    `json:"action"`
	Phase        string    `json:"phase"`
	Accepted     bool      `json:"accepted"`
	Reason       string    `json:"reason"`
	CreatedAt    time.Time `json:"created_at"`
}

func (q *Queries) InsertActionLog(ctx context.Context, arg InsertActionLogParams) error {
	_, err := q.db.ExecContext(ctx, insertActionLog,
		arg.ID,
		arg.TournamentID,
		arg.SteamID,
		arg.Action,
		arg.Phase,
		arg.Accepted,
		arg.Reason,
		arg.CreatedAt,
	)
	return err
}

const listActionLog = `
SELECT id, tournament_id, steam_id, action, phase, accepted, reason, created_at
FROM action_log
WHERE tournament_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?
`

type ListActionLogParams struct {
	TournamentID int64 `json:"tournament_id"`
	Limit        int64 `json:"limit"`
}

func (q *Queries) ListActionLog(ctx context.Context, arg ListActionLogParams) ([]ActionLog, error) {
	rows, err := q.db.QueryContext(ctx, listActionLog, arg.TournamentID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ActionLog
	for rows.Next() {
		var i ActionLog
		if err := rows.Scan(
			&i.ID,
			&i.TournamentID,
			&i.SteamID,
			&i.Action,
			&i.Phase,
			&i.Accepted,
			&i.Reason,
			&i.CreatedAt,
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
