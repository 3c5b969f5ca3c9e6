package repository

import (
	"context"
	"database/sql"
	"fmt"

	"portal-tournaments/internal/db"
	"portal-tournaments/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type ActionLogRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewActionLogRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *ActionLogRepository {
	return &ActionLogRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *ActionLogRepository) Record(ctx context.Context, entry domain.ActionLogEntry) (string, error) {
	id := entry.ID
	if id == "" {
		var err error
		id, err = gonanoid.New()
		if err != nil {
			return "", fmt.Errorf("failed to generate nanoid: %w", err)
		}
	}

	err := r.queries.InsertActionLog(ctx, db.InsertActionLogParams{
		ID:           id,
		TournamentID: entry.TournamentID,
		SteamID:      entry.SteamID,
		Action:       string(entry.Action),
		Phase:        entry.Phase,
		Accepted:     entry.Accepted,
		Reason:       entry.Reason,
		CreatedAt:    entry.CreatedAt.UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to insert action log: %w", err)
	}
	return id, nil
}

// Recent returns the newest entries for a tournament first.
func (r *ActionLogRepository) Recent(ctx context.Context, tournamentID int64, limit int) ([]domain.ActionLogEntry, error) {
	rows, err := r.queries.ListActionLog(ctx, db.ListActionLogParams{
		TournamentID: tournamentID,
		Limit:        int64(limit),
	})
	if err != nil {
		return nil, err
	}

	result := make([]domain.ActionLogEntry, len(rows))
	for i, row := range rows {
		result[i] = domain.ActionLogEntry{
			ID:           row.ID,
			TournamentID: row.TournamentID,
			SteamID:      row.SteamID,
			Action:       domain.ActionKind(row.Action),
			Phase:        row.Phase,
			Accepted:     row.Accepted,
			Reason:       row.Reason,
			CreatedAt:    row.CreatedAt.UTC(),
		}
	}
	return result, nil
}
