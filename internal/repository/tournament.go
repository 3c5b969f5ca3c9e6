package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"portal-tournaments/internal/constants"
	"portal-tournaments/internal/db"
	"portal-tournaments/internal/domain"

	"github.com/rs/zerolog"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

type TournamentRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewTournamentRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *TournamentRepository {
	return &TournamentRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// ReplaceAll stores the latest tournament list and drops snapshots of
// tournaments the backend no longer returns.
func (r *TournamentRepository) ReplaceAll(ctx context.Context, tournaments []domain.Tournament, fetchedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	for i := 0; i < len(tournaments); i += constants.DBBatchSize {
		end := min(i+constants.DBBatchSize, len(tournaments))

		for _, t := range tournaments[i:end] {
			t.FetchedAt = fetchedAt
			if err := qtx.UpsertTournament(ctx, toUpsertParams(t)); err != nil {
				return fmt.Errorf("failed to upsert tournament %d: %w", t.ID, err)
			}
		}

		r.logger.Debug().
			Int("batch_start", i).
			Int("batch_end", end).
			Msg("upserted tournament batch")
	}

	removed, err := qtx.DeleteStaleTournaments(ctx, fetchedAt)
	if err != nil {
		return fmt.Errorf("failed to delete stale tournaments: %w", err)
	}
	if removed > 0 {
		r.logger.Info().Int64("removed", removed).Msg("dropped stale tournament snapshots")
	}

	return tx.Commit()
}

// SaveDetail replaces the participant and bracket snapshots of one tournament.
func (r *TournamentRepository) SaveDetail(ctx context.Context, detail *domain.TournamentDetail) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)
	id := detail.ID

	if err := qtx.UpsertTournament(ctx, toUpsertParams(detail.Tournament)); err != nil {
		return fmt.Errorf("failed to upsert tournament %d: %w", id, err)
	}
	if err := qtx.DeleteParticipants(ctx, id); err != nil {
		return fmt.Errorf("failed to clear participants: %w", err)
	}
	for _, p := range detail.Participants {
		err := qtx.InsertParticipant(ctx, db.InsertParticipantParams{
			TournamentID: id,
			SteamID:      p.SteamID,
			PersonaName:  p.PersonaName,
			AvatarUrl:    p.AvatarURL,
			RegisteredAt: p.RegisteredAt,
			ConfirmedAt:  p.ConfirmedAt,
			IsAdmin:      p.IsAdmin,
			IsModerator:  p.IsModerator,
		})
		if err != nil {
			return fmt.Errorf("failed to insert participant %s: %w", p.SteamID, err)
		}
	}

	if err := qtx.DeleteBracket(ctx, id); err != nil {
		return fmt.Errorf("failed to clear bracket: %w", err)
	}
	for _, m := range detail.Bracket {
		err := qtx.InsertBracketMatch(ctx, db.InsertBracketMatchParams{
			TournamentID:   id,
			ID:             m.ID,
			RoundNumber:    int64(m.RoundNumber),
			MatchNumber:    int64(m.MatchNumber),
			Player1SteamID: m.Player1SteamID,
			Player2SteamID: m.Player2SteamID,
			Player1Name:    m.Player1Name,
			Player2Name:    m.Player2Name,
			WinnerSteamID:  m.WinnerSteamID,
			Player1Score:   int64(m.Player1Score),
			Player2Score:   int64(m.Player2Score),
			Status:         m.Status,
		})
		if err != nil {
			return fmt.Errorf("failed to insert bracket match %d: %w", m.ID, err)
		}
	}

	fetchedAt := detail.FetchedAt
	err = qtx.SetDetailFetchedAt(ctx, db.SetDetailFetchedAtParams{
		DetailFetchedAt:   &fetchedAt,
		ParticipantsCount: int64(len(detail.Participants)),
		ID:                id,
	})
	if err != nil {
		return fmt.Errorf("failed to set detail fetched at: %w", err)
	}

	return tx.Commit()
}

func (r *TournamentRepository) List(ctx context.Context) ([]domain.Tournament, error) {
	rows, err := r.queries.ListTournaments(ctx)
	if err != nil {
		return nil, err
	}

	tournaments := make([]domain.Tournament, len(rows))
	for i, row := range rows {
		tournaments[i] = toDomainTournament(row)
	}
	return tournaments, nil
}

// Get returns the stored detail. Participants and bracket are empty until
// SaveDetail ran for the tournament at least once.
func (r *TournamentRepository) Get(ctx context.Context, id int64) (*domain.TournamentDetail, error) {
	row, err := r.queries.GetTournament(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}

	participants, err := r.queries.ListParticipants(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	bracket, err := r.queries.ListBracket(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list bracket: %w", err)
	}

	detail := &domain.TournamentDetail{
		Tournament:   toDomainTournament(row),
		Participants: make([]domain.Participant, len(participants)),
		Bracket:      make([]domain.BracketMatch, len(bracket)),
	}
	for i, p := range participants {
		detail.Participants[i] = domain.Participant{
			SteamID:      p.SteamID,
			PersonaName:  p.PersonaName,
			AvatarURL:    p.AvatarUrl,
			RegisteredAt: p.RegisteredAt,
			ConfirmedAt:  p.ConfirmedAt,
			IsAdmin:      p.IsAdmin,
			IsModerator:  p.IsModerator,
		}
	}
	for i, m := range bracket {
		detail.Bracket[i] = domain.BracketMatch{
			ID:             m.ID,
			RoundNumber:    int(m.RoundNumber),
			MatchNumber:    int(m.MatchNumber),
			Player1SteamID: m.Player1SteamID,
			Player2SteamID: m.Player2SteamID,
			Player1Name:    m.Player1Name,
			Player2Name:    m.Player2Name,
			WinnerSteamID:  m.WinnerSteamID,
			Player1Score:   int(m.Player1Score),
			Player2Score:   int(m.Player2Score),
			Status:         m.Status,
		}
	}
	return detail, nil
}

// ShouldRefresh reports whether the stored detail of a tournament is missing
// or older than ttl.
func (r *TournamentRepository) ShouldRefresh(ctx context.Context, id int64, ttl time.Duration, now time.Time) (bool, error) {
	row, err := r.queries.GetTournament(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Debug().Int64("tournament_id", id).Msg("tournament not found, should refresh")
		return true, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Int64("tournament_id", id).Msg("failed to get tournament")
		return false, err
	}
	if row.DetailFetchedAt == nil {
		r.logger.Debug().Int64("tournament_id", id).Msg("detail never fetched, should refresh")
		return true, nil
	}

	age := now.Sub(*row.DetailFetchedAt)
	shouldRefresh := age > ttl
	r.logger.Debug().
		Int64("tournament_id", id).
		Time("detail_fetched_at", *row.DetailFetchedAt).
		Dur("age", age).
		Dur("ttl", ttl).
		Bool("should_refresh", shouldRefresh).
		Msg("checking if tournament should refresh")

	return shouldRefresh, nil
}

func toUpsertParams(t domain.Tournament) db.UpsertTournamentParams {
	return db.UpsertTournamentParams{
		ID:                t.ID,
		Name:              t.Name,
		Description:       t.Description,
		PrizePool:         t.PrizePool,
		MaxParticipants:   int64(t.MaxParticipants),
		ParticipantsCount: int64(t.ParticipantsCount),
		Status:            string(t.Status),
		TournamentType:    t.TournamentType,
		Game:              t.Game,
		StartDate:         t.StartDate.UTC(),
		FetchedAt:         t.FetchedAt.UTC(),
	}
}

func toDomainTournament(row db.TournamentSnapshot) domain.Tournament {
	return domain.Tournament{
		ID:                row.ID,
		Name:              row.Name,
		Description:       row.Description,
		PrizePool:         row.PrizePool,
		MaxParticipants:   int(row.MaxParticipants),
		ParticipantsCount: int(row.ParticipantsCount),
		Status:            domain.TournamentStatus(row.Status),
		TournamentType:    row.TournamentType,
		Game:              row.Game,
		StartDate:         row.StartDate.UTC(),
		FetchedAt:         row.FetchedAt.UTC(),
	}
}
