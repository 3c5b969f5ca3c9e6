package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"portal-tournaments/internal/database"
	"portal-tournaments/internal/db"
	"portal-tournaments/internal/domain"
	"portal-tournaments/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) (*sql.DB, *db.Queries) {
	t.Helper()

	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "portal.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return sqlDB, db.New(sqlDB)
}

var start = time.Date(2025, 10, 29, 18, 0, 0, 0, time.UTC)

func sample(id int64, startDate time.Time) domain.Tournament {
	return domain.Tournament{
		ID:                id,
		Name:              "Cup",
		Description:       "weekly",
		PrizePool:         5000,
		MaxParticipants:   16,
		ParticipantsCount: 2,
		Status:            domain.StatusUpcoming,
		TournamentType:    "1v1",
		Game:              "CS2",
		StartDate:         startDate,
	}
}

func TestTournamentRepository_ReplaceAll(t *testing.T) {
	sqlDB, queries := openDB(t)
	repo := repository.NewTournamentRepository(sqlDB, queries, zerolog.Nop())
	ctx := context.Background()

	first := start.Add(-time.Hour)
	require.NoError(t, repo.ReplaceAll(ctx, []domain.Tournament{
		sample(2, start.Add(24*time.Hour)),
		sample(1, start),
		sample(3, start.Add(48*time.Hour)),
	}, first))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, start, list[0].StartDate)
	assert.Equal(t, first, list[0].FetchedAt)
	assert.Equal(t, domain.StatusUpcoming, list[0].Status)

	updated := sample(1, start)
	updated.ParticipantsCount = 16
	require.NoError(t, repo.ReplaceAll(ctx, []domain.Tournament{updated}, first.Add(time.Minute)))

	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 16, list[0].ParticipantsCount)
	assert.True(t, list[0].IsFull())
}

func TestTournamentRepository_Detail(t *testing.T) {
	sqlDB, queries := openDB(t)
	repo := repository.NewTournamentRepository(sqlDB, queries, zerolog.Nop())
	ctx := context.Background()

	_, err := repo.Get(ctx, 7)
	require.ErrorIs(t, err, repository.ErrSnapshotNotFound)

	confirmedAt := start.Add(-30 * time.Minute)
	fetchedAt := start.Add(-20 * time.Minute)
	detail := &domain.TournamentDetail{
		Tournament: sample(7, start),
		Participants: []domain.Participant{
			{SteamID: "b", PersonaName: "Bravo", RegisteredAt: start.Add(-2 * time.Hour)},
			{SteamID: "a", PersonaName: "Alpha", RegisteredAt: start.Add(-3 * time.Hour), ConfirmedAt: &confirmedAt, IsAdmin: true},
		},
		Bracket: []domain.BracketMatch{
			{ID: 2, RoundNumber: 1, MatchNumber: 2, Player1SteamID: "c"},
			{ID: 1, RoundNumber: 1, MatchNumber: 1, Player1SteamID: "a", Player2SteamID: "b", Player1Score: 2},
		},
	}
	detail.FetchedAt = fetchedAt
	require.NoError(t, repo.SaveDetail(ctx, detail))

	got, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Cup", got.Name)
	assert.Equal(t, 2, got.ParticipantsCount)

	require.Len(t, got.Participants, 2)
	assert.Equal(t, "a", got.Participants[0].SteamID)
	assert.True(t, got.Participants[0].IsAdmin)
	require.NotNil(t, got.Participants[0].ConfirmedAt)
	assert.True(t, confirmedAt.Equal(*got.Participants[0].ConfirmedAt))
	assert.Nil(t, got.Participants[1].ConfirmedAt)

	require.Len(t, got.Bracket, 2)
	assert.Equal(t, int64(1), got.Bracket[0].ID)
	assert.Equal(t, 2, got.Bracket[0].Player1Score)

	// a second save replaces rather than appends
	detail.Participants = detail.Participants[:1]
	detail.Bracket = nil
	require.NoError(t, repo.SaveDetail(ctx, detail))

	got, err = repo.Get(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, got.Participants, 1)
	assert.Empty(t, got.Bracket)
	assert.Equal(t, 1, got.ParticipantsCount)
}

func TestTournamentRepository_ShouldRefresh(t *testing.T) {
	sqlDB, queries := openDB(t)
	repo := repository.NewTournamentRepository(sqlDB, queries, zerolog.Nop())
	ctx := context.Background()
	now := start.Add(-2 * time.Hour)

	refresh, err := repo.ShouldRefresh(ctx, 7, time.Minute, now)
	require.NoError(t, err)
	assert.True(t, refresh, "unknown tournament")

	require.NoError(t, repo.ReplaceAll(ctx, []domain.Tournament{sample(7, start)}, now))
	refresh, err = repo.ShouldRefresh(ctx, 7, time.Minute, now)
	require.NoError(t, err)
	assert.True(t, refresh, "list row without detail")

	detail := &domain.TournamentDetail{Tournament: sample(7, start)}
	detail.FetchedAt = now
	require.NoError(t, repo.SaveDetail(ctx, detail))

	refresh, err = repo.ShouldRefresh(ctx, 7, time.Minute, now.Add(30*time.Second))
	require.NoError(t, err)
	assert.False(t, refresh)

	refresh, err = repo.ShouldRefresh(ctx, 7, time.Minute, now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.True(t, refresh)
}

func TestTournamentRepository_StaleDropCascades(t *testing.T) {
	sqlDB, queries := openDB(t)
	repo := repository.NewTournamentRepository(sqlDB, queries, zerolog.Nop())
	ctx := context.Background()
	now := start.Add(-3 * time.Hour)

	detail := &domain.TournamentDetail{
		Tournament:   sample(7, start),
		Participants: []domain.Participant{{SteamID: "a", RegisteredAt: now}},
	}
	detail.FetchedAt = now
	require.NoError(t, repo.SaveDetail(ctx, detail))

	require.NoError(t, repo.ReplaceAll(ctx, nil, now.Add(time.Minute)))

	_, err := repo.Get(ctx, 7)
	require.ErrorIs(t, err, repository.ErrSnapshotNotFound)

	participants, err := queries.ListParticipants(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, participants)
}

func TestActionLogRepository(t *testing.T) {
	sqlDB, queries := openDB(t)
	repo := repository.NewActionLogRepository(sqlDB, queries, zerolog.Nop())
	ctx := context.Background()

	at := start.Add(-90 * time.Minute)
	for i, action := range []domain.ActionKind{domain.ActionRegister, domain.ActionConfirm, domain.ActionUnregister} {
		id, err := repo.Record(ctx, domain.ActionLogEntry{
			TournamentID: 7,
			SteamID:      "a",
			Action:       action,
			Phase:        "OPEN",
			Accepted:     action != domain.ActionConfirm,
			Reason:       "",
			CreatedAt:    at.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		assert.Len(t, id, 21)
	}
	_, err := repo.Record(ctx, domain.ActionLogEntry{TournamentID: 8, SteamID: "z", Action: domain.ActionRegister, Phase: "OPEN", CreatedAt: at})
	require.NoError(t, err)

	entries, err := repo.Recent(ctx, 7, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ActionUnregister, entries[0].Action)
	assert.Equal(t, domain.ActionConfirm, entries[1].Action)
	assert.False(t, entries[1].Accepted)
	assert.Equal(t, at.Add(2*time.Minute), entries[0].CreatedAt)
}
