package database

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.db")

	db, err := Open(path, zerolog.Nop())
	require.NoError(t, err)

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var tables int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('tournament_snapshots', 'participant_snapshots', 'bracket_snapshots', 'action_log')`,
	).Scan(&tables))
	assert.Equal(t, 4, tables)
	require.NoError(t, db.Close())

	// reopening applies nothing new
	db, err = Open(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"file:portal.db?_busy_timeout=5000&_cache_size=-16000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL",
		dsn("portal.db"),
	)
	assert.Contains(t, dsn("file:portal.db?mode=rwc"), "file:portal.db?mode=rwc&_busy_timeout=5000")
}
