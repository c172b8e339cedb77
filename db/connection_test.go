package db

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
)

func TestOpen(t *testing.T) {
	t.Run("opens database with pragmas applied", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "test.db")

		db, err := Open(dbPath, nil)
		require.NoError(t, err)
		defer db.Close()

		var journalMode string
		err = db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
		require.NoError(t, err)
		assert.Equal(t, "wal", journalMode)

		var foreignKeys int
		err = db.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys)
		require.NoError(t, err)
		assert.Equal(t, 1, foreignKeys)
	})

	t.Run("fails when parent directory does not exist", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "missing", "sub", "test.db")

		db, err := Open(dbPath, nil)
		require.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestOpenWithMigrations(t *testing.T) {
	t.Run("opens database and runs migrations", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "test.db")

		db, err := OpenWithMigrations(dbPath, nil)
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		// All lexicon tables exist after migrations
		for _, table := range []string{
			"schema_migrations",
			"staging_entries",
			"raw_fragments",
			"import_stages",
			"words",
			"senses",
			"concepts",
			"concept_members",
			"word_relations",
		} {
			var count int
			err = db.QueryRow(
				"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table,
			).Scan(&count)
			require.NoError(t, err)
			assert.Equal(t, 1, count, "table %s should exist after migrations", table)
		}
	})

	t.Run("errors include stack traces", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "missing", "test.db")

		db, err := OpenWithMigrations(dbPath, nil)
		require.Error(t, err)
		assert.Nil(t, db)

		stackTrace := errors.GetReportableStackTrace(err)
		assert.NotNil(t, stackTrace, "open errors should have stack traces")

		detailed := fmt.Sprintf("%+v", err)
		assert.Contains(t, detailed, "connection.go", "stack should reference source file")
	})
}

func TestSetBusyTimeout(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(dbPath, nil)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, SetBusyTimeout(db, 2500*time.Millisecond))

	var timeout int
	err = db.QueryRow("PRAGMA busy_timeout").Scan(&timeout)
	require.NoError(t, err)
	assert.Equal(t, 2500, timeout)
}

func TestIsDatabaseClosed(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"sentinel", ErrDatabaseClosed, true},
		{"wrapped sentinel", errors.Wrap(ErrDatabaseClosed, "query words"), true},
		{"driver message", errors.New("sql: database is closed"), true},
		{"unrelated", errors.New("no such table: words"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDatabaseClosed(tt.err))
		})
	}
}

func TestIsBusy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"locked message", errors.New("database is locked"), true},
		{"table locked message", errors.New("database table is locked"), true},
		{"wrapped locked", errors.Wrap(errors.New("database is locked"), "finalize"), true},
		{"unrelated", errors.New("constraint failed"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBusy(tt.err))
		})
	}
}
