package lexicon

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/ankitdsmb/DictionaryImporter-sub008/db"
	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
)

// Stage names tracked per source.
const (
	StageRawImport = "raw_import"
	StageMerge     = "merge"
)

// Stage statuses. A stage is pending until marked, completed when its work
// finished, and finalized once its rows are sealed for downstream stages.
const (
	StageStatusPending   = "pending"
	StageStatusCompleted = "completed"
	StageStatusFinalized = "finalized"
)

// finalizeRetryDelay is how long TryFinalize waits before retrying after
// the database reported busy.
const finalizeRetryDelay = 250 * time.Millisecond

// StageStore tracks per-source import stage status and owns finalization:
// sealing a source's staged rows so merge can consume them. Statuses are
// cached in memory; ResetSource drops a source's cache before a re-import.
type StageStore struct {
	db *sql.DB

	mu    sync.RWMutex
	cache map[string]map[string]string
}

// NewStageStore creates an import stage store
func NewStageStore(database *sql.DB) *StageStore {
	return &StageStore{
		db:    database,
		cache: make(map[string]map[string]string),
	}
}

// MarkCompleted records that a source finished a stage.
func (s *StageStore) MarkCompleted(ctx context.Context, sourceCode, stage string) error {
	if err := s.setStatus(ctx, sourceCode, stage, StageStatusCompleted); err != nil {
		return errors.Wrapf(err, "failed to mark %s %s completed", sourceCode, stage)
	}
	return nil
}

// Status returns a source's status for a stage, reading through the cache.
// An unrecorded stage is pending.
func (s *StageStore) Status(ctx context.Context, sourceCode, stage string) (string, error) {
	s.mu.RLock()
	if stages, ok := s.cache[sourceCode]; ok {
		if status, ok := stages[stage]; ok {
			s.mu.RUnlock()
			return status, nil
		}
	}
	s.mu.RUnlock()

	var status string
	query := `SELECT status FROM import_stages WHERE source_code = ? AND stage = ?`
	err := s.db.QueryRowContext(ctx, query, sourceCode, stage).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		status = StageStatusPending
	} else if err != nil {
		return "", errors.Wrapf(err, "failed to read stage status for %s %s", sourceCode, stage)
	}

	s.cacheStatus(sourceCode, stage, status)
	return status, nil
}

// TryFinalize seals a source's staged rows and marks its raw import stage
// finalized, making the rows visible to merge. The raw import stage must be
// completed first. SQLITE_BUSY is retried until ctx expires; callers bound
// the attempt with the configured finalize timeout. Finalizing an already
// finalized source is a no-op.
func (s *StageStore) TryFinalize(ctx context.Context, sourceCode string) error {
	status, err := s.Status(ctx, sourceCode, StageRawImport)
	if err != nil {
		return err
	}
	if status == StageStatusFinalized {
		return nil
	}
	if status != StageStatusCompleted {
		return errors.Newf("cannot finalize %s: raw import stage is %s", sourceCode, status)
	}

	for {
		err := s.finalizeOnce(ctx, sourceCode)
		if err == nil {
			s.cacheStatus(sourceCode, StageRawImport, StageStatusFinalized)
			return nil
		}
		if !db.IsBusy(err) {
			return errors.Wrapf(err, "failed to finalize %s", sourceCode)
		}

		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "finalize abandoned for %s while database busy", sourceCode)
		case <-time.After(finalizeRetryDelay):
		}
	}
}

// finalizeOnce runs one seal attempt in a transaction.
func (s *StageStore) finalizeOnce(ctx context.Context, sourceCode string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE staging_entries SET sealed = 1 WHERE source_code = ? AND sealed = 0`, sourceCode)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, upsertStageQuery, sourceCode, StageRawImport, StageStatusFinalized)
	if err != nil {
		return err
	}

	return tx.Commit()
}

const upsertStageQuery = `
	INSERT INTO import_stages (source_code, stage, status, updated_at)
	VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT (source_code, stage)
	DO UPDATE SET status = excluded.status, updated_at = CURRENT_TIMESTAMP
`

func (s *StageStore) setStatus(ctx context.Context, sourceCode, stage, status string) error {
	_, err := s.db.ExecContext(ctx, upsertStageQuery, sourceCode, stage, status)
	if err != nil {
		return err
	}
	s.cacheStatus(sourceCode, stage, status)
	return nil
}

func (s *StageStore) cacheStatus(sourceCode, stage, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stages, ok := s.cache[sourceCode]
	if !ok {
		stages = make(map[string]string)
		s.cache[sourceCode] = stages
	}
	stages[stage] = status
}

// ResetSource drops a source's cached stage statuses. Called before a
// re-import so stale cached state cannot mask the database.
func (s *StageStore) ResetSource(sourceCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, sourceCode)
}

// DeleteBySource removes a source's persisted stage rows and cache entries.
// Used when a source is reset for a clean re-import.
func (s *StageStore) DeleteBySource(ctx context.Context, sourceCode string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM import_stages WHERE source_code = ?`, sourceCode)
	if err != nil {
		return errors.Wrapf(err, "failed to delete stage rows for %s", sourceCode)
	}
	s.ResetSource(sourceCode)
	return nil
}
