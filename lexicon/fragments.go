package lexicon

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
)

// FragmentStore persists raw source payloads keyed by content hash.
// Fragments are the untouched bytes an entry was extracted from, kept for
// provenance and re-transformation.
type FragmentStore struct {
	db *sql.DB
}

// NewFragmentStore creates a raw fragment store
func NewFragmentStore(db *sql.DB) *FragmentStore {
	return &FragmentStore{db: db}
}

// FragmentRef computes the content-hash ref for a payload.
func FragmentRef(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// SaveFragment stores a raw payload and returns its ref. The ref is the
// payload's SHA-256, so saving identical bytes twice yields the same ref
// and a single row.
func (s *FragmentStore) SaveFragment(ctx context.Context, sourceCode string, payload []byte) (string, error) {
	ref := FragmentRef(payload)

	query := `INSERT OR IGNORE INTO raw_fragments (ref, source_code, payload) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, ref, sourceCode, payload)
	if err != nil {
		return "", errors.Wrapf(err, "failed to save fragment for %s", sourceCode)
	}

	return ref, nil
}

// GetFragment returns the payload stored under ref.
func (s *FragmentStore) GetFragment(ctx context.Context, ref string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM raw_fragments WHERE ref = ?`, ref).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Newf("fragment not found: %s", ref)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get fragment")
	}
	return payload, nil
}

// CountBySource returns how many fragments a source has stored.
func (s *FragmentStore) CountBySource(ctx context.Context, sourceCode string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM raw_fragments WHERE source_code = ?`, sourceCode).Scan(&n)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to count fragments for %s", sourceCode)
	}
	return n, nil
}

// DeleteBySource removes all fragments for a source.
func (s *FragmentStore) DeleteBySource(ctx context.Context, sourceCode string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM raw_fragments WHERE source_code = ?`, sourceCode)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to delete fragments for %s", sourceCode)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to read deleted fragment rows")
	}
	return n, nil
}
