package graph

import (
	"context"
	"database/sql"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
)

// Store handles persistence of word relations
type Store struct {
	db *sql.DB
}

// NewStore creates a word relation store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// SaveEdges persists edges in one transaction. An edge whose
// (from, to, type) triple already exists is ignored, so re-running a build
// cannot duplicate relations. Returns the number of newly inserted rows.
func (s *Store) SaveEdges(ctx context.Context, edges []Edge) (int64, error) {
	if len(edges) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin relation transaction")
	}
	defer tx.Rollback()

	query := `
		INSERT OR IGNORE INTO word_relations
			(from_word_id, to_word_id, relation_type, source_code, weight)
		VALUES (?, ?, ?, ?, ?)
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, errors.Wrap(err, "failed to prepare relation insert")
	}
	defer stmt.Close()

	var inserted int64
	for _, e := range edges {
		res, err := stmt.ExecContext(ctx, e.FromWordID, e.ToWordID, e.Type, e.SourceCode, e.Weight)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to save relation %d -> %d", e.FromWordID, e.ToWordID)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, errors.Wrap(err, "failed to read relation rows affected")
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit relations")
	}

	return inserted, nil
}

// RelationsForWord returns a word's outgoing relations ordered by target.
func (s *Store) RelationsForWord(ctx context.Context, wordID int64) ([]Edge, error) {
	query := `
		SELECT from_word_id, to_word_id, relation_type, COALESCE(source_code, ''), weight
		FROM word_relations
		WHERE from_word_id = ?
		ORDER BY to_word_id, relation_type
	`
	rows, err := s.db.QueryContext(ctx, query, wordID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load relations for word %d", wordID)
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.FromWordID, &e.ToWordID, &e.Type, &e.SourceCode, &e.Weight); err != nil {
			return nil, errors.Wrap(err, "failed to scan relation")
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate relations")
	}
	return edges, nil
}

// CountBySource returns how many relations a source has contributed.
func (s *Store) CountBySource(ctx context.Context, sourceCode string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM word_relations WHERE source_code = ?`, sourceCode).Scan(&n)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to count relations for %s", sourceCode)
	}
	return n, nil
}

// DeleteBySource removes a source's relations. Used before a rebuild.
func (s *Store) DeleteBySource(ctx context.Context, sourceCode string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM word_relations WHERE source_code = ?`, sourceCode)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to delete relations for %s", sourceCode)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to read deleted relation rows")
	}
	return n, nil
}
