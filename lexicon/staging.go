package lexicon

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
)

// StagingStore handles persistence of staged dictionary entries
type StagingStore struct {
	db *sql.DB
}

// NewStagingStore creates a staging entry store
func NewStagingStore(db *sql.DB) *StagingStore {
	return &StagingStore{db: db}
}

// SaveBatch stages a batch of entries in one transaction. Rows whose
// (source, entry hash) pair is already staged are ignored, so replaying a
// batch after a crash cannot duplicate entries. Returns the number of newly
// staged rows. Entry and definition hashes are computed here when the
// caller left them unset.
func (s *StagingStore) SaveBatch(ctx context.Context, entries []*DictionaryEntry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin staging transaction")
	}
	defer tx.Rollback()

	query := `
		INSERT OR IGNORE INTO staging_entries (
			source_code, headword, normalized_headword, language,
			part_of_speech, definition, ipa, synonyms, see_also,
			fragment_ref, entry_hash, definition_hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, errors.Wrap(err, "failed to prepare staging insert")
	}
	defer stmt.Close()

	var inserted int64
	for _, e := range entries {
		synonyms, err := marshalStringList(e.Synonyms)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to marshal synonyms for %q", e.Headword)
		}
		seeAlso, err := marshalStringList(e.SeeAlso)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to marshal see-also for %q", e.Headword)
		}
		hash := e.EntryHash
		if hash == "" {
			hash = EntryHash(e)
		}

		res, err := stmt.ExecContext(ctx,
			e.SourceCode,
			e.Headword,
			e.NormalizedHeadword,
			e.Language,
			e.PartOfSpeech,
			e.Definition,
			e.IPA,
			synonyms,
			seeAlso,
			e.FragmentRef,
			hash,
			DefinitionHash(e.PartOfSpeech, e.Definition),
		)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to stage entry %q", e.Headword)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, errors.Wrap(err, "failed to read staging rows affected")
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit staging batch")
	}

	return inserted, nil
}

// CountBySource returns how many rows a source has staged and how many of
// them are sealed.
func (s *StagingStore) CountBySource(ctx context.Context, sourceCode string) (total, sealed int64, err error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(sealed), 0)
		FROM staging_entries
		WHERE source_code = ?
	`
	err = s.db.QueryRowContext(ctx, query, sourceCode).Scan(&total, &sealed)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "failed to count staging entries for %s", sourceCode)
	}
	return total, sealed, nil
}

// SealedEntries loads a source's sealed staging rows back as entries.
// Pipeline steps that need the raw synonym and see-also lists read them
// from here; the canonical tables do not carry them.
func (s *StagingStore) SealedEntries(ctx context.Context, sourceCode string) ([]*DictionaryEntry, error) {
	query := `
		SELECT source_code, headword, normalized_headword, language,
		       part_of_speech, definition, ipa, synonyms, see_also,
		       fragment_ref, entry_hash
		FROM staging_entries
		WHERE source_code = ? AND sealed = 1
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, sourceCode)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load sealed entries for %s", sourceCode)
	}
	defer rows.Close()

	var entries []*DictionaryEntry
	for rows.Next() {
		var e DictionaryEntry
		var synonyms, seeAlso string
		err := rows.Scan(
			&e.SourceCode,
			&e.Headword,
			&e.NormalizedHeadword,
			&e.Language,
			&e.PartOfSpeech,
			&e.Definition,
			&e.IPA,
			&synonyms,
			&seeAlso,
			&e.FragmentRef,
			&e.EntryHash,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan sealed entry")
		}
		if e.Synonyms, err = unmarshalStringList(synonyms); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal synonyms for %q", e.Headword)
		}
		if e.SeeAlso, err = unmarshalStringList(seeAlso); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal see-also for %q", e.Headword)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate sealed entries")
	}

	return entries, nil
}

// DeleteBySource removes all staged rows for a source. Used when a source
// is reset for a clean re-import.
func (s *StagingStore) DeleteBySource(ctx context.Context, sourceCode string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM staging_entries WHERE source_code = ?`, sourceCode)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to delete staging entries for %s", sourceCode)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to read deleted staging rows")
	}
	return n, nil
}

// marshalStringList encodes a list as JSON, mapping empty to "[]" so the
// column never stores SQL-visible null.
func marshalStringList(ss []string) (string, error) {
	if len(ss) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(ss)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalStringList(raw string) ([]string, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var ss []string
	if err := json.Unmarshal([]byte(raw), &ss); err != nil {
		return nil, err
	}
	return ss, nil
}
