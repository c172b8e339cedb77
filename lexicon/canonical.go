package lexicon

import (
	"context"
	"database/sql"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
)

// MergeStats summarizes one merge pass.
type MergeStats struct {
	WordsInserted  int64
	SensesInserted int64
}

// Counts is a snapshot of canonical table sizes.
type Counts struct {
	Words     int64
	Senses    int64
	Concepts  int64
	Relations int64
}

// Word is one canonical word row.
type Word struct {
	ID         int64
	Normalized string
	Language   string
	Headword   string
	ASCIIForm  string
	IPA        string
}

// Sense is one canonical sense row.
type Sense struct {
	ID             int64
	WordID         int64
	SenseNumber    int
	PartOfSpeech   string
	Definition     string
	DefinitionHash string
	SourceCode     string
}

// CanonicalStore handles the canonical lexicon tables: words, senses,
// concepts, and relations. Pipeline steps with richer SQL needs query the
// tables directly; the store carries the merge and the lookups shared
// across steps.
type CanonicalStore struct {
	db *sql.DB
}

// NewCanonicalStore creates a canonical lexicon store
func NewCanonicalStore(db *sql.DB) *CanonicalStore {
	return &CanonicalStore{db: db}
}

// MergeFromStaging folds a source's sealed staging rows into the canonical
// tables inside one transaction. Words are inserted once per
// (normalized, language); senses once per (word, definition hash). Both
// statements are INSERT OR IGNORE set operations over sealed rows only, so
// re-running a merge changes nothing.
func (s *CanonicalStore) MergeFromStaging(ctx context.Context, sourceCode string) (MergeStats, error) {
	var stats MergeStats

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, errors.Wrap(err, "failed to begin merge transaction")
	}
	defer tx.Rollback()

	// MIN() picks a deterministic representative when sealed rows disagree
	// on the raw headword or IPA for the same normalized form.
	wordsQuery := `
		INSERT OR IGNORE INTO words (normalized, language, headword, ipa)
		SELECT normalized_headword, language, MIN(headword), MIN(ipa)
		FROM staging_entries
		WHERE source_code = ? AND sealed = 1
		GROUP BY normalized_headword, language
	`
	res, err := tx.ExecContext(ctx, wordsQuery, sourceCode)
	if err != nil {
		return stats, errors.Wrapf(err, "failed to merge words for %s", sourceCode)
	}
	if stats.WordsInserted, err = res.RowsAffected(); err != nil {
		return stats, errors.Wrap(err, "failed to read merged word count")
	}

	sensesQuery := `
		INSERT OR IGNORE INTO senses (word_id, part_of_speech, definition, definition_hash, source_code)
		SELECT w.id, st.part_of_speech, st.definition, st.definition_hash, st.source_code
		FROM staging_entries st
		JOIN words w ON w.normalized = st.normalized_headword AND w.language = st.language
		WHERE st.source_code = ? AND st.sealed = 1
	`
	res, err = tx.ExecContext(ctx, sensesQuery, sourceCode)
	if err != nil {
		return stats, errors.Wrapf(err, "failed to merge senses for %s", sourceCode)
	}
	if stats.SensesInserted, err = res.RowsAffected(); err != nil {
		return stats, errors.Wrap(err, "failed to read merged sense count")
	}

	if err := tx.Commit(); err != nil {
		return stats, errors.Wrapf(err, "failed to commit merge for %s", sourceCode)
	}

	return stats, nil
}

// GetWord retrieves a word by its canonical identity.
func (s *CanonicalStore) GetWord(ctx context.Context, normalized, language string) (*Word, error) {
	query := `
		SELECT id, normalized, language, headword,
		       COALESCE(ascii_form, ''), COALESCE(ipa, '')
		FROM words
		WHERE normalized = ? AND language = ?
	`
	var w Word
	err := s.db.QueryRowContext(ctx, query, normalized, language).
		Scan(&w.ID, &w.Normalized, &w.Language, &w.Headword, &w.ASCIIForm, &w.IPA)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Newf("word not found: %s (%s)", normalized, language)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get word")
	}
	return &w, nil
}

// SensesForWord returns a word's senses ordered by sense number.
func (s *CanonicalStore) SensesForWord(ctx context.Context, wordID int64) ([]*Sense, error) {
	query := `
		SELECT id, word_id, sense_number, COALESCE(part_of_speech, ''),
		       definition, definition_hash, source_code
		FROM senses
		WHERE word_id = ?
		ORDER BY sense_number, id
	`
	rows, err := s.db.QueryContext(ctx, query, wordID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load senses for word %d", wordID)
	}
	defer rows.Close()

	var senses []*Sense
	for rows.Next() {
		var sn Sense
		err := rows.Scan(&sn.ID, &sn.WordID, &sn.SenseNumber, &sn.PartOfSpeech,
			&sn.Definition, &sn.DefinitionHash, &sn.SourceCode)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan sense")
		}
		senses = append(senses, &sn)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate senses")
	}
	return senses, nil
}

// UpdateWordOrthography sets a word's derived written forms.
func (s *CanonicalStore) UpdateWordOrthography(ctx context.Context, wordID int64, asciiForm, ipa string) error {
	query := `
		UPDATE words
		SET ascii_form = ?, ipa = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := s.db.ExecContext(ctx, query, asciiForm, ipa, wordID)
	if err != nil {
		return errors.Wrapf(err, "failed to update orthography for word %d", wordID)
	}
	return nil
}

// CountsBySource returns how many words and senses a source has contributed.
// Words are not owned by a source, so the word count is words having at
// least one sense from it.
func (s *CanonicalStore) CountsBySource(ctx context.Context, sourceCode string) (words, senses int64, err error) {
	query := `
		SELECT COUNT(DISTINCT word_id), COUNT(*)
		FROM senses
		WHERE source_code = ?
	`
	err = s.db.QueryRowContext(ctx, query, sourceCode).Scan(&words, &senses)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "failed to count canonical rows for %s", sourceCode)
	}
	return words, senses, nil
}

// TableCounts returns the canonical table sizes.
func (s *CanonicalStore) TableCounts(ctx context.Context) (Counts, error) {
	var c Counts
	query := `
		SELECT (SELECT COUNT(*) FROM words),
		       (SELECT COUNT(*) FROM senses),
		       (SELECT COUNT(*) FROM concepts),
		       (SELECT COUNT(*) FROM word_relations)
	`
	err := s.db.QueryRowContext(ctx, query).Scan(&c.Words, &c.Senses, &c.Concepts, &c.Relations)
	if err != nil {
		return c, errors.Wrap(err, "failed to count canonical tables")
	}
	return c, nil
}
