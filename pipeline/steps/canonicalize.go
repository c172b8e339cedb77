package steps

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/lexicon"
	"github.com/ankitdsmb/DictionaryImporter-sub008/logger"
	"github.com/ankitdsmb/DictionaryImporter-sub008/pipeline"
)

// Canonicalize folds together senses that differ only in case or
// whitespace. Merge keeps such rows separate because definition_hash is
// byte-exact; this step trims definitions and deletes the later
// duplicates so numbering and concept grouping see one sense per
// distinct gloss. Runs over every word the source touched, so
// cross-source duplicates fold too.
type Canonicalize struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

// NewCanonicalize creates the canonicalize step.
func NewCanonicalize(database *sql.DB, log *zap.SugaredLogger) *Canonicalize {
	return &Canonicalize{
		db:  database,
		log: log.Named("step.canonicalize"),
	}
}

// Name returns the registered step name.
func (s *Canonicalize) Name() string {
	return NameCanonicalize
}

// Execute trims the source's definitions and removes duplicate senses.
func (s *Canonicalize) Execute(ctx context.Context, pctx *pipeline.Context) error {
	trimmed, err := s.trimDefinitions(ctx, pctx.SourceCode)
	if err != nil {
		return errors.Wrap(err, "failed to trim definitions")
	}

	removed, err := s.dedupeSenses(ctx, pctx.SourceCode)
	if err != nil {
		return errors.Wrap(err, "failed to deduplicate senses")
	}

	s.log.Debugw("Canonicalized senses",
		logger.FieldSource, pctx.SourceCode,
		"trimmed", trimmed,
		"duplicates_removed", removed,
	)
	return nil
}

func (s *Canonicalize) trimDefinitions(ctx context.Context, sourceCode string) (int64, error) {
	query := `
		UPDATE senses
		SET definition = TRIM(definition)
		WHERE source_code = ? AND definition != TRIM(definition)`

	result, err := s.db.ExecContext(ctx, query, sourceCode)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (s *Canonicalize) dedupeSenses(ctx context.Context, sourceCode string) (int64, error) {
	query := `
		SELECT id, word_id, definition
		FROM senses
		WHERE word_id IN (SELECT DISTINCT word_id FROM senses WHERE source_code = ?)
		ORDER BY word_id, id`

	rows, err := s.db.QueryContext(ctx, query, sourceCode)
	if err != nil {
		return 0, errors.Wrap(err, "failed to load senses")
	}
	defer rows.Close()

	// First sense per (word, folded gloss) wins; later ones are doomed.
	seen := make(map[string]bool)
	var doomed []int64
	for rows.Next() {
		var (
			id         int64
			wordID     int64
			definition string
		)
		if err := rows.Scan(&id, &wordID, &definition); err != nil {
			return 0, errors.Wrap(err, "failed to scan sense")
		}
		key := fmt.Sprintf("%d\x00%s", wordID, lexicon.GlossHash(definition))
		if seen[key] {
			doomed = append(doomed, id)
			continue
		}
		seen[key] = true
	}
	if err := rows.Err(); err != nil {
		return 0, errors.Wrap(err, "failed to iterate senses")
	}
	if len(doomed) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM senses WHERE id = ?`)
	if err != nil {
		return 0, errors.Wrap(err, "failed to prepare delete")
	}
	defer stmt.Close()

	for _, id := range doomed {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return 0, errors.Wrapf(err, "failed to delete sense %d", id)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit sense deduplication")
	}
	return int64(len(doomed)), nil
}
