package steps

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/logger"
	"github.com/ankitdsmb/DictionaryImporter-sub008/pipeline"
)

// Senses assigns sense_number within each word, ordered by part of
// speech then insertion id, numbered from 1. Every word the source
// contributed to is renumbered so cross-source senses stay consistent
// after canonicalize deletes duplicates.
type Senses struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

// NewSenses creates the sense-numbering step.
func NewSenses(database *sql.DB, log *zap.SugaredLogger) *Senses {
	return &Senses{
		db:  database,
		log: log.Named("step.senses"),
	}
}

// Name returns the registered step name.
func (s *Senses) Name() string {
	return NameSenses
}

// Execute renumbers senses for every word the source touched.
func (s *Senses) Execute(ctx context.Context, pctx *pipeline.Context) error {
	query := `
		SELECT id, word_id, sense_number
		FROM senses
		WHERE word_id IN (SELECT DISTINCT word_id FROM senses WHERE source_code = ?)
		ORDER BY word_id, part_of_speech, id`

	rows, err := s.db.QueryContext(ctx, query, pctx.SourceCode)
	if err != nil {
		return errors.Wrap(err, "failed to load senses for numbering")
	}
	defer rows.Close()

	type renumber struct {
		id     int64
		number int
	}
	var (
		updates     []renumber
		currentWord int64 = -1
		next        int
		words       int
	)
	for rows.Next() {
		var (
			id      int64
			wordID  int64
			current int
		)
		if err := rows.Scan(&id, &wordID, &current); err != nil {
			return errors.Wrap(err, "failed to scan sense")
		}
		if wordID != currentWord {
			currentWord = wordID
			next = 0
			words++
		}
		next++
		if current != next {
			updates = append(updates, renumber{id: id, number: next})
		}
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "failed to iterate senses")
	}

	if len(updates) > 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return errors.Wrap(err, "failed to begin transaction")
		}
		defer tx.Rollback()

		stmt, err := tx.PrepareContext(ctx, `UPDATE senses SET sense_number = ? WHERE id = ?`)
		if err != nil {
			return errors.Wrap(err, "failed to prepare renumber")
		}
		defer stmt.Close()

		for _, u := range updates {
			if _, err := stmt.ExecContext(ctx, u.number, u.id); err != nil {
				return errors.Wrapf(err, "failed to renumber sense %d", u.id)
			}
		}
		if err := tx.Commit(); err != nil {
			return errors.Wrap(err, "failed to commit sense numbering")
		}
	}

	s.log.Debugw("Numbered senses",
		logger.FieldSource, pctx.SourceCode,
		"words", words,
		"renumbered", len(updates),
	)
	return nil
}
