package steps

import (
	"context"
	"database/sql"
	"strings"

	"go.uber.org/zap"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/logger"
	"github.com/ankitdsmb/DictionaryImporter-sub008/pipeline"
)

// Grammar tidies the source's definition text: strips leading list
// markers left over from source markup, collapses whitespace runs, and
// drops trailing separators. Must run after senses so numbering sees
// the rows canonicalize kept.
//
// definition_hash is the merge-time identity and stays untouched;
// cleanups never change which staging row a sense came from.
type Grammar struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

// NewGrammar creates the grammar cleanup step.
func NewGrammar(database *sql.DB, log *zap.SugaredLogger) *Grammar {
	return &Grammar{
		db:  database,
		log: log.Named("step.grammar"),
	}
}

// Name returns the registered step name.
func (s *Grammar) Name() string {
	return NameGrammar
}

// Execute rewrites definitions whose cleaned form differs.
func (s *Grammar) Execute(ctx context.Context, pctx *pipeline.Context) error {
	query := `
		SELECT id, definition
		FROM senses
		WHERE source_code = ?
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, pctx.SourceCode)
	if err != nil {
		return errors.Wrap(err, "failed to load definitions")
	}

	type rewrite struct {
		id         int64
		definition string
	}
	var (
		updates []rewrite
		total   int
	)
	for rows.Next() {
		var (
			id         int64
			definition string
		)
		if err := rows.Scan(&id, &definition); err != nil {
			rows.Close()
			return errors.Wrap(err, "failed to scan definition")
		}
		total++
		if cleaned := cleanDefinition(definition); cleaned != definition {
			updates = append(updates, rewrite{id: id, definition: cleaned})
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return errors.Wrap(err, "failed to iterate definitions")
	}
	rows.Close()

	if len(updates) > 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return errors.Wrap(err, "failed to begin transaction")
		}
		defer tx.Rollback()

		stmt, err := tx.PrepareContext(ctx, `UPDATE senses SET definition = ? WHERE id = ?`)
		if err != nil {
			return errors.Wrap(err, "failed to prepare rewrite")
		}
		defer stmt.Close()

		for _, u := range updates {
			if _, err := stmt.ExecContext(ctx, u.definition, u.id); err != nil {
				return errors.Wrapf(err, "failed to rewrite definition for sense %d", u.id)
			}
		}
		if err := tx.Commit(); err != nil {
			return errors.Wrap(err, "failed to commit definition cleanup")
		}
	}

	s.log.Debugw("Cleaned definitions",
		logger.FieldSource, pctx.SourceCode,
		"senses", total,
		"rewritten", len(updates),
	)
	return nil
}

// cleanDefinition applies idempotent text cleanups. Leading hyphens are
// kept because suffix entries legitimately start with one.
func cleanDefinition(def string) string {
	def = strings.TrimSpace(def)

	// Wiki-style list markers at the start of the gloss.
	for {
		trimmed := strings.TrimSpace(strings.TrimLeft(def, "#*:"))
		if trimmed == def {
			break
		}
		def = trimmed
	}

	def = strings.Join(strings.Fields(def), " ")
	def = strings.TrimRight(def, " ;,")
	return def
}
