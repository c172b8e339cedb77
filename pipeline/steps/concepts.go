package steps

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/lexicon"
	"github.com/ankitdsmb/DictionaryImporter-sub008/logger"
	"github.com/ankitdsmb/DictionaryImporter-sub008/pipeline"
)

// Concepts groups senses that share a case- and whitespace-folded
// gloss. Concept identity is the gloss hash, so creation is INSERT OR
// IGNORE idempotent: re-running attaches new members without
// duplicating concepts, and two sources defining a word the same way
// land in one concept.
type Concepts struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

// NewConcepts creates the concept-grouping step.
func NewConcepts(database *sql.DB, log *zap.SugaredLogger) *Concepts {
	return &Concepts{
		db:  database,
		log: log.Named("step.concepts"),
	}
}

// Name returns the registered step name.
func (s *Concepts) Name() string {
	return NameConcepts
}

// Execute creates concepts for the source's senses and links members.
func (s *Concepts) Execute(ctx context.Context, pctx *pipeline.Context) error {
	query := `
		SELECT id, definition
		FROM senses
		WHERE source_code = ?
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, pctx.SourceCode)
	if err != nil {
		return errors.Wrap(err, "failed to load senses for concepts")
	}

	type member struct {
		senseID    int64
		glossHash  string
		definition string
	}
	var members []member
	for rows.Next() {
		var m member
		if err := rows.Scan(&m.senseID, &m.definition); err != nil {
			rows.Close()
			return errors.Wrap(err, "failed to scan sense")
		}
		m.glossHash = lexicon.GlossHash(m.definition)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return errors.Wrap(err, "failed to iterate senses")
	}
	rows.Close()

	if len(members) == 0 {
		s.log.Debugw("No senses to group", logger.FieldSource, pctx.SourceCode)
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	// The first sense to claim a gloss hash supplies the display gloss.
	insertConcept, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO concepts (gloss_hash, gloss) VALUES (?, ?)`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare concept insert")
	}
	defer insertConcept.Close()

	insertMember, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO concept_members (concept_id, sense_id)
		SELECT id, ? FROM concepts WHERE gloss_hash = ?`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare member insert")
	}
	defer insertMember.Close()

	var created, linked int64
	for _, m := range members {
		result, err := insertConcept.ExecContext(ctx, m.glossHash, m.definition)
		if err != nil {
			return errors.Wrapf(err, "failed to insert concept for sense %d", m.senseID)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "failed to read concept insert result")
		}
		created += n

		result, err = insertMember.ExecContext(ctx, m.senseID, m.glossHash)
		if err != nil {
			return errors.Wrapf(err, "failed to link sense %d", m.senseID)
		}
		n, err = result.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "failed to read member insert result")
		}
		linked += n
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit concept grouping")
	}

	s.log.Debugw("Grouped concepts",
		logger.FieldSource, pctx.SourceCode,
		"senses", len(members),
		"concepts_created", created,
		"members_linked", linked,
	)
	return nil
}
