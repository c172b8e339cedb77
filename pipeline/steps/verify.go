package steps

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/logger"
	"github.com/ankitdsmb/DictionaryImporter-sub008/pipeline"
)

// Verify runs integrity assertions after every other step: no word is
// left without a sense, no concept without a member, and every sealed
// staging row for the source reached the canonical lexicon. Any
// violation fails the source's pipeline.
type Verify struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

// NewVerify creates the integrity-check step.
func NewVerify(database *sql.DB, log *zap.SugaredLogger) *Verify {
	return &Verify{
		db:  database,
		log: log.Named("step.verify"),
	}
}

// Name returns the registered step name.
func (s *Verify) Name() string {
	return NameVerify
}

// Execute collects every violation before failing, so one run reports
// them all.
func (s *Verify) Execute(ctx context.Context, pctx *pipeline.Context) error {
	var violations []string

	orphanWords, err := s.count(ctx, `
		SELECT COUNT(*) FROM words w
		WHERE NOT EXISTS (SELECT 1 FROM senses s WHERE s.word_id = w.id)`)
	if err != nil {
		return errors.Wrap(err, "failed to check words without senses")
	}
	if orphanWords > 0 {
		violations = append(violations, fmt.Sprintf("%d words have no senses", orphanWords))
	}

	emptyConcepts, err := s.count(ctx, `
		SELECT COUNT(*) FROM concepts c
		WHERE NOT EXISTS (SELECT 1 FROM concept_members m WHERE m.concept_id = c.id)`)
	if err != nil {
		return errors.Wrap(err, "failed to check concepts without members")
	}
	if emptyConcepts > 0 {
		violations = append(violations, fmt.Sprintf("%d concepts have no members", emptyConcepts))
	}

	// Matched at the word level: canonicalize may have folded a sealed
	// row's exact definition into another sense, but its word must
	// exist with at least one sense from this source.
	unmerged, err := s.count(ctx, `
		SELECT COUNT(*) FROM staging_entries st
		WHERE st.source_code = ? AND st.sealed = 1
		AND NOT EXISTS (
			SELECT 1 FROM words w
			JOIN senses s ON s.word_id = w.id AND s.source_code = st.source_code
			WHERE w.normalized = st.normalized_headword AND w.language = st.language
		)`, pctx.SourceCode)
	if err != nil {
		return errors.Wrap(err, "failed to check sealed rows against lexicon")
	}
	if unmerged > 0 {
		violations = append(violations, fmt.Sprintf("%d sealed staging rows are not merged", unmerged))
	}

	if len(violations) > 0 {
		return errors.Newf("integrity check failed for %s: %s",
			pctx.SourceCode, strings.Join(violations, "; "))
	}

	s.log.Debugw("Integrity verified", logger.FieldSource, pctx.SourceCode)
	return nil
}

func (s *Verify) count(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}
