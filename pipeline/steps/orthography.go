package steps

import (
	"context"
	"database/sql"
	"strings"

	"go.uber.org/zap"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/lexicon"
	"github.com/ankitdsmb/DictionaryImporter-sub008/logger"
	"github.com/ankitdsmb/DictionaryImporter-sub008/pipeline"
)

// Orthography fills the derived written forms on the source's words:
// ascii_form from the diacritic-folded normalized form, and ipa
// normalized to slash-wrapped /.../ notation.
type Orthography struct {
	db    *sql.DB
	words *lexicon.CanonicalStore
	log   *zap.SugaredLogger
}

type orthographyUpdate struct {
	wordID    int64
	asciiForm string
	ipa       string
}

// NewOrthography creates the orthography step.
func NewOrthography(database *sql.DB, log *zap.SugaredLogger) *Orthography {
	return &Orthography{
		db:    database,
		words: lexicon.NewCanonicalStore(database),
		log:   log.Named("step.orthography"),
	}
}

// Name returns the registered step name.
func (s *Orthography) Name() string {
	return NameOrthography
}

// Execute writes ascii_form and normalized ipa where they changed.
func (s *Orthography) Execute(ctx context.Context, pctx *pipeline.Context) error {
	updates, total, err := s.pendingUpdates(ctx, pctx.SourceCode)
	if err != nil {
		return errors.Wrap(err, "failed to load words for orthography")
	}

	for _, u := range updates {
		if err := s.words.UpdateWordOrthography(ctx, u.wordID, u.asciiForm, u.ipa); err != nil {
			return errors.Wrapf(err, "failed to update orthography for word %d", u.wordID)
		}
	}

	s.log.Debugw("Updated orthography",
		logger.FieldSource, pctx.SourceCode,
		"words", total,
		"updated", len(updates),
	)
	return nil
}

func (s *Orthography) pendingUpdates(ctx context.Context, sourceCode string) ([]orthographyUpdate, int, error) {
	query := `
		SELECT DISTINCT w.id, w.normalized, COALESCE(w.ascii_form, ''), COALESCE(w.ipa, '')
		FROM words w
		JOIN senses s ON s.word_id = w.id
		WHERE s.source_code = ?
		ORDER BY w.id`

	rows, err := s.db.QueryContext(ctx, query, sourceCode)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		updates []orthographyUpdate
		total   int
	)
	for rows.Next() {
		var (
			id         int64
			normalized string
			asciiForm  string
			ipa        string
		)
		if err := rows.Scan(&id, &normalized, &asciiForm, &ipa); err != nil {
			return nil, 0, err
		}
		total++

		wantASCII := lexicon.ASCIIFold(normalized)
		wantIPA := normalizeIPA(ipa)
		if wantASCII != asciiForm || wantIPA != ipa {
			updates = append(updates, orthographyUpdate{id, wantASCII, wantIPA})
		}
	}
	return updates, total, rows.Err()
}

// normalizeIPA strips surrounding whitespace and any existing slash or
// bracket delimiters, then wraps the transcription in slashes. Empty
// input stays empty.
func normalizeIPA(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "/[]")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return "/" + s + "/"
}
