package steps

import (
	"context"
	"database/sql"
	"runtime"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/logger"
	"github.com/ankitdsmb/DictionaryImporter-sub008/pipeline"
)

// Enrich computes derived per-word attributes (character count, a rough
// syllable estimate, multiword flag) for the words the source touched
// and upserts them into word_attributes. Attribute computation runs on
// a worker pool; the write is one transaction.
type Enrich struct {
	db       *sql.DB
	log      *zap.SugaredLogger
	poolSize int
}

type wordAttributes struct {
	wordID           int64
	charCount        int
	syllableEstimate int
	multiword        bool
}

// NewEnrich creates the enrich step with a pool sized to half the CPUs.
func NewEnrich(database *sql.DB, log *zap.SugaredLogger) *Enrich {
	size := runtime.NumCPU() / 2
	if size < 1 {
		size = 1
	}
	return &Enrich{
		db:       database,
		log:      log.Named("step.enrich"),
		poolSize: size,
	}
}

// Name returns the registered step name.
func (s *Enrich) Name() string {
	return NameEnrich
}

// Execute recomputes attributes for the source's words.
func (s *Enrich) Execute(ctx context.Context, pctx *pipeline.Context) error {
	words, err := s.loadWords(ctx, pctx.SourceCode)
	if err != nil {
		return errors.Wrap(err, "failed to load words for enrichment")
	}
	if len(words) == 0 {
		s.log.Debugw("No words to enrich", logger.FieldSource, pctx.SourceCode)
		return nil
	}

	pool, err := ants.NewPool(s.poolSize)
	if err != nil {
		return errors.Wrap(err, "failed to create enrichment pool")
	}
	defer pool.Release()

	// Each task writes its own slot, so no lock is needed.
	attrs := make([]wordAttributes, len(words))
	var wg sync.WaitGroup
	var submitErr error
	for i := range words {
		w := words[i]
		slot := &attrs[i]
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			*slot = computeAttributes(w.id, w.normalized)
		}); err != nil {
			wg.Done()
			submitErr = errors.Wrap(err, "failed to submit enrichment task")
			break
		}
	}
	wg.Wait()
	if submitErr != nil {
		return submitErr
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "enrichment cancelled")
	}

	if err := s.saveAttributes(ctx, attrs); err != nil {
		return errors.Wrap(err, "failed to save word attributes")
	}

	s.log.Debugw("Enriched words",
		logger.FieldSource, pctx.SourceCode,
		logger.FieldCount, len(words),
		"pool_size", s.poolSize,
	)
	return nil
}

type enrichWord struct {
	id         int64
	normalized string
}

func (s *Enrich) loadWords(ctx context.Context, sourceCode string) ([]enrichWord, error) {
	query := `
		SELECT DISTINCT w.id, w.normalized
		FROM words w
		JOIN senses s ON s.word_id = w.id
		WHERE s.source_code = ?
		ORDER BY w.id`

	rows, err := s.db.QueryContext(ctx, query, sourceCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []enrichWord
	for rows.Next() {
		var w enrichWord
		if err := rows.Scan(&w.id, &w.normalized); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

func (s *Enrich) saveAttributes(ctx context.Context, attrs []wordAttributes) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	query := `
		INSERT INTO word_attributes (word_id, char_count, syllable_estimate, is_multiword)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (word_id) DO UPDATE SET
			char_count = excluded.char_count,
			syllable_estimate = excluded.syllable_estimate,
			is_multiword = excluded.is_multiword,
			updated_at = CURRENT_TIMESTAMP`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return errors.Wrap(err, "failed to prepare upsert")
	}
	defer stmt.Close()

	for _, a := range attrs {
		multiword := 0
		if a.multiword {
			multiword = 1
		}
		if _, err := stmt.ExecContext(ctx, a.wordID, a.charCount, a.syllableEstimate, multiword); err != nil {
			return errors.Wrapf(err, "failed to upsert attributes for word %d", a.wordID)
		}
	}
	return tx.Commit()
}

func computeAttributes(wordID int64, normalized string) wordAttributes {
	return wordAttributes{
		wordID:           wordID,
		charCount:        utf8.RuneCountInString(normalized),
		syllableEstimate: syllableEstimate(normalized),
		multiword:        strings.ContainsRune(normalized, ' '),
	}
}

// syllableEstimate counts maximal vowel runs. A rough heuristic: words
// whose script has no Latin vowels count as one syllable per word part.
func syllableEstimate(s string) int {
	count := 0
	inVowelRun := false
	sawLetter := false
	for _, r := range s {
		if !unicode.IsLetter(r) {
			inVowelRun = false
			continue
		}
		sawLetter = true
		if isVowel(r) {
			if !inVowelRun {
				count++
			}
			inVowelRun = true
		} else {
			inVowelRun = false
		}
	}
	if count == 0 && sawLetter {
		return 1
	}
	return count
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y',
		'á', 'é', 'í', 'ó', 'ú', 'à', 'è', 'ì', 'ò', 'ù',
		'ä', 'ë', 'ï', 'ö', 'ü', 'â', 'ê', 'î', 'ô', 'û',
		'å', 'ø', 'æ', 'œ':
		return true
	}
	return false
}
