package importer

import (
	"context"

	"go.uber.org/zap"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/lexicon"
	"github.com/ankitdsmb/DictionaryImporter-sub008/logger"
	"github.com/ankitdsmb/DictionaryImporter-sub008/progress"
)

// ImportStats counts what one engine run did.
type ImportStats struct {
	RecordsRead        int64
	EntriesTransformed int64
	Ineligible         int64
	Invalid            int64
	Staged             int64
	Batches            int64
}

// Engine drives one source's import: extract raw records, transform
// them into entries, normalize and validate each, and stage them in
// bounded batches. Flushed batches are never rolled back; staging is
// idempotent on entry hash, so a re-run after a crash skips what is
// already there.
type Engine struct {
	source      SourceDefinition
	extractor   Extractor
	transformer Transformer
	loader      Loader
	fragments   FragmentSaver
	validator   lexicon.Validator
	control     ImportControl
	settings    Settings
	emitter     progress.Emitter
	log         *zap.SugaredLogger
}

// NewEngine wires an engine for one source. The caller supplies the
// format-specific extractor and transformer; stores come from the
// factory.
func NewEngine(
	source SourceDefinition,
	extractor Extractor,
	transformer Transformer,
	loader Loader,
	fragments FragmentSaver,
	validator lexicon.Validator,
	control ImportControl,
	settings Settings,
	emitter progress.Emitter,
	log *zap.SugaredLogger,
) *Engine {
	return &Engine{
		source:      source,
		extractor:   extractor,
		transformer: transformer,
		loader:      loader,
		fragments:   fragments,
		validator:   validator,
		control:     control,
		settings:    settings.withDefaults(),
		emitter:     emitter,
		log:         log.Named("importer.engine").With(logger.FieldSource, source.SourceCode),
	}
}

// Run imports the source to exhaustion, marks its raw-import stage
// complete, and finalizes under the configured timeout. The finalize
// context is a child of ctx, so run cancellation is still observed
// while waiting out a busy database.
func (e *Engine) Run(ctx context.Context) (ImportStats, error) {
	var stats ImportStats

	stream, err := e.source.Open()
	if err != nil {
		return stats, errors.Wrapf(err, "failed to open source %s", e.source.SourceCode)
	}
	defer stream.Close()

	iter, err := e.extractor.Extract(ctx, stream)
	if err != nil {
		return stats, errors.Wrapf(err, "failed to start extraction for %s", e.source.SourceCode)
	}

	batch := make([]*lexicon.DictionaryEntry, 0, e.settings.BatchSize)
	sourceCodeSeen := false

	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return stats, errors.Wrapf(err, "import cancelled for %s", e.source.SourceCode)
		}

		rec := iter.Record()
		stats.RecordsRead++

		entries, err := e.transformer.Transform(&rec)
		if err != nil {
			e.log.Errorw("Transform failed",
				"record", rec.Ordinal,
				logger.FieldError, err,
			)
			return stats, errors.Wrapf(err, "failed to transform record %d of %s", rec.Ordinal, e.source.SourceCode)
		}
		if len(entries) == 0 {
			continue
		}

		// One fragment per raw record; every entry it produced points
		// back at the same ref.
		ref, err := e.fragments.SaveFragment(ctx, e.source.SourceCode, rec.Payload)
		if err != nil {
			return stats, errors.Wrapf(err, "failed to save fragment for record %d of %s", rec.Ordinal, e.source.SourceCode)
		}

		for _, entry := range entries {
			stats.EntriesTransformed++
			entry.FragmentRef = ref

			if !e.prepare(entry, &stats) {
				continue
			}
			if entry.SourceCode != "" {
				sourceCodeSeen = true
			}

			batch = append(batch, entry)
			if len(batch) >= e.settings.BatchSize {
				if err := e.flush(ctx, batch, &stats); err != nil {
					return stats, err
				}
				batch = batch[:0]
			}
		}
	}
	if err := iter.Err(); err != nil {
		e.log.Errorw("Extraction failed",
			"records_read", stats.RecordsRead,
			logger.FieldError, err,
		)
		return stats, errors.Wrapf(err, "extraction failed for %s", e.source.SourceCode)
	}

	if err := e.flush(ctx, batch, &stats); err != nil {
		return stats, err
	}

	if !sourceCodeSeen {
		// An extractor that never produced a source code is a
		// misconfigured source, not an empty-but-healthy one; failing
		// here keeps the merge-completion guarantee honest.
		return stats, errors.Wrapf(errors.ErrNoSourceCode, "source %s", e.source.SourceCode)
	}

	if err := e.control.MarkCompleted(ctx, e.source.SourceCode, lexicon.StageRawImport); err != nil {
		return stats, errors.Wrapf(err, "failed to mark raw import complete for %s", e.source.SourceCode)
	}

	finalizeCtx, cancel := context.WithTimeout(ctx, e.settings.FinalizeTimeout)
	defer cancel()
	if err := e.control.TryFinalize(finalizeCtx, e.source.SourceCode); err != nil {
		return stats, errors.Wrapf(err, "failed to finalize import for %s", e.source.SourceCode)
	}

	e.log.Infow("Import finished",
		"records", stats.RecordsRead,
		logger.FieldEntries, stats.EntriesTransformed,
		"staged", stats.Staged,
		logger.FieldBatches, stats.Batches,
		"ineligible", stats.Ineligible,
		"invalid", stats.Invalid,
	)
	return stats, nil
}

// prepare normalizes one entry in place and reports whether it should
// be staged. Rejections are counted, logged at debug, and skipped.
func (e *Engine) prepare(entry *lexicon.DictionaryEntry, stats *ImportStats) bool {
	headword := lexicon.StripDomainMarkers(entry.Headword)
	entry.Headword = headword
	entry.Language = lexicon.DetectLanguage(headword, entry.Language)
	entry.NormalizedHeadword = lexicon.Normalize(headword)

	if !lexicon.IsCanonicalEligible(entry.NormalizedHeadword) {
		stats.Ineligible++
		e.log.Debugw("Skipping ineligible headword",
			logger.FieldHeadword, entry.Headword,
		)
		return false
	}

	if err := e.validator.Validate(entry); err != nil {
		stats.Invalid++
		e.log.Debugw("Skipping invalid entry",
			logger.FieldHeadword, entry.Headword,
			logger.FieldError, err,
		)
		return false
	}

	entry.EntryHash = lexicon.EntryHash(entry)
	return true
}

func (e *Engine) flush(ctx context.Context, batch []*lexicon.DictionaryEntry, stats *ImportStats) error {
	if len(batch) == 0 {
		return nil
	}

	inserted, err := e.loader.SaveBatch(ctx, batch)
	if err != nil {
		return errors.Wrapf(err, "failed to flush batch for %s", e.source.SourceCode)
	}
	stats.Batches++
	stats.Staged += inserted

	e.log.Debugw("Batch flushed",
		logger.FieldBatchSize, len(batch),
		"inserted", inserted,
	)
	e.emitter.EmitProgress(e.source.SourceCode, stats.Staged, map[string]interface{}{
		"unit":    "entries",
		"batches": stats.Batches,
	})
	return nil
}
