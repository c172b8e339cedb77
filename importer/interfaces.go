package importer

import (
	"context"
	"io"

	"github.com/ankitdsmb/DictionaryImporter-sub008/lexicon"
)

// Extractor turns a raw byte stream into a lazy record sequence.
// Implementations must not read past what Next consumes.
type Extractor interface {
	Extract(ctx context.Context, r io.Reader) (lexicon.RecordIterator, error)
}

// Transformer decodes one raw record into zero or more entries.
// Returning an empty slice skips the record without error.
type Transformer interface {
	Transform(rec *lexicon.RawRecord) ([]*lexicon.DictionaryEntry, error)
}

// Loader persists one batch of entries into staging. Satisfied by
// lexicon.StagingStore; the insert must be idempotent on entry hash.
type Loader interface {
	SaveBatch(ctx context.Context, entries []*lexicon.DictionaryEntry) (int64, error)
}

// FragmentSaver stores a raw source fragment and returns its
// content-hash reference. Satisfied by lexicon.FragmentStore.
type FragmentSaver interface {
	SaveFragment(ctx context.Context, sourceCode string, payload []byte) (string, error)
}

// MergeExecutor moves a source's sealed staging rows into the canonical
// lexicon. Satisfied by lexicon.CanonicalStore.
type MergeExecutor interface {
	MergeFromStaging(ctx context.Context, sourceCode string) (lexicon.MergeStats, error)
}

// ImportControl tracks per-source stage state and finalizes imports.
// Satisfied by lexicon.StageStore.
type ImportControl interface {
	MarkCompleted(ctx context.Context, sourceCode, stage string) error
	TryFinalize(ctx context.Context, sourceCode string) error
	ResetSource(sourceCode string)
}
