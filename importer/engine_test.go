package importer

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	dicttest "github.com/ankitdsmb/DictionaryImporter-sub008/internal/testing"
	"github.com/ankitdsmb/DictionaryImporter-sub008/lexicon"
	"github.com/ankitdsmb/DictionaryImporter-sub008/progress"
)

// fakeExtractor ignores the stream and yields canned records.
type fakeExtractor struct {
	records []lexicon.RawRecord
	openErr error
	iterErr error
}

func (f *fakeExtractor) Extract(_ context.Context, _ io.Reader) (lexicon.RecordIterator, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	if f.iterErr != nil {
		return &failingIterator{records: f.records, err: f.iterErr}, nil
	}
	return lexicon.NewSliceIterator(f.records), nil
}

// failingIterator yields its records, then surfaces err from Err().
type failingIterator struct {
	records []lexicon.RawRecord
	pos     int
	err     error
}

func (it *failingIterator) Next() bool {
	if it.pos >= len(it.records) {
		return false
	}
	it.pos++
	return true
}

func (it *failingIterator) Record() lexicon.RawRecord { return it.records[it.pos-1] }
func (it *failingIterator) Err() error                { return it.err }

// tabTransformer turns "headword<TAB>definition" payloads into one entry.
type tabTransformer struct {
	sourceCode string
}

func (tr *tabTransformer) Transform(rec *lexicon.RawRecord) ([]*lexicon.DictionaryEntry, error) {
	parts := strings.SplitN(string(rec.Payload), "\t", 2)
	if len(parts) != 2 {
		return nil, errors.Newf("malformed record %d", rec.Ordinal)
	}
	return []*lexicon.DictionaryEntry{{
		SourceCode:   tr.sourceCode,
		Headword:     parts[0],
		Language:     "en",
		PartOfSpeech: "noun",
		Definition:   parts[1],
	}}, nil
}

// funcTransformer delegates so tests can hook arbitrary behavior.
type funcTransformer struct {
	fn func(*lexicon.RawRecord) ([]*lexicon.DictionaryEntry, error)
}

func (tr *funcTransformer) Transform(rec *lexicon.RawRecord) ([]*lexicon.DictionaryEntry, error) {
	return tr.fn(rec)
}

func tabRecords(lines ...string) []lexicon.RawRecord {
	records := make([]lexicon.RawRecord, len(lines))
	for i, line := range lines {
		records[i] = lexicon.RawRecord{Ordinal: i + 1, Payload: []byte(line)}
	}
	return records
}

func testSource() SourceDefinition {
	return SourceDefinition{
		SourceCode: "EN-TEST",
		SourceName: "Test Dictionary",
		Format:     "tab",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("")), nil
		},
	}
}

type engineHarness struct {
	db        *sql.DB
	staging   *lexicon.StagingStore
	fragments *lexicon.FragmentStore
	control   *lexicon.StageStore
}

func newTestEngine(t *testing.T, source SourceDefinition, extractor Extractor, transformer Transformer, settings Settings) (*Engine, *engineHarness) {
	t.Helper()
	database := dicttest.CreateTestDB(t)
	h := &engineHarness{
		db:        database,
		staging:   lexicon.NewStagingStore(database),
		fragments: lexicon.NewFragmentStore(database),
		control:   lexicon.NewStageStore(database),
	}
	engine := NewEngine(
		source,
		extractor,
		transformer,
		h.staging,
		h.fragments,
		lexicon.NewStandardValidator(),
		h.control,
		settings,
		progress.NewNopEmitter(),
		zap.NewNop().Sugar(),
	)
	return engine, h
}

func TestEngine_StagesAndFinalizes(t *testing.T) {
	extractor := &fakeExtractor{records: tabRecords(
		"bank\tA financial institution.",
		"river\tA natural watercourse.",
		"dawn\tThe first light of day.",
	)}
	engine, h := newTestEngine(t, testSource(), extractor, &tabTransformer{sourceCode: "EN-TEST"},
		Settings{BatchSize: 100, FinalizeTimeout: time.Second})

	stats, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.RecordsRead)
	assert.Equal(t, int64(3), stats.EntriesTransformed)
	assert.Equal(t, int64(3), stats.Staged)
	assert.Equal(t, int64(1), stats.Batches)
	assert.Zero(t, stats.Ineligible)
	assert.Zero(t, stats.Invalid)

	total, sealed, err := h.staging.CountBySource(context.Background(), "EN-TEST")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(3), sealed, "finalize must seal every staged row")

	status, err := h.control.Status(context.Background(), "EN-TEST", lexicon.StageRawImport)
	require.NoError(t, err)
	assert.Equal(t, lexicon.StageStatusFinalized, status)

	fragments, err := h.fragments.CountBySource(context.Background(), "EN-TEST")
	require.NoError(t, err)
	assert.Equal(t, int64(3), fragments)
}

func TestEngine_FlushesAtBatchSize(t *testing.T) {
	extractor := &fakeExtractor{records: tabRecords(
		"one\tFirst.",
		"two\tSecond.",
		"three\tThird.",
		"four\tFourth.",
		"five\tFifth.",
	)}
	engine, _ := newTestEngine(t, testSource(), extractor, &tabTransformer{sourceCode: "EN-TEST"},
		Settings{BatchSize: 2, FinalizeTimeout: time.Second})

	stats, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Staged)
	assert.Equal(t, int64(3), stats.Batches, "two full batches plus the final partial flush")
}

func TestEngine_SkipsIneligibleAndInvalid(t *testing.T) {
	extractor := &fakeExtractor{records: tabRecords("ignored\tignored")}
	transformer := &funcTransformer{fn: func(*lexicon.RawRecord) ([]*lexicon.DictionaryEntry, error) {
		return []*lexicon.DictionaryEntry{
			{SourceCode: "EN-TEST", Headword: "bank", Language: "en", PartOfSpeech: "noun", Definition: "A financial institution."},
			{SourceCode: "EN-TEST", Headword: "1914", Language: "en", PartOfSpeech: "noun", Definition: "A year."},
			{SourceCode: "EN-TEST", Headword: "hollow", Language: "en", PartOfSpeech: "noun", Definition: ""},
		}, nil
	}}
	engine, h := newTestEngine(t, testSource(), extractor, transformer,
		Settings{BatchSize: 100, FinalizeTimeout: time.Second})

	stats, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.EntriesTransformed)
	assert.Equal(t, int64(1), stats.Ineligible, "digits-only headword")
	assert.Equal(t, int64(1), stats.Invalid, "empty definition")
	assert.Equal(t, int64(1), stats.Staged)

	total, _, err := h.staging.CountBySource(context.Background(), "EN-TEST")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestEngine_OneFragmentPerRecord(t *testing.T) {
	extractor := &fakeExtractor{records: tabRecords("bank\tboth senses")}
	transformer := &funcTransformer{fn: func(*lexicon.RawRecord) ([]*lexicon.DictionaryEntry, error) {
		return []*lexicon.DictionaryEntry{
			{SourceCode: "EN-TEST", Headword: "bank", Language: "en", PartOfSpeech: "noun", Definition: "A financial institution."},
			{SourceCode: "EN-TEST", Headword: "bank", Language: "en", PartOfSpeech: "verb", Definition: "To tilt an aircraft."},
		}, nil
	}}
	engine, h := newTestEngine(t, testSource(), extractor, transformer,
		Settings{BatchSize: 100, FinalizeTimeout: time.Second})

	stats, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Staged)

	fragments, err := h.fragments.CountBySource(context.Background(), "EN-TEST")
	require.NoError(t, err)
	assert.Equal(t, int64(1), fragments, "entries from one record share a fragment")

	var distinctRefs int64
	err = h.db.QueryRow(
		`SELECT COUNT(DISTINCT fragment_ref) FROM staging_entries WHERE source_code = ?`,
		"EN-TEST").Scan(&distinctRefs)
	require.NoError(t, err)
	assert.Equal(t, int64(1), distinctRefs)
}

func TestEngine_EmptyStreamFails(t *testing.T) {
	extractor := &fakeExtractor{}
	engine, h := newTestEngine(t, testSource(), extractor, &tabTransformer{sourceCode: "EN-TEST"},
		Settings{BatchSize: 100, FinalizeTimeout: time.Second})

	_, err := engine.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoSourceCode))

	status, statusErr := h.control.Status(context.Background(), "EN-TEST", lexicon.StageRawImport)
	require.NoError(t, statusErr)
	assert.Equal(t, lexicon.StageStatusPending, status, "a failed import must not mark its stage")
}

func TestEngine_ReplayStagesNothing(t *testing.T) {
	records := tabRecords(
		"bank\tA financial institution.",
		"river\tA natural watercourse.",
	)
	engine, h := newTestEngine(t, testSource(), &fakeExtractor{records: records},
		&tabTransformer{sourceCode: "EN-TEST"},
		Settings{BatchSize: 100, FinalizeTimeout: time.Second})

	first, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), first.Staged)

	second, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.RecordsRead)
	assert.Zero(t, second.Staged, "entry hashes deduplicate the replay")

	total, _, err := h.staging.CountBySource(context.Background(), "EN-TEST")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestEngine_CancelledMidIteration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	extractor := &fakeExtractor{records: tabRecords(
		"bank\tA financial institution.",
		"river\tA natural watercourse.",
		"dawn\tThe first light of day.",
	)}
	base := &tabTransformer{sourceCode: "EN-TEST"}
	transformer := &funcTransformer{fn: func(rec *lexicon.RawRecord) ([]*lexicon.DictionaryEntry, error) {
		if rec.Ordinal == 2 {
			cancel()
			return nil, nil
		}
		return base.Transform(rec)
	}}
	engine, h := newTestEngine(t, testSource(), extractor, transformer,
		Settings{BatchSize: 100, FinalizeTimeout: time.Second})

	stats, err := engine.Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Contains(t, err.Error(), "import cancelled")
	assert.Equal(t, int64(2), stats.RecordsRead, "the record after cancellation is never processed")

	status, statusErr := h.control.Status(context.Background(), "EN-TEST", lexicon.StageRawImport)
	require.NoError(t, statusErr)
	assert.Equal(t, lexicon.StageStatusPending, status)
}

func TestEngine_ExtractionError(t *testing.T) {
	extractor := &fakeExtractor{
		records: tabRecords("bank\tA financial institution."),
		iterErr: errors.New("gzip stream truncated"),
	}
	engine, _ := newTestEngine(t, testSource(), extractor, &tabTransformer{sourceCode: "EN-TEST"},
		Settings{BatchSize: 100, FinalizeTimeout: time.Second})

	stats, err := engine.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extraction failed for EN-TEST")
	assert.Equal(t, int64(1), stats.RecordsRead)
}

func TestEngine_TransformError(t *testing.T) {
	extractor := &fakeExtractor{records: tabRecords("no-tab-here")}
	engine, _ := newTestEngine(t, testSource(), extractor, &tabTransformer{sourceCode: "EN-TEST"},
		Settings{BatchSize: 100, FinalizeTimeout: time.Second})

	_, err := engine.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to transform record 1")
}

func TestEngine_OpenError(t *testing.T) {
	source := testSource()
	source.Open = func() (io.ReadCloser, error) {
		return nil, errors.New("no such file")
	}
	engine, _ := newTestEngine(t, source, &fakeExtractor{}, &tabTransformer{sourceCode: "EN-TEST"},
		Settings{BatchSize: 100, FinalizeTimeout: time.Second})

	_, err := engine.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open source EN-TEST")
}
