package steps

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	dicttest "github.com/ankitdsmb/DictionaryImporter-sub008/internal/testing"
	"github.com/ankitdsmb/DictionaryImporter-sub008/lexicon"
)

// stageSealMerge pushes entries through staging into the canonical
// lexicon so graph building has words to resolve against.
func stageSealMerge(t *testing.T, db *sql.DB, sourceCode string, entries []*lexicon.DictionaryEntry) {
	t.Helper()

	_, err := lexicon.NewStagingStore(db).SaveBatch(context.Background(), entries)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE staging_entries SET sealed = 1 WHERE source_code = ?`, sourceCode)
	require.NoError(t, err)
	_, err = lexicon.NewCanonicalStore(db).MergeFromStaging(context.Background(), sourceCode)
	require.NoError(t, err)
}

func graphEntries() []*lexicon.DictionaryEntry {
	return []*lexicon.DictionaryEntry{
		{
			SourceCode:         "EN-WIKT",
			Headword:           "Bank",
			NormalizedHeadword: "bank",
			Language:           "en",
			PartOfSpeech:       "noun",
			Definition:         "A financial institution.",
			Synonyms:           []string{"shore"},
			FragmentRef:        "frag-bank",
		},
		{
			SourceCode:         "EN-WIKT",
			Headword:           "Shore",
			NormalizedHeadword: "shore",
			Language:           "en",
			PartOfSpeech:       "noun",
			Definition:         "The land along a body of water.",
			FragmentRef:        "frag-shore",
		},
	}
}

func relationCount(t *testing.T, db *sql.DB, sourceCode string) int {
	t.Helper()

	var n int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM word_relations WHERE source_code = ?`, sourceCode).Scan(&n))
	return n
}

func TestGraphBuild_BuildsRelations(t *testing.T) {
	db := dicttest.CreateTestDB(t)
	ctx := context.Background()

	stageSealMerge(t, db, "EN-WIKT", graphEntries())

	step := NewGraphBuild(db, zap.NewNop().Sugar())
	require.NoError(t, step.Execute(ctx, stepCtx("EN-WIKT")))

	var relationType string
	require.NoError(t, db.QueryRow(`
		SELECT r.relation_type
		FROM word_relations r
		JOIN words f ON f.id = r.from_word_id
		JOIN words w ON w.id = r.to_word_id
		WHERE f.normalized = 'bank' AND w.normalized = 'shore'`).Scan(&relationType))
	assert.Equal(t, "synonym", relationType)
	assert.Equal(t, 1, relationCount(t, db, "EN-WIKT"))
}

func TestGraphBuild_ReplayAddsNothing(t *testing.T) {
	db := dicttest.CreateTestDB(t)
	ctx := context.Background()

	stageSealMerge(t, db, "EN-WIKT", graphEntries())

	step := NewGraphBuild(db, zap.NewNop().Sugar())
	require.NoError(t, step.Execute(ctx, stepCtx("EN-WIKT")))
	require.NoError(t, step.Execute(ctx, stepCtx("EN-WIKT")))

	assert.Equal(t, 1, relationCount(t, db, "EN-WIKT"))
}

func TestGraphBuild_RebuildClearsStaleEdges(t *testing.T) {
	db := dicttest.CreateTestDB(t)
	ctx := context.Background()

	stageSealMerge(t, db, "EN-WIKT", graphEntries())

	// Plant a stale edge that the current staging rows would not produce.
	var bankID, shoreID int64
	require.NoError(t, db.QueryRow(
		`SELECT id FROM words WHERE normalized = 'bank'`).Scan(&bankID))
	require.NoError(t, db.QueryRow(
		`SELECT id FROM words WHERE normalized = 'shore'`).Scan(&shoreID))
	_, err := db.Exec(`
		INSERT INTO word_relations (from_word_id, to_word_id, relation_type, source_code)
		VALUES (?, ?, 'see_also', 'EN-WIKT')`, shoreID, bankID)
	require.NoError(t, err)

	pctx := stepCtx("EN-WIKT")
	pctx.RebuildGraph = true

	step := NewGraphBuild(db, zap.NewNop().Sugar())
	require.NoError(t, step.Execute(ctx, pctx))

	assert.Equal(t, 1, relationCount(t, db, "EN-WIKT"))
	var stale int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM word_relations WHERE relation_type = 'see_also'`).Scan(&stale))
	assert.Equal(t, 0, stale, "rebuild clears edges the source no longer claims")
}

func TestGraphBuild_NoSealedEntriesNoop(t *testing.T) {
	db := dicttest.CreateTestDB(t)
	ctx := context.Background()

	step := NewGraphBuild(db, zap.NewNop().Sugar())
	require.NoError(t, step.Execute(ctx, stepCtx("EN-WIKT")))

	assert.Equal(t, 0, relationCount(t, db, "EN-WIKT"))
}
