package steps

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	dicttest "github.com/ankitdsmb/DictionaryImporter-sub008/internal/testing"
	"github.com/ankitdsmb/DictionaryImporter-sub008/lexicon"
	"github.com/ankitdsmb/DictionaryImporter-sub008/pipeline"
)

func insertWord(t *testing.T, db *sql.DB, normalized, language string) int64 {
	t.Helper()

	res, err := db.Exec(
		`INSERT INTO words (normalized, language, headword) VALUES (?, ?, ?)`,
		normalized, language, normalized)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func insertSense(t *testing.T, db *sql.DB, wordID int64, pos, definition, sourceCode string) int64 {
	t.Helper()

	res, err := db.Exec(
		`INSERT INTO senses (word_id, part_of_speech, definition, definition_hash, source_code)
		 VALUES (?, ?, ?, ?, ?)`,
		wordID, pos, definition, lexicon.DefinitionHash(pos, definition), sourceCode)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func stepCtx(sourceCode string) *pipeline.Context {
	return &pipeline.Context{
		SourceCode: sourceCode,
		SourceName: sourceCode,
		RunID:      "run-test",
	}
}

func TestStandardOrder(t *testing.T) {
	assert.Equal(t, []string{
		"canonicalize", "enrich", "senses", "orthography",
		"grammar", "concepts", "graph", "verify",
	}, StandardOrder())
}

func TestRegisterStandard(t *testing.T) {
	db := dicttest.CreateTestDB(t)
	registry := pipeline.NewRegistry()

	RegisterStandard(registry, db, zap.NewNop().Sugar())

	require.NoError(t, registry.Validate(StandardOrder()...))
	assert.Len(t, registry.Names(), len(StandardOrder()))
	for _, name := range StandardOrder() {
		assert.True(t, registry.Has(name), name)
	}
}
