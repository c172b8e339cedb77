package steps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	dicttest "github.com/ankitdsmb/DictionaryImporter-sub008/internal/testing"
)

func TestCanonicalize_TrimsAndDedupes(t *testing.T) {
	db := dicttest.CreateTestDB(t)
	ctx := context.Background()

	bankID := insertWord(t, db, "bank", "en")
	kept := insertSense(t, db, bankID, "noun", "A financial institution. ", "EN-WIKT")
	insertSense(t, db, bankID, "noun", "a  financial institution.", "EN-WIKT")
	insertSense(t, db, bankID, "noun", "The edge of a river.", "EN-WIKT")

	step := NewCanonicalize(db, zap.NewNop().Sugar())
	require.NoError(t, step.Execute(ctx, stepCtx("EN-WIKT")))

	var count int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM senses WHERE word_id = ?`, bankID).Scan(&count))
	assert.Equal(t, 2, count, "case and whitespace variants fold into one sense")

	var definition string
	require.NoError(t, db.QueryRow(
		`SELECT definition FROM senses WHERE id = ?`, kept).Scan(&definition))
	assert.Equal(t, "A financial institution.", definition, "first sense wins, trimmed")
}

func TestCanonicalize_FoldsAcrossSources(t *testing.T) {
	db := dicttest.CreateTestDB(t)
	ctx := context.Background()

	dogID := insertWord(t, db, "dog", "en")
	insertSense(t, db, dogID, "noun", "A domesticated canine.", "EN-WIKT")
	insertSense(t, db, dogID, "noun", "a domesticated canine.", "EN-GCIDE")

	step := NewCanonicalize(db, zap.NewNop().Sugar())
	require.NoError(t, step.Execute(ctx, stepCtx("EN-WIKT")))

	var count int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM senses WHERE word_id = ?`, dogID).Scan(&count))
	assert.Equal(t, 1, count, "duplicate from another source folds too")

	var sourceCode string
	require.NoError(t, db.QueryRow(
		`SELECT source_code FROM senses WHERE word_id = ?`, dogID).Scan(&sourceCode))
	assert.Equal(t, "EN-WIKT", sourceCode, "earlier insert wins")
}

func TestCanonicalize_DistinctSensesUntouched(t *testing.T) {
	db := dicttest.CreateTestDB(t)
	ctx := context.Background()

	bankID := insertWord(t, db, "bank", "en")
	insertSense(t, db, bankID, "noun", "A financial institution.", "EN-WIKT")
	insertSense(t, db, bankID, "verb", "To tilt an aircraft.", "EN-WIKT")

	step := NewCanonicalize(db, zap.NewNop().Sugar())
	require.NoError(t, step.Execute(ctx, stepCtx("EN-WIKT")))

	var count int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM senses WHERE word_id = ?`, bankID).Scan(&count))
	assert.Equal(t, 2, count)
}
