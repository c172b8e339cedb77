package steps

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	dicttest "github.com/ankitdsmb/DictionaryImporter-sub008/internal/testing"
)

func conceptCounts(t *testing.T, db *sql.DB) (concepts, members int) {
	t.Helper()

	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM concepts`).Scan(&concepts))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM concept_members`).Scan(&members))
	return concepts, members
}

func TestConcepts_GroupsByFoldedGloss(t *testing.T) {
	db := dicttest.CreateTestDB(t)
	ctx := context.Background()

	bankID := insertWord(t, db, "bank", "en")
	lenderID := insertWord(t, db, "lender", "en")
	insertSense(t, db, bankID, "noun", "A financial institution.", "EN-WIKT")
	insertSense(t, db, lenderID, "noun", "a  financial institution.", "EN-WIKT")
	insertSense(t, db, bankID, "noun", "The edge of a river.", "EN-WIKT")

	step := NewConcepts(db, zap.NewNop().Sugar())
	require.NoError(t, step.Execute(ctx, stepCtx("EN-WIKT")))

	concepts, members := conceptCounts(t, db)
	assert.Equal(t, 2, concepts, "case and whitespace variants share a concept")
	assert.Equal(t, 3, members)

	var gloss string
	require.NoError(t, db.QueryRow(
		`SELECT c.gloss FROM concepts c
		 JOIN concept_members m ON m.concept_id = c.id
		 JOIN senses s ON s.id = m.sense_id
		 WHERE s.word_id = ? AND s.definition LIKE 'A financial%'`, bankID).Scan(&gloss))
	assert.Equal(t, "A financial institution.", gloss, "first sense supplies the display gloss")
}

func TestConcepts_ReplayAddsNothing(t *testing.T) {
	db := dicttest.CreateTestDB(t)
	ctx := context.Background()

	bankID := insertWord(t, db, "bank", "en")
	insertSense(t, db, bankID, "noun", "A financial institution.", "EN-WIKT")

	step := NewConcepts(db, zap.NewNop().Sugar())
	require.NoError(t, step.Execute(ctx, stepCtx("EN-WIKT")))
	require.NoError(t, step.Execute(ctx, stepCtx("EN-WIKT")))

	concepts, members := conceptCounts(t, db)
	assert.Equal(t, 1, concepts)
	assert.Equal(t, 1, members)
}

func TestConcepts_SharedAcrossSources(t *testing.T) {
	db := dicttest.CreateTestDB(t)
	ctx := context.Background()

	bankID := insertWord(t, db, "bank", "en")
	insertSense(t, db, bankID, "noun", "A financial institution.", "EN-WIKT")
	insertSense(t, db, bankID, "noun", "A FINANCIAL INSTITUTION.", "EN-GCIDE")

	step := NewConcepts(db, zap.NewNop().Sugar())
	require.NoError(t, step.Execute(ctx, stepCtx("EN-WIKT")))
	require.NoError(t, step.Execute(ctx, stepCtx("EN-GCIDE")))

	concepts, members := conceptCounts(t, db)
	assert.Equal(t, 1, concepts, "both sources' glosses fold to one concept")
	assert.Equal(t, 2, members)
}
