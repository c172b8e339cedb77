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

func senseNumber(t *testing.T, db *sql.DB, senseID int64) int {
	t.Helper()

	var n int
	require.NoError(t, db.QueryRow(
		`SELECT sense_number FROM senses WHERE id = ?`, senseID).Scan(&n))
	return n
}

func TestSenses_NumbersByPartOfSpeechThenID(t *testing.T) {
	db := dicttest.CreateTestDB(t)
	ctx := context.Background()

	bankID := insertWord(t, db, "bank", "en")
	verb := insertSense(t, db, bankID, "verb", "To tilt an aircraft.", "EN-WIKT")
	noun1 := insertSense(t, db, bankID, "noun", "A financial institution.", "EN-WIKT")
	noun2 := insertSense(t, db, bankID, "noun", "The edge of a river.", "EN-WIKT")

	step := NewSenses(db, zap.NewNop().Sugar())
	require.NoError(t, step.Execute(ctx, stepCtx("EN-WIKT")))

	assert.Equal(t, 1, senseNumber(t, db, noun1))
	assert.Equal(t, 2, senseNumber(t, db, noun2))
	assert.Equal(t, 3, senseNumber(t, db, verb), "verb sorts after noun")
}

func TestSenses_RenumbersAfterDeletion(t *testing.T) {
	db := dicttest.CreateTestDB(t)
	ctx := context.Background()

	bankID := insertWord(t, db, "bank", "en")
	first := insertSense(t, db, bankID, "noun", "A financial institution.", "EN-WIKT")
	second := insertSense(t, db, bankID, "noun", "The edge of a river.", "EN-WIKT")
	third := insertSense(t, db, bankID, "noun", "A row of machines.", "EN-WIKT")

	step := NewSenses(db, zap.NewNop().Sugar())
	require.NoError(t, step.Execute(ctx, stepCtx("EN-WIKT")))
	require.Equal(t, 3, senseNumber(t, db, third))

	_, err := db.Exec(`DELETE FROM senses WHERE id = ?`, second)
	require.NoError(t, err)
	require.NoError(t, step.Execute(ctx, stepCtx("EN-WIKT")))

	assert.Equal(t, 1, senseNumber(t, db, first))
	assert.Equal(t, 2, senseNumber(t, db, third), "gap closes after deletion")
}

func TestSenses_NumbersWholeWordAcrossSources(t *testing.T) {
	db := dicttest.CreateTestDB(t)
	ctx := context.Background()

	bankID := insertWord(t, db, "bank", "en")
	wikt := insertSense(t, db, bankID, "noun", "A financial institution.", "EN-WIKT")
	gcide := insertSense(t, db, bankID, "noun", "A mound or ridge.", "EN-GCIDE")

	step := NewSenses(db, zap.NewNop().Sugar())
	require.NoError(t, step.Execute(ctx, stepCtx("EN-WIKT")))

	assert.Equal(t, 1, senseNumber(t, db, wikt))
	assert.Equal(t, 2, senseNumber(t, db, gcide), "other source's sense on the same word is numbered too")
}

func TestSenses_LeavesOtherWordsAlone(t *testing.T) {
	db := dicttest.CreateTestDB(t)
	ctx := context.Background()

	bankID := insertWord(t, db, "bank", "en")
	hundID := insertWord(t, db, "hund", "de")
	insertSense(t, db, bankID, "noun", "A financial institution.", "EN-WIKT")
	other := insertSense(t, db, hundID, "noun", "Ein Haustier.", "DE-WIKT")
	_, err := db.Exec(`UPDATE senses SET sense_number = 9 WHERE id = ?`, other)
	require.NoError(t, err)

	step := NewSenses(db, zap.NewNop().Sugar())
	require.NoError(t, step.Execute(ctx, stepCtx("EN-WIKT")))

	assert.Equal(t, 9, senseNumber(t, db, other), "untouched word keeps its numbering")
}
