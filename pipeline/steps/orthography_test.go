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

func wordForms(t *testing.T, db *sql.DB, wordID int64) (asciiForm, ipa string) {
	t.Helper()

	require.NoError(t, db.QueryRow(
		`SELECT COALESCE(ascii_form, ''), COALESCE(ipa, '') FROM words WHERE id = ?`,
		wordID).Scan(&asciiForm, &ipa))
	return asciiForm, ipa
}

func TestOrthography_FoldsAndWrapsIPA(t *testing.T) {
	db := dicttest.CreateTestDB(t)
	ctx := context.Background()

	cafeID := insertWord(t, db, "café", "fr")
	insertSense(t, db, cafeID, "noun", "A small restaurant.", "FR-WIKT")
	_, err := db.Exec(`UPDATE words SET ipa = ? WHERE id = ?`, "kafe", cafeID)
	require.NoError(t, err)

	step := NewOrthography(db, zap.NewNop().Sugar())
	require.NoError(t, step.Execute(ctx, stepCtx("FR-WIKT")))

	asciiForm, ipa := wordForms(t, db, cafeID)
	assert.Equal(t, "cafe", asciiForm)
	assert.Equal(t, "/kafe/", ipa)
}

func TestOrthography_KeepsWrappedIPA(t *testing.T) {
	db := dicttest.CreateTestDB(t)
	ctx := context.Background()

	bankID := insertWord(t, db, "bank", "en")
	insertSense(t, db, bankID, "noun", "A financial institution.", "EN-WIKT")
	_, err := db.Exec(`UPDATE words SET ipa = ? WHERE id = ?`, "/bæŋk/", bankID)
	require.NoError(t, err)

	step := NewOrthography(db, zap.NewNop().Sugar())
	require.NoError(t, step.Execute(ctx, stepCtx("EN-WIKT")))

	asciiForm, ipa := wordForms(t, db, bankID)
	assert.Equal(t, "bank", asciiForm, "plain words still get an ascii form")
	assert.Equal(t, "/bæŋk/", ipa)
}

func TestOrthography_Idempotent(t *testing.T) {
	db := dicttest.CreateTestDB(t)
	ctx := context.Background()

	naiveID := insertWord(t, db, "naïve", "en")
	insertSense(t, db, naiveID, "adjective", "Lacking experience.", "EN-WIKT")

	step := NewOrthography(db, zap.NewNop().Sugar())
	require.NoError(t, step.Execute(ctx, stepCtx("EN-WIKT")))
	asciiFirst, ipaFirst := wordForms(t, db, naiveID)

	require.NoError(t, step.Execute(ctx, stepCtx("EN-WIKT")))
	asciiSecond, ipaSecond := wordForms(t, db, naiveID)

	assert.Equal(t, "naive", asciiFirst)
	assert.Equal(t, asciiFirst, asciiSecond)
	assert.Equal(t, ipaFirst, ipaSecond)
}

func TestNormalizeIPA(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", "kafe", "/kafe/"},
		{"already wrapped", "/bæŋk/", "/bæŋk/"},
		{"bracket notation", "[ˈbæŋk]", "/ˈbæŋk/"},
		{"surrounding space", "  /kafe/  ", "/kafe/"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeIPA(tt.in))
		})
	}
}
