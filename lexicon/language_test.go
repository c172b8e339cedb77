package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		name     string
		headword string
		declared string
		want     string
	}{
		{"latin keeps declared", "bank", "en", "en"},
		{"latin keeps declared german", "gehen", "de", "de"},
		{"cyrillic", "слово", "en", "ru"},
		{"greek", "λόγος", "en", "el"},
		{"arabic", "كتاب", "", "ar"},
		{"hebrew", "ספר", "en", "he"},
		{"devanagari", "शब्द", "", "hi"},
		{"thai", "คำ", "", "th"},
		{"hangul", "한국어", "", "ko"},
		{"hiragana", "ひらがな", "", "ja"},
		{"katakana", "カタカナ", "zh", "ja"},
		{"kanji with kana is japanese", "日本語の", "", "ja"},
		{"han only defaults chinese", "日本", "", "zh"},
		{"han only keeps declared japanese", "日本", "ja", "ja"},
		{"han only keeps declared korean", "漢字", "ko", "ko"},
		{"no letters keeps declared", "1234", "de", "de"},
		{"empty keeps declared", "", "en", "en"},
		{"mixed latin minority", "слово-x", "en", "ru"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectLanguage(tc.headword, tc.declared))
		})
	}
}
