package lexicon

import "unicode"

// scriptLanguages maps Unicode scripts to the language code assigned when
// that script dominates a headword's letters. Only scripts that identify a
// language unambiguously enough for dictionary data are listed; everything
// else falls back to the source's declared language.
var scriptLanguages = []struct {
	script *unicode.RangeTable
	code   string
}{
	{unicode.Hiragana, "ja"},
	{unicode.Katakana, "ja"},
	{unicode.Hangul, "ko"},
	{unicode.Han, "zh"},
	{unicode.Cyrillic, "ru"},
	{unicode.Greek, "el"},
	{unicode.Arabic, "ar"},
	{unicode.Hebrew, "he"},
	{unicode.Devanagari, "hi"},
	{unicode.Thai, "th"},
}

// DetectLanguage assigns a language to a headword. When one listed script
// accounts for a majority of the headword's letters, its language wins;
// otherwise the source's declared language is used. Two Han ambiguities are
// resolved explicitly: any kana means Japanese, and a Han-only headword from
// a source declared Japanese or Korean keeps the declared language.
func DetectLanguage(headword, declared string) string {
	letters := 0
	counts := make(map[string]int, 4)
	for _, r := range headword {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		for _, sl := range scriptLanguages {
			if unicode.Is(sl.script, r) {
				counts[sl.code]++
				break
			}
		}
	}
	if letters == 0 {
		return declared
	}
	if counts["ja"] > 0 {
		return "ja"
	}
	for _, sl := range scriptLanguages {
		if counts[sl.code]*2 <= letters {
			continue
		}
		if sl.code == "zh" && (declared == "ja" || declared == "ko") {
			return declared
		}
		return sl.code
	}
	return declared
}
