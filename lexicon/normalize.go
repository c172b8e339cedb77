package lexicon

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// superscriptDigits are the Unicode superscript digits dictionary sources use
// as homograph indexes (bank¹, bank²).
const superscriptDigits = "⁰¹²³⁴⁵⁶⁷⁸⁹"

// statusMarkers are editorial symbols some sources attach to headwords
// (obsolete, reconstructed, disputed forms).
const statusMarkers = "*†‡"

// StripDomainMarkers removes editorial decoration from a raw headword:
// surrounding whitespace, leading/trailing status markers, trailing
// superscript homograph indexes, and a trailing parenthesized qualifier
// such as "bank (institution)". The word itself is left untouched.
func StripDomainMarkers(headword string) string {
	s := strings.TrimSpace(headword)
	s = strings.Trim(s, statusMarkers)
	s = strings.TrimRight(s, superscriptDigits)

	// Trailing qualifier only: "(a) sharp" keeps its parenthetical.
	if strings.HasSuffix(s, ")") {
		if open := strings.LastIndex(s, "("); open > 0 {
			s = strings.TrimSpace(s[:open])
		}
	}
	return strings.TrimSpace(s)
}

// Normalize produces the canonical lookup form of a headword: Unicode NFC,
// case-folded, with runs of whitespace collapsed to single spaces. Words
// are unique on (normalized, language), so every source must agree on this
// form for merge deduplication to hold.
func Normalize(headword string) string {
	s := norm.NFC.String(headword)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// asciiFolder decomposes, drops combining marks, and recomposes:
// "café" becomes "cafe", "señor" becomes "senor".
var asciiFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ASCIIFold returns the diacritic-free form of a word, or the input
// unchanged when the transform fails.
func ASCIIFold(s string) string {
	folded, _, err := transform.String(asciiFolder, s)
	if err != nil {
		return s
	}
	return folded
}

// maxHeadwordRunes bounds what the canonical lexicon accepts. Entries past
// this are almost always extraction artifacts, not words.
const maxHeadwordRunes = 64

// IsCanonicalEligible reports whether a normalized headword may enter the
// canonical lexicon: non-empty, within length bounds, containing at least
// one letter, and free of control characters.
func IsCanonicalEligible(normalized string) bool {
	if normalized == "" {
		return false
	}
	runeCount := 0
	hasLetter := false
	for _, r := range normalized {
		runeCount++
		if runeCount > maxHeadwordRunes {
			return false
		}
		if unicode.IsControl(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
