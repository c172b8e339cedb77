// Package lexicon defines the dictionary data model and the SQLite stores
// behind the import pipeline.
//
// Entries flow through three layers: raw fragments (the untouched source
// payload, keyed by content hash), staging entries (normalized rows awaiting
// merge, deduplicated by entry hash), and the canonical lexicon (words,
// senses, concepts, relations). Content hashing makes every layer
// restart-safe: re-importing a source re-derives the same hashes and the
// stores INSERT OR IGNORE the duplicates.
package lexicon

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// DictionaryEntry is one normalized dictionary entry as staged for merge.
// It is the unit the import engine batches and the staging store persists.
type DictionaryEntry struct {
	SourceCode         string
	Headword           string
	NormalizedHeadword string
	Language           string
	PartOfSpeech       string
	Definition         string
	IPA                string
	Synonyms           []string
	SeeAlso            []string

	// FragmentRef points at the raw_fragments row this entry was extracted
	// from. Filled by the engine before staging.
	FragmentRef string

	// EntryHash is the deterministic content hash the staging store
	// deduplicates on. Computed by EntryHash when left empty.
	EntryHash string
}

// EntryHash computes a deterministic SHA-256 digest from an entry's semantic
// fields: source, normalized headword, language, part of speech, definition,
// IPA, synonyms, and see-also references. The raw headword and fragment ref
// are excluded: two raw spellings that normalize to the same entry should
// deduplicate, and the fragment ref identifies provenance, not content.
//
// Two entries with identical semantic content produce the same hash, so
// re-running an import stages each entry at most once.
func EntryHash(e *DictionaryEntry) string {
	h := sha256.New()

	// Each field separated by a domain separator to prevent collisions
	// between fields (e.g., definition "a\x00b" vs synonyms ["a","b"]).
	h.Write([]byte("rc:"))
	h.Write([]byte(e.SourceCode))
	h.Write([]byte("\nw:"))
	h.Write([]byte(e.NormalizedHeadword))
	h.Write([]byte("\nl:"))
	h.Write([]byte(e.Language))
	h.Write([]byte("\npos:"))
	h.Write([]byte(e.PartOfSpeech))
	h.Write([]byte("\nd:"))
	h.Write([]byte(e.Definition))
	h.Write([]byte("\nipa:"))
	h.Write([]byte(e.IPA))
	h.Write([]byte("\nsyn:"))
	h.Write(canonical(e.Synonyms))
	h.Write([]byte("\nsee:"))
	h.Write(canonical(e.SeeAlso))

	return hex.EncodeToString(h.Sum(nil))
}

// DefinitionHash computes a deterministic SHA-256 digest identifying one
// sense of a word. The part of speech is included so that an identical
// gloss under a different part of speech stays a distinct sense.
func DefinitionHash(partOfSpeech, definition string) string {
	h := sha256.New()
	h.Write([]byte("pos:"))
	h.Write([]byte(partOfSpeech))
	h.Write([]byte("\nd:"))
	h.Write([]byte(definition))
	return hex.EncodeToString(h.Sum(nil))
}

// GlossHash computes a deterministic SHA-256 digest from a definition gloss,
// case-folded and with runs of whitespace collapsed. Senses from different
// sources that share a gloss up to spacing and case land in the same concept.
func GlossHash(gloss string) string {
	folded := strings.Join(strings.Fields(strings.ToLower(gloss)), " ")
	h := sha256.New()
	h.Write([]byte("g:"))
	h.Write([]byte(folded))
	return hex.EncodeToString(h.Sum(nil))
}

// canonical sorts a string slice and joins elements with null bytes.
// The sort ensures determinism regardless of input order.
// A copy is made to avoid mutating the input.
func canonical(ss []string) []byte {
	sorted := make([]string, len(ss))
	copy(sorted, ss)
	sort.Strings(sorted)
	return []byte(strings.Join(sorted, "\x00"))
}
