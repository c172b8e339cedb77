package sources

import (
	"context"
	"io"
	"strings"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/lexicon"
)

// TSV columns, tab-separated:
//
//	source_code  headword  language  pos  definition  [ipa]  [synonyms]  [see_also]
//
// The last three are optional; list columns separate items with
// semicolons. A header line naming the first column is skipped.
const tsvRequiredColumns = 5

// TSVExtractor streams one tab-separated row per line.
type TSVExtractor struct{}

func (TSVExtractor) Extract(_ context.Context, r io.Reader) (lexicon.RecordIterator, error) {
	return newLineIterator(r), nil
}

// TSVTransformer maps one row to one entry.
type TSVTransformer struct{}

func (TSVTransformer) Transform(rec *lexicon.RawRecord) ([]*lexicon.DictionaryEntry, error) {
	columns := strings.Split(string(rec.Payload), "\t")
	if rec.Ordinal == 1 && strings.TrimSpace(columns[0]) == "source_code" {
		return nil, nil
	}
	if len(columns) < tsvRequiredColumns {
		return nil, errors.Newf("record %d has %d columns, want at least %d",
			rec.Ordinal, len(columns), tsvRequiredColumns)
	}

	entry := &lexicon.DictionaryEntry{
		SourceCode:   strings.TrimSpace(columns[0]),
		Headword:     strings.TrimSpace(columns[1]),
		Language:     strings.TrimSpace(columns[2]),
		PartOfSpeech: strings.TrimSpace(columns[3]),
		Definition:   strings.TrimSpace(columns[4]),
	}
	if len(columns) > 5 {
		entry.IPA = strings.TrimSpace(columns[5])
	}
	if len(columns) > 6 {
		entry.Synonyms = splitList(columns[6])
	}
	if len(columns) > 7 {
		entry.SeeAlso = splitList(columns[7])
	}
	return []*lexicon.DictionaryEntry{entry}, nil
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ";") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
