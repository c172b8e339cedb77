package sources

import (
	"context"
	"encoding/json"
	"io"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/lexicon"
)

// JSONLExtractor streams one JSON object per line.
type JSONLExtractor struct{}

func (JSONLExtractor) Extract(_ context.Context, r io.Reader) (lexicon.RecordIterator, error) {
	return newLineIterator(r), nil
}

// jsonlEntry is the wire shape of one record: a headword with its
// senses. Pronunciation lives at the headword level; synonyms and
// see-also references at the sense level.
type jsonlEntry struct {
	SourceCode string       `json:"source_code"`
	Headword   string       `json:"headword"`
	Language   string       `json:"language"`
	IPA        string       `json:"ipa"`
	Senses     []jsonlSense `json:"senses"`
}

type jsonlSense struct {
	PartOfSpeech string   `json:"pos"`
	Definition   string   `json:"definition"`
	Synonyms     []string `json:"synonyms"`
	SeeAlso      []string `json:"see_also"`
}

// JSONLTransformer maps one record to one entry per sense. A record
// without senses yields nothing.
type JSONLTransformer struct{}

func (JSONLTransformer) Transform(rec *lexicon.RawRecord) ([]*lexicon.DictionaryEntry, error) {
	var parsed jsonlEntry
	if err := json.Unmarshal(rec.Payload, &parsed); err != nil {
		return nil, errors.Wrapf(err, "record %d is not valid JSON", rec.Ordinal)
	}

	entries := make([]*lexicon.DictionaryEntry, 0, len(parsed.Senses))
	for _, sense := range parsed.Senses {
		entries = append(entries, &lexicon.DictionaryEntry{
			SourceCode:   parsed.SourceCode,
			Headword:     parsed.Headword,
			Language:     parsed.Language,
			PartOfSpeech: sense.PartOfSpeech,
			Definition:   sense.Definition,
			IPA:          parsed.IPA,
			Synonyms:     sense.Synonyms,
			SeeAlso:      sense.SeeAlso,
		})
	}
	return entries, nil
}
