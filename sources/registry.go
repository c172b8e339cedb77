package sources

import (
	"github.com/ankitdsmb/DictionaryImporter-sub008/importer"
)

// BuiltinFormats returns the formats shipped with the importer, keyed
// by the name a manifest uses.
func BuiltinFormats() map[string]importer.Format {
	return map[string]importer.Format{
		"jsonl": {Extractor: JSONLExtractor{}, Transformer: JSONLTransformer{}},
		"tsv":   {Extractor: TSVExtractor{}, Transformer: TSVTransformer{}},
	}
}
