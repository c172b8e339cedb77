package importer

import (
	"database/sql"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/lexicon"
	"github.com/ankitdsmb/DictionaryImporter-sub008/progress"
)

// Format pairs the extractor and transformer for one source format.
type Format struct {
	Extractor   Extractor
	Transformer Transformer
}

// EngineFactory builds engines bound to a source's format, decoupling
// the orchestrator from per-source wiring. Stores are shared across the
// engines it builds.
type EngineFactory struct {
	formats   map[string]Format
	loader    Loader
	fragments FragmentSaver
	validator lexicon.Validator
	control   ImportControl
	settings  Settings
	emitter   progress.Emitter
	log       *zap.SugaredLogger
}

// NewEngineFactory creates a factory over the shared stores. Format
// names are matched case-insensitively.
func NewEngineFactory(
	database *sql.DB,
	formats map[string]Format,
	control ImportControl,
	settings Settings,
	emitter progress.Emitter,
	log *zap.SugaredLogger,
) *EngineFactory {
	normalized := make(map[string]Format, len(formats))
	for name, format := range formats {
		normalized[strings.ToLower(name)] = format
	}
	return &EngineFactory{
		formats:   normalized,
		loader:    lexicon.NewStagingStore(database),
		fragments: lexicon.NewFragmentStore(database),
		validator: lexicon.NewStandardValidator(),
		control:   control,
		settings:  settings.withDefaults(),
		emitter:   emitter,
		log:       log,
	}
}

// EngineFor builds the engine for one source definition.
func (f *EngineFactory) EngineFor(source SourceDefinition) (*Engine, error) {
	format, ok := f.formats[strings.ToLower(source.Format)]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownFormat, "%s (source %s)", source.Format, source.SourceCode)
	}
	return NewEngine(
		source,
		format.Extractor,
		format.Transformer,
		f.loader,
		f.fragments,
		f.validator,
		f.control,
		f.settings,
		f.emitter,
		f.log,
	), nil
}

// Formats returns the registered format names, sorted, for CLI listings.
func (f *EngineFactory) Formats() []string {
	names := make([]string, 0, len(f.formats))
	for name := range f.formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
