package lexicon

import (
	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
)

// Validator decides whether a transformed entry is fit to stage. A non-nil
// error names the first rule the entry breaks; the engine skips and counts
// invalid entries rather than failing the import.
type Validator interface {
	Validate(e *DictionaryEntry) error
}

// defaultMaxDefinitionBytes bounds definition size. Definitions past this
// are extraction accidents (a whole article captured as one gloss).
const defaultMaxDefinitionBytes = 16384

// StandardValidator enforces the baseline rules every source must meet
// before an entry reaches staging.
type StandardValidator struct {
	MaxDefinitionBytes int
}

// NewStandardValidator returns a validator with default bounds.
func NewStandardValidator() *StandardValidator {
	return &StandardValidator{MaxDefinitionBytes: defaultMaxDefinitionBytes}
}

func (v *StandardValidator) Validate(e *DictionaryEntry) error {
	if e.SourceCode == "" {
		return errors.New("entry has no source code")
	}
	if e.Headword == "" {
		return errors.New("entry has no headword")
	}
	if e.NormalizedHeadword == "" {
		return errors.New("entry has no normalized headword")
	}
	if e.Language == "" {
		return errors.New("entry has no language")
	}
	if e.Definition == "" {
		return errors.New("entry has no definition")
	}
	if limit := v.MaxDefinitionBytes; limit > 0 && len(e.Definition) > limit {
		return errors.Newf("definition exceeds %d bytes (%d)", limit, len(e.Definition))
	}
	if e.FragmentRef == "" {
		return errors.New("entry has no fragment ref")
	}
	return nil
}
