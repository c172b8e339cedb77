// Package steps implements the named post-merge pipeline steps that
// refine the canonical lexicon: sense cleanup and numbering, derived
// word attributes, written forms, concept grouping, relation building,
// and final integrity checks. Each step owns its SQL; the pipeline
// framework routes to them by name.
package steps

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/ankitdsmb/DictionaryImporter-sub008/pipeline"
)

// Step names as they appear in configured orders.
const (
	NameCanonicalize = "canonicalize"
	NameEnrich       = "enrich"
	NameSenses       = "senses"
	NameOrthography  = "orthography"
	NameGrammar      = "grammar"
	NameConcepts     = "concepts"
	NameGraph        = "graph"
	NameVerify       = "verify"
)

// StandardOrder returns the default execution order. Grammar runs after
// senses because it edits definitions the numbering pass has ordered,
// concepts groups the cleaned text, and verify always runs last.
func StandardOrder() []string {
	return []string{
		NameCanonicalize,
		NameEnrich,
		NameSenses,
		NameOrthography,
		NameGrammar,
		NameConcepts,
		NameGraph,
		NameVerify,
	}
}

// RegisterStandard registers every built-in step on the registry.
func RegisterStandard(registry *pipeline.Registry, database *sql.DB, log *zap.SugaredLogger) {
	registry.Register(NewCanonicalize(database, log))
	registry.Register(NewEnrich(database, log))
	registry.Register(NewSenses(database, log))
	registry.Register(NewOrthography(database, log))
	registry.Register(NewGrammar(database, log))
	registry.Register(NewConcepts(database, log))
	registry.Register(NewGraphBuild(database, log))
	registry.Register(NewVerify(database, log))
}
