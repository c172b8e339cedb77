package steps

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/graph"
	grapherror "github.com/ankitdsmb/DictionaryImporter-sub008/graph/error"
	"github.com/ankitdsmb/DictionaryImporter-sub008/lexicon"
	"github.com/ankitdsmb/DictionaryImporter-sub008/logger"
	"github.com/ankitdsmb/DictionaryImporter-sub008/pipeline"
)

// GraphBuild turns the source's sealed staging rows into typed word
// relations: synonym and see-also claims resolved against the merged
// lexicon via graph.Builder, validated, then persisted. With
// RebuildGraph set, the source's existing relations are cleared first.
type GraphBuild struct {
	db        *sql.DB
	staging   *lexicon.StagingStore
	relations *graph.Store
	log       *zap.SugaredLogger
}

// NewGraphBuild creates the relation-building step.
func NewGraphBuild(database *sql.DB, log *zap.SugaredLogger) *GraphBuild {
	return &GraphBuild{
		db:        database,
		staging:   lexicon.NewStagingStore(database),
		relations: graph.NewStore(database),
		log:       log.Named("step.graph"),
	}
}

// Name returns the registered step name.
func (s *GraphBuild) Name() string {
	return NameGraph
}

// Execute builds and persists the source's relation edges.
func (s *GraphBuild) Execute(ctx context.Context, pctx *pipeline.Context) error {
	entries, err := s.staging.SealedEntries(ctx, pctx.SourceCode)
	if err != nil {
		return errors.Wrap(err, "failed to load sealed entries")
	}
	if len(entries) == 0 {
		s.log.Debugw("No sealed entries, skipping graph build",
			logger.FieldSource, pctx.SourceCode)
		return nil
	}

	builder := graph.NewBuilder(s.db, pctx.SourceCode, s.log)
	for _, e := range entries {
		if err := builder.AddEntry(ctx, e); err != nil {
			return s.fail(err, "failed to add entry to graph")
		}
	}

	g := builder.Build()
	if err := g.Validate(); err != nil {
		return s.fail(err, "graph validation failed")
	}

	if pctx.RebuildGraph {
		removed, err := s.relations.DeleteBySource(ctx, pctx.SourceCode)
		if err != nil {
			return s.fail(err, "failed to clear existing relations")
		}
		s.log.Debugw("Cleared relations for rebuild",
			logger.FieldSource, pctx.SourceCode,
			"removed", removed,
		)
	}

	inserted, err := s.relations.SaveEdges(ctx, g.Edges)
	if err != nil {
		return s.fail(err, "failed to save relation edges")
	}

	s.log.Infow("Graph built",
		logger.FieldSource, pctx.SourceCode,
		"edges", len(g.Edges),
		"inserted", inserted,
		"claims", g.Stats.Claims,
		"dangling", g.Stats.Dangling,
		"self_loops", g.Stats.SelfLoops,
	)
	return nil
}

// fail logs structured graph errors with their category fields before
// wrapping.
func (s *GraphBuild) fail(err error, msg string) error {
	var ge *grapherror.GraphError
	if errors.As(err, &ge) {
		s.log.Errorw("Graph step failed", ge.ToLogFields()...)
	}
	return errors.Wrap(err, msg)
}
