package graph

import (
	"context"
	"database/sql"
	"sort"

	"go.uber.org/zap"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/lexicon"
)

// Builder accumulates typed word relations for one source. References are
// resolved against the words table through a lookup cache; references naming
// no canonical word are counted and skipped rather than failed, since
// dictionary cross-references routinely point outside the imported
// vocabulary.
type Builder struct {
	db         *sql.DB
	logger     *zap.SugaredLogger
	sourceCode string

	edges map[edgeKey]*Edge
	ids   map[string]int64
	stats Stats
}

type edgeKey struct {
	from int64
	to   int64
	typ  string
}

// NewBuilder creates a relation builder for one source.
func NewBuilder(db *sql.DB, sourceCode string, logger *zap.SugaredLogger) *Builder {
	return &Builder{
		db:         db,
		logger:     logger.Named("graph.builder"),
		sourceCode: sourceCode,
		edges:      make(map[edgeKey]*Edge),
		ids:        make(map[string]int64),
	}
}

// AddEntry resolves an entry's synonym and see-also lists and accumulates
// the resulting edges. The entry's own word must already be merged.
func (b *Builder) AddEntry(ctx context.Context, e *lexicon.DictionaryEntry) error {
	from, ok, err := b.resolve(ctx, e.NormalizedHeadword, e.Language)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Newf("word not merged: %s (%s)", e.NormalizedHeadword, e.Language)
	}

	for _, target := range e.Synonyms {
		if err := b.addClaim(ctx, from, target, e.Language, RelationSynonym); err != nil {
			return err
		}
	}
	for _, target := range e.SeeAlso {
		if err := b.addClaim(ctx, from, target, e.Language, RelationSeeAlso); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) addClaim(ctx context.Context, from int64, target, language, relationType string) error {
	b.stats.Claims++

	// Targets are raw surface forms; bring them to the words table's
	// canonical identity before resolving.
	normalized := lexicon.Normalize(lexicon.StripDomainMarkers(target))
	to, ok, err := b.resolve(ctx, normalized, language)
	if err != nil {
		return err
	}
	if !ok {
		b.stats.Dangling++
		b.logger.Debugw("Skipping dangling reference",
			"target", target,
			"relation", relationType)
		return nil
	}
	if to == from {
		b.stats.SelfLoops++
		return nil
	}

	key := edgeKey{from: from, to: to, typ: relationType}
	if edge, exists := b.edges[key]; exists {
		// Repeated claims raise the weight instead of duplicating the edge
		edge.Weight += edgeWeightIncrement
		return nil
	}
	b.edges[key] = &Edge{
		FromWordID: from,
		ToWordID:   to,
		Type:       relationType,
		SourceCode: b.sourceCode,
		Weight:     defaultEdgeWeight,
	}
	return nil
}

// resolve looks a normalized form up in words, caching both hits and misses.
// A cached zero means the word is known to be absent.
func (b *Builder) resolve(ctx context.Context, normalized, language string) (int64, bool, error) {
	key := normalized + "\x00" + language
	if id, seen := b.ids[key]; seen {
		return id, id != 0, nil
	}

	var id int64
	err := b.db.QueryRowContext(ctx,
		`SELECT id FROM words WHERE normalized = ? AND language = ?`,
		normalized, language).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		b.ids[key] = 0
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrapf(err, "failed to resolve word %q (%s)", normalized, language)
	}

	b.ids[key] = id
	return id, true, nil
}

// Build returns the accumulated edges, sorted by (from, to, type) for
// consistent output across runs.
func (b *Builder) Build() *Graph {
	edges := make([]Edge, 0, len(b.edges))
	for _, e := range b.edges {
		edges = append(edges, *e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].FromWordID != edges[j].FromWordID {
			return edges[i].FromWordID < edges[j].FromWordID
		}
		if edges[i].ToWordID != edges[j].ToWordID {
			return edges[i].ToWordID < edges[j].ToWordID
		}
		return edges[i].Type < edges[j].Type
	})

	stats := b.stats
	stats.Edges = len(edges)

	b.logger.Debugw("Built relation graph",
		"source", b.sourceCode,
		"edges", stats.Edges,
		"claims", stats.Claims,
		"dangling", stats.Dangling,
		"self_loops", stats.SelfLoops)

	return &Graph{SourceCode: b.sourceCode, Edges: edges, Stats: stats}
}
