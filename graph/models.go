// Package graph builds typed word relations from staged dictionary entries.
//
// Synonym and see-also lists on staged entries name other words by their
// surface form. The builder resolves those references against the canonical
// words table, accumulates deduplicated typed edges in memory, and the store
// persists them with INSERT OR IGNORE so rebuilding a source's relations is
// idempotent.
package graph

// Relation types derived from entry reference lists.
const (
	RelationSynonym = "synonym"
	RelationSeeAlso = "see_also"
)

// Edge weight constants
const (
	defaultEdgeWeight   = 1.0 // Initial weight for new edges
	edgeWeightIncrement = 0.5 // Weight increase for repeated claims
)

// Edge represents one typed relation between two canonical words.
type Edge struct {
	FromWordID int64
	ToWordID   int64
	Type       string
	SourceCode string

	// Weight counts how often sources repeat the claim. Stored for ranking;
	// repeats never create duplicate rows.
	Weight float64
}

// Stats summarizes one build pass.
type Stats struct {
	Edges     int // deduplicated edges produced
	Claims    int // raw references seen
	Dangling  int // references naming no canonical word
	SelfLoops int // references from a word to itself
}

// Graph is the deduplicated relation set built for one source.
type Graph struct {
	SourceCode string
	Edges      []Edge
	Stats      Stats
}
