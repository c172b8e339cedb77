package graph

import (
	grapherror "github.com/ankitdsmb/DictionaryImporter-sub008/graph/error"
)

var validRelationTypes = map[string]bool{
	RelationSynonym: true,
	RelationSeeAlso: true,
}

// Validate checks the structural invariants of a built graph before it is
// persisted: both endpoints resolved, no self loops, known relation types,
// and a source code on every edge. The builder upholds these by
// construction; Validate catches graphs assembled any other way.
func (g *Graph) Validate() error {
	for i := range g.Edges {
		e := &g.Edges[i]

		if e.FromWordID <= 0 || e.ToWordID <= 0 {
			return grapherror.Newf(grapherror.CategoryValidate, "",
				"edge %d has unresolved endpoint (%d -> %d)", i, e.FromWordID, e.ToWordID).
				WithSubcategory(grapherror.SubcategoryValidateEndpoint).
				WithContext("source", g.SourceCode)
		}
		if e.FromWordID == e.ToWordID {
			return grapherror.Newf(grapherror.CategoryValidate, "",
				"edge %d relates word %d to itself", i, e.FromWordID).
				WithSubcategory(grapherror.SubcategoryValidateSelfLoop).
				WithContext("source", g.SourceCode)
		}
		if !validRelationTypes[e.Type] {
			return grapherror.Newf(grapherror.CategoryValidate, "",
				"edge %d has unknown relation type %q", i, e.Type).
				WithSubcategory(grapherror.SubcategoryValidateRelationType).
				WithContext("source", g.SourceCode)
		}
		if e.SourceCode == "" {
			return grapherror.Newf(grapherror.CategoryValidate, "",
				"edge %d has no source code", i).
				WithSubcategory(grapherror.SubcategoryValidateSource).
				WithContext("source", g.SourceCode)
		}
	}
	return nil
}
