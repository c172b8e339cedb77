package grapherror

// Category represents the main error category for relation graph operations
type Category string

const (
	// CategoryResolve indicates word reference resolution errors
	CategoryResolve Category = "resolve"

	// CategoryBuild indicates relation building errors
	CategoryBuild Category = "build"

	// CategoryValidate indicates graph validation failures
	CategoryValidate Category = "validate"

	// CategoryPersist indicates database persistence errors
	CategoryPersist Category = "persist"

	// CategoryInternal indicates internal errors
	CategoryInternal Category = "internal"
)

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// Resolve Subcategories
const (
	// SubcategoryResolveUnknownWord indicates the entry's own word is not merged
	SubcategoryResolveUnknownWord = "unknown_word"

	// SubcategoryResolveDatabase indicates a database error during lookup
	SubcategoryResolveDatabase = "database"
)

// Validate Subcategories
const (
	// SubcategoryValidateEndpoint indicates an edge with an unresolved endpoint
	SubcategoryValidateEndpoint = "unresolved_endpoint"

	// SubcategoryValidateSelfLoop indicates an edge from a word to itself
	SubcategoryValidateSelfLoop = "self_loop"

	// SubcategoryValidateRelationType indicates an unknown relation type
	SubcategoryValidateRelationType = "unknown_relation_type"

	// SubcategoryValidateSource indicates an edge without a source code
	SubcategoryValidateSource = "missing_source"
)

// Persist Subcategories
const (
	// SubcategoryPersistDatabase indicates the relation insert failed
	SubcategoryPersistDatabase = "database"

	// SubcategoryPersistRebuild indicates clearing old relations failed
	SubcategoryPersistRebuild = "rebuild"
)

// Internal Subcategories
const (
	// SubcategoryInternalState indicates invalid internal state
	SubcategoryInternalState = "invalid_state"
)
