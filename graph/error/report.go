package grapherror

// defaultMessages provides user-friendly error messages for each category
var defaultMessages = map[Category]string{
	CategoryResolve:  "Failed to resolve word references against the lexicon",
	CategoryBuild:    "Failed to build word relations",
	CategoryValidate: "Built relations failed integrity checks",
	CategoryPersist:  "Failed to save word relations",
	CategoryInternal: "An internal error occurred - please try again",
}

// ToUserMessage converts the error to a message suitable for terminal display
func (e *GraphError) ToUserMessage() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	if msg, ok := defaultMessages[e.Category]; ok {
		return msg
	}
	return "An error occurred"
}

// ToLogFields converts error to structured log fields
// This is useful for passing to logger.Errorw()
func (e *GraphError) ToLogFields() []interface{} {
	fields := []interface{}{
		"error_category", e.Category,
		"error_message", e.Error(),
		"user_message", e.UserMessage,
	}

	if e.Subcategory != "" {
		fields = append(fields, "error_subcategory", e.Subcategory)
	}

	for k, v := range e.Context {
		fields = append(fields, k, v)
	}

	return fields
}
