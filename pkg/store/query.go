package store

import "encoding/json"

// Query is a single serialized document-store query clause.
type Query string

func newQuery(method, attribute string, values []any) Query {
	payload := map[string]any{"method": method}
	if attribute != "" {
		payload["attribute"] = attribute
	}
	if values != nil {
		payload["values"] = values
	}
	// The clause shape is fixed; marshaling cannot fail for these inputs.
	raw, _ := json.Marshal(payload)
	return Query(raw)
}

// Equal matches documents whose attribute equals any of the given values.
func Equal(attribute string, values ...any) Query {
	return newQuery("equal", attribute, values)
}

// Limit caps the number of returned documents.
func Limit(n int) Query {
	return newQuery("limit", "", []any{n})
}

// Select restricts the attributes returned for each document.
func Select(attributes ...string) Query {
	vals := make([]any, len(attributes))
	for i, a := range attributes {
		vals[i] = a
	}
	return newQuery("select", "", vals)
}
