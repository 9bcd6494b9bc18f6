package postgres

import "encoding/json"

// marshalList keeps nil slices as empty JSON arrays so the JSONB columns
// never hold SQL NULL or JSON null.
func marshalList(values []string) ([]byte, error) {
	if values == nil {
		values = []string{}
	}
	return json.Marshal(values)
}
