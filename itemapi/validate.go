package itemapi

import (
	"encoding/json"

	"github.com/c360/itemstore/item"
)

// Validation failure reasons. Part of the response contract: clients match
// on the exact text.
const (
	reasonBodyRequired = "Request body is required"
	reasonInvalidJSON  = "Invalid JSON format"
	reasonEmptyBody    = "Request body cannot be empty"
	reasonBadID        = "ID must be a non-empty string"
)

// ValidationResult carries either the parsed record or the reason the body
// was rejected. Never persisted.
type ValidationResult struct {
	Valid  bool
	Record item.Record
	Reason string
}

// validateBody applies the create-path structural rules in order; the first
// failure wins, no accumulation. A parseable non-object body (bare string,
// number, array) does not decode into a record and is reported as invalid
// JSON; a JSON null decodes to an empty record and is rejected as empty.
func validateBody(raw []byte) ValidationResult {
	if len(raw) == 0 {
		return ValidationResult{Reason: reasonBodyRequired}
	}

	var rec item.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return ValidationResult{Reason: reasonInvalidJSON}
	}

	if len(rec) == 0 {
		return ValidationResult{Reason: reasonEmptyBody}
	}

	return ValidationResult{Valid: true, Record: rec}
}
