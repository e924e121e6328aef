// Package item defines the record shape persisted and served by the item API.
package item

import "time"

// Reserved record keys. Both are assigned server-side during create and are
// returned to callers alongside the caller-supplied fields.
const (
	KeyID        = "id"
	KeyCreatedAt = "createdAt"
)

// timestampLayout renders instants the way the response contract requires:
// ISO-8601 in UTC with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Record is a stored item: an open JSON object keyed by the reserved id
// field. Values hold whatever the caller sent, decoded with encoding/json
// defaults (numbers as float64, nested objects as map[string]any).
//
// Records have no lifecycle beyond the request that creates or reads them;
// the handler holds no record state between invocations.
type Record map[string]any

// ID returns the record identifier and whether it is present as a string.
func (r Record) ID() (string, bool) {
	v, ok := r[KeyID]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// HasID reports whether the record carries any value under the id key,
// string or otherwise.
func (r Record) HasID() bool {
	_, ok := r[KeyID]
	return ok
}

// SetID assigns the record identifier.
func (r Record) SetID(id string) {
	r[KeyID] = id
}

// CreatedAt returns the creation timestamp string, if present.
func (r Record) CreatedAt() (string, bool) {
	v, ok := r[KeyCreatedAt]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// StampCreatedAt overwrites createdAt with the given instant. Caller-supplied
// values for this key never survive a create.
func (r Record) StampCreatedAt(t time.Time) {
	r[KeyCreatedAt] = FormatTimestamp(t)
}

// FormatTimestamp renders t in the contract's ISO-8601 form.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
