// Package storage defines the pluggable persistence boundary for item records.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/c360/itemstore/item"
)

// ErrNotFound is returned by Get when no record exists under the requested id.
// It is a normal outcome of a point lookup, not a backend failure.
var ErrNotFound = errors.New("item not found")

// Reason identifies the closed set of backend failure modes a Store may
// report. Implementations convert raw driver errors into one of these so
// callers never inspect driver error shapes.
type Reason int

const (
	// ReasonOther covers failures with no known health interpretation.
	// They must surface as internal errors, never as "try again later".
	ReasonOther Reason = iota
	// ReasonUnavailable means the backend cannot currently serve requests.
	ReasonUnavailable
	// ReasonThroughputExceeded means the backend rejected the call due to
	// capacity or rate limits.
	ReasonThroughputExceeded
	// ReasonNotConfigured means the backing bucket or stream does not exist.
	ReasonNotConfigured
)

// String returns the string representation of Reason
func (r Reason) String() string {
	switch r {
	case ReasonUnavailable:
		return "unavailable"
	case ReasonThroughputExceeded:
		return "throughput_exceeded"
	case ReasonNotConfigured:
		return "not_configured"
	case ReasonOther:
		return "other"
	default:
		return "unknown"
	}
}

// BackendError is a storage failure tagged with its reason.
type BackendError struct {
	Reason Reason
	Op     string // "put" or "get"
	Err    error
}

// Error implements the error interface
func (e *BackendError) Error() string {
	return fmt.Sprintf("storage %s: %s: %v", e.Op, e.Reason, e.Err)
}

// Unwrap returns the underlying driver error
func (e *BackendError) Unwrap() error {
	return e.Err
}

// IsBackendUnavailable reports whether err is a backend failure in one of
// the transient, capacity, or configuration conditions that a caller may
// retry later. Any other error value, including BackendError with
// ReasonOther, classifies false.
func IsBackendUnavailable(err error) bool {
	var be *BackendError
	if !errors.As(err, &be) {
		return false
	}
	switch be.Reason {
	case ReasonUnavailable, ReasonThroughputExceeded, ReasonNotConfigured:
		return true
	default:
		return false
	}
}

// Store is the key-value persistence contract consumed by the item API.
//
// Put is an unconditional upsert keyed by the record id: a second Put under
// the same id replaces the first, with no conflict detection. Get is a point
// lookup returning ErrNotFound for absent records. Implementations must be
// safe for concurrent use; any per-key atomicity is theirs to provide.
type Store interface {
	Put(ctx context.Context, rec item.Record) error
	Get(ctx context.Context, id string) (item.Record, error)
}
