// Package natskv implements the storage.Store contract on a NATS JetStream
// key-value bucket.
package natskv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/itemstore/item"
	"github.com/c360/itemstore/storage"
)

// Store persists item records as JSON values in a JetStream KV bucket,
// keyed by record id. Writes are last-writer-wins: the bucket resolves
// concurrent Puts under the same key, not this layer.
type Store struct {
	bucket jetstream.KeyValue
	logger *slog.Logger
}

// New creates a Store over the given bucket.
func New(bucket jetstream.KeyValue, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{bucket: bucket, logger: logger}
}

// Put upserts the record under its id.
func (s *Store) Put(ctx context.Context, rec item.Record) error {
	id, ok := rec.ID()
	if !ok || id == "" {
		return &storage.BackendError{Reason: storage.ReasonOther, Op: "put",
			Err: errors.New("record has no string id")}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return &storage.BackendError{Reason: storage.ReasonOther, Op: "put",
			Err: fmt.Errorf("marshal record %s: %w", id, err)}
	}

	rev, err := s.bucket.Put(ctx, id, data)
	if err != nil {
		return classify("put", err)
	}

	s.logger.Debug("kv put", "key", id, "revision", rev)
	return nil
}

// Get retrieves the record stored under id. Absent keys map to
// storage.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (item.Record, error) {
	entry, err := s.bucket.Get(ctx, id)
	if err != nil {
		// A key the bucket cannot hold has no record under it either.
		if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrInvalidKey) {
			return nil, storage.ErrNotFound
		}
		return nil, classify("get", err)
	}

	var rec item.Record
	if err := json.Unmarshal(entry.Value(), &rec); err != nil {
		return nil, &storage.BackendError{Reason: storage.ReasonOther, Op: "get",
			Err: fmt.Errorf("unmarshal record %s: %w", id, err)}
	}

	return rec, nil
}

// classify converts a raw NATS/JetStream failure into the closed reason set.
// Sentinel checks come first; the message fallbacks cover server responses
// the client library surfaces without a typed error (JetStream error codes
// included, same detection approach as key-not-found handling above).
func classify(op string, err error) *storage.BackendError {
	reason := storage.ReasonOther

	switch {
	case errors.Is(err, jetstream.ErrBucketNotFound),
		errors.Is(err, jetstream.ErrStreamNotFound),
		errors.Is(err, jetstream.ErrJetStreamNotEnabled),
		errors.Is(err, jetstream.ErrJetStreamNotEnabledForAccount):
		reason = storage.ReasonNotConfigured

	case errors.Is(err, nats.ErrConnectionClosed),
		errors.Is(err, nats.ErrNoServers),
		errors.Is(err, nats.ErrTimeout),
		errors.Is(err, nats.ErrNoResponders),
		errors.Is(err, context.DeadlineExceeded):
		reason = storage.ReasonUnavailable

	case errors.Is(err, nats.ErrSlowConsumer),
		errors.Is(err, nats.ErrMaxPayload):
		reason = storage.ReasonThroughputExceeded

	default:
		msg := strings.ToLower(err.Error())
		switch {
		case strings.Contains(msg, "jetstream not available"),
			strings.Contains(msg, "no responders"),
			strings.Contains(msg, "10008"): // JSClusterNotAvailErr
			reason = storage.ReasonUnavailable
		case strings.Contains(msg, "insufficient resources"),
			strings.Contains(msg, "resource limits exceeded"),
			strings.Contains(msg, "10023"): // JSInsufficientResourcesErr
			reason = storage.ReasonThroughputExceeded
		case strings.Contains(msg, "bucket not found"),
			strings.Contains(msg, "stream not found"),
			strings.Contains(msg, "10059"): // JSStreamNotFoundErr
			reason = storage.ReasonNotConfigured
		}
	}

	return &storage.BackendError{Reason: reason, Op: op, Err: err}
}
