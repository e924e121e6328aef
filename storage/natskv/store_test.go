package natskv

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/itemstore/item"
	"github.com/c360/itemstore/storage"
)

// fakeKV implements the subset of jetstream.KeyValue the store touches.
type fakeKV struct {
	jetstream.KeyValue

	putFn func(ctx context.Context, key string, value []byte) (uint64, error)
	getFn func(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
}

func (f *fakeKV) Put(ctx context.Context, key string, value []byte) (uint64, error) {
	return f.putFn(ctx, key, value)
}

func (f *fakeKV) Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error) {
	return f.getFn(ctx, key)
}

type fakeEntry struct {
	key   string
	value []byte
}

func (e *fakeEntry) Bucket() string                  { return "items" }
func (e *fakeEntry) Key() string                     { return e.key }
func (e *fakeEntry) Value() []byte                   { return e.value }
func (e *fakeEntry) Revision() uint64                { return 1 }
func (e *fakeEntry) Created() time.Time              { return time.Time{} }
func (e *fakeEntry) Delta() uint64                   { return 0 }
func (e *fakeEntry) Operation() jetstream.KeyValueOp { return jetstream.KeyValuePut }

func TestStore_Put(t *testing.T) {
	t.Run("writes record under its id", func(t *testing.T) {
		var gotKey string
		var gotValue []byte
		kv := &fakeKV{putFn: func(_ context.Context, key string, value []byte) (uint64, error) {
			gotKey = key
			gotValue = value
			return 1, nil
		}}

		store := New(kv, nil)
		err := store.Put(context.Background(), item.Record{"id": "abc", "name": "x"})

		require.NoError(t, err)
		assert.Equal(t, "abc", gotKey)
		assert.JSONEq(t, `{"id":"abc","name":"x"}`, string(gotValue))
	})

	t.Run("rejects record without string id", func(t *testing.T) {
		store := New(&fakeKV{}, nil)
		err := store.Put(context.Background(), item.Record{"name": "x"})

		var be *storage.BackendError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, storage.ReasonOther, be.Reason)
	})

	t.Run("classifies driver failure", func(t *testing.T) {
		kv := &fakeKV{putFn: func(_ context.Context, _ string, _ []byte) (uint64, error) {
			return 0, nats.ErrConnectionClosed
		}}

		store := New(kv, nil)
		err := store.Put(context.Background(), item.Record{"id": "abc"})

		assert.True(t, storage.IsBackendUnavailable(err))
	})
}

func TestStore_Get(t *testing.T) {
	t.Run("returns stored record", func(t *testing.T) {
		kv := &fakeKV{getFn: func(_ context.Context, key string) (jetstream.KeyValueEntry, error) {
			return &fakeEntry{key: key, value: []byte(`{"id":"abc","price":1}`)}, nil
		}}

		store := New(kv, nil)
		rec, err := store.Get(context.Background(), "abc")

		require.NoError(t, err)
		assert.Equal(t, item.Record{"id": "abc", "price": float64(1)}, rec)
	})

	t.Run("maps missing key to ErrNotFound", func(t *testing.T) {
		kv := &fakeKV{getFn: func(_ context.Context, _ string) (jetstream.KeyValueEntry, error) {
			return nil, jetstream.ErrKeyNotFound
		}}

		store := New(kv, nil)
		_, err := store.Get(context.Background(), "missing")

		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.False(t, storage.IsBackendUnavailable(err))
	})

	t.Run("reports corrupt value as other", func(t *testing.T) {
		kv := &fakeKV{getFn: func(_ context.Context, key string) (jetstream.KeyValueEntry, error) {
			return &fakeEntry{key: key, value: []byte("not json")}, nil
		}}

		store := New(kv, nil)
		_, err := store.Get(context.Background(), "abc")

		var be *storage.BackendError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, storage.ReasonOther, be.Reason)
		assert.False(t, storage.IsBackendUnavailable(err))
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected storage.Reason
	}{
		{"bucket not found", jetstream.ErrBucketNotFound, storage.ReasonNotConfigured},
		{"stream not found", jetstream.ErrStreamNotFound, storage.ReasonNotConfigured},
		{"jetstream not enabled", jetstream.ErrJetStreamNotEnabled, storage.ReasonNotConfigured},
		{"connection closed", nats.ErrConnectionClosed, storage.ReasonUnavailable},
		{"no servers", nats.ErrNoServers, storage.ReasonUnavailable},
		{"timeout", nats.ErrTimeout, storage.ReasonUnavailable},
		{"no responders", nats.ErrNoResponders, storage.ReasonUnavailable},
		{"context deadline", context.DeadlineExceeded, storage.ReasonUnavailable},
		{"slow consumer", nats.ErrSlowConsumer, storage.ReasonThroughputExceeded},
		{"max payload", nats.ErrMaxPayload, storage.ReasonThroughputExceeded},
		{"insufficient resources message", errors.New("nats: insufficient resources"), storage.ReasonThroughputExceeded},
		{"cluster not available code", errors.New("nats: API error: code=503 err_code=10008"), storage.ReasonUnavailable},
		{"unknown error", errors.New("mystery failure"), storage.ReasonOther},
		{"wrapped sentinel", fmt.Errorf("put: %w", nats.ErrTimeout), storage.ReasonUnavailable},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			be := classify("put", test.err)
			assert.Equal(t, test.expected, be.Reason)
			assert.ErrorIs(t, be, test.err)
		})
	}
}
