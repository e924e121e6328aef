package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passing(name string) Check {
	return Check{Name: name, Probe: func(context.Context) error { return nil }}
}

func failing(name string, err error) Check {
	return Check{Name: name, Probe: func(context.Context) error { return err }}
}

func TestEvaluate(t *testing.T) {
	t.Run("no checks is healthy", func(t *testing.T) {
		status := Evaluate(context.Background())
		assert.True(t, status.Healthy())
		assert.Empty(t, status.Checks)
	})

	t.Run("all passing", func(t *testing.T) {
		status := Evaluate(context.Background(), passing("nats"), passing("disk"))
		assert.True(t, status.Healthy())
		assert.Len(t, status.Checks, 2)
	})

	t.Run("one failing makes unhealthy", func(t *testing.T) {
		status := Evaluate(context.Background(),
			passing("disk"),
			failing("nats", errors.New("connection refused")))

		assert.False(t, status.Healthy())
		require.Len(t, status.Checks, 2)
		assert.True(t, status.Checks[0].Healthy)
		assert.False(t, status.Checks[1].Healthy)
		assert.Equal(t, "connection refused", status.Checks[1].Message)
	})
}

func TestHandler(t *testing.T) {
	t.Run("healthy returns 200", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Handler(nil, passing("nats")).ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

		require.Equal(t, 200, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var status Status
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.Equal(t, StateHealthy, status.Status)
	})

	t.Run("unhealthy returns 503", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Handler(nil, failing("nats", errors.New("down"))).
			ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

		require.Equal(t, 503, rec.Code)

		var status Status
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.Equal(t, StateUnhealthy, status.Status)
	})
}
