package itemapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureOutcome(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 30, 45, 123_000_000, time.UTC)

	out := failureOutcome(http.StatusBadRequest, "Invalid JSON format", now)

	assert.Equal(t, http.StatusBadRequest, out.status)
	body, ok := out.body.(failureBody)
	require.True(t, ok)
	assert.Equal(t, "Invalid JSON format", body.Error)
	assert.Equal(t, http.StatusBadRequest, body.StatusCode)
	assert.Equal(t, "2024-06-01T12:30:45.123Z", body.Timestamp)
}

func TestFailureOutcome_TimestampIsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2024, 6, 1, 14, 0, 0, 0, loc)

	out := failureOutcome(http.StatusInternalServerError, "Internal server error", now)

	body := out.body.(failureBody)
	assert.Equal(t, "2024-06-01T12:00:00.000Z", body.Timestamp)
}

func TestWriteOutcome(t *testing.T) {
	rr := httptest.NewRecorder()

	writeOutcome(rr, successOutcome(http.StatusOK, map[string]any{"id": "a"}), nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "a", body["id"])
}
