package itemapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRateLimit(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("nil limiter passes through", func(t *testing.T) {
		h := RateLimit(nil, nil, next)

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/items/a", nil))
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("rejects when bucket is drained", func(t *testing.T) {
		limiter := rate.NewLimiter(rate.Limit(0.001), 1)
		h := RateLimit(limiter, nil, next)

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/items/a", nil))
		require.Equal(t, http.StatusNoContent, rr.Code, "first request fits the burst")

		rr = httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/items/a", nil))
		require.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.Equal(t, "Too many requests", decodeFailure(t, rr).Error)
	})
}
