package itemapi

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/c360/itemstore/metric"
)

// RateLimit wraps next with a token-bucket limiter shared by all clients.
// Rejected requests receive the contract's failure envelope with 429. A nil
// limiter disables limiting.
func RateLimit(limiter *rate.Limiter, metrics *metric.Metrics, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			metrics.ObserveRateLimited()
			writeOutcome(w, failureOutcome(http.StatusTooManyRequests, msgTooManyRequests, time.Now()), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
