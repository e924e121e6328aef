// Package health reports service liveness and dependency status.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Health states reported by the endpoint
const (
	StateHealthy   = "healthy"
	StateUnhealthy = "unhealthy"
)

// Check is a named dependency probe. Probe must be safe for concurrent use
// and should respect ctx cancellation.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// CheckStatus is the reported result of a single check
type CheckStatus struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// Status is the health document served by the endpoint
type Status struct {
	Status    string        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Checks    []CheckStatus `json:"checks,omitempty"`
}

// Healthy reports whether all checks passed
func (s Status) Healthy() bool {
	return s.Status == StateHealthy
}

// Evaluate runs all checks and aggregates them into a Status. Any failing
// check makes the overall status unhealthy.
func Evaluate(ctx context.Context, checks ...Check) Status {
	status := Status{
		Status:    StateHealthy,
		Timestamp: time.Now(),
	}

	for _, check := range checks {
		cs := CheckStatus{Name: check.Name, Healthy: true}
		if err := check.Probe(ctx); err != nil {
			cs.Healthy = false
			cs.Message = err.Error()
			status.Status = StateUnhealthy
		}
		status.Checks = append(status.Checks, cs)
	}

	return status
}

// Handler serves the health document: 200 when healthy, 503 otherwise.
func Handler(logger *slog.Logger, checks ...Check) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := Evaluate(r.Context(), checks...)

		code := http.StatusOK
		if !status.Healthy() {
			code = http.StatusServiceUnavailable
			logger.Warn("health check failed", "checks", status.Checks)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if err := json.NewEncoder(w).Encode(status); err != nil {
			logger.Error("write health response", "error", err)
		}
	})
}
