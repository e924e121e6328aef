package itemapi

import (
	"log/slog"
	"time"

	"github.com/c360/itemstore/metric"
)

// Option is a functional option for configuring the Handler
type Option func(*Handler)

// WithLogger sets the structured logger used by the handler
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMetrics attaches the service metrics. Without it the handler runs
// unobserved.
func WithMetrics(m *metric.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithMaxBodyBytes caps the accepted request body size
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBody = n
		}
	}
}

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// WithIDGenerator overrides the identifier generator, for tests
func WithIDGenerator(newID func() string) Option {
	return func(h *Handler) {
		if newID != nil {
			h.newID = newID
		}
	}
}
