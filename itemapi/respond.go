package itemapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/c360/itemstore/item"
)

// Contract messages for non-validation failures. Clients match on exact text.
const (
	msgMethodNotAllowed    = "Method not allowed"
	msgInternalError       = "Internal server error"
	msgDatabaseUnavailable = "Database service unavailable"
	msgPathParamsRequired  = "Path parameters are required"
	msgIDRequired          = "ID parameter is required"
	msgIDTooLong           = "ID parameter is too long"
	msgItemNotFound        = "Item not found"
	msgBodyTooLarge        = "Request body too large"
	msgBodyUnreadable      = "Failed to read request body"
	msgTooManyRequests     = "Too many requests"
)

// outcome is a materialized response: an HTTP status plus the JSON body
// to write.
type outcome struct {
	status int
	body   any
}

// failureBody is the fixed error envelope. The timestamp is generated when
// the response is built, not when the failure first occurred.
type failureBody struct {
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
}

func successOutcome(status int, body any) *outcome {
	return &outcome{status: status, body: body}
}

func failureOutcome(status int, message string, now time.Time) *outcome {
	return &outcome{
		status: status,
		body: failureBody{
			Error:      message,
			StatusCode: status,
			Timestamp:  item.FormatTimestamp(now),
		},
	}
}

func (h *Handler) success(status int, body any) *outcome {
	return successOutcome(status, body)
}

func (h *Handler) failure(status int, message string) *outcome {
	return failureOutcome(status, message, h.now())
}

// write serializes the outcome. Encoding failures at this point can only be
// logged; the status line is already committed.
func (h *Handler) write(w http.ResponseWriter, out *outcome) {
	writeOutcome(w, out, h.logger)
}

func writeOutcome(w http.ResponseWriter, out *outcome, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(out.status)
	if err := json.NewEncoder(w).Encode(out.body); err != nil && logger != nil {
		logger.Error("write response", "error", err)
	}
}
