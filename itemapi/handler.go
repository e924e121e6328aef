// Package itemapi implements the item request core: operation routing,
// payload validation, identifier assignment, and the fixed JSON response
// contract over a pluggable record store.
package itemapi

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/c360/itemstore/metric"
	"github.com/c360/itemstore/storage"
)

// MaxIDLength bounds fetch identifiers. The limit rejects pathological
// inputs before they reach the storage layer; it is not a domain constraint.
const MaxIDLength = 255

const basePath = "/items"

// Handler routes item operations and owns the top-level failure boundary.
// It holds no request state between invocations; the store is the only
// collaborator with memory.
type Handler struct {
	store   storage.Store
	logger  *slog.Logger
	metrics *metric.Metrics
	maxBody int64
	now     func() time.Time
	newID   func() string
}

// NewHandler creates a Handler over the given store.
func NewHandler(store storage.Store, opts ...Option) *Handler {
	h := &Handler{
		store:   store,
		logger:  slog.Default(),
		maxBody: 1 << 20,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the handler on mux for the item routes.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle(basePath, h)
	mux.Handle(basePath+"/", h)
}

// ServeHTTP dispatches on the method token and writes the resulting
// outcome. POST creates, GET fetches, anything else is rejected with 405.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	out := h.route(r)
	h.write(w, out)

	h.metrics.ObserveRequest(operationFor(r.Method), out.status, time.Since(start))
}

// route runs exactly one operation path. It is also the single recovery
// boundary: a failure not converted inside a path surfaces here as a
// generic 500 rather than escaping to the server.
func (h *Handler) route(r *http.Request) (out *outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("panic handling request",
				"panic", rec, "method", r.Method, "path", r.URL.Path)
			out = h.failure(http.StatusInternalServerError, msgInternalError)
		}
	}()

	switch r.Method {
	case http.MethodPost:
		return h.create(r)
	case http.MethodGet:
		return h.fetch(r)
	default:
		return h.failure(http.StatusMethodNotAllowed, msgMethodNotAllowed)
	}
}

// create handles the create-item operation: validate the body, settle the
// identifier, upsert, and echo the full record back with 201.
func (h *Handler) create(r *http.Request) *outcome {
	defer r.Body.Close()

	// Read with limit + 1 to detect bodies exceeding the cap
	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBody+1))
	if err != nil {
		return h.failure(http.StatusBadRequest, msgBodyUnreadable)
	}
	if int64(len(body)) > h.maxBody {
		return h.failure(http.StatusRequestEntityTooLarge, msgBodyTooLarge)
	}

	res := validateBody(body)
	if !res.Valid {
		return h.failure(http.StatusBadRequest, res.Reason)
	}

	rec, reason := h.assignIdentity(res.Record)
	if reason != "" {
		return h.failure(http.StatusBadRequest, reason)
	}

	if err := h.store.Put(r.Context(), rec); err != nil {
		return h.storageFailure("put", err)
	}

	return h.success(http.StatusCreated, rec)
}

// fetch handles the get-item-by-id operation. The stored record is returned
// verbatim: reserved and caller-supplied keys alike, no field filtering.
func (h *Handler) fetch(r *http.Request) *outcome {
	rest, ok := strings.CutPrefix(r.URL.Path, basePath)
	if !ok || rest == "" {
		return h.failure(http.StatusBadRequest, msgPathParamsRequired)
	}

	id := strings.TrimPrefix(rest, "/")
	if strings.TrimSpace(id) == "" {
		return h.failure(http.StatusBadRequest, msgIDRequired)
	}
	if utf8.RuneCountInString(id) > MaxIDLength {
		return h.failure(http.StatusBadRequest, msgIDTooLong)
	}

	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return h.failure(http.StatusNotFound, msgItemNotFound)
		}
		return h.storageFailure("get", err)
	}

	return h.success(http.StatusOK, rec)
}

// storageFailure maps a storage error onto the response contract. Only the
// closed set of backend-health reasons becomes 503; anything else is
// reported as a generic 500 so unknown faults are never presented as
// retryable.
func (h *Handler) storageFailure(op string, err error) *outcome {
	var be *storage.BackendError
	if errors.As(err, &be) {
		h.metrics.ObserveStorageError(op, be.Reason.String())
	} else {
		h.metrics.ObserveStorageError(op, "unclassified")
	}

	if storage.IsBackendUnavailable(err) {
		h.logger.Warn("storage backend unavailable", "op", op, "error", err)
		return h.failure(http.StatusServiceUnavailable, msgDatabaseUnavailable)
	}

	h.logger.Error("unexpected storage error", "op", op, "error", err)
	return h.failure(http.StatusInternalServerError, msgInternalError)
}

// operationFor labels requests for metrics by their operation path
func operationFor(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodGet:
		return "fetch"
	default:
		return "other"
	}
}
