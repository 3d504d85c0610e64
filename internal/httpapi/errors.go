package httpapi

import (
	"errors"
	"net/http"

	"tasknest.org/internal/acl"
	"tasknest.org/internal/audit"
	"tasknest.org/internal/entity"
	"tasknest.org/internal/obs"
)

type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	TraceID string `json:"trace_id,omitempty"`
}

// respondServiceError maps the core error taxonomy onto HTTP statuses and a
// stable machine-readable code. Codec errors indicate registry drift; they
// surface as 500 and are logged loudly.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	traceID := audit.TraceIDFromContext(r.Context())

	var status int
	var code, msg string
	switch {
	case errors.Is(err, entity.ErrNotFound):
		status, code, msg = http.StatusNotFound, "not_found", "entity not found"
	case errors.Is(err, entity.ErrUnauthorized):
		status, code, msg = http.StatusForbidden, "forbidden", "operation not permitted"
	case errors.Is(err, entity.ErrConcurrency):
		status, code, msg = http.StatusConflict, "concurrency_conflict", "row version is stale, refetch and retry"
	case errors.Is(err, entity.ErrInvalidInput), errors.Is(err, acl.ErrUnknownRelation), errors.Is(err, acl.ErrUnknownKind):
		status, code, msg = http.StatusBadRequest, "invalid_input", err.Error()
	case errors.Is(err, acl.ErrEngineUnavailable):
		status, code, msg = http.StatusServiceUnavailable, "authorization_engine_unavailable", "authorization engine did not respond"
	case errors.Is(err, acl.ErrMalformedToken), errors.Is(err, acl.ErrInvalidIdentifier):
		status, code, msg = http.StatusInternalServerError, "notation_defect", "internal notation error"
		obs.Error("notation codec defect", map[string]any{"error": err.Error(), "trace_id": traceID})
	default:
		status, code, msg = http.StatusInternalServerError, "internal", "internal error"
		obs.Error("unhandled service error", map[string]any{"error": err.Error(), "trace_id": traceID})
	}

	writeJSON(w, status, errorBody{Error: msg, Code: code, TraceID: traceID})
}

func respondError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Error: msg, Code: http.StatusText(code)})
}
