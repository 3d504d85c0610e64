package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"tasknest.org/internal/authn"
	"tasknest.org/internal/entity"
)

// currentUser resolves the authenticated user id or writes a 401.
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := authn.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "no authenticated user")
		return 0, false
	}
	return userID, true
}

// pathID parses the {id} segment or writes a 400.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// decodeBody parses a JSON request body or writes a 400.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// rowVersionToken renders the opaque concurrency token callers must echo
// back on updates.
func rowVersionToken(v int64) string {
	return strconv.FormatInt(v, 10)
}

// parseRowVersion decodes an echoed concurrency token.
func parseRowVersion(raw string) (int64, bool) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

type auditFields struct {
	ID           int64  `json:"id"`
	RowVersion   string `json:"row_version"`
	LastEditedBy int64  `json:"last_edited_by"`
	ValidFrom    string `json:"valid_from"`
}

func auditOf(a entity.Audit) auditFields {
	return auditFields{
		ID:           a.ID,
		RowVersion:   rowVersionToken(a.RowVersion),
		LastEditedBy: a.LastEditedBy,
		ValidFrom:    a.ValidFrom.UTC().Format(time.RFC3339Nano),
	}
}
