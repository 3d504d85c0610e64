package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"tasknest.org/internal/entity"
)

type tupleResponse struct {
	ID         string `json:"id"`
	StoreID    string `json:"store_id"`
	Object     string `json:"object"`
	Relation   string `json:"relation"`
	Subject    string `json:"subject"`
	InsertedAt string `json:"inserted_at"`
}

// ListTuples pages through the relational tuple mirror. This is an audit
// surface; the authorization engine remains the source of truth.
func (a *API) ListTuples(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	q := r.URL.Query()
	filter := entity.TupleFilter{
		StoreID:  q.Get("store_id"),
		Object:   q.Get("object"),
		Relation: q.Get("relation"),
		Subject:  q.Get("subject"),
	}
	page := entity.TuplePage{AfterID: q.Get("after_id")}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		page.Limit = n
	}
	tuples, err := a.svc.Tuples.List(r.Context(), filter, page)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	out := make([]tupleResponse, 0, len(tuples))
	for _, t := range tuples {
		out = append(out, tupleResponse{
			ID:         t.ID,
			StoreID:    t.StoreID,
			Object:     t.Object,
			Relation:   t.Relation,
			Subject:    t.Subject,
			InsertedAt: t.InsertedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	next := ""
	if len(out) > 0 {
		next = out[len(out)-1].ID
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "next_after_id": next})
}
