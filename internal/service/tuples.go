package service

import (
	"context"

	"tasknest.org/internal/entity"
)

// TupleAudit is the read-only view over the relational tuple mirror, used
// for inspection and audit without round-tripping the engine. It reflects the
// engine's state as of the last successful mirror write; divergence under
// partial failure is possible and documented.
type TupleAudit struct {
	store   entity.Store
	storeID string
}

// NewTupleAudit scopes the view to one authorization store by default.
func NewTupleAudit(store entity.Store, storeID string) *TupleAudit {
	return &TupleAudit{store: store, storeID: storeID}
}

// List pages through mirrored tuples. An empty filter StoreID falls back to
// the configured scope; pass filter.StoreID = "*" for a global listing.
func (s *TupleAudit) List(ctx context.Context, filter entity.TupleFilter, page entity.TuplePage) ([]entity.StoredRelationTuple, error) {
	switch filter.StoreID {
	case "":
		filter.StoreID = s.storeID
	case "*":
		filter.StoreID = ""
	}
	return s.store.Tuples().List(ctx, filter, page)
}
