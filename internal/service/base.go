// Package service implements the authorization-aware entity services: every
// operation coordinates the relational store with the remote authorization
// engine. Relational writes that establish existence commit before the
// matching engine write; deletes run in the reverse order. The two stores are
// never covered by one transaction, so the partial-failure windows documented
// on Create and Delete are deliberate.
package service

import (
	"context"
	"errors"
	"time"

	"tasknest.org/internal/acl"
	"tasknest.org/internal/entity"
	"tasknest.org/internal/obs"
)

// Authorizer is the subset of the acl service the entity services depend on.
type Authorizer interface {
	StoreID() string
	Check(ctx context.Context, objKind entity.Kind, objID int64, relation string, subjKind entity.Kind, subjID int64) (bool, error)
	ListObjects(ctx context.Context, objKind entity.Kind, relation string, subjKind entity.Kind, subjID int64) ([]int64, error)
	WriteTuples(ctx context.Context, tuples []acl.Tuple) error
	DeleteTuples(ctx context.Context, tuples []acl.Tuple) error
	ReadTuplesByObject(ctx context.Context, kind entity.Kind, id int64) ([]acl.Tuple, error)
}

type base struct {
	store entity.Store
	acl   Authorizer
	now   func() time.Time
}

// Option configures a service.
type Option func(*base)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(b *base) {
		if fn != nil {
			b.now = fn
		}
	}
}

func newBase(store entity.Store, authz Authorizer, opts []Option) base {
	b := base{store: store, acl: authz, now: time.Now}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// requireRelation runs an engine check and folds a deny into
// entity.ErrUnauthorized. Engine unavailability propagates unchanged; it is
// never treated as an allow.
func (b *base) requireRelation(ctx context.Context, kind entity.Kind, id int64, relation string, userID int64) error {
	allowed, err := b.acl.Check(ctx, kind, id, relation, entity.KindUser, userID)
	if err != nil {
		return err
	}
	if !allowed {
		return entity.ErrUnauthorized
	}
	return nil
}

// recordConflict counts compare-and-swap rejections before passing the error
// through.
func recordConflict(kind entity.Kind, err error) error {
	if errors.Is(err, entity.ErrConcurrency) {
		obs.ConcurrencyConflict(string(kind))
	}
	return err
}

// writeOwnerTuple issues the ownership tuple for a freshly committed entity
// and mirrors it into the projection. The relational row already exists, so
// a failure here leaves an entity no engine check can reach; the error is
// surfaced to the caller, never retried here.
func (b *base) writeOwnerTuple(ctx context.Context, kind entity.Kind, id, ownerID int64) error {
	tuple := acl.Tuple{
		Object:   acl.Object(kind, id),
		Relation: entity.RelationOwner,
		Subject:  acl.Object(entity.KindUser, ownerID),
	}
	if err := b.acl.WriteTuples(ctx, []acl.Tuple{tuple}); err != nil {
		obs.Error("owner tuple write failed after relational commit", map[string]any{
			"kind": string(kind), "id": id, "owner": ownerID, "error": err.Error(),
		})
		return err
	}
	b.mirrorTuples(ctx, []acl.Tuple{tuple})
	return nil
}

// mirrorTuples updates the projection after a successful engine write. The
// projection is a cache; a failed mirror write is logged and tolerated.
func (b *base) mirrorTuples(ctx context.Context, tuples []acl.Tuple) {
	stored := make([]entity.StoredRelationTuple, 0, len(tuples))
	for _, t := range tuples {
		stored = append(stored, entity.StoredRelationTuple{
			StoreID:  b.acl.StoreID(),
			Object:   t.Object.Token(),
			Relation: t.Relation,
			Subject:  t.Subject.Token(),
		})
	}
	if err := b.store.Tuples().Insert(ctx, stored); err != nil {
		obs.Error("tuple projection insert failed", map[string]any{"error": err.Error()})
	}
}

// cleanupTuples removes every engine tuple referencing a deleted entity, then
// clears the projection. It runs after the relational delete committed; a
// failure leaves dangling tuples that the resolver masks on reads, so the
// error is recorded as a monitored gap and not returned.
func (b *base) cleanupTuples(ctx context.Context, kind entity.Kind, id int64) {
	tuples, err := b.acl.ReadTuplesByObject(ctx, kind, id)
	if err == nil && len(tuples) > 0 {
		err = b.acl.DeleteTuples(ctx, tuples)
	}
	if err != nil {
		obs.TupleCleanupFailure()
		obs.Error("tuple cleanup failed after relational delete", map[string]any{
			"kind": string(kind), "id": id, "error": err.Error(),
		})
		return
	}
	object := acl.Encode(kind, id)
	if err := b.store.Tuples().DeleteByObject(ctx, b.acl.StoreID(), object); err != nil {
		obs.Error("tuple projection cleanup failed", map[string]any{
			"kind": string(kind), "id": id, "error": err.Error(),
		})
	}
}
