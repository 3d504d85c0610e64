package service

import (
	"context"

	"tasknest.org/internal/entity"
)

// Resolver materializes engine-returned object ids from the relational store.
// Each call issues one batched query. Ids with no matching row are dropped
// silently: a tuple pointing at a deleted row must never break a listing.
type Resolver struct {
	store entity.Store
}

// NewResolver constructs a Resolver over the given store.
func NewResolver(store entity.Store) *Resolver {
	return &Resolver{store: store}
}

// orderByIDs arranges fetched rows in the order the engine returned the ids.
func orderByIDs[E any](ids []int64, items []*E, idOf func(*E) int64) []*E {
	byID := make(map[int64]*E, len(items))
	for _, item := range items {
		byID[idOf(item)] = item
	}
	out := make([]*E, 0, len(items))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			out = append(out, item)
		}
	}
	return out
}

// Tasks loads the tasks for the given ids, preserving id order.
func (r *Resolver) Tasks(ctx context.Context, ids []int64) ([]*entity.Task, error) {
	items, err := r.store.Tasks().FindMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	return orderByIDs(ids, items, func(t *entity.Task) int64 { return t.ID }), nil
}

// Teams loads the teams for the given ids, preserving id order.
func (r *Resolver) Teams(ctx context.Context, ids []int64) ([]*entity.Team, error) {
	items, err := r.store.Teams().FindMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	return orderByIDs(ids, items, func(t *entity.Team) int64 { return t.ID }), nil
}

// Organizations loads the organizations for the given ids, preserving id order.
func (r *Resolver) Organizations(ctx context.Context, ids []int64) ([]*entity.Organization, error) {
	items, err := r.store.Organizations().FindMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	return orderByIDs(ids, items, func(o *entity.Organization) int64 { return o.ID }), nil
}

// Languages loads the languages for the given ids, preserving id order.
func (r *Resolver) Languages(ctx context.Context, ids []int64) ([]*entity.Language, error) {
	items, err := r.store.Languages().FindMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	return orderByIDs(ids, items, func(l *entity.Language) int64 { return l.ID }), nil
}

// Users loads the users for the given ids, preserving id order.
func (r *Resolver) Users(ctx context.Context, ids []int64) ([]*entity.User, error) {
	items, err := r.store.Users().FindMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	return orderByIDs(ids, items, func(u *entity.User) int64 { return u.ID }), nil
}
