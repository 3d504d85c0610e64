package service

import (
	"context"
	"strings"

	"tasknest.org/internal/audit"
	"tasknest.org/internal/entity"
)

// Tasks provides authorization-aware task lifecycle operations.
type Tasks struct {
	base
	resolver *Resolver
}

// NewTasks constructs the task service.
func NewTasks(store entity.Store, authz Authorizer, opts ...Option) *Tasks {
	return &Tasks{base: newBase(store, authz, opts), resolver: NewResolver(store)}
}

// Create inserts the task row, then issues the owner tuple. The relational
// row must exist before the tuple references it; if the engine write fails
// after the commit the task stays orphaned and the error is surfaced.
func (s *Tasks) Create(ctx context.Context, t *entity.Task, userID int64) error {
	if strings.TrimSpace(t.Title) == "" {
		return entity.ErrInvalidInput
	}
	t.LastEditedBy = userID
	if err := s.store.Tasks().Insert(ctx, t); err != nil {
		return err
	}
	if err := s.writeOwnerTuple(ctx, entity.KindTask, t.ID, userID); err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "task.created", map[string]any{"task_id": t.ID})
	return nil
}

// Get loads a task by id and checks the viewer relation. Existence is
// confirmed before authorization so callers can tell "not found" from
// "forbidden".
func (s *Tasks) Get(ctx context.Context, id, userID int64) (*entity.Task, error) {
	t, err := s.store.Tasks().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireRelation(ctx, entity.KindTask, id, entity.RelationViewer, userID); err != nil {
		return nil, err
	}
	return t, nil
}

// ListForUser returns the tasks the engine says the user can view. The
// relational store never filters by ownership itself.
func (s *Tasks) ListForUser(ctx context.Context, userID int64) ([]*entity.Task, error) {
	ids, err := s.acl.ListObjects(ctx, entity.KindTask, entity.RelationViewer, entity.KindUser, userID)
	if err != nil {
		return nil, err
	}
	return s.resolver.Tasks(ctx, ids)
}

// Update applies a compare-and-swap mutation gated on the writer relation.
func (s *Tasks) Update(ctx context.Context, t *entity.Task, rowVersion, userID int64) error {
	if strings.TrimSpace(t.Title) == "" {
		return entity.ErrInvalidInput
	}
	if err := s.requireRelation(ctx, entity.KindTask, t.ID, entity.RelationWriter, userID); err != nil {
		return err
	}
	t.LastEditedBy = userID
	if err := s.store.Tasks().Update(ctx, t, rowVersion); err != nil {
		return recordConflict(entity.KindTask, err)
	}
	return nil
}

// Delete removes the task row, then clears every tuple referencing it. The
// cleanup runs after the relational delete committed; its failure leaves
// dangling tuples that listings mask.
func (s *Tasks) Delete(ctx context.Context, id, userID int64) error {
	if _, err := s.store.Tasks().Find(ctx, id); err != nil {
		return err
	}
	if err := s.requireRelation(ctx, entity.KindTask, id, entity.RelationOwner, userID); err != nil {
		return err
	}
	if err := s.store.Tasks().Delete(ctx, id); err != nil {
		return err
	}
	s.cleanupTuples(ctx, entity.KindTask, id)
	_ = audit.LogEvent(ctx, "task.deleted", map[string]any{"task_id": id})
	return nil
}
