package service

import (
	"context"
	"strings"

	"tasknest.org/internal/entity"
)

// Languages provides authorization-aware lifecycle operations for the
// language reference data. The same ownership pattern applies even though
// languages are rarely mutated.
type Languages struct {
	base
	resolver *Resolver
}

// NewLanguages constructs the language service.
func NewLanguages(store entity.Store, authz Authorizer, opts ...Option) *Languages {
	return &Languages{base: newBase(store, authz, opts), resolver: NewResolver(store)}
}

// Create inserts the language row, then issues the owner tuple.
func (s *Languages) Create(ctx context.Context, l *entity.Language, userID int64) error {
	if strings.TrimSpace(l.Name) == "" {
		return entity.ErrInvalidInput
	}
	l.LastEditedBy = userID
	if err := s.store.Languages().Insert(ctx, l); err != nil {
		return err
	}
	return s.writeOwnerTuple(ctx, entity.KindLanguage, l.ID, userID)
}

// Get loads a language and checks the viewer relation, existence first.
func (s *Languages) Get(ctx context.Context, id, userID int64) (*entity.Language, error) {
	l, err := s.store.Languages().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireRelation(ctx, entity.KindLanguage, id, entity.RelationViewer, userID); err != nil {
		return nil, err
	}
	return l, nil
}

// ListForUser returns the languages the engine says the user can view.
func (s *Languages) ListForUser(ctx context.Context, userID int64) ([]*entity.Language, error) {
	ids, err := s.acl.ListObjects(ctx, entity.KindLanguage, entity.RelationViewer, entity.KindUser, userID)
	if err != nil {
		return nil, err
	}
	return s.resolver.Languages(ctx, ids)
}

// Update applies a compare-and-swap mutation gated on the writer relation.
func (s *Languages) Update(ctx context.Context, l *entity.Language, rowVersion, userID int64) error {
	if strings.TrimSpace(l.Name) == "" {
		return entity.ErrInvalidInput
	}
	if err := s.requireRelation(ctx, entity.KindLanguage, l.ID, entity.RelationWriter, userID); err != nil {
		return err
	}
	l.LastEditedBy = userID
	if err := s.store.Languages().Update(ctx, l, rowVersion); err != nil {
		return recordConflict(entity.KindLanguage, err)
	}
	return nil
}

// Delete removes the language row, then clears the engine tuples.
func (s *Languages) Delete(ctx context.Context, id, userID int64) error {
	if _, err := s.store.Languages().Find(ctx, id); err != nil {
		return err
	}
	if err := s.requireRelation(ctx, entity.KindLanguage, id, entity.RelationOwner, userID); err != nil {
		return err
	}
	if err := s.store.Languages().Delete(ctx, id); err != nil {
		return err
	}
	s.cleanupTuples(ctx, entity.KindLanguage, id)
	return nil
}
