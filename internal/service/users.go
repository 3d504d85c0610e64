package service

import (
	"context"
	"strings"

	"tasknest.org/internal/audit"
	"tasknest.org/internal/entity"
)

// Users provides authorization-aware user lifecycle operations. Users are
// authorizable objects themselves: the creating account receives the owner
// tuple, which for self-registration is the new user.
type Users struct {
	base
	resolver *Resolver
}

// NewUsers constructs the user service.
func NewUsers(store entity.Store, authz Authorizer, opts ...Option) *Users {
	return &Users{base: newBase(store, authz, opts), resolver: NewResolver(store)}
}

// Create inserts the user row, then issues the owner tuple. When creatorID is
// zero the new user owns itself.
func (s *Users) Create(ctx context.Context, u *entity.User, creatorID int64) error {
	if strings.TrimSpace(u.Email) == "" {
		return entity.ErrInvalidInput
	}
	u.LastEditedBy = creatorID
	if err := s.store.Users().Insert(ctx, u); err != nil {
		return err
	}
	owner := creatorID
	if owner == 0 {
		owner = u.ID
		u.LastEditedBy = u.ID
	}
	if err := s.writeOwnerTuple(ctx, entity.KindUser, u.ID, owner); err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "user.created", map[string]any{"user_id": u.ID})
	return nil
}

// Get loads a user and checks the viewer relation, existence first.
func (s *Users) Get(ctx context.Context, id, userID int64) (*entity.User, error) {
	u, err := s.store.Users().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireRelation(ctx, entity.KindUser, id, entity.RelationViewer, userID); err != nil {
		return nil, err
	}
	return u, nil
}

// ListForUser returns the user accounts the engine says the caller can view.
func (s *Users) ListForUser(ctx context.Context, userID int64) ([]*entity.User, error) {
	ids, err := s.acl.ListObjects(ctx, entity.KindUser, entity.RelationViewer, entity.KindUser, userID)
	if err != nil {
		return nil, err
	}
	return s.resolver.Users(ctx, ids)
}

// Update applies a compare-and-swap mutation gated on the owner relation.
func (s *Users) Update(ctx context.Context, u *entity.User, rowVersion, userID int64) error {
	if strings.TrimSpace(u.Email) == "" {
		return entity.ErrInvalidInput
	}
	if err := s.requireRelation(ctx, entity.KindUser, u.ID, entity.RelationOwner, userID); err != nil {
		return err
	}
	u.LastEditedBy = userID
	if err := s.store.Users().Update(ctx, u, rowVersion); err != nil {
		return recordConflict(entity.KindUser, err)
	}
	return nil
}

// Delete removes the user row, then clears the engine tuples.
func (s *Users) Delete(ctx context.Context, id, userID int64) error {
	if _, err := s.store.Users().Find(ctx, id); err != nil {
		return err
	}
	if err := s.requireRelation(ctx, entity.KindUser, id, entity.RelationOwner, userID); err != nil {
		return err
	}
	if err := s.store.Users().Delete(ctx, id); err != nil {
		return err
	}
	s.cleanupTuples(ctx, entity.KindUser, id)
	_ = audit.LogEvent(ctx, "user.deleted", map[string]any{"user_id": id})
	return nil
}
