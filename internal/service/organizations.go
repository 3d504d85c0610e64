package service

import (
	"context"
	"strings"

	"tasknest.org/internal/acl"
	"tasknest.org/internal/audit"
	"tasknest.org/internal/entity"
)

// Organizations provides authorization-aware organization lifecycle and
// membership operations.
type Organizations struct {
	base
	resolver *Resolver
}

// NewOrganizations constructs the organization service.
func NewOrganizations(store entity.Store, authz Authorizer, opts ...Option) *Organizations {
	return &Organizations{base: newBase(store, authz, opts), resolver: NewResolver(store)}
}

// Create inserts the organization row together with its owner role-shadow
// row, then issues the owner tuple.
func (s *Organizations) Create(ctx context.Context, o *entity.Organization, userID int64) error {
	if strings.TrimSpace(o.Name) == "" {
		return entity.ErrInvalidInput
	}
	o.LastEditedBy = userID
	if err := s.store.Organizations().Insert(ctx, o, userID); err != nil {
		return err
	}
	if err := s.writeOwnerTuple(ctx, entity.KindOrganization, o.ID, userID); err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "organization.created", map[string]any{"organization_id": o.ID})
	return nil
}

// Get loads an organization and checks the viewer relation, existence first.
func (s *Organizations) Get(ctx context.Context, id, userID int64) (*entity.Organization, error) {
	o, err := s.store.Organizations().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireRelation(ctx, entity.KindOrganization, id, entity.RelationViewer, userID); err != nil {
		return nil, err
	}
	return o, nil
}

// ListForUser returns the organizations the engine says the user can view.
func (s *Organizations) ListForUser(ctx context.Context, userID int64) ([]*entity.Organization, error) {
	ids, err := s.acl.ListObjects(ctx, entity.KindOrganization, entity.RelationViewer, entity.KindUser, userID)
	if err != nil {
		return nil, err
	}
	return s.resolver.Organizations(ctx, ids)
}

// Update applies a compare-and-swap mutation gated on the owner relation.
func (s *Organizations) Update(ctx context.Context, o *entity.Organization, rowVersion, userID int64) error {
	if strings.TrimSpace(o.Name) == "" {
		return entity.ErrInvalidInput
	}
	if err := s.requireRelation(ctx, entity.KindOrganization, o.ID, entity.RelationOwner, userID); err != nil {
		return err
	}
	o.LastEditedBy = userID
	if err := s.store.Organizations().Update(ctx, o, rowVersion); err != nil {
		return recordConflict(entity.KindOrganization, err)
	}
	return nil
}

// Delete removes the organization and its role-shadow rows in one
// transaction, then clears the engine tuples.
func (s *Organizations) Delete(ctx context.Context, id, userID int64) error {
	if _, err := s.store.Organizations().Find(ctx, id); err != nil {
		return err
	}
	if err := s.requireRelation(ctx, entity.KindOrganization, id, entity.RelationOwner, userID); err != nil {
		return err
	}
	if err := s.store.Organizations().Delete(ctx, id); err != nil {
		return err
	}
	s.cleanupTuples(ctx, entity.KindOrganization, id)
	_ = audit.LogEvent(ctx, "organization.deleted", map[string]any{"organization_id": id})
	return nil
}

// AddMember grants a non-owner relation on the organization: role-shadow row
// first, then the engine tuple.
func (s *Organizations) AddMember(ctx context.Context, orgID, memberID int64, relation string, userID int64) error {
	if relation == entity.RelationOwner {
		return entity.ErrInvalidInput
	}
	if err := s.requireRelation(ctx, entity.KindOrganization, orgID, entity.RelationOwner, userID); err != nil {
		return err
	}
	if err := s.store.Organizations().AddRole(ctx, entity.OrganizationRole{OrganizationID: orgID, UserID: memberID, Role: relation}); err != nil {
		return err
	}
	tuple := acl.Tuple{
		Object:   acl.Object(entity.KindOrganization, orgID),
		Relation: relation,
		Subject:  acl.Object(entity.KindUser, memberID),
	}
	if err := s.acl.WriteTuples(ctx, []acl.Tuple{tuple}); err != nil {
		return err
	}
	s.mirrorTuples(ctx, []acl.Tuple{tuple})
	_ = audit.LogEvent(ctx, "organization.member_added", map[string]any{
		"organization_id": orgID, "member_id": memberID, "relation": relation,
	})
	return nil
}

// RemoveMember revokes a non-owner relation, relational delete first.
func (s *Organizations) RemoveMember(ctx context.Context, orgID, memberID int64, relation string, userID int64) error {
	if relation == entity.RelationOwner {
		return entity.ErrInvalidInput
	}
	if err := s.requireRelation(ctx, entity.KindOrganization, orgID, entity.RelationOwner, userID); err != nil {
		return err
	}
	if err := s.store.Organizations().RemoveRole(ctx, orgID, memberID, relation); err != nil {
		return err
	}
	tuple := acl.Tuple{
		Object:   acl.Object(entity.KindOrganization, orgID),
		Relation: relation,
		Subject:  acl.Object(entity.KindUser, memberID),
	}
	if err := s.acl.DeleteTuples(ctx, []acl.Tuple{tuple}); err != nil {
		return err
	}
	if err := s.store.Tuples().DeleteMatching(ctx, s.acl.StoreID(), tuple.Object.Token(), relation, tuple.Subject.Token()); err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "organization.member_removed", map[string]any{
		"organization_id": orgID, "member_id": memberID, "relation": relation,
	})
	return nil
}

// Members lists the role-shadow rows of an organization, gated on the viewer
// relation.
func (s *Organizations) Members(ctx context.Context, orgID, userID int64) ([]entity.OrganizationRole, error) {
	if _, err := s.store.Organizations().Find(ctx, orgID); err != nil {
		return nil, err
	}
	if err := s.requireRelation(ctx, entity.KindOrganization, orgID, entity.RelationViewer, userID); err != nil {
		return nil, err
	}
	return s.store.Organizations().Roles(ctx, orgID)
}
