package service

import (
	"context"
	"strings"

	"tasknest.org/internal/acl"
	"tasknest.org/internal/audit"
	"tasknest.org/internal/entity"
)

// Teams provides authorization-aware team lifecycle and membership
// operations.
type Teams struct {
	base
	resolver *Resolver
}

// NewTeams constructs the team service.
func NewTeams(store entity.Store, authz Authorizer, opts ...Option) *Teams {
	return &Teams{base: newBase(store, authz, opts), resolver: NewResolver(store)}
}

// Create inserts the team row together with its owner role-shadow row, then
// issues the owner tuple. Engine failure after the commit is surfaced, not
// rolled back.
func (s *Teams) Create(ctx context.Context, t *entity.Team, userID int64) error {
	if strings.TrimSpace(t.Name) == "" {
		return entity.ErrInvalidInput
	}
	t.LastEditedBy = userID
	if err := s.store.Teams().Insert(ctx, t, userID); err != nil {
		return err
	}
	if err := s.writeOwnerTuple(ctx, entity.KindTeam, t.ID, userID); err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "team.created", map[string]any{"team_id": t.ID})
	return nil
}

// Get loads a team and checks the viewer relation, existence first.
func (s *Teams) Get(ctx context.Context, id, userID int64) (*entity.Team, error) {
	t, err := s.store.Teams().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireRelation(ctx, entity.KindTeam, id, entity.RelationViewer, userID); err != nil {
		return nil, err
	}
	return t, nil
}

// ListForUser returns the teams the engine says the user can view.
func (s *Teams) ListForUser(ctx context.Context, userID int64) ([]*entity.Team, error) {
	ids, err := s.acl.ListObjects(ctx, entity.KindTeam, entity.RelationViewer, entity.KindUser, userID)
	if err != nil {
		return nil, err
	}
	return s.resolver.Teams(ctx, ids)
}

// Update applies a compare-and-swap mutation gated on the owner relation.
func (s *Teams) Update(ctx context.Context, t *entity.Team, rowVersion, userID int64) error {
	if strings.TrimSpace(t.Name) == "" {
		return entity.ErrInvalidInput
	}
	if err := s.requireRelation(ctx, entity.KindTeam, t.ID, entity.RelationOwner, userID); err != nil {
		return err
	}
	t.LastEditedBy = userID
	if err := s.store.Teams().Update(ctx, t, rowVersion); err != nil {
		return recordConflict(entity.KindTeam, err)
	}
	return nil
}

// Delete removes the team and its role-shadow rows in one transaction, then
// clears the engine tuples.
func (s *Teams) Delete(ctx context.Context, id, userID int64) error {
	if _, err := s.store.Teams().Find(ctx, id); err != nil {
		return err
	}
	if err := s.requireRelation(ctx, entity.KindTeam, id, entity.RelationOwner, userID); err != nil {
		return err
	}
	if err := s.store.Teams().Delete(ctx, id); err != nil {
		return err
	}
	s.cleanupTuples(ctx, entity.KindTeam, id)
	_ = audit.LogEvent(ctx, "team.deleted", map[string]any{"team_id": id})
	return nil
}

// AddMember grants a non-owner relation on the team: role-shadow row first,
// then the engine tuple, same ordering discipline as Create.
func (s *Teams) AddMember(ctx context.Context, teamID, memberID int64, relation string, userID int64) error {
	if relation == entity.RelationOwner {
		return entity.ErrInvalidInput
	}
	if err := s.requireRelation(ctx, entity.KindTeam, teamID, entity.RelationOwner, userID); err != nil {
		return err
	}
	if err := s.store.Teams().AddRole(ctx, entity.TeamRole{TeamID: teamID, UserID: memberID, Role: relation}); err != nil {
		return err
	}
	tuple := acl.Tuple{
		Object:   acl.Object(entity.KindTeam, teamID),
		Relation: relation,
		Subject:  acl.Object(entity.KindUser, memberID),
	}
	if err := s.acl.WriteTuples(ctx, []acl.Tuple{tuple}); err != nil {
		return err
	}
	s.mirrorTuples(ctx, []acl.Tuple{tuple})
	_ = audit.LogEvent(ctx, "team.member_added", map[string]any{
		"team_id": teamID, "member_id": memberID, "relation": relation,
	})
	return nil
}

// RemoveMember revokes a non-owner relation: relational delete first, then
// the tuple delete, the reverse of AddMember.
func (s *Teams) RemoveMember(ctx context.Context, teamID, memberID int64, relation string, userID int64) error {
	if relation == entity.RelationOwner {
		return entity.ErrInvalidInput
	}
	if err := s.requireRelation(ctx, entity.KindTeam, teamID, entity.RelationOwner, userID); err != nil {
		return err
	}
	if err := s.store.Teams().RemoveRole(ctx, teamID, memberID, relation); err != nil {
		return err
	}
	tuple := acl.Tuple{
		Object:   acl.Object(entity.KindTeam, teamID),
		Relation: relation,
		Subject:  acl.Object(entity.KindUser, memberID),
	}
	if err := s.acl.DeleteTuples(ctx, []acl.Tuple{tuple}); err != nil {
		return err
	}
	if err := s.store.Tuples().DeleteMatching(ctx, s.acl.StoreID(), tuple.Object.Token(), relation, tuple.Subject.Token()); err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "team.member_removed", map[string]any{
		"team_id": teamID, "member_id": memberID, "relation": relation,
	})
	return nil
}

// Members lists the role-shadow rows of a team, gated on the viewer relation.
func (s *Teams) Members(ctx context.Context, teamID, userID int64) ([]entity.TeamRole, error) {
	if _, err := s.store.Teams().Find(ctx, teamID); err != nil {
		return nil, err
	}
	if err := s.requireRelation(ctx, entity.KindTeam, teamID, entity.RelationViewer, userID); err != nil {
		return nil, err
	}
	return s.store.Teams().Roles(ctx, teamID)
}
