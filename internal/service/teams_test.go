package service

import (
	"context"
	"errors"
	"testing"

	"tasknest.org/internal/entity"
)

func newTeamFixture(t *testing.T) (*memStore, *fakeAuthz, *Teams, *entity.Team) {
	t.Helper()
	store := newMemStore()
	authz := newFakeAuthz()
	svc := NewTeams(store, authz)
	team := &entity.Team{Name: "backend"}
	if err := svc.Create(context.Background(), team, 7); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return store, authz, svc, team
}

func TestTeamsCreateSeedsOwnerRole(t *testing.T) {
	store, authz, _, team := newTeamFixture(t)
	roles, err := store.Teams().Roles(context.Background(), team.ID)
	if err != nil {
		t.Fatalf("Roles: %v", err)
	}
	if len(roles) != 1 || roles[0].UserID != 7 || roles[0].Role != entity.RelationOwner {
		t.Fatalf("roles = %v, want owner shadow row for user 7", roles)
	}
	if len(authz.tuples) != 1 || authz.tuples[0].Relation != entity.RelationOwner {
		t.Fatalf("engine tuples = %v, want one owner tuple", authz.tuples)
	}
}

func TestTeamsAddMember(t *testing.T) {
	store, authz, svc, team := newTeamFixture(t)

	if err := svc.AddMember(context.Background(), team.ID, 8, entity.RelationMember, 7); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	roles, _ := store.Teams().Roles(context.Background(), team.ID)
	if len(roles) != 2 {
		t.Fatalf("roles = %v, want owner + member", roles)
	}
	if len(authz.tuples) != 2 {
		t.Fatalf("engine tuples = %v, want owner + member", authz.tuples)
	}

	// the new member can now view the team
	got, err := svc.Get(context.Background(), team.ID, 8)
	if err != nil {
		t.Fatalf("member Get: %v", err)
	}
	if got.Name != "backend" {
		t.Fatalf("member Get = %+v", got)
	}
}

func TestTeamsAddMemberRejectsOwnerRelation(t *testing.T) {
	_, _, svc, team := newTeamFixture(t)
	err := svc.AddMember(context.Background(), team.ID, 8, entity.RelationOwner, 7)
	if !errors.Is(err, entity.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
}

func TestTeamsAddMemberRequiresOwner(t *testing.T) {
	_, _, svc, team := newTeamFixture(t)
	err := svc.AddMember(context.Background(), team.ID, 9, entity.RelationMember, 8)
	if !errors.Is(err, entity.ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
}

func TestTeamsRemoveMember(t *testing.T) {
	store, authz, svc, team := newTeamFixture(t)
	if err := svc.AddMember(context.Background(), team.ID, 8, entity.RelationMember, 7); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if err := svc.RemoveMember(context.Background(), team.ID, 8, entity.RelationMember, 7); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	roles, _ := store.Teams().Roles(context.Background(), team.ID)
	if len(roles) != 1 {
		t.Fatalf("roles = %v, want only the owner", roles)
	}
	if len(authz.tuples) != 1 {
		t.Fatalf("engine tuples = %v, want only the owner tuple", authz.tuples)
	}
	if len(store.tuples) != 1 {
		t.Fatalf("projection rows = %v, want only the owner mirror", store.tuples)
	}
}

func TestTeamsRemoveMemberRejectsOwnerRelation(t *testing.T) {
	_, _, svc, team := newTeamFixture(t)
	err := svc.RemoveMember(context.Background(), team.ID, 7, entity.RelationOwner, 7)
	if !errors.Is(err, entity.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
}

func TestTeamsMembersGatedOnViewer(t *testing.T) {
	_, _, svc, team := newTeamFixture(t)
	if _, err := svc.Members(context.Background(), team.ID, 8); !errors.Is(err, entity.ErrUnauthorized) {
		t.Fatalf("stranger Members error = %v, want ErrUnauthorized", err)
	}
	if _, err := svc.Members(context.Background(), 999, 7); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("missing team error = %v, want ErrNotFound", err)
	}
	roles, err := svc.Members(context.Background(), team.ID, 7)
	if err != nil {
		t.Fatalf("owner Members: %v", err)
	}
	if len(roles) != 1 {
		t.Fatalf("roles = %v", roles)
	}
}

func TestTeamsDeleteRemovesRoleRows(t *testing.T) {
	store, authz, svc, team := newTeamFixture(t)
	if err := svc.AddMember(context.Background(), team.ID, 8, entity.RelationMember, 7); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if err := svc.Delete(context.Background(), team.ID, 7); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(store.teamRoles) != 0 {
		t.Fatalf("role rows = %v, want none", store.teamRoles)
	}
	if len(authz.tuples) != 0 {
		t.Fatalf("engine tuples = %v, want none", authz.tuples)
	}
}
