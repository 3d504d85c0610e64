package service

import (
	"context"
	"errors"
	"testing"

	"tasknest.org/internal/entity"
)

// TestOrganizationLifecycle walks one organization from creation through
// membership changes to deletion, asserting what each participant can see at
// every step.
func TestOrganizationLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	authz := newFakeAuthz()
	orgs := NewOrganizations(store, authz)

	org := &entity.Organization{Name: "acme", Description: "widgets"}
	if err := orgs.Create(ctx, org, 7); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// stranger sees nothing
	if _, err := orgs.Get(ctx, org.ID, 8); !errors.Is(err, entity.ErrUnauthorized) {
		t.Fatalf("stranger Get error = %v, want ErrUnauthorized", err)
	}

	// owner adds a member, who can then read the organization
	if err := orgs.AddMember(ctx, org.ID, 8, entity.RelationMember, 7); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	got, err := orgs.Get(ctx, org.ID, 8)
	if err != nil {
		t.Fatalf("member Get: %v", err)
	}
	if got.Name != "acme" {
		t.Fatalf("member Get = %+v", got)
	}

	// the member cannot administer membership
	if err := orgs.AddMember(ctx, org.ID, 9, entity.RelationMember, 8); !errors.Is(err, entity.ErrUnauthorized) {
		t.Fatalf("member AddMember error = %v, want ErrUnauthorized", err)
	}

	// compare-and-swap update by the owner
	upd := &entity.Organization{Audit: entity.Audit{ID: org.ID}, Name: "acme corp"}
	if err := orgs.Update(ctx, upd, org.RowVersion, 7); err != nil {
		t.Fatalf("Update: %v", err)
	}
	stale := &entity.Organization{Audit: entity.Audit{ID: org.ID}, Name: "stale"}
	if err := orgs.Update(ctx, stale, org.RowVersion, 7); !errors.Is(err, entity.ErrConcurrency) {
		t.Fatalf("stale Update error = %v, want ErrConcurrency", err)
	}

	// removal revokes access
	if err := orgs.RemoveMember(ctx, org.ID, 8, entity.RelationMember, 7); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if _, err := orgs.Get(ctx, org.ID, 8); !errors.Is(err, entity.ErrUnauthorized) {
		t.Fatalf("removed member Get error = %v, want ErrUnauthorized", err)
	}

	// deletion clears rows and tuples
	if err := orgs.Delete(ctx, org.ID, 7); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := orgs.Get(ctx, org.ID, 7); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("deleted Get error = %v, want ErrNotFound", err)
	}
	if len(authz.tuples) != 0 {
		t.Fatalf("engine tuples = %v, want none", authz.tuples)
	}
}

func TestUsersCreateSelfOwnership(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	authz := newFakeAuthz()
	users := NewUsers(store, authz)

	u := &entity.User{Email: "new@example.com"}
	if err := users.Create(ctx, u, 0); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(authz.tuples) != 1 {
		t.Fatalf("engine tuples = %v, want one", authz.tuples)
	}
	tuple := authz.tuples[0]
	if tuple.Subject.ID != u.ID || tuple.Object.ID != u.ID {
		t.Fatalf("self-registration tuple = %+v, want the user owning itself", tuple)
	}
	if u.LastEditedBy != u.ID {
		t.Fatalf("LastEditedBy = %d, want %d", u.LastEditedBy, u.ID)
	}

	// the fresh user can read and mutate itself
	if _, err := users.Get(ctx, u.ID, u.ID); err != nil {
		t.Fatalf("self Get: %v", err)
	}
}

func TestUsersCreateRejectsEmptyEmail(t *testing.T) {
	users := NewUsers(newMemStore(), newFakeAuthz())
	err := users.Create(context.Background(), &entity.User{Email: " "}, 0)
	if !errors.Is(err, entity.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
}

func TestTupleAuditScoping(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.tuples = []entity.StoredRelationTuple{
		{ID: "a", StoreID: "store-test", Object: "Task:1", Relation: "owner", Subject: "User:7"},
		{ID: "b", StoreID: "other", Object: "Task:2", Relation: "owner", Subject: "User:8"},
	}
	audit := NewTupleAudit(store, "store-test")

	scoped, err := audit.List(ctx, entity.TupleFilter{}, entity.TuplePage{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(scoped) != 1 || scoped[0].ID != "a" {
		t.Fatalf("scoped list = %v, want only store-test rows", scoped)
	}

	global, err := audit.List(ctx, entity.TupleFilter{StoreID: "*"}, entity.TuplePage{})
	if err != nil {
		t.Fatalf("global List: %v", err)
	}
	if len(global) != 2 {
		t.Fatalf("global list = %v, want both rows", global)
	}
}
