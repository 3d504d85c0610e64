package entity

import (
	"context"
	"time"
)

// Store bundles persistence for all aggregates. Implementations must be safe
// for concurrent use; every method takes the caller's context and must not
// hold a transaction open across calls.
type Store interface {
	Tasks() TaskStore
	Teams() TeamStore
	Organizations() OrganizationStore
	Languages() LanguageStore
	Users() UserStore
	Tuples() TupleStore
}

// TaskStore persists tasks.
type TaskStore interface {
	Insert(ctx context.Context, t *Task) error
	Find(ctx context.Context, id int64) (*Task, error)
	FindMany(ctx context.Context, ids []int64) ([]*Task, error)
	// Update applies the mutation only when rowVersion matches the stored
	// value. Returns ErrConcurrency on version mismatch, ErrNotFound when the
	// row is gone.
	Update(ctx context.Context, t *Task, rowVersion int64) error
	Delete(ctx context.Context, id int64) error
}

// TeamStore persists teams and their role-shadow rows. Delete removes the
// team and its role rows in one transaction.
type TeamStore interface {
	Insert(ctx context.Context, t *Team, ownerID int64) error
	Find(ctx context.Context, id int64) (*Team, error)
	FindMany(ctx context.Context, ids []int64) ([]*Team, error)
	Update(ctx context.Context, t *Team, rowVersion int64) error
	Delete(ctx context.Context, id int64) error
	AddRole(ctx context.Context, role TeamRole) error
	RemoveRole(ctx context.Context, teamID, userID int64, role string) error
	Roles(ctx context.Context, teamID int64) ([]TeamRole, error)
}

// OrganizationStore persists organizations and their role-shadow rows.
type OrganizationStore interface {
	Insert(ctx context.Context, o *Organization, ownerID int64) error
	Find(ctx context.Context, id int64) (*Organization, error)
	FindMany(ctx context.Context, ids []int64) ([]*Organization, error)
	Update(ctx context.Context, o *Organization, rowVersion int64) error
	Delete(ctx context.Context, id int64) error
	AddRole(ctx context.Context, role OrganizationRole) error
	RemoveRole(ctx context.Context, orgID, userID int64, role string) error
	Roles(ctx context.Context, orgID int64) ([]OrganizationRole, error)
}

// LanguageStore persists languages.
type LanguageStore interface {
	Insert(ctx context.Context, l *Language) error
	Find(ctx context.Context, id int64) (*Language, error)
	FindMany(ctx context.Context, ids []int64) ([]*Language, error)
	Update(ctx context.Context, l *Language, rowVersion int64) error
	Delete(ctx context.Context, id int64) error
}

// UserStore persists users.
type UserStore interface {
	Insert(ctx context.Context, u *User) error
	Find(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindMany(ctx context.Context, ids []int64) ([]*User, error)
	Update(ctx context.Context, u *User, rowVersion int64) error
	Delete(ctx context.Context, id int64) error
}

// TupleFilter narrows stored-tuple listings. Zero values match everything.
type TupleFilter struct {
	StoreID  string
	Object   string
	Relation string
	Subject  string
}

// TuplePage is keyset paging over stored tuples, ordered by surrogate id.
type TuplePage struct {
	AfterID string
	Limit   int
}

// TupleStore maintains the relational mirror of engine tuples.
type TupleStore interface {
	Insert(ctx context.Context, tuples []StoredRelationTuple) error
	DeleteMatching(ctx context.Context, storeID, object, relation, subject string) error
	DeleteByObject(ctx context.Context, storeID, object string) error
	List(ctx context.Context, filter TupleFilter, page TuplePage) ([]StoredRelationTuple, error)
}

// Clock abstracts time for services; tests substitute a fixed instant.
type Clock func() time.Time
