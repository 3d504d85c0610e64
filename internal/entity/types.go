package entity

import "time"

// Kind tags an authorizable entity type. The string value is the object type
// understood by the authorization engine and must match the model registry.
type Kind string

const (
	KindTask         Kind = "Task"
	KindTeam         Kind = "Team"
	KindOrganization Kind = "Organization"
	KindLanguage     Kind = "Language"
	KindUser         Kind = "User"
)

// Relations used across entity kinds.
const (
	RelationOwner  = "owner"
	RelationWriter = "writer"
	RelationViewer = "viewer"
	RelationMember = "member"
)

// Audit carries the fields shared by every authorizable entity. RowVersion is
// a server-generated compare-and-swap token: it changes on every successful
// mutation and an update only commits when the caller supplies the current
// value.
type Audit struct {
	ID           int64
	RowVersion   int64
	LastEditedBy int64
	ValidFrom    time.Time
	ValidTo      time.Time
}

// Task is a unit of work owned by its creator.
type Task struct {
	Audit
	Title          string
	Description    string
	DueDate        *time.Time
	ReminderDate   *time.Time
	CompletedAt    *time.Time
	AssignedToID   *int64
	OrganizationID *int64
}

// Team groups users for shared task access.
type Team struct {
	Audit
	Name        string
	Description string
}

// Organization is the top-level tenant grouping teams and users.
type Organization struct {
	Audit
	Name        string
	Description string
}

// Language is a reference entity for user locale preferences.
type Language struct {
	Audit
	Name string
}

// User is a human account. Users are themselves authorizable objects so that
// usersets such as "Organization:1#member" can resolve to them.
type User struct {
	Audit
	Email      string
	FullName   string
	LanguageID *int64
}

// OrganizationRole is the relational shadow of an organization relation
// tuple, kept for joins and reporting. The engine's tuples stay authoritative.
type OrganizationRole struct {
	OrganizationID int64
	UserID         int64
	Role           string
	AssignedAt     time.Time
}

// TeamRole is the relational shadow of a team relation tuple.
type TeamRole struct {
	TeamID     int64
	UserID     int64
	Role       string
	AssignedAt time.Time
}

// StoredRelationTuple mirrors an engine tuple into the relational store for
// audit and paging. It is a cache written after successful engine writes, not
// a source of truth.
type StoredRelationTuple struct {
	ID         string
	StoreID    string
	Object     string
	Relation   string
	Subject    string
	InsertedAt time.Time
}

func (Task) AuthorizationKind() Kind         { return KindTask }
func (Team) AuthorizationKind() Kind         { return KindTeam }
func (Organization) AuthorizationKind() Kind { return KindOrganization }
func (Language) AuthorizationKind() Kind     { return KindLanguage }
func (User) AuthorizationKind() Kind         { return KindUser }
