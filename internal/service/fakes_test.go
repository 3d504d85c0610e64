package service

import (
	"context"
	"fmt"
	"time"

	"tasknest.org/internal/acl"
	"tasknest.org/internal/entity"
)

// memStore is an in-memory entity.Store for service tests. It applies the
// same compare-and-swap and not-found semantics as the Postgres store.
type memStore struct {
	tasks     map[int64]*entity.Task
	teams     map[int64]*entity.Team
	orgs      map[int64]*entity.Organization
	languages map[int64]*entity.Language
	users     map[int64]*entity.User
	teamRoles []entity.TeamRole
	orgRoles  []entity.OrganizationRole
	tuples    []entity.StoredRelationTuple
	nextID    int64

	insertErr error
	tupleErr  error
}

func newMemStore() *memStore {
	return &memStore{
		tasks:     make(map[int64]*entity.Task),
		teams:     make(map[int64]*entity.Team),
		orgs:      make(map[int64]*entity.Organization),
		languages: make(map[int64]*entity.Language),
		users:     make(map[int64]*entity.User),
	}
}

func (m *memStore) allocate(a *entity.Audit) {
	m.nextID++
	a.ID = m.nextID
	a.RowVersion = 1
	a.ValidFrom = time.Now().UTC()
}

func (m *memStore) Tasks() entity.TaskStore                 { return (*memTasks)(m) }
func (m *memStore) Teams() entity.TeamStore                 { return (*memTeams)(m) }
func (m *memStore) Organizations() entity.OrganizationStore { return (*memOrgs)(m) }
func (m *memStore) Languages() entity.LanguageStore         { return (*memLanguages)(m) }
func (m *memStore) Users() entity.UserStore                 { return (*memUsers)(m) }
func (m *memStore) Tuples() entity.TupleStore               { return (*memTuples)(m) }

type memTasks memStore

func (m *memTasks) Insert(_ context.Context, t *entity.Task) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	(*memStore)(m).allocate(&t.Audit)
	clone := *t
	m.tasks[t.ID] = &clone
	return nil
}

func (m *memTasks) Find(_ context.Context, id int64) (*entity.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (m *memTasks) FindMany(_ context.Context, ids []int64) ([]*entity.Task, error) {
	var out []*entity.Task
	for _, id := range ids {
		if t, ok := m.tasks[id]; ok {
			clone := *t
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memTasks) Update(_ context.Context, t *entity.Task, rowVersion int64) error {
	cur, ok := m.tasks[t.ID]
	if !ok {
		return entity.ErrNotFound
	}
	if cur.RowVersion != rowVersion {
		return entity.ErrConcurrency
	}
	t.RowVersion = rowVersion + 1
	clone := *t
	m.tasks[t.ID] = &clone
	return nil
}

func (m *memTasks) Delete(_ context.Context, id int64) error {
	if _, ok := m.tasks[id]; !ok {
		return entity.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

type memTeams memStore

func (m *memTeams) Insert(_ context.Context, t *entity.Team, ownerID int64) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	(*memStore)(m).allocate(&t.Audit)
	clone := *t
	m.teams[t.ID] = &clone
	m.teamRoles = append(m.teamRoles, entity.TeamRole{TeamID: t.ID, UserID: ownerID, Role: entity.RelationOwner})
	return nil
}

func (m *memTeams) Find(_ context.Context, id int64) (*entity.Team, error) {
	t, ok := m.teams[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (m *memTeams) FindMany(_ context.Context, ids []int64) ([]*entity.Team, error) {
	var out []*entity.Team
	for _, id := range ids {
		if t, ok := m.teams[id]; ok {
			clone := *t
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memTeams) Update(_ context.Context, t *entity.Team, rowVersion int64) error {
	cur, ok := m.teams[t.ID]
	if !ok {
		return entity.ErrNotFound
	}
	if cur.RowVersion != rowVersion {
		return entity.ErrConcurrency
	}
	t.RowVersion = rowVersion + 1
	clone := *t
	m.teams[t.ID] = &clone
	return nil
}

func (m *memTeams) Delete(_ context.Context, id int64) error {
	if _, ok := m.teams[id]; !ok {
		return entity.ErrNotFound
	}
	delete(m.teams, id)
	kept := m.teamRoles[:0]
	for _, r := range m.teamRoles {
		if r.TeamID != id {
			kept = append(kept, r)
		}
	}
	m.teamRoles = kept
	return nil
}

func (m *memTeams) AddRole(_ context.Context, role entity.TeamRole) error {
	if _, ok := m.teams[role.TeamID]; !ok {
		return entity.ErrNotFound
	}
	role.AssignedAt = time.Now().UTC()
	m.teamRoles = append(m.teamRoles, role)
	return nil
}

func (m *memTeams) RemoveRole(_ context.Context, teamID, userID int64, role string) error {
	kept := m.teamRoles[:0]
	for _, r := range m.teamRoles {
		if r.TeamID == teamID && r.UserID == userID && r.Role == role {
			continue
		}
		kept = append(kept, r)
	}
	m.teamRoles = kept
	return nil
}

func (m *memTeams) Roles(_ context.Context, teamID int64) ([]entity.TeamRole, error) {
	var out []entity.TeamRole
	for _, r := range m.teamRoles {
		if r.TeamID == teamID {
			out = append(out, r)
		}
	}
	return out, nil
}

type memOrgs memStore

func (m *memOrgs) Insert(_ context.Context, o *entity.Organization, ownerID int64) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	(*memStore)(m).allocate(&o.Audit)
	clone := *o
	m.orgs[o.ID] = &clone
	m.orgRoles = append(m.orgRoles, entity.OrganizationRole{OrganizationID: o.ID, UserID: ownerID, Role: entity.RelationOwner})
	return nil
}

func (m *memOrgs) Find(_ context.Context, id int64) (*entity.Organization, error) {
	o, ok := m.orgs[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	clone := *o
	return &clone, nil
}

func (m *memOrgs) FindMany(_ context.Context, ids []int64) ([]*entity.Organization, error) {
	var out []*entity.Organization
	for _, id := range ids {
		if o, ok := m.orgs[id]; ok {
			clone := *o
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memOrgs) Update(_ context.Context, o *entity.Organization, rowVersion int64) error {
	cur, ok := m.orgs[o.ID]
	if !ok {
		return entity.ErrNotFound
	}
	if cur.RowVersion != rowVersion {
		return entity.ErrConcurrency
	}
	o.RowVersion = rowVersion + 1
	clone := *o
	m.orgs[o.ID] = &clone
	return nil
}

func (m *memOrgs) Delete(_ context.Context, id int64) error {
	if _, ok := m.orgs[id]; !ok {
		return entity.ErrNotFound
	}
	delete(m.orgs, id)
	kept := m.orgRoles[:0]
	for _, r := range m.orgRoles {
		if r.OrganizationID != id {
			kept = append(kept, r)
		}
	}
	m.orgRoles = kept
	return nil
}

func (m *memOrgs) AddRole(_ context.Context, role entity.OrganizationRole) error {
	if _, ok := m.orgs[role.OrganizationID]; !ok {
		return entity.ErrNotFound
	}
	role.AssignedAt = time.Now().UTC()
	m.orgRoles = append(m.orgRoles, role)
	return nil
}

func (m *memOrgs) RemoveRole(_ context.Context, orgID, userID int64, role string) error {
	kept := m.orgRoles[:0]
	for _, r := range m.orgRoles {
		if r.OrganizationID == orgID && r.UserID == userID && r.Role == role {
			continue
		}
		kept = append(kept, r)
	}
	m.orgRoles = kept
	return nil
}

func (m *memOrgs) Roles(_ context.Context, orgID int64) ([]entity.OrganizationRole, error) {
	var out []entity.OrganizationRole
	for _, r := range m.orgRoles {
		if r.OrganizationID == orgID {
			out = append(out, r)
		}
	}
	return out, nil
}

type memLanguages memStore

func (m *memLanguages) Insert(_ context.Context, l *entity.Language) error {
	(*memStore)(m).allocate(&l.Audit)
	clone := *l
	m.languages[l.ID] = &clone
	return nil
}

func (m *memLanguages) Find(_ context.Context, id int64) (*entity.Language, error) {
	l, ok := m.languages[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	clone := *l
	return &clone, nil
}

func (m *memLanguages) FindMany(_ context.Context, ids []int64) ([]*entity.Language, error) {
	var out []*entity.Language
	for _, id := range ids {
		if l, ok := m.languages[id]; ok {
			clone := *l
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memLanguages) Update(_ context.Context, l *entity.Language, rowVersion int64) error {
	cur, ok := m.languages[l.ID]
	if !ok {
		return entity.ErrNotFound
	}
	if cur.RowVersion != rowVersion {
		return entity.ErrConcurrency
	}
	l.RowVersion = rowVersion + 1
	clone := *l
	m.languages[l.ID] = &clone
	return nil
}

func (m *memLanguages) Delete(_ context.Context, id int64) error {
	if _, ok := m.languages[id]; !ok {
		return entity.ErrNotFound
	}
	delete(m.languages, id)
	return nil
}

type memUsers memStore

func (m *memUsers) Insert(_ context.Context, u *entity.User) error {
	(*memStore)(m).allocate(&u.Audit)
	clone := *u
	m.users[u.ID] = &clone
	return nil
}

func (m *memUsers) Find(_ context.Context, id int64) (*entity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (m *memUsers) FindMany(_ context.Context, ids []int64) ([]*entity.User, error) {
	var out []*entity.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			clone := *u
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memUsers) Update(_ context.Context, u *entity.User, rowVersion int64) error {
	cur, ok := m.users[u.ID]
	if !ok {
		return entity.ErrNotFound
	}
	if cur.RowVersion != rowVersion {
		return entity.ErrConcurrency
	}
	u.RowVersion = rowVersion + 1
	clone := *u
	m.users[u.ID] = &clone
	return nil
}

func (m *memUsers) Delete(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return entity.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

type memTuples memStore

func (m *memTuples) Insert(_ context.Context, tuples []entity.StoredRelationTuple) error {
	if m.tupleErr != nil {
		return m.tupleErr
	}
	m.tuples = append(m.tuples, tuples...)
	return nil
}

func (m *memTuples) DeleteMatching(_ context.Context, storeID, object, relation, subject string) error {
	kept := m.tuples[:0]
	for _, t := range m.tuples {
		if t.StoreID == storeID && t.Object == object && t.Relation == relation && t.Subject == subject {
			continue
		}
		kept = append(kept, t)
	}
	m.tuples = kept
	return nil
}

func (m *memTuples) DeleteByObject(_ context.Context, storeID, object string) error {
	kept := m.tuples[:0]
	for _, t := range m.tuples {
		if t.StoreID == storeID && t.Object == object {
			continue
		}
		kept = append(kept, t)
	}
	m.tuples = kept
	return nil
}

func (m *memTuples) List(_ context.Context, filter entity.TupleFilter, _ entity.TuplePage) ([]entity.StoredRelationTuple, error) {
	var out []entity.StoredRelationTuple
	for _, t := range m.tuples {
		if filter.StoreID != "" && t.StoreID != filter.StoreID {
			continue
		}
		if filter.Object != "" && t.Object != filter.Object {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// fakeAuthz is an in-memory Authorizer. Tuples written through it become the
// source of truth for Check, ListObjects and ReadTuplesByObject, so ordering
// bugs in the services show up as missing grants.
type fakeAuthz struct {
	tuples   []acl.Tuple
	listIDs  map[string][]int64
	checkErr error
	writeErr error
	readErr  error
}

func newFakeAuthz() *fakeAuthz {
	return &fakeAuthz{listIDs: make(map[string][]int64)}
}

func (f *fakeAuthz) StoreID() string { return "store-test" }

func (f *fakeAuthz) Check(_ context.Context, objKind entity.Kind, objID int64, relation string, subjKind entity.Kind, subjID int64) (bool, error) {
	if f.checkErr != nil {
		return false, f.checkErr
	}
	for _, t := range f.tuples {
		if t.Object.Kind != objKind || t.Object.ID != objID || t.Subject.Kind != subjKind || t.Subject.ID != subjID {
			continue
		}
		// owner implies the weaker relations, matching the engine's schema.
		if t.Relation == relation || t.Relation == entity.RelationOwner {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAuthz) ListObjects(_ context.Context, objKind entity.Kind, relation string, _ entity.Kind, subjID int64) ([]int64, error) {
	key := fmt.Sprintf("%s/%s/%d", objKind, relation, subjID)
	if ids, ok := f.listIDs[key]; ok {
		return ids, nil
	}
	var ids []int64
	for _, t := range f.tuples {
		if t.Object.Kind == objKind && t.Subject.ID == subjID {
			ids = append(ids, t.Object.ID)
		}
	}
	return ids, nil
}

func (f *fakeAuthz) setList(objKind entity.Kind, relation string, subjID int64, ids []int64) {
	f.listIDs[fmt.Sprintf("%s/%s/%d", objKind, relation, subjID)] = ids
}

func (f *fakeAuthz) WriteTuples(_ context.Context, tuples []acl.Tuple) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.tuples = append(f.tuples, tuples...)
	return nil
}

func (f *fakeAuthz) DeleteTuples(_ context.Context, tuples []acl.Tuple) error {
	for _, del := range tuples {
		kept := f.tuples[:0]
		for _, t := range f.tuples {
			if t == del {
				continue
			}
			kept = append(kept, t)
		}
		f.tuples = kept
	}
	return nil
}

func (f *fakeAuthz) ReadTuplesByObject(_ context.Context, kind entity.Kind, id int64) ([]acl.Tuple, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	var out []acl.Tuple
	for _, t := range f.tuples {
		if t.Object.Kind == kind && t.Object.ID == id {
			out = append(out, t)
		}
	}
	return out, nil
}

var _ Authorizer = (*fakeAuthz)(nil)
var _ entity.Store = (*memStore)(nil)
