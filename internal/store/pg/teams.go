package pg

import (
	"context"
	"database/sql"
	"errors"

	"tasknest.org/internal/entity"
)

type teamStore struct {
	db *sql.DB
}

var _ entity.TeamStore = (*teamStore)(nil)

const teamColumns = `id, row_version, last_edited_by, valid_from, valid_to, name, description`

func scanTeam(row interface{ Scan(...any) error }) (*entity.Team, error) {
	var t entity.Team
	err := row.Scan(&t.ID, &t.RowVersion, &t.LastEditedBy, &t.ValidFrom, &t.ValidTo, &t.Name, &t.Description)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Insert creates the team row and the owner role-shadow row in one
// transaction, so the relational side never shows a team without an owner.
func (s *teamStore) Insert(ctx context.Context, t *entity.Team, ownerID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		insert into teams (name, description, last_edited_by)
		values ($1, $2, $3)
		returning id, row_version, valid_from, valid_to
	`, t.Name, t.Description, t.LastEditedBy)
	if err := row.Scan(&t.ID, &t.RowVersion, &t.ValidFrom, &t.ValidTo); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		insert into team_roles (team_id, user_id, role) values ($1, $2, $3)
	`, t.ID, ownerID, entity.RelationOwner); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *teamStore) Find(ctx context.Context, id int64) (*entity.Team, error) {
	t, err := scanTeam(s.db.QueryRowContext(ctx, `select `+teamColumns+` from teams where id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	return t, err
}

func (s *teamStore) FindMany(ctx context.Context, ids []int64) ([]*entity.Team, error) {
	if len(ids) == 0 {
		return []*entity.Team{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `select `+teamColumns+` from teams where id = any($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*entity.Team, 0, len(ids))
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *teamStore) Update(ctx context.Context, t *entity.Team, rowVersion int64) error {
	err := s.db.QueryRowContext(ctx, `
		update teams
		set name = $1, description = $2, last_edited_by = $3,
			row_version = row_version + 1, valid_from = now()
		where id = $4 and row_version = $5
		returning row_version
	`, t.Name, t.Description, t.LastEditedBy, t.ID, rowVersion).Scan(&t.RowVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return staleOrMissing(ctx, s.db, "teams", t.ID)
	}
	return err
}

// Delete removes the team and its role-shadow rows in one transaction.
func (s *teamStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `delete from team_roles where team_id = $1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `delete from teams where id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return entity.ErrNotFound
	}
	return tx.Commit()
}

func (s *teamStore) AddRole(ctx context.Context, role entity.TeamRole) error {
	_, err := s.db.ExecContext(ctx, `
		insert into team_roles (team_id, user_id, role)
		values ($1, $2, $3)
		on conflict (team_id, user_id, role) do nothing
	`, role.TeamID, role.UserID, role.Role)
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
		return entity.ErrNotFound
	}
	return err
}

func (s *teamStore) RemoveRole(ctx context.Context, teamID, userID int64, role string) error {
	_, err := s.db.ExecContext(ctx, `
		delete from team_roles where team_id = $1 and user_id = $2 and role = $3
	`, teamID, userID, role)
	return err
}

func (s *teamStore) Roles(ctx context.Context, teamID int64) ([]entity.TeamRole, error) {
	rows, err := s.db.QueryContext(ctx, `
		select team_id, user_id, role, assigned_at from team_roles where team_id = $1
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.TeamRole
	for rows.Next() {
		var r entity.TeamRole
		if err := rows.Scan(&r.TeamID, &r.UserID, &r.Role, &r.AssignedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
