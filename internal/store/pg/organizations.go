package pg

import (
	"context"
	"database/sql"
	"errors"

	"tasknest.org/internal/entity"
)

type orgStore struct {
	db *sql.DB
}

var _ entity.OrganizationStore = (*orgStore)(nil)

const orgColumns = `id, row_version, last_edited_by, valid_from, valid_to, name, description`

func scanOrg(row interface{ Scan(...any) error }) (*entity.Organization, error) {
	var o entity.Organization
	err := row.Scan(&o.ID, &o.RowVersion, &o.LastEditedBy, &o.ValidFrom, &o.ValidTo, &o.Name, &o.Description)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *orgStore) Insert(ctx context.Context, o *entity.Organization, ownerID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		insert into organizations (name, description, last_edited_by)
		values ($1, $2, $3)
		returning id, row_version, valid_from, valid_to
	`, o.Name, o.Description, o.LastEditedBy)
	if err := row.Scan(&o.ID, &o.RowVersion, &o.ValidFrom, &o.ValidTo); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		insert into organization_roles (organization_id, user_id, role) values ($1, $2, $3)
	`, o.ID, ownerID, entity.RelationOwner); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *orgStore) Find(ctx context.Context, id int64) (*entity.Organization, error) {
	o, err := scanOrg(s.db.QueryRowContext(ctx, `select `+orgColumns+` from organizations where id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	return o, err
}

func (s *orgStore) FindMany(ctx context.Context, ids []int64) ([]*entity.Organization, error) {
	if len(ids) == 0 {
		return []*entity.Organization{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `select `+orgColumns+` from organizations where id = any($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*entity.Organization, 0, len(ids))
	for rows.Next() {
		o, err := scanOrg(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *orgStore) Update(ctx context.Context, o *entity.Organization, rowVersion int64) error {
	err := s.db.QueryRowContext(ctx, `
		update organizations
		set name = $1, description = $2, last_edited_by = $3,
			row_version = row_version + 1, valid_from = now()
		where id = $4 and row_version = $5
		returning row_version
	`, o.Name, o.Description, o.LastEditedBy, o.ID, rowVersion).Scan(&o.RowVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return staleOrMissing(ctx, s.db, "organizations", o.ID)
	}
	return err
}

func (s *orgStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `delete from organization_roles where organization_id = $1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `delete from organizations where id = $1`, id)
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

func (s *orgStore) AddRole(ctx context.Context, role entity.OrganizationRole) error {
	_, err := s.db.ExecContext(ctx, `
		insert into organization_roles (organization_id, user_id, role)
		values ($1, $2, $3)
		on conflict (organization_id, user_id, role) do nothing
	`, role.OrganizationID, role.UserID, role.Role)
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
		return entity.ErrNotFound
	}
	return err
}

func (s *orgStore) RemoveRole(ctx context.Context, orgID, userID int64, role string) error {
	_, err := s.db.ExecContext(ctx, `
		delete from organization_roles where organization_id = $1 and user_id = $2 and role = $3
	`, orgID, userID, role)
	return err
}

func (s *orgStore) Roles(ctx context.Context, orgID int64) ([]entity.OrganizationRole, error) {
	rows, err := s.db.QueryContext(ctx, `
		select organization_id, user_id, role, assigned_at from organization_roles where organization_id = $1
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.OrganizationRole
	for rows.Next() {
		var r entity.OrganizationRole
		if err := rows.Scan(&r.OrganizationID, &r.UserID, &r.Role, &r.AssignedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
