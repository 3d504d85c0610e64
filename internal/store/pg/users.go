package pg

import (
	"context"
	"database/sql"
	"errors"

	"tasknest.org/internal/entity"
)

type userStore struct {
	db *sql.DB
}

var _ entity.UserStore = (*userStore)(nil)

const userColumns = `id, row_version, last_edited_by, valid_from, valid_to, email, full_name, language_id`

func scanUser(row interface{ Scan(...any) error }) (*entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.RowVersion, &u.LastEditedBy, &u.ValidFrom, &u.ValidTo, &u.Email, &u.FullName, &u.LanguageID)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *userStore) Insert(ctx context.Context, u *entity.User) error {
	row := s.db.QueryRowContext(ctx, `
		insert into users (email, full_name, language_id, last_edited_by)
		values ($1, $2, $3, $4)
		returning id, row_version, valid_from, valid_to
	`, u.Email, u.FullName, u.LanguageID, u.LastEditedBy)
	if err := row.Scan(&u.ID, &u.RowVersion, &u.ValidFrom, &u.ValidTo); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return entity.ErrInvalidInput
		}
		return err
	}
	return nil
}

func (s *userStore) Find(ctx context.Context, id int64) (*entity.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `select `+userColumns+` from users where id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	return u, err
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `select `+userColumns+` from users where email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	return u, err
}

func (s *userStore) FindMany(ctx context.Context, ids []int64) ([]*entity.User, error) {
	if len(ids) == 0 {
		return []*entity.User{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `select `+userColumns+` from users where id = any($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*entity.User, 0, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *userStore) Update(ctx context.Context, u *entity.User, rowVersion int64) error {
	err := s.db.QueryRowContext(ctx, `
		update users
		set email = $1, full_name = $2, language_id = $3, last_edited_by = $4,
			row_version = row_version + 1, valid_from = now()
		where id = $5 and row_version = $6
		returning row_version
	`, u.Email, u.FullName, u.LanguageID, u.LastEditedBy, u.ID, rowVersion).Scan(&u.RowVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return staleOrMissing(ctx, s.db, "users", u.ID)
	}
	return err
}

func (s *userStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from users where id = $1`, id)
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
	return nil
}
