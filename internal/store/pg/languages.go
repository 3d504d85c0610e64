package pg

import (
	"context"
	"database/sql"
	"errors"

	"tasknest.org/internal/entity"
)

type languageStore struct {
	db *sql.DB
}

var _ entity.LanguageStore = (*languageStore)(nil)

const languageColumns = `id, row_version, last_edited_by, valid_from, valid_to, name`

func scanLanguage(row interface{ Scan(...any) error }) (*entity.Language, error) {
	var l entity.Language
	err := row.Scan(&l.ID, &l.RowVersion, &l.LastEditedBy, &l.ValidFrom, &l.ValidTo, &l.Name)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *languageStore) Insert(ctx context.Context, l *entity.Language) error {
	row := s.db.QueryRowContext(ctx, `
		insert into languages (name, last_edited_by)
		values ($1, $2)
		returning id, row_version, valid_from, valid_to
	`, l.Name, l.LastEditedBy)
	return row.Scan(&l.ID, &l.RowVersion, &l.ValidFrom, &l.ValidTo)
}

func (s *languageStore) Find(ctx context.Context, id int64) (*entity.Language, error) {
	l, err := scanLanguage(s.db.QueryRowContext(ctx, `select `+languageColumns+` from languages where id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	return l, err
}

func (s *languageStore) FindMany(ctx context.Context, ids []int64) ([]*entity.Language, error) {
	if len(ids) == 0 {
		return []*entity.Language{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `select `+languageColumns+` from languages where id = any($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*entity.Language, 0, len(ids))
	for rows.Next() {
		l, err := scanLanguage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *languageStore) Update(ctx context.Context, l *entity.Language, rowVersion int64) error {
	err := s.db.QueryRowContext(ctx, `
		update languages
		set name = $1, last_edited_by = $2, row_version = row_version + 1, valid_from = now()
		where id = $3 and row_version = $4
		returning row_version
	`, l.Name, l.LastEditedBy, l.ID, rowVersion).Scan(&l.RowVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return staleOrMissing(ctx, s.db, "languages", l.ID)
	}
	return err
}

func (s *languageStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from languages where id = $1`, id)
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
