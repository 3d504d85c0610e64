package pg

import (
	"context"
	"database/sql"
	"errors"

	"tasknest.org/internal/entity"
)

type taskStore struct {
	db *sql.DB
}

var _ entity.TaskStore = (*taskStore)(nil)

const taskColumns = `id, row_version, last_edited_by, valid_from, valid_to,
	title, description, due_date, reminder_date, completed_at, assigned_to, organization_id`

func scanTask(row interface{ Scan(...any) error }) (*entity.Task, error) {
	var t entity.Task
	err := row.Scan(
		&t.ID, &t.RowVersion, &t.LastEditedBy, &t.ValidFrom, &t.ValidTo,
		&t.Title, &t.Description, &t.DueDate, &t.ReminderDate, &t.CompletedAt,
		&t.AssignedToID, &t.OrganizationID,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *taskStore) Insert(ctx context.Context, t *entity.Task) error {
	row := s.db.QueryRowContext(ctx, `
		insert into tasks (title, description, due_date, reminder_date, completed_at, assigned_to, organization_id, last_edited_by)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		returning id, row_version, valid_from, valid_to
	`, t.Title, t.Description, t.DueDate, t.ReminderDate, t.CompletedAt, t.AssignedToID, t.OrganizationID, t.LastEditedBy)
	if err := row.Scan(&t.ID, &t.RowVersion, &t.ValidFrom, &t.ValidTo); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return entity.ErrInvalidInput
		}
		return err
	}
	return nil
}

func (s *taskStore) Find(ctx context.Context, id int64) (*entity.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, `select `+taskColumns+` from tasks where id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	return t, err
}

func (s *taskStore) FindMany(ctx context.Context, ids []int64) ([]*entity.Task, error) {
	if len(ids) == 0 {
		return []*entity.Task{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `select `+taskColumns+` from tasks where id = any($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*entity.Task, 0, len(ids))
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *taskStore) Update(ctx context.Context, t *entity.Task, rowVersion int64) error {
	err := s.db.QueryRowContext(ctx, `
		update tasks
		set title = $1, description = $2, due_date = $3, reminder_date = $4,
			completed_at = $5, assigned_to = $6, last_edited_by = $7,
			row_version = row_version + 1, valid_from = now()
		where id = $8 and row_version = $9
		returning row_version
	`, t.Title, t.Description, t.DueDate, t.ReminderDate, t.CompletedAt,
		t.AssignedToID, t.LastEditedBy, t.ID, rowVersion).Scan(&t.RowVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return staleOrMissing(ctx, s.db, "tasks", t.ID)
	}
	return err
}

func (s *taskStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from tasks where id = $1`, id)
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
