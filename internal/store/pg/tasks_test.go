package pg

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"tasknest.org/internal/entity"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db), mock
}

func taskRow(id, rowVersion int64, title string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "row_version", "last_edited_by", "valid_from", "valid_to",
		"title", "description", "due_date", "reminder_date", "completed_at",
		"assigned_to", "organization_id",
	}).AddRow(id, rowVersion, int64(7), now, now.Add(time.Hour), title, "", nil, nil, nil, nil, nil)
}

func TestTaskInsert(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	mock.ExpectQuery("insert into tasks").
		WithArgs("title", "desc", nil, nil, nil, nil, nil, int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "row_version", "valid_from", "valid_to"}).
			AddRow(int64(1), int64(1), now, now.Add(time.Hour)))

	task := &entity.Task{Title: "title", Description: "desc", Audit: entity.Audit{LastEditedBy: 7}}
	if err := store.Tasks().Insert(context.Background(), task); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if task.ID != 1 || task.RowVersion != 1 {
		t.Fatalf("task = %+v", task)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTaskFindNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("select .* from tasks where id").
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	_, err := store.Tasks().Find(context.Background(), 42)
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTaskUpdateCAS(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("update tasks").
		WithArgs("t2", "", nil, nil, nil, nil, int64(7), int64(1), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"row_version"}).AddRow(int64(4)))

	task := &entity.Task{Audit: entity.Audit{ID: 1, LastEditedBy: 7}, Title: "t2"}
	if err := store.Tasks().Update(context.Background(), task, 3); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if task.RowVersion != 4 {
		t.Fatalf("row version = %d, want 4", task.RowVersion)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTaskUpdateStaleVersion(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("update tasks").
		WithArgs("t2", "", nil, nil, nil, nil, int64(7), int64(1), int64(3)).
		WillReturnError(sql.ErrNoRows)
	// the row exists, so the zero-row update means a version conflict
	mock.ExpectQuery("select 1 from tasks where id").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

	task := &entity.Task{Audit: entity.Audit{ID: 1, LastEditedBy: 7}, Title: "t2"}
	err := store.Tasks().Update(context.Background(), task, 3)
	if !errors.Is(err, entity.ErrConcurrency) {
		t.Fatalf("error = %v, want ErrConcurrency", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTaskUpdateMissingRow(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("update tasks").
		WithArgs("t2", "", nil, nil, nil, nil, int64(7), int64(1), int64(3)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("select 1 from tasks where id").
		WithArgs(int64(1)).
		WillReturnError(sql.ErrNoRows)

	task := &entity.Task{Audit: entity.Audit{ID: 1, LastEditedBy: 7}, Title: "t2"}
	err := store.Tasks().Update(context.Background(), task, 3)
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTaskDelete(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("delete from tasks where id").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Tasks().Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	mock.ExpectExec("delete from tasks where id").
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.Tasks().Delete(context.Background(), 2); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTaskFindManyEmptyInput(t *testing.T) {
	store, _ := newMockStore(t)
	out, err := store.Tasks().FindMany(context.Background(), nil)
	if err != nil {
		t.Fatalf("FindMany(nil): %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("out = %v, want empty", out)
	}
}

func TestTaskFind(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("select .* from tasks where id").
		WithArgs(int64(1)).
		WillReturnRows(taskRow(1, 2, "hello"))

	task, err := store.Tasks().Find(context.Background(), 1)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if task.ID != 1 || task.RowVersion != 2 || task.Title != "hello" {
		t.Fatalf("task = %+v", task)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
