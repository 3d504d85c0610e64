package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"tasknest.org/internal/entity"
)

const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
)

// Store implements entity.Store over database/sql with the pgx driver. One
// Store is shared by all in-flight requests; the pool inside *sql.DB is the
// only shared resource.
type Store struct {
	db *sql.DB
}

var _ entity.Store = (*Store)(nil)

// Open connects to Postgres with pool defaults tuned for request-parallel
// workloads.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing connection pool; used by tests with sqlmock.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Tasks() entity.TaskStore                 { return &taskStore{db: s.db} }
func (s *Store) Teams() entity.TeamStore                 { return &teamStore{db: s.db} }
func (s *Store) Organizations() entity.OrganizationStore { return &orgStore{db: s.db} }
func (s *Store) Languages() entity.LanguageStore         { return &languageStore{db: s.db} }
func (s *Store) Users() entity.UserStore                 { return &userStore{db: s.db} }
func (s *Store) Tuples() entity.TupleStore               { return &tupleStore{db: s.db} }

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// staleOrMissing distinguishes the two reasons a compare-and-swap update can
// affect zero rows: the row is gone, or another writer already bumped the
// version.
func staleOrMissing(ctx context.Context, db *sql.DB, table string, id int64) error {
	var exists int
	err := db.QueryRowContext(ctx, `select 1 from `+table+` where id = $1`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrNotFound
	}
	if err != nil {
		return err
	}
	return entity.ErrConcurrency
}
