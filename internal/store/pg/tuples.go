package pg

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"tasknest.org/internal/entity"
)

type tupleStore struct {
	db *sql.DB
}

var _ entity.TupleStore = (*tupleStore)(nil)

const defaultTupleLimit = 100

// Insert mirrors engine tuples into the relational store. Surrogate ids are
// assigned here when the caller left them empty.
func (s *tupleStore) Insert(ctx context.Context, tuples []entity.StoredRelationTuple) error {
	if len(tuples) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for i := range tuples {
		if tuples[i].ID == "" {
			tuples[i].ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, `
			insert into stored_relation_tuples (id, store_id, object, relation, subject)
			values ($1, $2, $3, $4, $5)
			on conflict (store_id, object, relation, subject) do nothing
		`, tuples[i].ID, tuples[i].StoreID, tuples[i].Object, tuples[i].Relation, tuples[i].Subject); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *tupleStore) DeleteMatching(ctx context.Context, storeID, object, relation, subject string) error {
	_, err := s.db.ExecContext(ctx, `
		delete from stored_relation_tuples
		where store_id = $1 and object = $2 and relation = $3 and subject = $4
	`, storeID, object, relation, subject)
	return err
}

func (s *tupleStore) DeleteByObject(ctx context.Context, storeID, object string) error {
	_, err := s.db.ExecContext(ctx, `
		delete from stored_relation_tuples where store_id = $1 and object = $2
	`, storeID, object)
	return err
}

func (s *tupleStore) List(ctx context.Context, filter entity.TupleFilter, page entity.TuplePage) ([]entity.StoredRelationTuple, error) {
	var (
		clauses []string
		args    []any
	)
	add := func(column, value string) {
		if value != "" {
			args = append(args, value)
			clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
		}
	}
	add("store_id", filter.StoreID)
	add("object", filter.Object)
	add("relation", filter.Relation)
	add("subject", filter.Subject)
	if page.AfterID != "" {
		args = append(args, page.AfterID)
		clauses = append(clauses, fmt.Sprintf("id > $%d", len(args)))
	}

	query := `select id, store_id, object, relation, subject, inserted_at from stored_relation_tuples`
	if len(clauses) > 0 {
		query += " where " + strings.Join(clauses, " and ")
	}
	limit := page.Limit
	if limit <= 0 || limit > 1000 {
		limit = defaultTupleLimit
	}
	args = append(args, limit)
	query += fmt.Sprintf(" order by id limit $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.StoredRelationTuple
	for rows.Next() {
		var t entity.StoredRelationTuple
		if err := rows.Scan(&t.ID, &t.StoreID, &t.Object, &t.Relation, &t.Subject, &t.InsertedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
