package entity

import "errors"

var (
	// ErrNotFound indicates the relational row is absent.
	ErrNotFound = errors.New("entity: not found")
	// ErrUnauthorized indicates the authorization engine denied the relation.
	ErrUnauthorized = errors.New("entity: unauthorized")
	// ErrConcurrency indicates a compare-and-swap update affected zero rows;
	// the caller's row version is stale and it must refetch before retrying.
	ErrConcurrency = errors.New("entity: concurrency conflict")
	// ErrInvalidInput indicates a caller-supplied field failed validation.
	ErrInvalidInput = errors.New("entity: invalid input")
)
