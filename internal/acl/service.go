package acl

import (
	"context"
	"fmt"

	"tasknest.org/internal/entity"
)

// Service is the typed authorization adapter the entity services depend on.
// Object and subject kinds are carried as entity.Kind tags so that a single
// adapter serves every entity type without cross-kind token mistakes.
type Service struct {
	client *Client
	model  *Model
}

// NewService wraps an engine client with model-registry validation.
func NewService(client *Client, model *Model) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("acl: client is required")
	}
	if model == nil {
		model = DefaultModel()
	}
	return &Service{client: client, model: model}, nil
}

// StoreID returns the authorization store the underlying client is scoped to.
func (s *Service) StoreID() string { return s.client.StoreID() }

// Check reports whether the subject holds the relation on the object. The
// engine's silence is a deny, never an allow.
func (s *Service) Check(ctx context.Context, objKind entity.Kind, objID int64, relation string, subjKind entity.Kind, subjID int64) (bool, error) {
	if err := s.model.ValidateRelation(objKind, relation); err != nil {
		return false, err
	}
	return s.client.Check(ctx, TupleKey{
		Object:   Encode(objKind, objID),
		Relation: relation,
		User:     Encode(subjKind, subjID),
	})
}

// ListObjects returns the ids of all objects of objKind on which the subject
// holds the relation. An empty result is not an error.
func (s *Service) ListObjects(ctx context.Context, objKind entity.Kind, relation string, subjKind entity.Kind, subjID int64) ([]int64, error) {
	if err := s.model.ValidateRelation(objKind, relation); err != nil {
		return nil, err
	}
	tokens, err := s.client.ListObjects(ctx, string(objKind), relation, Encode(subjKind, subjID))
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(tokens))
	for _, tok := range tokens {
		ref, err := Decode(tok)
		if err != nil {
			return nil, err
		}
		if ref.Kind != objKind {
			return nil, fmt.Errorf("%w: engine returned %q for type %s", ErrMalformedToken, tok, objKind)
		}
		ids = append(ids, ref.ID)
	}
	return ids, nil
}

// WriteTuples adds tuples to the engine after validating each relation
// against the model. All-or-nothing from the caller's perspective.
func (s *Service) WriteTuples(ctx context.Context, tuples []Tuple) error {
	keys, err := s.tupleKeys(tuples)
	if err != nil {
		return err
	}
	return s.client.Write(ctx, keys)
}

// DeleteTuples removes tuples from the engine, symmetric to WriteTuples.
func (s *Service) DeleteTuples(ctx context.Context, tuples []Tuple) error {
	keys, err := s.tupleKeys(tuples)
	if err != nil {
		return err
	}
	return s.client.Delete(ctx, keys)
}

// ReadTuplesByObject returns every tuple whose object endpoint is the given
// entity, paging through the engine until exhausted. The engine has no native
// cascade, so this is how entity removal discovers what to delete.
func (s *Service) ReadTuplesByObject(ctx context.Context, kind entity.Kind, id int64) ([]Tuple, error) {
	filter := TupleKey{Object: Encode(kind, id)}
	var out []Tuple
	continuation := ""
	for {
		keys, next, err := s.client.Read(ctx, filter, defaultPageSize, continuation)
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			tuple, err := decodeTupleKey(key)
			if err != nil {
				return nil, err
			}
			out = append(out, tuple)
		}
		if next == "" {
			return out, nil
		}
		continuation = next
	}
}

func (s *Service) tupleKeys(tuples []Tuple) ([]TupleKey, error) {
	keys := make([]TupleKey, 0, len(tuples))
	for _, t := range tuples {
		if err := s.model.ValidateRelation(t.Object.Kind, t.Relation); err != nil {
			return nil, err
		}
		keys = append(keys, TupleKey{
			Object:   t.Object.Token(),
			Relation: t.Relation,
			User:     t.Subject.Token(),
		})
	}
	return keys, nil
}

func decodeTupleKey(key TupleKey) (Tuple, error) {
	object, err := Decode(key.Object)
	if err != nil {
		return Tuple{}, err
	}
	subject, err := Decode(key.User)
	if err != nil {
		return Tuple{}, err
	}
	return Tuple{Object: object, Relation: key.Relation, Subject: subject}, nil
}
