package acl

import (
	"fmt"
	"strconv"
	"strings"

	"tasknest.org/internal/entity"
)

// Ref addresses one endpoint of a relation tuple: a concrete object
// ("Kind:Id") or a userset ("Kind:Id#Relation").
type Ref struct {
	Kind     entity.Kind
	ID       int64
	Relation string
}

// Object returns a concrete object reference.
func Object(kind entity.Kind, id int64) Ref {
	return Ref{Kind: kind, ID: id}
}

// Userset returns a userset reference: every subject holding Relation on the
// object.
func Userset(kind entity.Kind, id int64, relation string) Ref {
	return Ref{Kind: kind, ID: id, Relation: relation}
}

// Token renders the canonical wire form of the reference.
func (r Ref) Token() string {
	if r.Relation == "" {
		return fmt.Sprintf("%s:%d", r.Kind, r.ID)
	}
	return fmt.Sprintf("%s:%d#%s", r.Kind, r.ID, r.Relation)
}

// Encode renders "Kind:Id".
func Encode(kind entity.Kind, id int64) string {
	return Object(kind, id).Token()
}

// EncodeUserset renders "Kind:Id#Relation".
func EncodeUserset(kind entity.Kind, id int64, relation string) string {
	return Userset(kind, id, relation).Token()
}

// Decode parses a notation token back into a Ref. The kind segment is not
// validated against the model registry; unknown kinds are a caller concern.
func Decode(token string) (Ref, error) {
	body := token
	relation := ""
	if i := strings.Index(token, "#"); i >= 0 {
		body = token[:i]
		relation = token[i+1:]
		if relation == "" || strings.Contains(relation, "#") {
			return Ref{}, fmt.Errorf("%w: %q", ErrMalformedToken, token)
		}
	}
	parts := strings.Split(body, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Ref{}, fmt.Errorf("%w: %q", ErrMalformedToken, token)
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id < 0 {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, token)
	}
	return Ref{Kind: entity.Kind(parts[0]), ID: id, Relation: relation}, nil
}

// Tuple is an (object, relation, subject) fact as understood by the engine.
// The subject may be a concrete object or a userset.
type Tuple struct {
	Object   Ref
	Relation string
	Subject  Ref
}
