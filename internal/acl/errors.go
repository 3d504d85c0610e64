package acl

import "errors"

var (
	// ErrMalformedToken indicates a notation token that is neither "Kind:Id"
	// nor "Kind:Id#Relation". This is a defect, not a recoverable condition:
	// it means the codec and the type registry have drifted.
	ErrMalformedToken = errors.New("acl: malformed notation token")
	// ErrInvalidIdentifier indicates the id segment of a token is not a
	// non-negative integer.
	ErrInvalidIdentifier = errors.New("acl: invalid identifier in token")
	// ErrEngineUnavailable indicates the authorization engine did not return
	// a usable response. Absence of an explicit allow is never treated as
	// permitted.
	ErrEngineUnavailable = errors.New("acl: authorization engine unavailable")
	// ErrUnknownRelation indicates a relation the model registry does not
	// declare for the given object kind. Caller error.
	ErrUnknownRelation = errors.New("acl: relation not declared for kind")
	// ErrUnknownKind indicates an object kind absent from the model registry.
	ErrUnknownKind = errors.New("acl: kind not declared in model")
)
