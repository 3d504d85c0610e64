package acl

import (
	"errors"
	"testing"

	"tasknest.org/internal/entity"
)

func TestEncode(t *testing.T) {
	if got := Encode(entity.KindTask, 42); got != "Task:42" {
		t.Fatalf("Encode = %q, want Task:42", got)
	}
	if got := EncodeUserset(entity.KindOrganization, 7, "member"); got != "Organization:7#member" {
		t.Fatalf("EncodeUserset = %q, want Organization:7#member", got)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	refs := []Ref{
		Object(entity.KindTask, 1),
		Object(entity.KindUser, 9223372036854775807),
		Userset(entity.KindTeam, 3, "member"),
		Userset(entity.KindOrganization, 12, "viewer"),
	}
	for _, ref := range refs {
		got, err := Decode(ref.Token())
		if err != nil {
			t.Fatalf("Decode(%q): %v", ref.Token(), err)
		}
		if got != ref {
			t.Fatalf("Decode(%q) = %+v, want %+v", ref.Token(), got, ref)
		}
	}
}

func TestDecodeRejects(t *testing.T) {
	cases := []struct {
		token   string
		wantErr error
	}{
		{"", ErrMalformedToken},
		{"Task", ErrMalformedToken},
		{"Task:", ErrMalformedToken},
		{":42", ErrMalformedToken},
		{"Task:1:2", ErrMalformedToken},
		{"Task:1#", ErrMalformedToken},
		{"Task:1#owner#extra", ErrMalformedToken},
		{"User:abc", ErrInvalidIdentifier},
		{"User:-5", ErrInvalidIdentifier},
		{"User:1.5", ErrInvalidIdentifier},
	}
	for _, tc := range cases {
		_, err := Decode(tc.token)
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("Decode(%q) error = %v, want %v", tc.token, err, tc.wantErr)
		}
	}
}
