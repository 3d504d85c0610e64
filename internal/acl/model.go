package acl

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tasknest.org/internal/entity"
)

// Model is the authorization schema: the object kinds the engine knows and
// the relations each declares. It is loaded once at startup and used to
// reject tuples and checks that reference undeclared relations before they
// reach the engine.
type Model struct {
	SchemaVersion string                      `yaml:"schema_version"`
	Objects       map[string]ObjectDefinition `yaml:"objects"`
}

// ObjectDefinition declares the relations an object kind supports and which
// subject kinds each relation accepts.
type ObjectDefinition struct {
	Relations map[string]RelationDefinition `yaml:"relations"`
}

// RelationDefinition restricts the subject kinds allowed on a relation.
type RelationDefinition struct {
	SubjectTypes []string `yaml:"subject_types"`
}

// LoadModel reads and validates a YAML model file.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("acl: read model: %w", err)
	}
	return ParseModel(data)
}

// ParseModel decodes and validates YAML model bytes.
func ParseModel(data []byte) (*Model, error) {
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("acl: parse model: %w", err)
	}
	if len(m.Objects) == 0 {
		return nil, fmt.Errorf("acl: model declares no objects")
	}
	for kind, def := range m.Objects {
		for rel, rd := range def.Relations {
			for _, st := range rd.SubjectTypes {
				if _, ok := m.Objects[st]; !ok {
					return nil, fmt.Errorf("acl: model: relation %s.%s references unknown subject type %q", kind, rel, st)
				}
			}
		}
	}
	return &m, nil
}

// DefaultModel covers the built-in entity kinds. Deployments override it with
// a model file when they extend the schema.
func DefaultModel() *Model {
	userOnly := RelationDefinition{SubjectTypes: []string{string(entity.KindUser)}}
	crud := map[string]RelationDefinition{
		entity.RelationOwner:  userOnly,
		entity.RelationWriter: userOnly,
		entity.RelationViewer: userOnly,
	}
	membership := map[string]RelationDefinition{
		entity.RelationOwner:  userOnly,
		entity.RelationWriter: userOnly,
		entity.RelationViewer: userOnly,
		entity.RelationMember: userOnly,
	}
	return &Model{
		SchemaVersion: "1.0",
		Objects: map[string]ObjectDefinition{
			string(entity.KindTask):         {Relations: crud},
			string(entity.KindTeam):         {Relations: membership},
			string(entity.KindOrganization): {Relations: membership},
			string(entity.KindLanguage):     {Relations: crud},
			string(entity.KindUser):         {Relations: crud},
		},
	}
}

// ValidateRelation checks that kind is declared and carries relation.
func (m *Model) ValidateRelation(kind entity.Kind, relation string) error {
	def, ok := m.Objects[string(kind)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if _, ok := def.Relations[relation]; !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownRelation, kind, relation)
	}
	return nil
}
