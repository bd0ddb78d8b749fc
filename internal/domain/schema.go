package domain

import "encoding/json"

// Schema type names supported by the editing surfaces. This is the subset
// of JSON Schema shape needed to describe request/response bodies and
// reusable types, not a full JSON Schema implementation.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
	TypeNull    = "null"
)

// SchemaTypes enumerates the valid values for Schema.Type in display order.
var SchemaTypes = []string{TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeArray, TypeObject, TypeNull}

// Schema is a recursive structural description of a value.
//
// Required is derived data: it is always recomputed from per-property flags
// when the editing state is folded back into canonical form, never merged
// with a previously stored list. Unknown keywords from imported schemas are
// preserved in Extra.
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Format      string             `json:"format,omitempty"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`

	Extra map[string]any `json:"-"`
}

type schemaAlias Schema

var schemaKnownKeys = knownKeys("type", "format", "description", "properties", "required", "items")

// MarshalJSON emits the modeled fields plus any preserved unknown keywords.
func (s Schema) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(schemaAlias(s), s.Extra)
}

// UnmarshalJSON decodes the modeled fields and captures unknown keywords.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var a schemaAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := extractExtra(data, schemaKnownKeys)
	if err != nil {
		return err
	}
	*s = Schema(a)
	s.Extra = extra
	return nil
}

// SchemaOrRef is the tagged union occupying a media type's schema slot: a
// node is either a reference to a reusable component or an inline schema,
// never both. The fold step enforces the mutual exclusivity; this type
// enforces it on the wire.
type SchemaOrRef struct {
	Ref    string
	Schema *Schema
}

// NewRef returns a reference-mode node.
func NewRef(ref string) *SchemaOrRef {
	return &SchemaOrRef{Ref: ref}
}

// NewInline returns an inline-mode node.
func NewInline(s *Schema) *SchemaOrRef {
	return &SchemaOrRef{Schema: s}
}

// IsRef reports whether the node is in reference mode.
func (s *SchemaOrRef) IsRef() bool {
	return s != nil && s.Ref != ""
}

// MarshalJSON writes either a bare {"$ref": ...} object or the inline
// schema. An empty node serializes as an empty schema.
func (s SchemaOrRef) MarshalJSON() ([]byte, error) {
	if s.Ref != "" {
		return json.Marshal(struct {
			Ref string `json:"$ref"`
		}{Ref: s.Ref})
	}
	if s.Schema != nil {
		return json.Marshal(s.Schema)
	}
	return []byte("{}"), nil
}

// UnmarshalJSON branches on the presence of a $ref key. Reference mode wins
// when both shapes appear in the input.
func (s *SchemaOrRef) UnmarshalJSON(data []byte) error {
	var head struct {
		Ref string `json:"$ref"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	if head.Ref != "" {
		*s = SchemaOrRef{Ref: head.Ref}
		return nil
	}
	var inline Schema
	if err := json.Unmarshal(data, &inline); err != nil {
		return err
	}
	*s = SchemaOrRef{Schema: &inline}
	return nil
}
