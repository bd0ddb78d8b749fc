// Package editstate holds the flat, index-addressable mirror of the
// canonical document. Every mapping in the canonical shape becomes an
// ordered list of records here, each carrying its semantic key (path
// string, status code, content type, property name) alongside a stable
// element ID that survives reordering and removal. UI layers address
// records by index or ID; semantic keys are free to be edited like any
// other field.
package editstate

import (
	"github.com/google/uuid"

	"github.com/oasdraft/oasdraft/internal/domain"
)

// NewID mints a stable element identifier. IDs are distinct from semantic
// keys so that reordering or renaming a record never invalidates a UI
// reference to it.
func NewID() string {
	return uuid.NewString()
}

// Document is the complete editing state for one draft. Extra carries the
// unknown top-level keys of an imported document; the editing surfaces
// never touch it and the fold step re-emits it unchanged.
type Document struct {
	SpecVersion string
	Info        InfoForm
	Servers     []ServerForm
	Paths       []PathForm
	Components  ComponentsForm
	Extra       map[string]any
}

// New returns an editing state for a blank draft.
func New() Document {
	return Document{
		SpecVersion: "",
		Info:        InfoForm{},
	}
}

// InfoForm is the flattened info section. Contact and license sub-objects
// are spread into scalar fields; the fold step reassembles them and omits
// all-empty shells.
type InfoForm struct {
	Title          string
	Version        string
	Description    string
	TermsOfService string
	ContactName    string
	ContactURL     string
	ContactEmail   string
	LicenseName    string
	LicenseURL     string
}

// ServerForm is one editable server entry.
type ServerForm struct {
	ID          string
	URL         string
	Description string
}

// NewServerForm returns a server record with a fresh element ID.
func NewServerForm() ServerForm {
	return ServerForm{ID: uuid.NewString()}
}

// PathForm is one editable path entry. Path is the semantic key; records
// with a blank Path are treated as incomplete drafts and dropped on fold.
type PathForm struct {
	ID          string
	Path        string
	Summary     string
	Description string
	Operations  []OperationForm
}

// NewPathForm returns a path record with a fresh element ID.
func NewPathForm() PathForm {
	return PathForm{ID: uuid.NewString()}
}

// OperationForm is one editable operation under a path. Method is the
// semantic key (lowercase HTTP method).
type OperationForm struct {
	ID             string
	Method         string
	Summary        string
	Description    string
	OperationID    string
	Tags           []string
	HasRequestBody bool
	RequestBody    BodyForm
	Responses      []ResponseForm
	Extra          map[string]any
}

// NewOperationForm returns an operation record with a fresh element ID and
// one empty response entry, matching the canonical invariant that every
// operation carries at least one response.
func NewOperationForm(method string) OperationForm {
	return OperationForm{
		ID:        uuid.NewString(),
		Method:    method,
		Responses: []ResponseForm{NewResponseForm("200")},
	}
}

// BodyForm is the editable request body wrapper.
type BodyForm struct {
	Description string
	Required    bool
	Content     []ContentForm
}

// ResponseForm is one editable response entry, keyed by status code.
type ResponseForm struct {
	ID          string
	StatusCode  string
	Description string
	Content     []ContentForm
}

// NewResponseForm returns a response record with a fresh element ID.
func NewResponseForm(statusCode string) ResponseForm {
	return ResponseForm{ID: uuid.NewString(), StatusCode: statusCode}
}

// ContentForm is one editable media type entry. It is a flag-plus-both-
// fields record: UseReference selects which of SchemaRef and Schema is
// live. The inactive side may hold stale data for display until the next
// edit; the fold step discards it so the canonical document never carries
// both.
type ContentForm struct {
	ID           string
	ContentType  string
	UseReference bool
	SchemaRef    string
	Schema       SchemaForm
}

// NewContentForm returns a content record with a fresh element ID.
func NewContentForm(contentType string) ContentForm {
	return ContentForm{ID: uuid.NewString(), ContentType: contentType}
}

// SchemaForm is the editable schema shape. Properties is the joined list
// of the canonical properties mapping and required list: each record
// carries its own Required flag, and the canonical required list is
// re-derived from those flags on every fold. Extra carries unknown schema
// keywords unchanged.
type SchemaForm struct {
	Type        string
	Format      string
	Description string
	Properties  []PropertyForm
	Items       *SchemaForm
	Extra       map[string]any
}

// PropertyForm is one editable property of an object schema. Name is the
// semantic key. The record edits only the scalar surface of the property;
// Remainder carries everything below it (the property's own nested
// properties and required list, array items, unknown keywords) opaquely,
// and the fold step re-emits it unchanged.
type PropertyForm struct {
	ID          string
	Name        string
	Type        string
	Format      string
	Description string
	Required    bool
	Remainder   *domain.Schema
}

// NewPropertyForm returns a property record with a fresh element ID.
func NewPropertyForm() PropertyForm {
	return PropertyForm{ID: uuid.NewString(), Type: "string"}
}

// ComponentsForm is the editable reusable-components section.
type ComponentsForm struct {
	Schemas   []SchemaComponentForm
	Responses []ResponseComponentForm
}

// SchemaComponentForm is one editable reusable schema, keyed by Name.
type SchemaComponentForm struct {
	ID     string
	Name   string
	Schema SchemaForm
}

// NewSchemaComponentForm returns a reusable-schema record with a fresh
// element ID.
func NewSchemaComponentForm() SchemaComponentForm {
	return SchemaComponentForm{ID: uuid.NewString(), Schema: SchemaForm{Type: "object"}}
}

// ResponseComponentForm is one editable reusable response, keyed by Name.
type ResponseComponentForm struct {
	ID          string
	Name        string
	Description string
	Content     []ContentForm
}

// NewResponseComponentForm returns a reusable-response record with a fresh
// element ID.
func NewResponseComponentForm() ResponseComponentForm {
	return ResponseComponentForm{ID: uuid.NewString()}
}
