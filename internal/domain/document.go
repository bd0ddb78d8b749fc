// Package domain holds the canonical, spec-shaped representation of an
// OpenAPI draft document. Types here are pure data: they know how to
// serialize themselves and how to be assembled from independently edited
// sections, but they perform no validation. Structural correctness is the
// validator's job.
package domain

import (
	"encoding/json"
	"sort"
)

// DefaultVersion is the document version stamped onto new drafts.
const DefaultVersion = "3.1.0"

// SupportedVersionPrefix is the major.minor prefix this engine understands.
const SupportedVersionPrefix = "3.1"

// Document is the root of a canonical OpenAPI draft.
//
// Unknown top-level keys found in imported documents are preserved in Extra
// and re-emitted on marshal, so a round trip through the editor does not
// silently drop data the editor does not model.
type Document struct {
	OpenAPI    string               `json:"openapi"`
	Info       Info                 `json:"info"`
	Servers    []Server             `json:"servers,omitempty"`
	Paths      map[string]*PathItem `json:"paths"`
	Components *Components          `json:"components,omitempty"`

	Extra map[string]any `json:"-"`
}

// documentAlias strips Document's marshal methods for use inside them.
type documentAlias Document

var documentKnownKeys = knownKeys("openapi", "info", "servers", "paths", "components")

// MarshalJSON emits the modeled fields plus any preserved unknown keys.
func (d Document) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(documentAlias(d), d.Extra)
}

// UnmarshalJSON decodes the modeled fields and captures unknown keys.
func (d *Document) UnmarshalJSON(data []byte) error {
	var a documentAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := extractExtra(data, documentKnownKeys)
	if err != nil {
		return err
	}
	*d = Document(a)
	d.Extra = extra
	return nil
}

// NewDocument returns an empty draft with the default version and
// initialized sections.
func NewDocument() Document {
	return Document{
		OpenAPI: DefaultVersion,
		Paths:   make(map[string]*PathItem),
	}
}

// Info carries document metadata.
type Info struct {
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	TermsOfService string   `json:"termsOfService,omitempty"`
	Contact        *Contact `json:"contact,omitempty"`
	License        *License `json:"license,omitempty"`
	Version        string   `json:"version"`
}

// Contact holds API contact information. A Contact with every field empty
// is represented as a nil pointer on Info, never as an empty shell.
type Contact struct {
	Name  string `json:"name,omitempty"`
	URL   string `json:"url,omitempty"`
	Email string `json:"email,omitempty"`
}

// IsEmpty reports whether every field is blank.
func (c Contact) IsEmpty() bool {
	return c.Name == "" && c.URL == "" && c.Email == ""
}

// License holds API license information. Like Contact, an all-empty License
// is omitted entirely.
type License struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// IsEmpty reports whether every field is blank.
func (l License) IsEmpty() bool {
	return l.Name == "" && l.URL == ""
}

// Server describes a single server entry. URL may be an absolute URL or a
// template URL containing {variable} placeholders.
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// Methods lists the HTTP methods a PathItem can carry, in canonical order.
var Methods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// PathItem describes the operations available on a single path. The path
// string itself is the key in Document.Paths and must start with "/".
type PathItem struct {
	Summary     string     `json:"summary,omitempty"`
	Description string     `json:"description,omitempty"`
	Get         *Operation `json:"get,omitempty"`
	Put         *Operation `json:"put,omitempty"`
	Post        *Operation `json:"post,omitempty"`
	Delete      *Operation `json:"delete,omitempty"`
	Options     *Operation `json:"options,omitempty"`
	Head        *Operation `json:"head,omitempty"`
	Patch       *Operation `json:"patch,omitempty"`
	Trace       *Operation `json:"trace,omitempty"`
}

// Operations returns the non-nil operations keyed by lowercase method.
func (p *PathItem) Operations() map[string]*Operation {
	ops := make(map[string]*Operation)
	for _, m := range Methods {
		if op := p.Operation(m); op != nil {
			ops[m] = op
		}
	}
	return ops
}

// Operation returns the operation for a lowercase method name, or nil.
func (p *PathItem) Operation(method string) *Operation {
	switch method {
	case "get":
		return p.Get
	case "put":
		return p.Put
	case "post":
		return p.Post
	case "delete":
		return p.Delete
	case "options":
		return p.Options
	case "head":
		return p.Head
	case "patch":
		return p.Patch
	case "trace":
		return p.Trace
	}
	return nil
}

// SetOperation assigns an operation slot by lowercase method name. Unknown
// methods are ignored.
func (p *PathItem) SetOperation(method string, op *Operation) {
	switch method {
	case "get":
		p.Get = op
	case "put":
		p.Put = op
	case "post":
		p.Post = op
	case "delete":
		p.Delete = op
	case "options":
		p.Options = op
	case "head":
		p.Head = op
	case "patch":
		p.Patch = op
	case "trace":
		p.Trace = op
	}
}

// Operation describes a single API operation on a path.
type Operation struct {
	Summary     string               `json:"summary,omitempty"`
	Description string               `json:"description,omitempty"`
	OperationID string               `json:"operationId,omitempty"`
	Tags        []string             `json:"tags,omitempty"`
	RequestBody *RequestBody         `json:"requestBody,omitempty"`
	Responses   map[string]*Response `json:"responses"`

	Extra map[string]any `json:"-"`
}

type operationAlias Operation

var operationKnownKeys = knownKeys("summary", "description", "operationId", "tags", "requestBody", "responses")

// MarshalJSON emits the modeled fields plus any preserved unknown keys.
func (o Operation) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(operationAlias(o), o.Extra)
}

// UnmarshalJSON decodes the modeled fields and captures unknown keys.
func (o *Operation) UnmarshalJSON(data []byte) error {
	var a operationAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := extractExtra(data, operationKnownKeys)
	if err != nil {
		return err
	}
	*o = Operation(a)
	o.Extra = extra
	return nil
}

// RequestBody describes a single request body.
type RequestBody struct {
	Description string                `json:"description,omitempty"`
	Required    bool                  `json:"required,omitempty"`
	Content     map[string]*MediaType `json:"content,omitempty"`
}

// Response describes a single response from an API operation. The
// description field is required by the specification.
type Response struct {
	Description string                `json:"description"`
	Content     map[string]*MediaType `json:"content,omitempty"`
}

// MediaType is a content-type-keyed wrapper around a schema or a reference
// to a reusable component.
type MediaType struct {
	Schema *SchemaOrRef `json:"schema,omitempty"`
}

// Components holds the reusable objects a document may reference.
type Components struct {
	Schemas   map[string]*Schema   `json:"schemas,omitempty"`
	Responses map[string]*Response `json:"responses,omitempty"`
}

// IsEmpty reports whether no reusable objects are defined.
func (c *Components) IsEmpty() bool {
	return c == nil || (len(c.Schemas) == 0 && len(c.Responses) == 0)
}

// ComponentSummary is the denormalized per-component record persisted
// alongside the components section. It lets the reference resolver offer
// stored targets without re-parsing full schema bodies.
type ComponentSummary struct {
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	ComponentGroup string   `json:"componentGroup"`
	Description    string   `json:"description,omitempty"`
	Properties     []string `json:"properties,omitempty"`
	Required       []string `json:"required,omitempty"`
}

// BuildComponentSummaries flattens a components section into summary
// records, sorted by group then name.
func BuildComponentSummaries(c *Components) []ComponentSummary {
	if c == nil {
		return nil
	}
	var out []ComponentSummary
	for name, schema := range c.Schemas {
		s := ComponentSummary{
			Name:           name,
			ComponentGroup: "schemas",
		}
		if schema != nil {
			s.Type = schema.Type
			s.Description = schema.Description
			s.Required = append([]string(nil), schema.Required...)
			for prop := range schema.Properties {
				s.Properties = append(s.Properties, prop)
			}
			sort.Strings(s.Properties)
		}
		out = append(out, s)
	}
	for name, resp := range c.Responses {
		s := ComponentSummary{
			Name:           name,
			ComponentGroup: "responses",
		}
		if resp != nil {
			s.Description = resp.Description
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ComponentGroup != out[j].ComponentGroup {
			return out[i].ComponentGroup < out[j].ComponentGroup
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Sections carries independently supplied document sections. A nil field
// means the section was not supplied; Assemble leaves it at the base value.
type Sections struct {
	SpecVersion string
	Info        *Info
	Servers     []Server
	Paths       map[string]*PathItem
	Components  *Components
}

// Assemble merges supplied sections over a base document. Omitted sections
// keep their previous value; a base with no paths map gets an empty one so
// later serialization never sees a nil required mapping. No validation
// happens here.
func Assemble(base Document, s Sections) Document {
	doc := base
	if s.SpecVersion != "" {
		doc.OpenAPI = s.SpecVersion
	}
	if doc.OpenAPI == "" {
		doc.OpenAPI = DefaultVersion
	}
	if s.Info != nil {
		doc.Info = *s.Info
	}
	if s.Servers != nil {
		doc.Servers = s.Servers
	}
	if s.Paths != nil {
		doc.Paths = s.Paths
	}
	if s.Components != nil {
		if s.Components.IsEmpty() {
			doc.Components = nil
		} else {
			doc.Components = s.Components
		}
	}
	if doc.Paths == nil {
		doc.Paths = make(map[string]*PathItem)
	}
	return doc
}
