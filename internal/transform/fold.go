package transform

import (
	"strings"

	"github.com/oasdraft/oasdraft/internal/domain"
	"github.com/oasdraft/oasdraft/internal/editstate"
)

// Fold rebuilds a canonical document from the editing state. It is the
// single place where editing records become canonical mappings, and it
// applies the draft-tolerance policies:
//
//   - a record whose identifying key (path string, status code, content
//     type, property name, component name) is blank is an incomplete draft
//     and is silently dropped, not an error;
//   - a path key missing its leading "/" is normalized, not rejected;
//   - on a content record, the UseReference flag decides between the
//     reference string and the inline schema; the inactive side is
//     discarded so the canonical document never carries both;
//   - every object schema's required list is recomputed from the
//     per-property flags, never merged with a stored list;
//   - unknown keys and property subtrees carried on the records (Extra,
//     Remainder) are re-emitted unchanged.
func Fold(state editstate.Document) domain.Document {
	doc := domain.Document{
		OpenAPI:    state.SpecVersion,
		Info:       FoldInfo(state.Info),
		Servers:    FoldServers(state.Servers),
		Paths:      FoldPaths(state.Paths),
		Components: FoldComponents(state.Components),
		Extra:      state.Extra,
	}
	if doc.OpenAPI == "" {
		doc.OpenAPI = domain.DefaultVersion
	}
	if doc.Paths == nil {
		doc.Paths = make(map[string]*domain.PathItem)
	}
	return doc
}

// FoldInfo reassembles the info section. All-empty contact and license
// shells are omitted entirely.
func FoldInfo(form editstate.InfoForm) domain.Info {
	info := domain.Info{
		Title:          form.Title,
		Version:        form.Version,
		Description:    form.Description,
		TermsOfService: form.TermsOfService,
	}
	contact := domain.Contact{Name: form.ContactName, URL: form.ContactURL, Email: form.ContactEmail}
	if !contact.IsEmpty() {
		info.Contact = &contact
	}
	license := domain.License{Name: form.LicenseName, URL: form.LicenseURL}
	if !license.IsEmpty() {
		info.License = &license
	}
	return info
}

// FoldServers rebuilds the server list. Entries with a blank URL are
// incomplete drafts and are dropped.
func FoldServers(forms []editstate.ServerForm) []domain.Server {
	var out []domain.Server
	for _, form := range forms {
		if strings.TrimSpace(form.URL) == "" {
			continue
		}
		out = append(out, domain.Server{URL: form.URL, Description: form.Description})
	}
	return out
}

// FoldPaths rebuilds the paths mapping from the ordered path list. On key
// collision after normalization the first record wins.
func FoldPaths(forms []editstate.PathForm) map[string]*domain.PathItem {
	out := make(map[string]*domain.PathItem, len(forms))
	for _, form := range forms {
		key := normalizePath(form.Path)
		if key == "" {
			continue
		}
		if _, exists := out[key]; exists {
			continue
		}
		item := &domain.PathItem{
			Summary:     form.Summary,
			Description: form.Description,
		}
		for _, opForm := range form.Operations {
			method := strings.ToLower(strings.TrimSpace(opForm.Method))
			if method == "" || item.Operation(method) != nil {
				continue
			}
			op := foldOperation(opForm)
			item.SetOperation(method, &op)
		}
		out[key] = item
	}
	return out
}

// normalizePath trims the key and prefixes the leading slash when the user
// has not typed one yet. A blank key stays blank so the caller can drop it.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func foldOperation(form editstate.OperationForm) domain.Operation {
	op := domain.Operation{
		Summary:     form.Summary,
		Description: form.Description,
		OperationID: form.OperationID,
		Responses:   make(map[string]*domain.Response, len(form.Responses)),
		Extra:       form.Extra,
	}
	for _, tag := range form.Tags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		op.Tags = append(op.Tags, tag)
	}
	if form.HasRequestBody {
		op.RequestBody = &domain.RequestBody{
			Description: form.RequestBody.Description,
			Required:    form.RequestBody.Required,
			Content:     FoldContent(form.RequestBody.Content),
		}
	}
	for _, rform := range form.Responses {
		code := strings.TrimSpace(rform.StatusCode)
		if code == "" {
			continue
		}
		if _, exists := op.Responses[code]; exists {
			continue
		}
		op.Responses[code] = &domain.Response{
			Description: rform.Description,
			Content:     FoldContent(rform.Content),
		}
	}
	return op
}

// FoldContent rebuilds a content-type-keyed media type mapping. The
// UseReference flag on each record decides which side of the record is
// live: reference mode emits a bare {$ref}, inline mode assembles the
// schema from the record's own fields. Records with a blank content type
// are dropped. Returns nil when nothing survives so the wrapper key is
// omitted from serialization.
func FoldContent(forms []editstate.ContentForm) map[string]*domain.MediaType {
	var out map[string]*domain.MediaType
	for _, form := range forms {
		ct := strings.TrimSpace(form.ContentType)
		if ct == "" {
			continue
		}
		if out == nil {
			out = make(map[string]*domain.MediaType)
		}
		if _, exists := out[ct]; exists {
			continue
		}
		mt := &domain.MediaType{}
		if form.UseReference && form.SchemaRef != "" {
			mt.Schema = domain.NewRef(form.SchemaRef)
		} else if !isZeroSchema(form.Schema) {
			schema := FoldSchema(form.Schema)
			mt.Schema = domain.NewInline(&schema)
		}
		out[ct] = mt
	}
	return out
}

// isZeroSchema reports whether a schema form holds no data at all, which
// is how the inline placeholder behind a reference-mode record looks.
func isZeroSchema(form editstate.SchemaForm) bool {
	return form.Type == "" && form.Format == "" && form.Description == "" &&
		len(form.Properties) == 0 && form.Items == nil && len(form.Extra) == 0
}

// FoldSchema rebuilds a schema node. The required list is derived from the
// per-property Required flags; whatever required list the canonical side
// held before is irrelevant here. Properties with blank names are dropped;
// on duplicate names the first record wins. A record's Remainder (the
// property's own subtree) is re-emitted unchanged beneath the edited
// scalars.
func FoldSchema(form editstate.SchemaForm) domain.Schema {
	schema := domain.Schema{
		Type:        form.Type,
		Format:      form.Format,
		Description: form.Description,
		Extra:       form.Extra,
	}
	for _, pform := range form.Properties {
		name := strings.TrimSpace(pform.Name)
		if name == "" {
			continue
		}
		if schema.Properties == nil {
			schema.Properties = make(map[string]*domain.Schema)
		}
		if _, exists := schema.Properties[name]; exists {
			continue
		}
		prop := &domain.Schema{
			Type:        pform.Type,
			Format:      pform.Format,
			Description: pform.Description,
		}
		if pform.Remainder != nil {
			prop.Properties = pform.Remainder.Properties
			prop.Required = pform.Remainder.Required
			prop.Items = pform.Remainder.Items
			prop.Extra = pform.Remainder.Extra
		}
		schema.Properties[name] = prop
		if pform.Required {
			schema.Required = append(schema.Required, name)
		}
	}
	if form.Items != nil {
		items := FoldSchema(*form.Items)
		schema.Items = &items
	}
	return schema
}

// FoldComponents rebuilds the reusable-components section. Returns nil
// when no named component survives.
func FoldComponents(form editstate.ComponentsForm) *domain.Components {
	comps := &domain.Components{}
	for _, cform := range form.Schemas {
		name := strings.TrimSpace(cform.Name)
		if name == "" {
			continue
		}
		if comps.Schemas == nil {
			comps.Schemas = make(map[string]*domain.Schema)
		}
		if _, exists := comps.Schemas[name]; exists {
			continue
		}
		schema := FoldSchema(cform.Schema)
		comps.Schemas[name] = &schema
	}
	for _, rform := range form.Responses {
		name := strings.TrimSpace(rform.Name)
		if name == "" {
			continue
		}
		if comps.Responses == nil {
			comps.Responses = make(map[string]*domain.Response)
		}
		if _, exists := comps.Responses[name]; exists {
			continue
		}
		comps.Responses[name] = &domain.Response{
			Description: rform.Description,
			Content:     FoldContent(rform.Content),
		}
	}
	if comps.IsEmpty() {
		return nil
	}
	return comps
}
