// Package transform is the bidirectional engine between the canonical
// document and the flat editing state. Unfold turns nested, key-addressed
// mappings into ordered lists of keyed records; Fold rebuilds the canonical
// mappings from those lists. Both directions are pure and total: they never
// return errors and never mutate their input.
package transform

import (
	"slices"
	"sort"

	"github.com/oasdraft/oasdraft/internal/domain"
	"github.com/oasdraft/oasdraft/internal/editstate"
)

// Unfold converts a canonical document into a fresh editing state. Every
// mapping becomes an ordered list with the original key carried on each
// record; map iteration order is made deterministic by sorting keys.
func Unfold(doc domain.Document) editstate.Document {
	state := editstate.Document{
		SpecVersion: doc.OpenAPI,
		Info:        unfoldInfo(doc.Info),
		Servers:     unfoldServers(doc.Servers),
		Paths:       unfoldPaths(doc.Paths),
		Components:  unfoldComponents(doc.Components),
		Extra:       doc.Extra,
	}
	return state
}

func unfoldInfo(info domain.Info) editstate.InfoForm {
	form := editstate.InfoForm{
		Title:          info.Title,
		Version:        info.Version,
		Description:    info.Description,
		TermsOfService: info.TermsOfService,
	}
	if info.Contact != nil {
		form.ContactName = info.Contact.Name
		form.ContactURL = info.Contact.URL
		form.ContactEmail = info.Contact.Email
	}
	if info.License != nil {
		form.LicenseName = info.License.Name
		form.LicenseURL = info.License.URL
	}
	return form
}

func unfoldServers(servers []domain.Server) []editstate.ServerForm {
	out := make([]editstate.ServerForm, 0, len(servers))
	for _, srv := range servers {
		form := editstate.NewServerForm()
		form.URL = srv.URL
		form.Description = srv.Description
		out = append(out, form)
	}
	return out
}

func unfoldPaths(paths map[string]*domain.PathItem) []editstate.PathForm {
	out := make([]editstate.PathForm, 0, len(paths))
	for _, key := range sortedKeys(paths) {
		item := paths[key]
		form := editstate.NewPathForm()
		form.Path = key
		if item == nil {
			out = append(out, form)
			continue
		}
		form.Summary = item.Summary
		form.Description = item.Description
		for _, method := range domain.Methods {
			op := item.Operation(method)
			if op == nil {
				continue
			}
			form.Operations = append(form.Operations, unfoldOperation(method, op))
		}
		out = append(out, form)
	}
	return out
}

func unfoldOperation(method string, op *domain.Operation) editstate.OperationForm {
	form := editstate.OperationForm{
		ID:          editstate.NewID(),
		Method:      method,
		Summary:     op.Summary,
		Description: op.Description,
		OperationID: op.OperationID,
		Tags:        slices.Clone(op.Tags),
		Extra:       op.Extra,
	}
	if op.RequestBody != nil {
		form.HasRequestBody = true
		form.RequestBody = editstate.BodyForm{
			Description: op.RequestBody.Description,
			Required:    op.RequestBody.Required,
			Content:     unfoldContent(op.RequestBody.Content),
		}
	}
	for _, code := range sortedKeys(op.Responses) {
		resp := op.Responses[code]
		rform := editstate.NewResponseForm(code)
		if resp != nil {
			rform.Description = resp.Description
			rform.Content = unfoldContent(resp.Content)
		}
		form.Responses = append(form.Responses, rform)
	}
	return form
}

// unfoldContent converts a content-type-keyed media type mapping into an
// ordered list of content records. A $ref schema slot populates the
// synthetic SchemaRef field and leaves an empty inline placeholder, so one
// record shape represents both modes without a variant type.
func unfoldContent(content map[string]*domain.MediaType) []editstate.ContentForm {
	out := make([]editstate.ContentForm, 0, len(content))
	for _, ct := range sortedKeys(content) {
		mt := content[ct]
		form := editstate.NewContentForm(ct)
		if mt != nil && mt.Schema != nil {
			if mt.Schema.IsRef() {
				form.UseReference = true
				form.SchemaRef = mt.Schema.Ref
			} else if mt.Schema.Schema != nil {
				form.Schema = unfoldSchema(mt.Schema.Schema)
			}
		}
		out = append(out, form)
	}
	return out
}

// unfoldSchema joins the canonical properties mapping and the required
// list into one list of property records: each record's Required flag is
// derived by membership-testing its name against the required list. A
// property that is itself an object or array keeps its subtree on the
// record's Remainder, untouched by editing and re-emitted on fold.
func unfoldSchema(schema *domain.Schema) editstate.SchemaForm {
	if schema == nil {
		return editstate.SchemaForm{}
	}
	form := editstate.SchemaForm{
		Type:        schema.Type,
		Format:      schema.Format,
		Description: schema.Description,
		Extra:       schema.Extra,
	}
	requiredSet := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		requiredSet[name] = true
	}
	for _, name := range sortedKeys(schema.Properties) {
		prop := schema.Properties[name]
		pform := editstate.NewPropertyForm()
		pform.Name = name
		pform.Required = requiredSet[name]
		if prop != nil {
			pform.Type = prop.Type
			pform.Format = prop.Format
			pform.Description = prop.Description
			if len(prop.Properties) > 0 || len(prop.Required) > 0 || prop.Items != nil || len(prop.Extra) > 0 {
				pform.Remainder = prop
			}
		}
		form.Properties = append(form.Properties, pform)
	}
	if schema.Items != nil {
		items := unfoldSchema(schema.Items)
		form.Items = &items
	}
	return form
}

func unfoldComponents(comps *domain.Components) editstate.ComponentsForm {
	var form editstate.ComponentsForm
	if comps == nil {
		return form
	}
	for _, name := range sortedKeys(comps.Schemas) {
		cform := editstate.NewSchemaComponentForm()
		cform.Name = name
		cform.Schema = unfoldSchema(comps.Schemas[name])
		form.Schemas = append(form.Schemas, cform)
	}
	for _, name := range sortedKeys(comps.Responses) {
		resp := comps.Responses[name]
		rform := editstate.NewResponseComponentForm()
		rform.Name = name
		if resp != nil {
			rform.Description = resp.Description
			rform.Content = unfoldContent(resp.Content)
		}
		form.Responses = append(form.Responses, rform)
	}
	return form
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
