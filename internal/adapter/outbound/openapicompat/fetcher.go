// Package openapicompat bootstraps a draft from an existing OpenAPI
// document. It fetches from a URL or local file, parses with kin-openapi
// (which handles JSON, YAML, and external references), and converts the
// parsed document into the canonical model, keeping only the shape the
// editing surfaces understand.
package openapicompat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/oasdraft/oasdraft/internal/domain"
)

// Fetcher implements the usecase.DocumentFetcher port for OpenAPI sources.
type Fetcher struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewFetcher creates a new OpenAPI document fetcher.
func NewFetcher(client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{
		httpClient: client,
		logger:     logger.With("component", "openapi_fetcher"),
	}
}

// Fetch loads an OpenAPI document from a URL or local file path and
// converts it to the canonical model.
func (f *Fetcher) Fetch(ctx context.Context, src string) (domain.Document, error) {
	log := f.logger.With(slog.String("source", src))
	log.Info("Fetching OpenAPI document.")

	var raw []byte
	u, parseErr := url.ParseRequestURI(src)
	if parseErr == nil && (u.Scheme == "http" || u.Scheme == "https") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return domain.Document{}, fmt.Errorf("create request for %s: %w", src, err)
		}
		resp, err := f.httpClient.Do(req)
		if err != nil {
			return domain.Document{}, fmt.Errorf("fetch document from %s: %w", src, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return domain.Document{}, fmt.Errorf("fetch document from %s: status %s", src, resp.Status)
		}
		raw, err = io.ReadAll(resp.Body)
		if err != nil {
			return domain.Document{}, fmt.Errorf("read response body from %s: %w", src, err)
		}
	} else {
		var err error
		raw, err = os.ReadFile(src)
		if err != nil {
			return domain.Document{}, fmt.Errorf("read document from file %s: %w", src, err)
		}
	}

	loader := &openapi3.Loader{Context: ctx, IsExternalRefsAllowed: true}
	parsed, err := loader.LoadFromData(raw)
	if err != nil {
		return domain.Document{}, fmt.Errorf("parse OpenAPI document from %s: %w", src, err)
	}

	doc := Convert(parsed)
	log.Info("Fetched and converted OpenAPI document.",
		slog.String("version", doc.OpenAPI), slog.Int("paths", len(doc.Paths)))
	return doc, nil
}

// Convert maps a parsed kin-openapi document onto the canonical model.
// Constructs outside the modeled shape (parameters, callbacks, security)
// are dropped; component references inside media type slots are preserved
// as reference nodes.
func Convert(src *openapi3.T) domain.Document {
	doc := domain.NewDocument()
	if src == nil {
		return doc
	}
	// The converted result is a new draft in this engine's model; source
	// versions outside the supported line are normalized rather than
	// rejected, since kin-openapi has already absorbed the dialect gap.
	if strings.HasPrefix(src.OpenAPI, domain.SupportedVersionPrefix+".") {
		doc.OpenAPI = src.OpenAPI
	}
	if src.Info != nil {
		doc.Info = convertInfo(src.Info)
	}
	for _, srv := range src.Servers {
		if srv == nil {
			continue
		}
		doc.Servers = append(doc.Servers, domain.Server{URL: srv.URL, Description: srv.Description})
	}
	if src.Paths != nil {
		for path, item := range src.Paths.Map() {
			if item == nil {
				continue
			}
			converted := &domain.PathItem{
				Summary:     item.Summary,
				Description: item.Description,
			}
			for method, op := range item.Operations() {
				if op == nil {
					continue
				}
				folded := convertOperation(op)
				converted.SetOperation(strings.ToLower(method), &folded)
			}
			doc.Paths[path] = converted
		}
	}
	doc.Components = convertComponents(src.Components)
	return doc
}

func convertInfo(src *openapi3.Info) domain.Info {
	info := domain.Info{
		Title:          src.Title,
		Description:    src.Description,
		TermsOfService: src.TermsOfService,
		Version:        src.Version,
	}
	if src.Contact != nil {
		contact := domain.Contact{Name: src.Contact.Name, URL: src.Contact.URL, Email: src.Contact.Email}
		if !contact.IsEmpty() {
			info.Contact = &contact
		}
	}
	if src.License != nil {
		license := domain.License{Name: src.License.Name, URL: src.License.URL}
		if !license.IsEmpty() {
			info.License = &license
		}
	}
	return info
}

func convertOperation(src *openapi3.Operation) domain.Operation {
	op := domain.Operation{
		Summary:     src.Summary,
		Description: src.Description,
		OperationID: src.OperationID,
		Tags:        append([]string(nil), src.Tags...),
		Responses:   make(map[string]*domain.Response),
	}
	if src.RequestBody != nil && src.RequestBody.Value != nil {
		body := src.RequestBody.Value
		op.RequestBody = &domain.RequestBody{
			Description: body.Description,
			Required:    body.Required,
			Content:     convertContent(body.Content),
		}
	}
	if src.Responses != nil {
		for code, ref := range src.Responses.Map() {
			if ref == nil || ref.Value == nil {
				continue
			}
			resp := convertResponse(ref.Value)
			op.Responses[code] = &resp
		}
	}
	return op
}

func convertResponse(src *openapi3.Response) domain.Response {
	resp := domain.Response{Content: convertContent(src.Content)}
	if src.Description != nil {
		resp.Description = *src.Description
	}
	return resp
}

func convertContent(src openapi3.Content) map[string]*domain.MediaType {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]*domain.MediaType, len(src))
	for ct, mt := range src {
		converted := &domain.MediaType{}
		if mt != nil && mt.Schema != nil {
			converted.Schema = convertSchemaSlot(mt.Schema)
		}
		out[ct] = converted
	}
	return out
}

// convertSchemaSlot keeps component-local $ref pointers as reference nodes
// and inlines everything else.
func convertSchemaSlot(ref *openapi3.SchemaRef) *domain.SchemaOrRef {
	if ref == nil {
		return nil
	}
	if ref.Ref != "" && strings.HasPrefix(ref.Ref, "#/components/") {
		return domain.NewRef(ref.Ref)
	}
	return domain.NewInline(convertSchema(ref.Value))
}

func convertSchema(src *openapi3.Schema) *domain.Schema {
	if src == nil {
		return &domain.Schema{}
	}
	schema := &domain.Schema{
		Format:      src.Format,
		Description: src.Description,
		Required:    append([]string(nil), src.Required...),
	}
	if src.Type != nil && len(*src.Type) > 0 {
		// Take the first type when multiple are specified.
		schema.Type = (*src.Type)[0]
	}
	for name, prop := range src.Properties {
		if prop == nil {
			continue
		}
		if schema.Properties == nil {
			schema.Properties = make(map[string]*domain.Schema)
		}
		schema.Properties[name] = convertSchema(prop.Value)
	}
	if src.Items != nil {
		schema.Items = convertSchema(src.Items.Value)
	}
	return schema
}

func convertComponents(src *openapi3.Components) *domain.Components {
	if src == nil {
		return nil
	}
	comps := &domain.Components{}
	for name, ref := range src.Schemas {
		if ref == nil {
			continue
		}
		if comps.Schemas == nil {
			comps.Schemas = make(map[string]*domain.Schema)
		}
		comps.Schemas[name] = convertSchema(ref.Value)
	}
	for name, ref := range src.Responses {
		if ref == nil || ref.Value == nil {
			continue
		}
		if comps.Responses == nil {
			comps.Responses = make(map[string]*domain.Response)
		}
		resp := convertResponse(ref.Value)
		comps.Responses[name] = &resp
	}
	if comps.IsEmpty() {
		return nil
	}
	return comps
}
