package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oasdraft/oasdraft/internal/domain"
	"github.com/oasdraft/oasdraft/internal/validate"
)

func validDocument() domain.Document {
	return domain.Document{
		OpenAPI: "3.1.0",
		Info:    domain.Info{Title: "X", Version: "1.0.0"},
		Paths: map[string]*domain.PathItem{
			"/a": {
				Get: &domain.Operation{
					Responses: map[string]*domain.Response{
						"200": {Description: "ok"},
					},
				},
			},
		},
	}
}

func codes(issues []validate.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Code)
	}
	return out
}

func TestValidateCleanDocument(t *testing.T) {
	issues := validate.Validate(validDocument())
	assert.Empty(t, issues)
}

func TestValidateUnsupportedVersion(t *testing.T) {
	doc := domain.Document{OpenAPI: "3.0.0"}
	issues := validate.Validate(doc)

	require.NotEmpty(t, issues)
	assert.Contains(t, codes(issues), validate.CodeUnsupportedVersion)
	// The offending version is named in the message.
	for _, issue := range issues {
		if issue.Code == validate.CodeUnsupportedVersion {
			assert.Contains(t, issue.Message, "3.0.0")
		}
	}
	assert.True(t, validate.HasBlocking(issues))
}

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*domain.Document)
		wantCode string
		wantPath string
	}{
		{
			name:     "missing version field",
			mutate:   func(d *domain.Document) { d.OpenAPI = "" },
			wantCode: validate.CodeRequired,
			wantPath: "/openapi",
		},
		{
			name:     "missing title",
			mutate:   func(d *domain.Document) { d.Info.Title = "" },
			wantCode: validate.CodeRequired,
			wantPath: "/info/title",
		},
		{
			name:     "missing info version",
			mutate:   func(d *domain.Document) { d.Info.Version = "" },
			wantCode: validate.CodeRequired,
			wantPath: "/info/version",
		},
		{
			name: "bad contact email",
			mutate: func(d *domain.Document) {
				d.Info.Contact = &domain.Contact{Email: "not-an-email"}
			},
			wantCode: validate.CodeInvalidEmail,
			wantPath: "/info/contact/email",
		},
		{
			name: "bad contact url",
			mutate: func(d *domain.Document) {
				d.Info.Contact = &domain.Contact{URL: "://nope"}
			},
			wantCode: validate.CodeInvalidURL,
			wantPath: "/info/contact/url",
		},
		{
			name: "license without name",
			mutate: func(d *domain.Document) {
				d.Info.License = &domain.License{URL: "https://example.com/license"}
			},
			wantCode: validate.CodeRequired,
			wantPath: "/info/license/name",
		},
		{
			name: "unparseable server url",
			mutate: func(d *domain.Document) {
				d.Servers = []domain.Server{{URL: "not a url at all"}}
			},
			wantCode: validate.CodeInvalidURL,
			wantPath: "/servers/0/url",
		},
		{
			name: "path without leading slash",
			mutate: func(d *domain.Document) {
				d.Paths["users"] = &domain.PathItem{}
			},
			wantCode: validate.CodePathFormat,
			wantPath: "/paths/users",
		},
		{
			name: "operation without responses",
			mutate: func(d *domain.Document) {
				d.Paths["/a"].Get.Responses = nil
			},
			wantCode: validate.CodeEmptyResponses,
			wantPath: "/paths//a/get/responses",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDocument()
			tt.mutate(&doc)
			issues := validate.Validate(doc)

			require.NotEmpty(t, issues)
			found := false
			for _, issue := range issues {
				if issue.Code == tt.wantCode && issue.Path == tt.wantPath {
					found = true
				}
			}
			assert.True(t, found, "expected %s at %s, got %v", tt.wantCode, tt.wantPath, issues)
		})
	}
}

func TestValidateTemplateServerURL(t *testing.T) {
	tests := []struct {
		url string
		ok  bool
	}{
		{url: "https://api.example.com", ok: true},
		{url: "https://api.example.com/v1/pets", ok: true},
		{url: "https://{region}.example.com", ok: true},
		{url: "https://{region}.example.com:{port}/v1", ok: true},
		{url: "https://example.com:8443/{tenant}/api", ok: true},
		{url: "just-a-word", ok: false},
		{url: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			doc := validDocument()
			doc.Servers = []domain.Server{{URL: tt.url}}
			issues := validate.Validate(doc)
			if tt.ok {
				assert.Empty(t, issues)
			} else {
				assert.Contains(t, codes(issues), validate.CodeInvalidURL)
			}
		})
	}
}

func TestValidateAllRulesEvaluated(t *testing.T) {
	// Rules are independent and never short-circuit: a document breaking
	// several rules reports all of them.
	doc := domain.Document{
		OpenAPI: "3.1.0",
		Info:    domain.Info{},
		Paths: map[string]*domain.PathItem{
			"broken": {Get: &domain.Operation{}},
		},
	}
	issues := validate.Validate(doc)

	got := codes(issues)
	assert.Contains(t, got, validate.CodeRequired)       // title and version
	assert.Contains(t, got, validate.CodePathFormat)     // missing slash
	assert.Contains(t, got, validate.CodeEmptyResponses) // no responses
	assert.GreaterOrEqual(t, len(issues), 4)
}

func TestValidateDanglingReferenceIsWarning(t *testing.T) {
	doc := validDocument()
	doc.Paths["/a"].Get.Responses["200"].Content = map[string]*domain.MediaType{
		"application/json": {Schema: domain.NewRef("#/components/schemas/Missing")},
	}

	issues := validate.Validate(doc)

	require.Len(t, issues, 1)
	assert.Equal(t, validate.CodeDanglingRef, issues[0].Code)
	assert.Equal(t, validate.SeverityWarning, issues[0].Severity)
	assert.False(t, validate.HasBlocking(issues))
}

func TestValidateResolvedReferenceIsClean(t *testing.T) {
	doc := validDocument()
	doc.Components = &domain.Components{
		Schemas: map[string]*domain.Schema{"Pet": {Type: "object"}},
	}
	doc.Paths["/a"].Get.Responses["200"].Content = map[string]*domain.MediaType{
		"application/json": {Schema: domain.NewRef("#/components/schemas/Pet")},
	}

	assert.Empty(t, validate.Validate(doc))
}

func TestValidateBadStatusCode(t *testing.T) {
	doc := validDocument()
	doc.Paths["/a"].Get.Responses["20x"] = &domain.Response{Description: "bad"}

	issues := validate.Validate(doc)
	require.NotEmpty(t, issues)
	assert.Contains(t, issues[0].Message, "20x")
}
