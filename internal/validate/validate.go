// Package validate checks the structural correctness of a canonical
// document. Validate is a pure function: it never mutates its input, never
// panics, and evaluates every rule rather than stopping at the first
// finding. Issues are advisory; they never block editing or export.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/oasdraft/oasdraft/internal/domain"
	"github.com/oasdraft/oasdraft/internal/refs"
)

// Issue codes.
const (
	CodeUnsupportedVersion = "unsupported_version"
	CodeRequired           = "required"
	CodeInvalidEmail       = "invalid_email"
	CodeInvalidURL         = "invalid_url"
	CodePathFormat         = "path_format"
	CodeEmptyResponses     = "empty_responses"
	CodeDanglingRef        = "dangling_ref"
)

// Issue severities. Errors describe documents that violate the OpenAPI shape;
// warnings describe documents that are legal but probably unfinished.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Issue is a single human-readable validation finding.
type Issue struct {
	Path     string `json:"path"`
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

	// templateURLPattern accepts scheme://host-or-{var}, an optional port
	// (literal or {var}), and path segments that are each literal or {var}.
	templateURLPattern = regexp.MustCompile(
		`^[a-zA-Z][a-zA-Z0-9+.-]*://(\{[^/{}]+\}|[A-Za-z0-9.-]+)(:(\d+|\{[^/{}]+\}))?(/(\{[^/{}]+\}|[A-Za-z0-9._~%-]+))*/?$`)

	statusCodePattern = regexp.MustCompile(`^\d{3}$`)
)

// Validate runs every structural rule against the document and returns the
// accumulated findings. An empty slice means the document is clean.
func Validate(doc domain.Document) []Issue {
	var issues []Issue
	issues = append(issues, checkVersion(doc)...)
	issues = append(issues, checkInfo(doc.Info)...)
	issues = append(issues, checkServers(doc.Servers)...)
	issues = append(issues, checkPaths(doc)...)
	issues = append(issues, checkReferences(doc)...)
	return issues
}

// HasBlocking reports whether any issue is severe enough to abort an
// import: only an unsupported document version qualifies.
func HasBlocking(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Code == CodeUnsupportedVersion {
			return true
		}
	}
	return false
}

func checkVersion(doc domain.Document) []Issue {
	if doc.OpenAPI == "" {
		return []Issue{{
			Path:     "/openapi",
			Code:     CodeRequired,
			Severity: SeverityError,
			Message:  "document version is required",
		}}
	}
	if !strings.HasPrefix(doc.OpenAPI, domain.SupportedVersionPrefix+".") && doc.OpenAPI != domain.SupportedVersionPrefix {
		return []Issue{{
			Path:     "/openapi",
			Code:     CodeUnsupportedVersion,
			Severity: SeverityError,
			Message:  fmt.Sprintf("unsupported document version %q: only %s.x is supported", doc.OpenAPI, domain.SupportedVersionPrefix),
		}}
	}
	return nil
}

func checkInfo(info domain.Info) []Issue {
	var issues []Issue
	if info.Title == "" {
		issues = append(issues, Issue{
			Path: "/info/title", Code: CodeRequired, Severity: SeverityError,
			Message: "info.title is required",
		})
	}
	if info.Version == "" {
		issues = append(issues, Issue{
			Path: "/info/version", Code: CodeRequired, Severity: SeverityError,
			Message: "info.version is required",
		})
	}
	if info.Contact != nil {
		if info.Contact.Email != "" && !emailPattern.MatchString(info.Contact.Email) {
			issues = append(issues, Issue{
				Path: "/info/contact/email", Code: CodeInvalidEmail, Severity: SeverityError,
				Message: fmt.Sprintf("%q is not a valid email address", info.Contact.Email),
			})
		}
		if info.Contact.URL != "" && !isParseableURL(info.Contact.URL) {
			issues = append(issues, Issue{
				Path: "/info/contact/url", Code: CodeInvalidURL, Severity: SeverityError,
				Message: fmt.Sprintf("%q is not a valid URL", info.Contact.URL),
			})
		}
	}
	if info.License != nil {
		if info.License.Name == "" {
			issues = append(issues, Issue{
				Path: "/info/license/name", Code: CodeRequired, Severity: SeverityError,
				Message: "license.name is required when a license is present",
			})
		}
		if info.License.URL != "" && !isParseableURL(info.License.URL) {
			issues = append(issues, Issue{
				Path: "/info/license/url", Code: CodeInvalidURL, Severity: SeverityError,
				Message: fmt.Sprintf("%q is not a valid URL", info.License.URL),
			})
		}
	}
	return issues
}

func checkServers(servers []domain.Server) []Issue {
	var issues []Issue
	for i, srv := range servers {
		if isParseableURL(srv.URL) || templateURLPattern.MatchString(srv.URL) {
			continue
		}
		issues = append(issues, Issue{
			Path:     fmt.Sprintf("/servers/%d/url", i),
			Code:     CodeInvalidURL,
			Severity: SeverityError,
			Message:  fmt.Sprintf("%q is neither a valid URL nor a template URL", srv.URL),
		})
	}
	return issues
}

func checkPaths(doc domain.Document) []Issue {
	var issues []Issue
	for _, path := range sortedKeys(doc.Paths) {
		if !strings.HasPrefix(path, "/") {
			issues = append(issues, Issue{
				Path:     "/paths/" + path,
				Code:     CodePathFormat,
				Severity: SeverityError,
				Message:  fmt.Sprintf("path %q must start with a slash", path),
			})
		}
		item := doc.Paths[path]
		if item == nil {
			continue
		}
		for _, method := range domain.Methods {
			op := item.Operation(method)
			if op == nil {
				continue
			}
			at := fmt.Sprintf("/paths/%s/%s/responses", path, method)
			if len(op.Responses) == 0 {
				issues = append(issues, Issue{
					Path:     at,
					Code:     CodeEmptyResponses,
					Severity: SeverityError,
					Message:  "an operation must define at least one response",
				})
				continue
			}
			for _, code := range sortedKeys(op.Responses) {
				if code != "default" && !statusCodePattern.MatchString(code) {
					issues = append(issues, Issue{
						Path:     at + "/" + code,
						Code:     CodePathFormat,
						Severity: SeverityError,
						Message:  fmt.Sprintf("status code %q must be a 3-digit code or \"default\"", code),
					})
				}
			}
		}
	}
	return issues
}

// checkReferences flags dangling $ref pointers as warnings. Dangling
// references never block editing or export: the referenced component may
// simply not be written yet.
func checkReferences(doc domain.Document) []Issue {
	resolver := refs.NewResolver(doc.Components, nil)
	var issues []Issue

	check := func(at string, content map[string]*domain.MediaType) {
		for _, ct := range sortedKeys(content) {
			mt := content[ct]
			if mt == nil || mt.Schema == nil || !mt.Schema.IsRef() {
				continue
			}
			if _, _, found := resolver.Resolve(mt.Schema.Ref); !found {
				issues = append(issues, Issue{
					Path:     at + "/" + ct,
					Code:     CodeDanglingRef,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("%q does not resolve to a defined component", mt.Schema.Ref),
				})
			}
		}
	}

	for _, path := range sortedKeys(doc.Paths) {
		item := doc.Paths[path]
		if item == nil {
			continue
		}
		for _, method := range domain.Methods {
			op := item.Operation(method)
			if op == nil {
				continue
			}
			if op.RequestBody != nil {
				check(fmt.Sprintf("/paths/%s/%s/requestBody/content", path, method), op.RequestBody.Content)
			}
			for _, code := range sortedKeys(op.Responses) {
				if resp := op.Responses[code]; resp != nil {
					check(fmt.Sprintf("/paths/%s/%s/responses/%s/content", path, method, code), resp.Content)
				}
			}
		}
	}
	if doc.Components != nil {
		for _, name := range sortedKeys(doc.Components.Responses) {
			if resp := doc.Components.Responses[name]; resp != nil {
				check("/components/responses/"+name+"/content", resp.Content)
			}
		}
	}
	return issues
}

func isParseableURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
