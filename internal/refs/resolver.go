// Package refs builds and resolves pointer strings between document
// sections. Reference strings have the exact shape
// #/components/<kind>/<name>, case-sensitive.
package refs

import (
	"sort"
	"strings"

	"github.com/oasdraft/oasdraft/internal/domain"
)

// Kind names a reusable component group.
type Kind string

const (
	KindSchemas   Kind = "schemas"
	KindResponses Kind = "responses"
)

const refPrefix = "#/components/"

// Target source labels. Live components win over stored summaries when the
// same name appears in both.
const (
	SourceLive   = "live"
	SourceStored = "stored"
)

// Target is one selectable reference destination.
type Target struct {
	Name   string
	Source string
}

// BuildRef formats a reference string for a component.
func BuildRef(kind Kind, name string) string {
	return refPrefix + string(kind) + "/" + name
}

// ParseRef splits a reference string into kind and name. ok is false when
// the string does not have the #/components/<kind>/<name> shape.
func ParseRef(ref string) (Kind, string, bool) {
	rest, found := strings.CutPrefix(ref, refPrefix)
	if !found {
		return "", "", false
	}
	kind, name, found := strings.Cut(rest, "/")
	if !found || name == "" || strings.Contains(name, "/") {
		return "", "", false
	}
	switch Kind(kind) {
	case KindSchemas, KindResponses:
		return Kind(kind), name, true
	}
	return "", "", false
}

// Resolver lists selectable reference targets by combining the live
// in-memory components section with persisted component summaries.
//
// It deliberately does not check that a target still exists when a
// reference is used: dangling references are legal (the user may define
// the target after the consumer) and surface only as validator warnings.
type Resolver struct {
	live   *domain.Components
	stored []domain.ComponentSummary
}

// NewResolver builds a resolver over the given live components (may be
// nil) and persisted summaries (may be empty).
func NewResolver(live *domain.Components, stored []domain.ComponentSummary) *Resolver {
	return &Resolver{live: live, stored: stored}
}

// ListReferences returns the selectable targets for a component kind,
// de-duplicated by name with live entries winning, sorted by name.
func (r *Resolver) ListReferences(kind Kind) []Target {
	seen := make(map[string]struct{})
	var out []Target

	add := func(name, source string) {
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		out = append(out, Target{Name: name, Source: source})
	}

	if r.live != nil {
		switch kind {
		case KindSchemas:
			for name := range r.live.Schemas {
				add(name, SourceLive)
			}
		case KindResponses:
			for name := range r.live.Responses {
				add(name, SourceLive)
			}
		}
	}
	for _, summary := range r.stored {
		if summary.ComponentGroup == string(kind) {
			add(summary.Name, SourceStored)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Resolve looks a reference string up in the live components. found is
// false for dangling or malformed references; neither is an error.
func (r *Resolver) Resolve(ref string) (kind Kind, name string, found bool) {
	kind, name, ok := ParseRef(ref)
	if !ok || r.live == nil {
		return kind, name, false
	}
	switch kind {
	case KindSchemas:
		_, found = r.live.Schemas[name]
	case KindResponses:
		_, found = r.live.Responses[name]
	}
	return kind, name, found
}
