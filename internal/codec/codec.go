// Package codec serializes canonical documents to JSON and YAML and parses
// either format back. YAML travels through a JSON round trip so the
// document model needs only one set of (un)marshalers; byte-for-byte
// stability is not a goal, round-trip equivalence is.
package codec

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/oasdraft/oasdraft/internal/domain"
)

// ErrParse marks import text that is neither valid JSON nor valid YAML.
var ErrParse = errors.New("document is neither valid JSON nor valid YAML")

// Decode parses raw import text into a canonical document. JSON is
// attempted first; YAML is the fallback. Both failing is a ParseError and
// leaves no partial state behind.
func Decode(data []byte) (domain.Document, error) {
	var doc domain.Document
	jsonErr := json.Unmarshal(data, &doc)
	if jsonErr == nil {
		return doc, nil
	}

	var tree any
	if yamlErr := yaml.Unmarshal(data, &tree); yamlErr != nil {
		return domain.Document{}, fmt.Errorf("%w: json: %v; yaml: %v", ErrParse, jsonErr, yamlErr)
	}
	// A YAML scalar (e.g. bare garbage text) parses "successfully" but is
	// not a document.
	if _, ok := tree.(map[string]any); !ok {
		return domain.Document{}, fmt.Errorf("%w: top-level value is not a mapping", ErrParse)
	}
	bridged, err := json.Marshal(tree)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	doc = domain.Document{}
	if err := json.Unmarshal(bridged, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return doc, nil
}

// EncodeJSON serializes a document as pretty-printed JSON.
func EncodeJSON(doc domain.Document) ([]byte, error) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document as JSON: %w", err)
	}
	return append(out, '\n'), nil
}

// EncodeYAML serializes a document as YAML.
func EncodeYAML(doc domain.Document) ([]byte, error) {
	bridged, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document as YAML: %w", err)
	}
	var tree map[string]any
	if err := json.Unmarshal(bridged, &tree); err != nil {
		return nil, fmt.Errorf("encode document as YAML: %w", err)
	}
	out, err := yaml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("encode document as YAML: %w", err)
	}
	return out, nil
}
