package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	json "github.com/goccy/go-json"

	"github.com/oasdraft/oasdraft/internal/domain"
)

// Persistence marshals canonical sections onto the byte-level SectionStore
// port and reconstructs a partial document from whatever subset is stored.
// A key holding corrupt or unparseable data is treated as absent, never as
// a fatal error: the section falls back to its structural default on the
// next load.
type Persistence struct {
	store  SectionStore
	logger *slog.Logger
}

// NewPersistence wraps a section store.
func NewPersistence(store SectionStore, logger *slog.Logger) *Persistence {
	return &Persistence{
		store:  store,
		logger: logger.With("component", "persistence"),
	}
}

// SaveSection serializes and stores one section with overwrite semantics.
func (p *Persistence) SaveSection(ctx context.Context, kind SectionKind, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal section %s: %w", kind, err)
	}
	if err := p.store.Save(ctx, string(kind), data); err != nil {
		return fmt.Errorf("save section %s: %w", kind, err)
	}
	p.logger.Debug("Saved section.", slog.String("section", string(kind)), slog.Int("bytes", len(data)))
	return nil
}

// SaveDocument stores every editable section of a document, plus the
// component summaries. Failures are collected per section; the first one
// is returned after all sections were attempted.
func (p *Persistence) SaveDocument(ctx context.Context, doc domain.Document) error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	record(p.SaveSection(ctx, SectionInfo, doc.Info))
	record(p.SaveSection(ctx, SectionServers, doc.Servers))
	record(p.SaveSection(ctx, SectionPaths, doc.Paths))
	record(p.SaveSection(ctx, SectionComponents, doc.Components))
	record(p.SaveSection(ctx, SectionComponentSummary, domain.BuildComponentSummaries(doc.Components)))
	return firstErr
}

// LoadAll returns the sections that have stored, well-formed data. Missing
// and corrupt keys simply leave the corresponding field unset.
func (p *Persistence) LoadAll(ctx context.Context) domain.Sections {
	var sections domain.Sections

	var info domain.Info
	if p.loadSection(ctx, SectionInfo, &info) {
		sections.Info = &info
	}
	var servers []domain.Server
	if p.loadSection(ctx, SectionServers, &servers) {
		if servers == nil {
			servers = []domain.Server{}
		}
		sections.Servers = servers
	}
	var paths map[string]*domain.PathItem
	if p.loadSection(ctx, SectionPaths, &paths) {
		if paths == nil {
			paths = map[string]*domain.PathItem{}
		}
		sections.Paths = paths
	}
	var comps *domain.Components
	if p.loadSection(ctx, SectionComponents, &comps) && comps != nil {
		sections.Components = comps
	}
	return sections
}

// LoadComponentSummaries returns the stored per-component summary records,
// or nil when none are stored or the stored data is corrupt.
func (p *Persistence) LoadComponentSummaries(ctx context.Context) []domain.ComponentSummary {
	var summaries []domain.ComponentSummary
	if !p.loadSection(ctx, SectionComponentSummary, &summaries) {
		return nil
	}
	return summaries
}

// loadSection reads and unmarshals one key, reporting whether a well-formed
// value was present.
func (p *Persistence) loadSection(ctx context.Context, kind SectionKind, out any) bool {
	data, err := p.store.Load(ctx, string(kind))
	if err != nil {
		if !errors.Is(err, ErrSectionNotFound) {
			p.logger.Warn("Failed to load section, treating as absent.",
				slog.String("section", string(kind)), slog.Any("error", err))
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		p.logger.Warn("Stored section is corrupt, treating as absent.",
			slog.String("section", string(kind)), slog.Any("error", err))
		return false
	}
	return true
}

// MergeSections applies the load-time precedence: a persisted section wins
// over an explicitly supplied initial value, which wins over the structural
// default. The precedence exists so in-progress persisted work is never
// silently overwritten by a caller re-mounting with stale initial values.
func MergeSections(persisted, initial domain.Sections) domain.Sections {
	merged := initial
	if persisted.Info != nil {
		merged.Info = persisted.Info
	}
	if persisted.Servers != nil {
		merged.Servers = persisted.Servers
	}
	if persisted.Paths != nil {
		merged.Paths = persisted.Paths
	}
	if persisted.Components != nil {
		merged.Components = persisted.Components
	}
	return merged
}
