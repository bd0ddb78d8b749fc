package usecase

import (
	"context"
	"errors"

	"github.com/oasdraft/oasdraft/internal/domain"
	"github.com/oasdraft/oasdraft/internal/validate"
)

// Standard errors returned by use cases and adapters.
var (
	// ErrSectionNotFound is returned by a SectionStore when no value has
	// been stored under a key.
	ErrSectionNotFound = errors.New("section not found")

	// ErrUnsupportedVersion aborts an import whose document version this
	// engine does not understand.
	ErrUnsupportedVersion = errors.New("unsupported document version")
)

// SectionKind is the logical persistence key of one document section.
type SectionKind string

const (
	SectionInfo       SectionKind = "info"
	SectionServers    SectionKind = "servers"
	SectionPaths      SectionKind = "paths"
	SectionComponents SectionKind = "components"

	// SectionComponentSummary stores the denormalized per-component
	// records used to seed the reference resolver without re-parsing full
	// schema bodies.
	SectionComponentSummary SectionKind = "components_summary"
)

// EditableSections lists the sections the synchronization controller
// tracks independently, in flush order.
var EditableSections = []SectionKind{SectionInfo, SectionServers, SectionPaths, SectionComponents}

// SectionStore is the storage port: byte-level, section-keyed, engine
// agnostic. Implementations must be safe for concurrent use.
type SectionStore interface {
	// Save overwrites the value stored under key.
	Save(ctx context.Context, key string, data []byte) error

	// Load returns the value stored under key, or ErrSectionNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
}

// DocumentFetcher retrieves a canonical document from an external source
// (URL or file path), converting whatever dialect the source speaks.
type DocumentFetcher interface {
	Fetch(ctx context.Context, source string) (domain.Document, error)
}

// Subscriber receives the published canonical document and its validation
// issues after every flush.
type Subscriber func(doc domain.Document, issues []validate.Issue)
