package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oasdraft/oasdraft/internal/domain"
	"github.com/oasdraft/oasdraft/internal/validate"
)

// SyncSourceUseCase bootstraps a draft from an existing service's
// specification: it fetches the document from an external source, validates
// it, and replaces the canonical document the same way a raw-text import
// does.
type SyncSourceUseCase struct {
	fetcher    DocumentFetcher
	controller *SyncController
	logger     *slog.Logger
}

// NewSyncSourceUseCase creates the source-sync use case.
func NewSyncSourceUseCase(fetcher DocumentFetcher, controller *SyncController, logger *slog.Logger) *SyncSourceUseCase {
	return &SyncSourceUseCase{
		fetcher:    fetcher,
		controller: controller,
		logger:     logger.With("usecase", "SyncSource"),
	}
}

// Execute fetches and applies one source.
func (uc *SyncSourceUseCase) Execute(ctx context.Context, source string) (domain.Document, []validate.Issue, error) {
	log := uc.logger.With(slog.String("source", source))
	log.Info("Syncing document from source.")

	doc, err := uc.fetcher.Fetch(ctx, source)
	if err != nil {
		log.Error("Failed to fetch document.", slog.Any("error", err))
		return domain.Document{}, nil, fmt.Errorf("fetch document from %s: %w", source, err)
	}

	issues := validate.Validate(doc)
	if validate.HasBlocking(issues) {
		log.Warn("Fetched document rejected.", slog.String("version", doc.OpenAPI))
		return domain.Document{}, issues, fmt.Errorf("%w: %s", ErrUnsupportedVersion, doc.OpenAPI)
	}

	uc.controller.Replace(ctx, doc)
	log.Info("Source sync complete.", slog.Int("paths", len(doc.Paths)), slog.Int("issues", len(issues)))
	return uc.controller.Snapshot(), issues, nil
}

// ExecuteAll applies every configured source in order; later sources
// overwrite earlier ones wholesale. The first error is returned after all
// sources were attempted.
func (uc *SyncSourceUseCase) ExecuteAll(ctx context.Context, sources []string) error {
	var firstErr error
	for _, source := range sources {
		if _, _, err := uc.Execute(ctx, source); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
