package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oasdraft/oasdraft/internal/codec"
	"github.com/oasdraft/oasdraft/internal/domain"
	"github.com/oasdraft/oasdraft/internal/validate"
)

// ImportDocumentUseCase parses raw import text, validates it, and, when no
// blocking issue is found, replaces the entire canonical document and
// reseeds all editing state.
type ImportDocumentUseCase struct {
	controller *SyncController
	logger     *slog.Logger
}

// NewImportDocumentUseCase creates the import use case.
func NewImportDocumentUseCase(controller *SyncController, logger *slog.Logger) *ImportDocumentUseCase {
	return &ImportDocumentUseCase{
		controller: controller,
		logger:     logger.With("usecase", "ImportDocument"),
	}
}

// Execute runs an import. ParseError aborts with no state change at all;
// an unsupported document version likewise aborts (issues still returned
// so the caller can surface them); all other validation issues are
// non-fatal and the import proceeds.
func (uc *ImportDocumentUseCase) Execute(ctx context.Context, raw []byte) (domain.Document, []validate.Issue, error) {
	uc.logger.Info("Importing document.", slog.Int("bytes", len(raw)))

	doc, err := codec.Decode(raw)
	if err != nil {
		uc.logger.Warn("Import text failed to parse.", slog.Any("error", err))
		return domain.Document{}, nil, fmt.Errorf("parse import text: %w", err)
	}

	issues := validate.Validate(doc)
	if validate.HasBlocking(issues) {
		uc.logger.Warn("Import rejected.", slog.String("version", doc.OpenAPI), slog.Int("issues", len(issues)))
		return domain.Document{}, issues, fmt.Errorf("%w: %s", ErrUnsupportedVersion, doc.OpenAPI)
	}

	uc.controller.Replace(ctx, doc)
	uc.logger.Info("Import complete.", slog.Int("paths", len(doc.Paths)), slog.Int("issues", len(issues)))
	return uc.controller.Snapshot(), issues, nil
}
