package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oasdraft/oasdraft/internal/codec"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ExportDocumentUseCase serializes the current canonical document. Pending
// edits are flushed first so the export always reflects the latest state.
type ExportDocumentUseCase struct {
	controller *SyncController
	logger     *slog.Logger
}

// NewExportDocumentUseCase creates the export use case.
func NewExportDocumentUseCase(controller *SyncController, logger *slog.Logger) *ExportDocumentUseCase {
	return &ExportDocumentUseCase{
		controller: controller,
		logger:     logger.With("usecase", "ExportDocument"),
	}
}

// Execute flushes pending edits and encodes the document in the requested
// format ("json" or "yaml"). Validation issues never block an export.
func (uc *ExportDocumentUseCase) Execute(ctx context.Context, format string) ([]byte, error) {
	uc.controller.Flush(ctx)
	doc := uc.controller.Snapshot()

	switch format {
	case FormatJSON, "":
		out, err := codec.EncodeJSON(doc)
		if err != nil {
			return nil, fmt.Errorf("export document: %w", err)
		}
		return out, nil
	case FormatYAML:
		out, err := codec.EncodeYAML(doc)
		if err != nil {
			return nil, fmt.Errorf("export document: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}
