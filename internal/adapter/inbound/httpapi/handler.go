// Package httpapi exposes the document engine over HTTP: reading and
// exporting the canonical document, importing raw text, syncing from an
// external source, and listing reference targets.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/oasdraft/oasdraft/internal/codec"
	"github.com/oasdraft/oasdraft/internal/refs"
	"github.com/oasdraft/oasdraft/internal/usecase"
)

// Handlers holds the use cases the HTTP surface delegates to.
type Handlers struct {
	controller *usecase.SyncController
	persist    *usecase.Persistence
	importUC   *usecase.ImportDocumentUseCase
	exportUC   *usecase.ExportDocumentUseCase
	syncUC     *usecase.SyncSourceUseCase
	logger     *slog.Logger
}

// NewHandlers creates the HTTP handler set.
func NewHandlers(
	controller *usecase.SyncController,
	persist *usecase.Persistence,
	importUC *usecase.ImportDocumentUseCase,
	exportUC *usecase.ExportDocumentUseCase,
	syncUC *usecase.SyncSourceUseCase,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		controller: controller,
		persist:    persist,
		importUC:   importUC,
		exportUC:   exportUC,
		syncUC:     syncUC,
		logger:     logger.With("component", "httpapi_handler"),
	}
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /document", h.handleGetDocument)
	mux.HandleFunc("GET /document/issues", h.handleGetIssues)
	mux.HandleFunc("POST /document/import", h.handleImport)
	mux.HandleFunc("GET /references/{kind}", h.handleListReferences)
	mux.HandleFunc("POST /admin/sync", h.handleSyncSource)
}

// handleGetDocument implements GET /document?format=json|yaml.
func (h *Handlers) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	out, err := h.exportUC.Execute(r.Context(), format)
	if err != nil {
		h.logger.Warn("Export failed.", slog.String("format", format), slog.Any("error", err))
		http.Error(w, fmt.Sprintf("Export failed: %v", err), http.StatusBadRequest)
		return
	}
	if format == usecase.FormatYAML {
		w.Header().Set("Content-Type", "application/yaml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.Write(out)
}

// handleGetIssues implements GET /document/issues.
func (h *Handlers) handleGetIssues(w http.ResponseWriter, r *http.Request) {
	issues := h.controller.Issues()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(issues); err != nil {
		h.logger.Error("Failed to encode issues.", slog.Any("error", err))
	}
}

// handleImport implements POST /document/import. The body is raw JSON or
// YAML document text.
func (h *Handlers) handleImport(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	doc, issues, err := h.importUC.Execute(r.Context(), raw)
	switch {
	case errors.Is(err, codec.ErrParse):
		http.Error(w, fmt.Sprintf("Import failed: %v", err), http.StatusUnprocessableEntity)
		return
	case errors.Is(err, usecase.ErrUnsupportedVersion):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{"error": err.Error(), "issues": issues})
		return
	case err != nil:
		http.Error(w, fmt.Sprintf("Import failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"document": doc, "issues": issues})
}

// handleListReferences implements GET /references/{kind}. Targets combine
// live components with persisted summaries, live winning on collision.
func (h *Handlers) handleListReferences(w http.ResponseWriter, r *http.Request) {
	kind := refs.Kind(r.PathValue("kind"))
	switch kind {
	case refs.KindSchemas, refs.KindResponses:
	default:
		http.Error(w, fmt.Sprintf("Unknown component kind %q", kind), http.StatusNotFound)
		return
	}

	snapshot := h.controller.Snapshot()
	stored := h.persist.LoadComponentSummaries(r.Context())
	resolver := refs.NewResolver(snapshot.Components, stored)

	type target struct {
		Name   string `json:"name"`
		Source string `json:"source"`
		Ref    string `json:"ref"`
	}
	var out []target
	for _, t := range resolver.ListReferences(kind) {
		out = append(out, target{Name: t.Name, Source: t.Source, Ref: refs.BuildRef(kind, t.Name)})
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		h.logger.Error("Failed to encode reference targets.", slog.Any("error", err))
	}
}

// SyncRequest defines the expected JSON body for the /admin/sync endpoint.
type SyncRequest struct {
	Source string `json:"source"`
}

// handleSyncSource implements POST /admin/sync.
func (h *Handlers) handleSyncSource(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode sync request body.", slog.Any("error", err))
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.Source == "" {
		http.Error(w, "Missing 'source' field in request body", http.StatusBadRequest)
		return
	}

	h.logger.Info("Received sync request.", slog.String("source", req.Source))
	doc, issues, err := h.syncUC.Execute(r.Context(), req.Source)
	if err != nil {
		h.logger.Error("Failed to sync from source.", slog.String("source", req.Source), slog.Any("error", err))
		http.Error(w, fmt.Sprintf("Failed to sync from source: %v", err), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"document": doc, "issues": issues})
}
