package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oasdraft/oasdraft/internal/codec"
	"github.com/oasdraft/oasdraft/internal/editstate"
	"github.com/oasdraft/oasdraft/internal/usecase"
	"github.com/oasdraft/oasdraft/internal/validate"
)

const importJSON = `{
  "openapi": "3.1.0",
  "info": {"title": "Imported", "version": "1.0.0"},
  "paths": {
    "/pets": {"get": {"responses": {"200": {"description": "ok"}}}}
  }
}`

const importYAML = `
openapi: 3.1.0
info:
  title: Imported
  version: 1.0.0
paths:
  /pets:
    get:
      responses:
        "200":
          description: ok
`

func TestImportDocumentUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()

	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "json document", raw: importJSON},
		{name: "yaml document", raw: importYAML},
		{name: "unparseable text", raw: "{{{ nope", wantErr: codec.ErrParse},
		{
			name:    "unsupported version",
			raw:     `{"openapi": "3.0.3", "info": {"title": "Old", "version": "1"}, "paths": {}}`,
			wantErr: usecase.ErrUnsupportedVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			controller := usecase.NewSyncController(usecase.NewPersistence(store, logger), 0, logger)
			uc := usecase.NewImportDocumentUseCase(controller, logger)

			doc, issues, err := uc.Execute(ctx, []byte(tt.raw))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 0, store.saves(), "a rejected import leaves no state behind")
				if tt.wantErr == usecase.ErrUnsupportedVersion {
					assert.True(t, validate.HasBlocking(issues), "issues are still returned to the caller")
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Imported", doc.Info.Title)
			assert.Equal(t, "Imported", controller.Snapshot().Info.Title)
			assert.Greater(t, store.saves(), 0, "a successful import persists all sections")
		})
	}
}

func TestImportDocumentUseCase_NonBlockingIssuesProceed(t *testing.T) {
	logger := testLogger()
	controller := usecase.NewSyncController(usecase.NewPersistence(newFakeStore(), logger), 0, logger)
	uc := usecase.NewImportDocumentUseCase(controller, logger)

	// Valid version but missing the info title: a plain validation error,
	// not a blocking one.
	raw := `{"openapi": "3.1.0", "info": {"title": "", "version": "1"}, "paths": {}}`
	_, issues, err := uc.Execute(context.Background(), []byte(raw))
	require.NoError(t, err)
	assert.NotEmpty(t, issues)
	assert.False(t, validate.HasBlocking(issues))
}

func TestExportDocumentUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()
	controller := usecase.NewSyncController(usecase.NewPersistence(newFakeStore(), logger), 0, logger)
	controller.Replace(ctx, sampleCanonical())
	uc := usecase.NewExportDocumentUseCase(controller, logger)

	jsonOut, err := uc.Execute(ctx, usecase.FormatJSON)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(jsonOut), "{"))
	assert.Contains(t, string(jsonOut), `"Pet Store"`)

	yamlOut, err := uc.Execute(ctx, usecase.FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(yamlOut), "title: Pet Store")

	defaulted, err := uc.Execute(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, string(jsonOut), string(defaulted), "blank format defaults to JSON")

	_, err = uc.Execute(ctx, "toml")
	assert.Error(t, err)
}

func TestExportDocumentUseCase_FlushesPendingEdits(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()
	controller := usecase.NewSyncController(usecase.NewPersistence(newFakeStore(), logger), testDebounce, logger)
	uc := usecase.NewExportDocumentUseCase(controller, logger)

	controller.Update(usecase.SectionInfo, func(s *editstate.Document) {
		s.Info.Title = "Not Yet Flushed"
	})

	out, err := uc.Execute(ctx, usecase.FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Not Yet Flushed", "export must not race the debounce timer")
}

func TestImportDocumentUseCase_PreservesUnknownKeys(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()
	controller := usecase.NewSyncController(usecase.NewPersistence(newFakeStore(), logger), 0, logger)
	uc := usecase.NewImportDocumentUseCase(controller, logger)

	raw := `{"openapi": "3.1.0", "info": {"title": "Imported", "version": "1"},
		"paths": {}, "x-internal-id": "svc-42"}`
	doc, _, err := uc.Execute(ctx, []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "svc-42", doc.Extra["x-internal-id"])
	assert.Equal(t, "svc-42", controller.Snapshot().Extra["x-internal-id"],
		"unknown top-level keys ride through the editing state")

	exporter := usecase.NewExportDocumentUseCase(controller, logger)
	out, err := exporter.Execute(ctx, usecase.FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"x-internal-id"`)
}
