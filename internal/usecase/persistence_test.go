package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oasdraft/oasdraft/internal/domain"
	"github.com/oasdraft/oasdraft/internal/usecase"
)

// fakeStore is an in-memory SectionStore with a switchable failure mode,
// shared by the persistence and sync controller tests.
type fakeStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (s *fakeStore) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *fakeStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.data[key]
	if !ok {
		return nil, usecase.ErrSectionNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *fakeStore) saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func sampleCanonical() domain.Document {
	doc := domain.NewDocument()
	doc.Info = domain.Info{Title: "Pet Store", Version: "2.0.0"}
	doc.Servers = []domain.Server{{URL: "https://api.example.com"}}
	doc.Paths = map[string]*domain.PathItem{
		"/pets": {
			Get: &domain.Operation{
				Summary: "List pets",
				Responses: map[string]*domain.Response{
					"200": {Description: "ok"},
				},
			},
		},
	}
	doc.Components = &domain.Components{
		Schemas: map[string]*domain.Schema{
			"Pet": {
				Type: domain.TypeObject,
				Properties: map[string]*domain.Schema{
					"name": {Type: domain.TypeString},
				},
				Required: []string{"name"},
			},
		},
	}
	return doc
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	persist := usecase.NewPersistence(store, testLogger())

	doc := sampleCanonical()
	require.NoError(t, persist.SaveDocument(ctx, doc))

	sections := persist.LoadAll(ctx)
	require.NotNil(t, sections.Info)
	assert.Equal(t, "Pet Store", sections.Info.Title)
	assert.Equal(t, doc.Servers, sections.Servers)
	require.Contains(t, sections.Paths, "/pets")
	require.NotNil(t, sections.Components)
	assert.Contains(t, sections.Components.Schemas, "Pet")

	summaries := persist.LoadComponentSummaries(ctx)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Pet", summaries[0].Name)
	assert.Equal(t, []string{"name"}, summaries[0].Required)
}

func TestPersistenceMissingSectionsAbsent(t *testing.T) {
	persist := usecase.NewPersistence(newFakeStore(), testLogger())

	sections := persist.LoadAll(context.Background())
	assert.Nil(t, sections.Info)
	assert.Nil(t, sections.Servers)
	assert.Nil(t, sections.Paths)
	assert.Nil(t, sections.Components)
	assert.Nil(t, persist.LoadComponentSummaries(context.Background()))
}

func TestPersistenceCorruptSectionTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	persist := usecase.NewPersistence(store, testLogger())

	require.NoError(t, persist.SaveDocument(ctx, sampleCanonical()))
	require.NoError(t, store.Save(ctx, string(usecase.SectionInfo), []byte("{not json")))

	sections := persist.LoadAll(ctx)
	assert.Nil(t, sections.Info, "corrupt section must load as absent")
	assert.NotNil(t, sections.Paths, "other sections are unaffected")
}

func TestPersistenceSaveDocumentReturnsFirstError(t *testing.T) {
	store := newFakeStore()
	store.saveErr = errors.New("disk full")
	persist := usecase.NewPersistence(store, testLogger())

	err := persist.SaveDocument(context.Background(), sampleCanonical())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestMergeSectionsPrecedence(t *testing.T) {
	assert := assert.New(t)

	persistedInfo := &domain.Info{Title: "Persisted", Version: "2"}
	initialInfo := &domain.Info{Title: "Initial", Version: "1"}
	initialServers := []domain.Server{{URL: "https://initial.example.com"}}

	tests := []struct {
		name      string
		persisted domain.Sections
		initial   domain.Sections
		wantTitle string
		wantSrvs  []domain.Server
	}{
		{
			name:      "persisted wins over initial",
			persisted: domain.Sections{Info: persistedInfo},
			initial:   domain.Sections{Info: initialInfo, Servers: initialServers},
			wantTitle: "Persisted",
			wantSrvs:  initialServers,
		},
		{
			name:      "initial fills sections with nothing persisted",
			persisted: domain.Sections{},
			initial:   domain.Sections{Info: initialInfo},
			wantTitle: "Initial",
			wantSrvs:  nil,
		},
		{
			name:      "empty persisted slice still wins",
			persisted: domain.Sections{Servers: []domain.Server{}},
			initial:   domain.Sections{Servers: initialServers},
			wantTitle: "",
			wantSrvs:  []domain.Server{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := usecase.MergeSections(tt.persisted, tt.initial)
			if tt.wantTitle == "" {
				assert.Nil(merged.Info)
			} else {
				assert.Equal(tt.wantTitle, merged.Info.Title)
			}
			assert.Equal(tt.wantSrvs, merged.Servers)
		})
	}
}
