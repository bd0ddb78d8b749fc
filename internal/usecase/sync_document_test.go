package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oasdraft/oasdraft/internal/domain"
	"github.com/oasdraft/oasdraft/internal/editstate"
	"github.com/oasdraft/oasdraft/internal/usecase"
	"github.com/oasdraft/oasdraft/internal/validate"
)

// recorder captures every published snapshot.
type recorder struct {
	mu     sync.Mutex
	docs   []domain.Document
	issues [][]validate.Issue
}

func (r *recorder) subscribe(doc domain.Document, issues []validate.Issue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
	r.issues = append(r.issues, issues)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}

func (r *recorder) last() domain.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.docs[len(r.docs)-1]
}

const testDebounce = 25 * time.Millisecond

// settle waits long enough for any armed debounce timer to fire.
func settle() {
	time.Sleep(10 * testDebounce)
}

func newTestController(store *fakeStore) (*usecase.SyncController, *recorder) {
	persist := usecase.NewPersistence(store, testLogger())
	c := usecase.NewSyncController(persist, testDebounce, testLogger())
	rec := &recorder{}
	c.Subscribe(rec.subscribe)
	return c, rec
}

func TestSyncControllerDebounceCoalesces(t *testing.T) {
	store := newFakeStore()
	c, rec := newTestController(store)

	for _, title := range []string{"First", "Second", "Third"} {
		title := title
		c.Update(usecase.SectionInfo, func(s *editstate.Document) {
			s.Info.Title = title
		})
	}
	settle()

	assert.Equal(t, 1, rec.count(), "rapid mutations within the window must yield one flush")
	assert.Equal(t, "Third", rec.last().Info.Title, "the flush reflects only the final state")
	assert.Equal(t, "Third", c.Snapshot().Info.Title)

	data, err := store.Load(context.Background(), string(usecase.SectionInfo))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Third")
	assert.NotContains(t, string(data), "First")
}

func TestSyncControllerSectionsDebounceIndependently(t *testing.T) {
	store := newFakeStore()
	c, rec := newTestController(store)

	c.Update(usecase.SectionInfo, func(s *editstate.Document) {
		s.Info.Title = "Pets"
	})
	c.Update(usecase.SectionServers, func(s *editstate.Document) {
		srv := editstate.NewServerForm()
		srv.URL = "https://api.example.com"
		s.Servers = append(s.Servers, srv)
	})
	settle()

	assert.Equal(t, 2, rec.count(), "each mutated section flushes once")
	last := rec.last()
	assert.Equal(t, "Pets", last.Info.Title)
	require.Len(t, last.Servers, 1)
}

func TestSyncControllerFlushForcesPending(t *testing.T) {
	store := newFakeStore()
	c, rec := newTestController(store)

	c.Update(usecase.SectionInfo, func(s *editstate.Document) {
		s.Info.Title = "Immediate"
	})
	c.Flush(context.Background())

	assert.Equal(t, 1, rec.count(), "flush runs synchronously")
	assert.Equal(t, "Immediate", rec.last().Info.Title)

	// The forced flush consumed the timer; nothing fires later and a
	// second Flush with no pending sections is a no-op.
	c.Flush(context.Background())
	settle()
	assert.Equal(t, 1, rec.count())
}

func TestSyncControllerPersistFailureStillPublishes(t *testing.T) {
	store := newFakeStore()
	store.saveErr = errors.New("store offline")
	c, rec := newTestController(store)

	c.Update(usecase.SectionInfo, func(s *editstate.Document) {
		s.Info.Title = "Unstored"
	})
	settle()

	assert.Equal(t, 1, rec.count(), "a failed write must not block the publish")
	assert.Equal(t, "Unstored", rec.last().Info.Title)
	assert.Equal(t, 0, store.saves())
}

func TestSyncControllerComponentsFlushWritesSummaries(t *testing.T) {
	store := newFakeStore()
	c, _ := newTestController(store)

	c.Update(usecase.SectionComponents, func(s *editstate.Document) {
		comp := editstate.NewSchemaComponentForm()
		comp.Name = "Pet"
		prop := editstate.NewPropertyForm()
		prop.Name = "name"
		prop.Required = true
		comp.Schema.Properties = append(comp.Schema.Properties, prop)
		s.Components.Schemas = append(s.Components.Schemas, comp)
	})
	settle()

	ctx := context.Background()
	_, err := store.Load(ctx, string(usecase.SectionComponents))
	require.NoError(t, err)
	data, err := store.Load(ctx, string(usecase.SectionComponentSummary))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Pet")
}

func TestSyncControllerReplaceCancelsPendingFlushes(t *testing.T) {
	store := newFakeStore()
	c, rec := newTestController(store)

	c.Update(usecase.SectionInfo, func(s *editstate.Document) {
		s.Info.Title = "Doomed Edit"
	})
	c.Replace(context.Background(), sampleCanonical())
	settle()

	assert.Equal(t, 1, rec.count(), "replace publishes once and the armed timer never fires")
	assert.Equal(t, "Pet Store", rec.last().Info.Title)
	assert.Equal(t, "Pet Store", c.Snapshot().Info.Title, "pending edits are discarded wholesale")

	// Replace persists every section, plus the component summaries.
	for _, kind := range usecase.EditableSections {
		_, err := store.Load(context.Background(), string(kind))
		assert.NoError(t, err, "section %s", kind)
	}
	_, err := store.Load(context.Background(), string(usecase.SectionComponentSummary))
	assert.NoError(t, err)
}

func TestSyncControllerSeedDoesNotPersist(t *testing.T) {
	store := newFakeStore()
	c, rec := newTestController(store)

	c.Seed(domain.Sections{
		Info: &domain.Info{Title: "Restored", Version: "1.0.0"},
	})

	assert.Equal(t, "Restored", c.Snapshot().Info.Title)
	assert.Equal(t, domain.DefaultVersion, c.Snapshot().OpenAPI)
	assert.Equal(t, 0, rec.count(), "seeding is silent")
	assert.Equal(t, 0, store.saves(), "seeding never writes back")
}

func TestSyncControllerIssuesTrackLastFlush(t *testing.T) {
	store := newFakeStore()
	c, _ := newTestController(store)

	c.Update(usecase.SectionInfo, func(s *editstate.Document) {
		s.Info.Title = "Pets"
		s.Info.Version = ""
	})
	c.Flush(context.Background())

	issues := c.Issues()
	var found bool
	for _, issue := range issues {
		if issue.Path == "/info/version" {
			found = true
		}
	}
	assert.True(t, found, "missing version surfaces as an issue")

	c.Update(usecase.SectionInfo, func(s *editstate.Document) {
		s.Info.Version = "1.0.0"
	})
	c.Flush(context.Background())
	for _, issue := range c.Issues() {
		assert.NotEqual(t, "/info/version", issue.Path)
	}
}
