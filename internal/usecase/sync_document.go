package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/oasdraft/oasdraft/internal/domain"
	"github.com/oasdraft/oasdraft/internal/editstate"
	"github.com/oasdraft/oasdraft/internal/transform"
	"github.com/oasdraft/oasdraft/internal/validate"
)

// DefaultDebounce is the flush delay applied when no interval is configured.
const DefaultDebounce = 300 * time.Millisecond

// SyncController owns the normalized editing state and the transition from
// editing state to canonical document. No other component constructs a
// canonical document from partial data.
//
// Each editable section runs a tiny state machine: Idle until a mutation
// arms its debounce timer (PendingFlush), back to Idle when the timer
// fires. Re-arming cancels the prior timer: debounce, not throttle. When a
// timer fires, fold, validation, persistence, and publish all run
// synchronously on one snapshot taken atomically at flush time; mutations
// arriving afterwards only schedule a subsequent flush.
type SyncController struct {
	mu       sync.Mutex
	state    editstate.Document
	document domain.Document
	issues   []validate.Issue
	timers   map[SectionKind]*time.Timer

	delay   time.Duration
	persist *Persistence
	subs    []Subscriber
	logger  *slog.Logger

	tracer          trace.Tracer
	flushCounter    metric.Int64Counter
	persistFailures metric.Int64Counter
}

// NewSyncController builds a controller over a persistence layer. A
// non-positive delay falls back to DefaultDebounce.
func NewSyncController(persist *Persistence, delay time.Duration, logger *slog.Logger) *SyncController {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	meter := otel.Meter("oasdraft/sync")
	flushCounter, err := meter.Int64Counter("oasdraft.sync.flushes",
		metric.WithDescription("Completed fold/validate/persist/publish cycles."))
	if err != nil {
		logger.Warn("Failed to create flush counter.", slog.Any("error", err))
	}
	persistFailures, err := meter.Int64Counter("oasdraft.sync.persist_failures",
		metric.WithDescription("Best-effort persistence writes that failed."))
	if err != nil {
		logger.Warn("Failed to create persist failure counter.", slog.Any("error", err))
	}

	c := &SyncController{
		state:    editstate.New(),
		document: domain.NewDocument(),
		timers:   make(map[SectionKind]*time.Timer),
		delay:    delay,
		persist:  persist,
		logger:   logger.With("component", "sync_controller"),

		tracer:          otel.Tracer("oasdraft/sync"),
		flushCounter:    flushCounter,
		persistFailures: persistFailures,
	}
	c.state.SpecVersion = domain.DefaultVersion
	return c
}

// Subscribe registers a consumer of published documents. Subscribers are
// invoked after every flush with the flushed snapshot and its issues.
func (c *SyncController) Subscribe(sub Subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, sub)
}

// Update applies a mutation to the editing state and (re)arms the debounce
// timer for the mutated section. The mutation runs synchronously under the
// controller's lock and completes before any flush can observe it.
func (c *SyncController) Update(section SectionKind, mutate func(*editstate.Document)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mutate(&c.state)

	if t, ok := c.timers[section]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(c.delay, func() {
		c.flush(context.Background(), section, t)
	})
	c.timers[section] = t
	c.logger.Debug("Mutation queued, debounce armed.", slog.String("section", string(section)))
}

// flush runs one fold/validate/persist/publish cycle for a section. fired
// identifies the timer that scheduled this flush: the bookkeeping entry is
// removed only when it still holds that timer, so a newer timer re-armed by
// an Update racing the firing stays visible to Flush.
func (c *SyncController) flush(ctx context.Context, section SectionKind, fired *time.Timer) {
	ctx, span := c.tracer.Start(ctx, "sync.flush",
		trace.WithAttributes(attribute.String("section", string(section))))
	defer span.End()

	c.mu.Lock()
	if c.timers[section] == fired {
		delete(c.timers, section)
	}
	snapshot := transform.Fold(c.state)
	c.document = snapshot
	issues := validate.Validate(snapshot)
	c.issues = issues

	// Persistence is best-effort, not authoritative: a failed write is
	// logged and the in-memory document is still published.
	if err := c.persistSection(ctx, section, snapshot); err != nil {
		c.logger.Error("Failed to persist section.",
			slog.String("section", string(section)), slog.Any("error", err))
		if c.persistFailures != nil {
			c.persistFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("section", string(section))))
		}
	}

	subs := make([]Subscriber, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	if c.flushCounter != nil {
		c.flushCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("section", string(section))))
	}
	c.logger.Debug("Flushed section.",
		slog.String("section", string(section)), slog.Int("issues", len(issues)))

	for _, sub := range subs {
		sub(snapshot, issues)
	}
}

// persistSection writes the flushed section; a components flush also
// refreshes the summary records the reference resolver reads.
func (c *SyncController) persistSection(ctx context.Context, section SectionKind, doc domain.Document) error {
	if c.persist == nil {
		return nil
	}
	switch section {
	case SectionInfo:
		return c.persist.SaveSection(ctx, SectionInfo, doc.Info)
	case SectionServers:
		return c.persist.SaveSection(ctx, SectionServers, doc.Servers)
	case SectionPaths:
		return c.persist.SaveSection(ctx, SectionPaths, doc.Paths)
	case SectionComponents:
		if err := c.persist.SaveSection(ctx, SectionComponents, doc.Components); err != nil {
			return err
		}
		return c.persist.SaveSection(ctx, SectionComponentSummary, domain.BuildComponentSummaries(doc.Components))
	}
	return nil
}

// Flush forces every section with a pending timer through a synchronous
// flush, then returns. Used before export and at shutdown.
func (c *SyncController) Flush(ctx context.Context) {
	c.mu.Lock()
	pending := make(map[SectionKind]*time.Timer, len(c.timers))
	for section, t := range c.timers {
		t.Stop()
		pending[section] = t
	}
	c.mu.Unlock()

	for section, t := range pending {
		c.flush(ctx, section, t)
	}
}

// Replace swaps in a whole new canonical document: the editing state is
// discarded and rebuilt via unfold, pending flushes are cancelled, all
// sections are persisted, and the new document is published. This is the
// import path.
func (c *SyncController) Replace(ctx context.Context, doc domain.Document) {
	ctx, span := c.tracer.Start(ctx, "sync.replace")
	defer span.End()

	c.mu.Lock()
	for section, t := range c.timers {
		t.Stop()
		delete(c.timers, section)
	}
	c.state = transform.Unfold(doc)
	snapshot := transform.Fold(c.state)
	c.document = snapshot
	issues := validate.Validate(snapshot)
	c.issues = issues

	if c.persist != nil {
		if err := c.persist.SaveDocument(ctx, snapshot); err != nil {
			c.logger.Error("Failed to persist imported document.", slog.Any("error", err))
			if c.persistFailures != nil {
				c.persistFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("section", "all")))
			}
		}
	}

	subs := make([]Subscriber, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	c.logger.Info("Replaced canonical document.", slog.Int("issues", len(issues)))
	for _, sub := range subs {
		sub(snapshot, issues)
	}
}

// Seed initializes the editing state from merged sections at startup
// without persisting anything back; persisted data is already durable and
// initial values are the caller's responsibility.
func (c *SyncController) Seed(sections domain.Sections) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc := domain.Assemble(domain.NewDocument(), sections)
	c.state = transform.Unfold(doc)
	c.document = transform.Fold(c.state)
	c.issues = validate.Validate(c.document)
}

// Snapshot returns the most recently folded canonical document.
func (c *SyncController) Snapshot() domain.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.document
}

// Issues returns the validation findings of the last flush.
func (c *SyncController) Issues() []validate.Issue {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]validate.Issue, len(c.issues))
	copy(out, c.issues)
	return out
}
