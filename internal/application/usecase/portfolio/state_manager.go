package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/anhtran/folio-api/adapters/event"
	"github.com/anhtran/folio-api/internal/domain/portfolio"
	"github.com/anhtran/folio-api/pkg/apperror"
	"github.com/anhtran/folio-api/pkg/logger"
)

// maxConflictRetries bounds how often an update is recomputed after losing a
// compare-and-swap against a concurrent writer in another process.
const maxConflictRetries = 3

var tracer = otel.Tracer("portfolio_state_manager")

// EventPublisher is the slice of the kafka producer the manager needs.
type EventPublisher interface {
	PublishPortfolioEvent(ctx context.Context, payload event.PortfolioEventPayload) error
}

// StateManager is the single source of truth for the portfolio aggregate in a
// running process. All writes go through one merge contract: shallow merge of
// the patch's top-level keys, persisted with compare-and-swap on the document
// revision, in-memory state advancing only after the persist succeeds. Updates
// are serialized under the manager's lock, so two submits issued back to back
// never compute from the same stale state.
type StateManager struct {
	store  portfolio.Store
	events EventPublisher
	logger logger.Logger

	mu       sync.Mutex
	state    portfolio.Data
	revision int64
	loading  bool

	subMu   sync.Mutex
	subs    map[int]chan portfolio.Data
	nextSub int
}

func NewStateManager(store portfolio.Store, events EventPublisher, log logger.Logger) *StateManager {
	return &StateManager{
		store:   store,
		events:  events,
		logger:  log,
		state:   portfolio.Defaults(),
		loading: true,
		subs:    make(map[int]chan portfolio.Data),
	}
}

// Load fetches the singleton document once at startup. An absent document
// seeds in-memory defaults without writing them back. A transport failure
// degrades to defaults and is logged, never surfaced as a hard failure.
func (m *StateManager) Load(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "Load")
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.refreshLocked(ctx); err != nil {
		span.RecordError(err)
		m.logger.Error("Failed to load portfolio document, serving defaults", err)
		m.state = portfolio.Defaults()
		m.revision = 0
	}
	m.loading = false
	span.SetAttributes(attribute.Int64("revision", m.revision))
}

// refreshLocked replaces in-memory state with the store's view. Caller holds m.mu.
func (m *StateManager) refreshLocked(ctx context.Context) error {
	raw, revision, err := m.store.Get(ctx)
	if errors.Is(err, portfolio.ErrNotFound) {
		m.state = portfolio.Defaults()
		m.revision = 0
		return nil
	}
	if err != nil {
		return err
	}

	data, err := portfolio.FromDocument(raw)
	if err != nil {
		return err
	}
	m.state = data
	m.revision = revision
	return nil
}

// Loading reports whether the initial load has not completed yet.
func (m *StateManager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Current returns the current aggregate snapshot. Callers must treat the
// contained slices as read-only.
func (m *StateManager) Current() portfolio.Data {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Revision returns the document revision the in-memory state corresponds to,
// 0 when the document does not exist yet.
func (m *StateManager) Revision() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revision
}

// Update merges a sparse patch into the current state and persists the result.
// On persist failure the in-memory state is untouched and the error is
// returned; on success the merged aggregate is republished to all subscribers.
func (m *StateManager) Update(ctx context.Context, patch portfolio.Patch) error {
	return m.Apply(ctx, func(portfolio.Data) (portfolio.Patch, error) {
		return patch, nil
	})
}

// Apply runs fn against the current state inside the manager's critical
// section and persists the patch it returns. When the compare-and-swap write
// loses to a concurrent writer in another process, the state is refreshed and
// fn is re-run against it, up to maxConflictRetries times. fn must be pure:
// it may be called more than once.
func (m *StateManager) Apply(ctx context.Context, fn func(current portfolio.Data) (portfolio.Patch, error)) error {
	ctx, span := tracer.Start(ctx, "Apply")
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	for attempt := 0; ; attempt++ {
		patch, err := fn(m.state)
		if err != nil {
			span.RecordError(err)
			return err
		}
		if patch.IsZero() {
			return nil
		}

		merged := patch.Apply(m.state)
		raw, err := json.Marshal(merged)
		if err != nil {
			return apperror.NewInternal("failed to marshal portfolio document", err)
		}

		newRevision, err := m.store.SetMerge(ctx, raw, m.revision)
		if errors.Is(err, portfolio.ErrRevisionConflict) {
			if attempt >= maxConflictRetries {
				span.RecordError(err)
				return apperror.NewConflict("portfolio update lost too many races, try again", err)
			}
			m.logger.Warn("Portfolio revision conflict, refreshing and retrying",
				zap.Int("attempt", attempt+1), zap.Int64("stale_revision", m.revision))
			if err := m.refreshLocked(ctx); err != nil {
				span.RecordError(err)
				return apperror.NewUnavailable("failed to refresh portfolio after conflict", err)
			}
			continue
		}
		if err != nil {
			span.RecordError(err)
			return err
		}

		m.state = merged
		m.revision = newRevision
		span.SetAttributes(attribute.Int64("revision", newRevision))

		m.broadcast(merged)
		m.emitUpdated(ctx, patch.Scopes(), newRevision)
		return nil
	}
}

// Subscribe registers a consumer of merged aggregate snapshots. Every
// successful update republishes to all subscribers. The returned release
// function is safe to call more than once; after release the channel is
// closed and never written again.
func (m *StateManager) Subscribe() (<-chan portfolio.Data, func()) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan portfolio.Data, 1)
	m.subs[id] = ch

	var once sync.Once
	release := func() {
		once.Do(func() {
			m.subMu.Lock()
			defer m.subMu.Unlock()
			delete(m.subs, id)
			close(ch)
		})
	}
	return ch, release
}

// broadcast delivers a snapshot to every subscriber without blocking the
// update path. A subscriber that has not drained the previous snapshot only
// keeps the newest one.
func (m *StateManager) broadcast(snapshot portfolio.Data) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for _, ch := range m.subs {
		select {
		case ch <- snapshot:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// emitUpdated publishes a portfolio.updated event. Eventing is best effort:
// a broker failure is logged and does not fail the update.
func (m *StateManager) emitUpdated(ctx context.Context, scopes []string, revision int64) {
	if m.events == nil {
		return
	}
	payload := event.PortfolioEventPayload{
		EventType: event.EventPortfolioUpdated,
		Scopes:    scopes,
		Revision:  revision,
		Timestamp: time.Now().UTC(),
	}
	if err := m.events.PublishPortfolioEvent(ctx, payload); err != nil {
		m.logger.Error("Failed to publish portfolio event", err, zap.Int64("revision", revision))
	}
}
