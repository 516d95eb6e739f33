package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"storefront/internal/clock"
	"storefront/internal/display"
	"storefront/internal/domain"
	"storefront/internal/engine"
	"storefront/internal/state"
)

// CatalogFetcher pulls one product list per tick.
// Params: ctx bounds the fetch.
// Returns: normalized records or fetch error.
type CatalogFetcher interface {
	Fetch(ctx context.Context) ([]domain.ProductRecord, error)
}

// EventSink accepts stock events for fire-and-forget delivery.
// Params: event payload.
// Returns: number of channels the event was queued for.
type EventSink interface {
	EnqueueAll(event domain.StockEvent) int
}

// Manager runs the per-tick reconciliation between catalog and displays.
// Params: fetcher, diff snapshot, mapping store, display surface, and sink.
// Returns: tick-driven stock alerts and display message upkeep.
type Manager struct {
	logger     *slog.Logger
	clk        clock.Clock
	fetcher    CatalogFetcher
	surface    display.Surface
	store      state.MappingStore
	classifier *engine.Classifier
	sink       EventSink

	surfaceByKey   map[domain.ChannelKey]string
	defaultSurface string

	mu       sync.Mutex
	snapshot map[string]int
	mappings map[string]domain.MessageMapping
	lastTick time.Time

	paused atomic.Bool
}

// ManagerOptions carries the manager wiring.
// Params: collaborators and channel surface bindings.
// Returns: construction input for NewManager.
type ManagerOptions struct {
	Logger         *slog.Logger
	Clock          clock.Clock
	Fetcher        CatalogFetcher
	Surface        display.Surface
	Store          state.MappingStore
	Classifier     *engine.Classifier
	Sink           EventSink
	SurfaceByKey   map[domain.ChannelKey]string
	DefaultSurface string
	StartPaused    bool
}

// NewManager builds the manager and recovers persisted mappings.
// Params: opts wiring; Surface may be nil when display is disabled.
// Returns: initialized manager or mapping load error.
func NewManager(ctx context.Context, opts ManagerOptions) (*Manager, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("manager requires a catalog fetcher")
	}
	if opts.Store == nil {
		return nil, errors.New("manager requires a mapping store")
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}

	mappings, err := opts.Store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load mappings: %w", err)
	}

	manager := &Manager{
		logger:         opts.Logger,
		clk:            opts.Clock,
		fetcher:        opts.Fetcher,
		surface:        opts.Surface,
		store:          opts.Store,
		classifier:     opts.Classifier,
		sink:           opts.Sink,
		surfaceByKey:   opts.SurfaceByKey,
		defaultSurface: opts.DefaultSurface,
		snapshot:       make(map[string]int),
		mappings:       mappings,
	}
	manager.paused.Store(opts.StartPaused)
	return manager, nil
}

// Pause suspends tick processing.
// Params: none.
// Returns: none; in-flight tick finishes, later ticks are skipped.
func (m *Manager) Pause() {
	m.paused.Store(true)
	if m.logger != nil {
		m.logger.Info("reconciliation paused")
	}
}

// Resume re-enables tick processing.
// Params: none.
// Returns: none.
func (m *Manager) Resume() {
	m.paused.Store(false)
	if m.logger != nil {
		m.logger.Info("reconciliation resumed")
	}
}

// Paused reports whether tick processing is suspended.
// Params: none.
// Returns: current pause flag.
func (m *Manager) Paused() bool {
	return m.paused.Load()
}

// Reset drops all persisted display mappings.
// Params: ctx bounds the store operation.
// Returns: store error; the stock snapshot is kept so no false restocks fire.
func (m *Manager) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset mappings: %w", err)
	}
	m.mappings = make(map[string]domain.MessageMapping)
	if m.logger != nil {
		m.logger.Info("display mappings reset")
	}
	return nil
}

// LastTick returns the completion time of the most recent tick.
// Params: none.
// Returns: zero time before the first completed tick.
func (m *Manager) LastTick() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastTick
}

// Tick runs one fetch, diff, dispatch, and reconcile round.
// Params: ctx bounds the tick.
// Returns: nil when the tick completed, even with per-product failures.
//
// A fetch failure degrades to an empty list: nothing is examined, the
// snapshot keeps its prior values, and no events fire.
func (m *Manager) Tick(ctx context.Context) error {
	if m.paused.Load() {
		if m.logger != nil {
			m.logger.Debug("tick skipped while paused")
		}
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	records, err := m.fetcher.Fetch(ctx)
	if err != nil {
		if m.logger != nil {
			m.logger.Warn("catalog fetch failed", "error", err.Error())
		}
		records = nil
	}

	events, next := engine.Diff(records, m.snapshot)
	m.snapshot = next

	for _, event := range events {
		if m.logger != nil {
			m.logger.Info("stock transition detected",
				"product_id", event.ProductID,
				"kind", string(event.Kind),
				"stock", event.NewStock,
				"delta", event.Delta)
		}
		if m.sink != nil {
			m.sink.EnqueueAll(event)
		}
	}

	if m.surface != nil {
		for _, record := range records {
			m.reconcileProduct(ctx, record)
		}
	}

	m.lastTick = m.clk.Now()
	return nil
}

// reconcileProduct drives one product display to its desired message state.
// Params: ctx and the current product record; caller holds the mutex.
// Returns: none; failures are logged and retried on the next tick.
//
// The destination surface is recomputed from the product name every tick;
// the stored mapping only answers whether a display message already exists.
func (m *Manager) reconcileProduct(ctx context.Context, record domain.ProductRecord) {
	surfaceID := m.resolveSurface(record.Name)
	if surfaceID == "" {
		if m.logger != nil {
			m.logger.Warn("no surface bound for product", "product_id", record.ID, "name", record.Name)
		}
		return
	}
	content := display.BuildProductMessage(record)

	mapping, tracked := m.mappings[record.ID]
	if !tracked {
		m.createDisplay(ctx, record, surfaceID, content)
		return
	}

	err := m.surface.EditMessage(ctx, surfaceID, mapping.MessageID, content)
	if err == nil {
		return
	}
	if errors.Is(err, display.ErrNotFound) {
		if m.logger != nil {
			m.logger.Warn("display message deleted, recreating",
				"product_id", record.ID,
				"message_id", mapping.MessageID)
		}
		m.createDisplay(ctx, record, surfaceID, content)
		return
	}
	if m.logger != nil {
		m.logger.Warn("display edit failed",
			"product_id", record.ID,
			"message_id", mapping.MessageID,
			"error", err.Error())
	}
}

// createDisplay posts a new display message and persists its mapping.
// Params: ctx, product record, target surface, and rendered content; caller holds the mutex.
// Returns: none; creation failures leave the product untracked for the next tick.
func (m *Manager) createDisplay(ctx context.Context, record domain.ProductRecord, surfaceID string, content display.MessageContent) {
	messageID, err := m.surface.CreateMessage(ctx, surfaceID, content)
	if err != nil {
		if m.logger != nil {
			m.logger.Warn("display create failed",
				"product_id", record.ID,
				"surface_id", surfaceID,
				"error", err.Error())
		}
		return
	}

	mapping := domain.MessageMapping{
		SurfaceID: surfaceID,
		MessageID: messageID,
		UpdatedAt: m.clk.Now(),
	}
	if err := m.store.Put(ctx, record.ID, mapping); err != nil {
		if m.logger != nil {
			m.logger.Error("persist mapping failed",
				"product_id", record.ID,
				"message_id", messageID,
				"error", err.Error())
		}
	}
	m.mappings[record.ID] = mapping
}

// resolveSurface maps one product name to its display surface ID.
// Params: product display name.
// Returns: classified surface or the default surface fallback.
func (m *Manager) resolveSurface(name string) string {
	if m.classifier == nil {
		return m.defaultSurface
	}
	key := m.classifier.Classify(name)
	if surfaceID, ok := m.surfaceByKey[key]; ok && surfaceID != "" {
		return surfaceID
	}
	return m.defaultSurface
}
