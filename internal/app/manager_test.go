package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"storefront/internal/clock"
	"storefront/internal/config"
	"storefront/internal/display"
	"storefront/internal/domain"
	"storefront/internal/engine"
	"storefront/internal/state"
)

type fakeFetcher struct {
	mu    sync.Mutex
	ticks [][]domain.ProductRecord
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context) ([]domain.ProductRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if len(f.ticks) == 0 {
		return nil, nil
	}
	records := f.ticks[0]
	f.ticks = f.ticks[1:]
	return records, nil
}

type createdCall struct {
	surfaceID string
	content   display.MessageContent
}

type editCall struct {
	surfaceID string
	messageID string
	content   display.MessageContent
}

type fakeSurface struct {
	mu      sync.Mutex
	nextID  int
	created []createdCall
	edits   []editCall
	editErr map[string]error
}

func (f *fakeSurface) CreateMessage(_ context.Context, surfaceID string, content display.MessageContent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.created = append(f.created, createdCall{surfaceID: surfaceID, content: content})
	return fmt.Sprintf("msg-%d", f.nextID), nil
}

func (f *fakeSurface) FetchMessage(_ context.Context, _, messageID string) (display.MessageContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.editErr[messageID]; ok {
		return display.MessageContent{}, err
	}
	return display.MessageContent{}, nil
}

func (f *fakeSurface) EditMessage(_ context.Context, surfaceID, messageID string, content display.MessageContent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.editErr[messageID]; ok {
		return err
	}
	f.edits = append(f.edits, editCall{surfaceID: surfaceID, messageID: messageID, content: content})
	return nil
}

type fakeSink struct {
	mu     sync.Mutex
	events []domain.StockEvent
}

func (f *fakeSink) EnqueueAll(event domain.StockEvent) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return 1
}

func (f *fakeSink) all() []domain.StockEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.StockEvent(nil), f.events...)
}

func testClock() clock.Clock {
	return clock.Func(func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	})
}

func testManagerOptions(fetcher CatalogFetcher, surface *fakeSurface, store state.MappingStore, sink *fakeSink) ManagerOptions {
	opts := ManagerOptions{
		Clock:          testClock(),
		Fetcher:        fetcher,
		Store:          store,
		Sink:           sink,
		Classifier:     engine.NewClassifier(config.DefaultChannelRules(), "boost"),
		SurfaceByKey:   map[domain.ChannelKey]string{domain.ChannelNitro: "chan-nitro", domain.ChannelBoost: "chan-boost"},
		DefaultSurface: "chan-boost",
	}
	if surface != nil {
		opts.Surface = surface
	}
	return opts
}

func TestTickEmitsTransitionsAcrossTicks(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{ticks: [][]domain.ProductRecord{
		{{ID: "p1", Name: "Nitro", Stock: 0}},
		{{ID: "p1", Name: "Nitro", Stock: 5}},
		{{ID: "p1", Name: "Nitro", Stock: 2}},
		{{ID: "p1", Name: "Nitro", Stock: 0}},
	}}
	sink := &fakeSink{}
	manager, err := NewManager(context.Background(), testManagerOptions(fetcher, nil, state.NewMemoryStore(), sink))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		if err := manager.Tick(ctx); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}

	events := sink.all()
	if len(events) != 2 {
		t.Fatalf("expected restock and out_of_stock only, got %+v", events)
	}
	if events[0].Kind != domain.EventRestock || events[0].Delta != 5 {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[1].Kind != domain.EventOutOfStock || events[1].Delta != 0 {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
}

func TestTickCreatesAndEditsDisplays(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{ticks: [][]domain.ProductRecord{
		{{ID: "p1", Name: "Nitro Monthly", Stock: 3}},
		{{ID: "p1", Name: "Nitro Monthly", Stock: 2}},
	}}
	surface := &fakeSurface{}
	store := state.NewMemoryStore()
	manager, err := NewManager(context.Background(), testManagerOptions(fetcher, surface, store, &fakeSink{}))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	ctx := context.Background()
	if err := manager.Tick(ctx); err != nil {
		t.Fatalf("first tick: %v", err)
	}
	if len(surface.created) != 1 || surface.created[0].surfaceID != "chan-nitro" {
		t.Fatalf("expected one classified create, got %+v", surface.created)
	}
	mapping, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("mapping not persisted: %v", err)
	}
	if mapping.MessageID != "msg-1" || mapping.SurfaceID != "chan-nitro" {
		t.Fatalf("unexpected mapping: %+v", mapping)
	}

	if err := manager.Tick(ctx); err != nil {
		t.Fatalf("second tick: %v", err)
	}
	if len(surface.created) != 1 {
		t.Fatalf("tracked product must edit, not recreate: %+v", surface.created)
	}
	if len(surface.edits) != 1 || surface.edits[0].messageID != "msg-1" {
		t.Fatalf("expected one edit, got %+v", surface.edits)
	}
}

func TestTickRecoversMappingsAfterRestart(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := state.NewMemoryStore()
	if err := store.Put(ctx, "p1", domain.MessageMapping{SurfaceID: "chan-nitro", MessageID: "msg-9"}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	fetcher := &fakeFetcher{ticks: [][]domain.ProductRecord{
		{{ID: "p1", Name: "Nitro Monthly", Stock: 3}},
	}}
	surface := &fakeSurface{}
	manager, err := NewManager(ctx, testManagerOptions(fetcher, surface, store, &fakeSink{}))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	if err := manager.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(surface.created) != 0 {
		t.Fatalf("recovered mapping must edit, got creates %+v", surface.created)
	}
	if len(surface.edits) != 1 || surface.edits[0].messageID != "msg-9" {
		t.Fatalf("expected edit of recovered message, got %+v", surface.edits)
	}
}

func TestTickRecreatesDeletedDisplay(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := state.NewMemoryStore()
	if err := store.Put(ctx, "p1", domain.MessageMapping{SurfaceID: "chan-nitro", MessageID: "msg-gone"}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	fetcher := &fakeFetcher{ticks: [][]domain.ProductRecord{
		{{ID: "p1", Name: "Nitro Monthly", Stock: 3}},
	}}
	surface := &fakeSurface{editErr: map[string]error{"msg-gone": display.ErrNotFound}}
	manager, err := NewManager(ctx, testManagerOptions(fetcher, surface, store, &fakeSink{}))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	if err := manager.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(surface.created) != 1 {
		t.Fatalf("expected recreate after deleted message, got %+v", surface.created)
	}
	mapping, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("mapping not persisted: %v", err)
	}
	if mapping.MessageID == "msg-gone" {
		t.Fatalf("mapping must point at the recreated message, got %+v", mapping)
	}
}

func TestTickKeepsMappingOnTransientEditFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := state.NewMemoryStore()
	if err := store.Put(ctx, "p1", domain.MessageMapping{SurfaceID: "chan-nitro", MessageID: "msg-9"}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	fetcher := &fakeFetcher{ticks: [][]domain.ProductRecord{
		{{ID: "p1", Name: "Nitro Monthly", Stock: 3}},
		{{ID: "p1", Name: "Nitro Monthly", Stock: 3}},
	}}
	surface := &fakeSurface{editErr: map[string]error{"msg-9": errors.New("gateway timeout")}}
	manager, err := NewManager(ctx, testManagerOptions(fetcher, surface, store, &fakeSink{}))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	if err := manager.Tick(ctx); err != nil {
		t.Fatalf("first tick: %v", err)
	}
	if len(surface.created) != 0 {
		t.Fatalf("transient failure must not recreate, got %+v", surface.created)
	}

	// Next tick retries the same message once the failure clears.
	surface.mu.Lock()
	delete(surface.editErr, "msg-9")
	surface.mu.Unlock()
	if err := manager.Tick(ctx); err != nil {
		t.Fatalf("second tick: %v", err)
	}
	if len(surface.edits) != 1 || surface.edits[0].messageID != "msg-9" {
		t.Fatalf("expected retried edit, got %+v", surface.edits)
	}
}

func TestTickFallsBackToDefaultSurface(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{ticks: [][]domain.ProductRecord{
		{{ID: "p1", Name: "Mystery Bundle", Stock: 1}},
	}}
	surface := &fakeSurface{}
	manager, err := NewManager(context.Background(), testManagerOptions(fetcher, surface, state.NewMemoryStore(), &fakeSink{}))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	if err := manager.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(surface.created) != 1 || surface.created[0].surfaceID != "chan-boost" {
		t.Fatalf("expected default surface fallback, got %+v", surface.created)
	}
}

func TestTickSkipsWhilePaused(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{ticks: [][]domain.ProductRecord{
		{{ID: "p1", Name: "Nitro", Stock: 5}},
	}}
	sink := &fakeSink{}
	manager, err := NewManager(context.Background(), testManagerOptions(fetcher, nil, state.NewMemoryStore(), sink))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	manager.Pause()
	if err := manager.Tick(context.Background()); err != nil {
		t.Fatalf("paused tick: %v", err)
	}
	if len(sink.all()) != 0 {
		t.Fatalf("paused tick must not emit events")
	}
	if !manager.LastTick().IsZero() {
		t.Fatalf("paused tick must not count as completed")
	}

	manager.Resume()
	if err := manager.Tick(context.Background()); err != nil {
		t.Fatalf("resumed tick: %v", err)
	}
	if len(sink.all()) != 1 {
		t.Fatalf("expected event after resume, got %+v", sink.all())
	}
}

func TestTickTreatsFetchFailureAsEmpty(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{err: errors.New("catalog down")}
	sink := &fakeSink{}
	surface := &fakeSurface{}
	manager, err := NewManager(context.Background(), testManagerOptions(fetcher, surface, state.NewMemoryStore(), sink))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	if err := manager.Tick(context.Background()); err != nil {
		t.Fatalf("tick must absorb fetch failure: %v", err)
	}
	if len(sink.all()) != 0 || len(surface.created) != 0 {
		t.Fatalf("failed fetch must touch nothing")
	}
	if manager.LastTick().IsZero() {
		t.Fatalf("tick must still complete")
	}
}

type faultyStore struct {
	*state.MemoryStore
	mu     sync.Mutex
	putErr error
}

func (f *faultyStore) Put(ctx context.Context, productID string, mapping domain.MessageMapping) error {
	f.mu.Lock()
	err := f.putErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.MemoryStore.Put(ctx, productID, mapping)
}

func (f *faultyStore) setPutErr(err error) {
	f.mu.Lock()
	f.putErr = err
	f.mu.Unlock()
}

func TestTickKeepsMemoryAuthoritativeOnPersistFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := &faultyStore{MemoryStore: state.NewMemoryStore()}
	store.setPutErr(errors.New("disk full"))

	fetcher := &fakeFetcher{ticks: [][]domain.ProductRecord{
		{{ID: "p1", Name: "Nitro Monthly", Stock: 3}},
		{{ID: "p1", Name: "Nitro Monthly", Stock: 3}},
		{{ID: "p1", Name: "Nitro Monthly", Stock: 3}},
	}}
	surface := &fakeSurface{editErr: map[string]error{}}
	manager, err := NewManager(ctx, testManagerOptions(fetcher, surface, store, &fakeSink{}))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	if err := manager.Tick(ctx); err != nil {
		t.Fatalf("first tick: %v", err)
	}
	if len(surface.created) != 1 {
		t.Fatalf("expected one create, got %+v", surface.created)
	}
	if _, err := store.MemoryStore.Get(ctx, "p1"); !errors.Is(err, state.ErrNotFound) {
		t.Fatalf("failed put must leave the backend empty, got %v", err)
	}

	// In-memory mapping stays authoritative: the next tick edits, never recreates.
	if err := manager.Tick(ctx); err != nil {
		t.Fatalf("second tick: %v", err)
	}
	if len(surface.created) != 1 {
		t.Fatalf("persist failure must not cause a duplicate create, got %+v", surface.created)
	}
	if len(surface.edits) != 1 || surface.edits[0].messageID != "msg-1" {
		t.Fatalf("expected edit of in-memory handle, got %+v", surface.edits)
	}

	// Once the backend recovers, the next mutation persists the mapping.
	store.setPutErr(nil)
	surface.mu.Lock()
	surface.editErr["msg-1"] = display.ErrNotFound
	surface.mu.Unlock()
	if err := manager.Tick(ctx); err != nil {
		t.Fatalf("third tick: %v", err)
	}
	mapping, err := store.MemoryStore.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("recovered mutation must persist: %v", err)
	}
	if mapping.MessageID != "msg-2" {
		t.Fatalf("expected recreated handle persisted, got %+v", mapping)
	}
}

func TestResetClearsMappingsAndRecreates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := state.NewMemoryStore()
	fetcher := &fakeFetcher{ticks: [][]domain.ProductRecord{
		{{ID: "p1", Name: "Nitro", Stock: 3}},
		{{ID: "p1", Name: "Nitro", Stock: 3}},
	}}
	surface := &fakeSurface{}
	manager, err := NewManager(ctx, testManagerOptions(fetcher, surface, store, &fakeSink{}))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	if err := manager.Tick(ctx); err != nil {
		t.Fatalf("first tick: %v", err)
	}
	if err := manager.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := store.Get(ctx, "p1"); !errors.Is(err, state.ErrNotFound) {
		t.Fatalf("reset must clear the store, got %v", err)
	}

	if err := manager.Tick(ctx); err != nil {
		t.Fatalf("second tick: %v", err)
	}
	if len(surface.created) != 2 {
		t.Fatalf("expected recreate after reset, got %+v", surface.created)
	}
}
