package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/state"
)

func newTestService(t *testing.T, fetcher CatalogFetcher) *Service {
	t.Helper()

	cfg := config.Config{
		Service: config.ServiceConfig{Mode: config.ServiceModeSingle, CheckIntervalSec: 10},
		Catalog: config.CatalogConfig{ShopID: "shop-1", AuthToken: "token-1"},
	}
	config.ApplyDefaults(&cfg)

	store := state.NewMemoryStore()
	manager, err := NewManager(context.Background(), testManagerOptions(fetcher, nil, store, &fakeSink{}))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	async := notify.NewAsyncDispatcher(
		notify.NewDispatcher(config.NotifyConfig{}, nil),
		cfg.Notify.Async,
		nil,
	)
	t.Cleanup(func() { _ = async.Close() })

	return &Service{
		cfg:     cfg,
		manager: manager,
		async:   async,
		store:   store,
	}
}

type panicFetcher struct {
	calls atomic.Int64
}

func (p *panicFetcher) Fetch(_ context.Context) ([]domain.ProductRecord, error) {
	if p.calls.Add(1) == 1 {
		panic("catalog decode exploded")
	}
	return nil, nil
}

func TestRunTickRecoversFromPanic(t *testing.T) {
	t.Parallel()

	fetcher := &panicFetcher{}
	service := newTestService(t, fetcher)

	service.runTick(context.Background())
	if !service.manager.LastTick().IsZero() {
		t.Fatalf("panicked tick must not count as completed")
	}

	// The loop keeps its cadence: the next tick runs normally.
	service.runTick(context.Background())
	if service.manager.LastTick().IsZero() {
		t.Fatalf("tick after a panic must complete")
	}
	if got := fetcher.calls.Load(); got != 2 {
		t.Fatalf("expected two fetch attempts, got %d", got)
	}
}

func TestReadyEndpointFollowsFirstTick(t *testing.T) {
	t.Parallel()

	service := newTestService(t, &fakeFetcher{})
	mux := service.buildMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before first tick, got %d", rec.Code)
	}

	if err := service.manager.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after first tick, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected healthy, got %d", rec.Code)
	}
}

func TestControlEndpointsDriveManager(t *testing.T) {
	t.Parallel()

	service := newTestService(t, &fakeFetcher{})
	mux := service.buildMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/control/pause", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("pause: expected 200, got %d", rec.Code)
	}
	if !service.manager.Paused() {
		t.Fatalf("manager must be paused")
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/control/resume", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("resume: expected 200, got %d", rec.Code)
	}
	if service.manager.Paused() {
		t.Fatalf("manager must be resumed")
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/control/reset", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("reset: expected 200, got %d", rec.Code)
	}
}

func TestControlEndpointsRejectNonPost(t *testing.T) {
	t.Parallel()

	service := newTestService(t, &fakeFetcher{})
	mux := service.buildMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/control/pause", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
