package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/clock"
	"storefront/internal/config"
	"storefront/internal/display"
	"storefront/internal/domain"
	"storefront/internal/engine"
	"storefront/internal/notify"
	"storefront/internal/state"
)

// Service wires the reconciliation manager with its runtime surfaces.
// Params: config snapshot, manager, async notifier, and HTTP endpoint.
// Returns: runnable storefront service.
type Service struct {
	cfg     config.Config
	logger  *slog.Logger
	manager *Manager
	async   *notify.AsyncDispatcher
	store   state.MappingStore
	server  *http.Server
}

// NewService builds the full service from validated configuration.
// Params: cfg snapshot and logger.
// Returns: wired service or setup error.
func NewService(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Service, error) {
	store, err := buildMappingStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	dispatcher := notify.NewDispatcher(cfg.Notify, logger)
	async := notify.NewAsyncDispatcher(dispatcher, cfg.Notify.Async, logger)

	var surface display.Surface
	if cfg.Display.Enabled {
		surface = display.NewDiscordSurface(cfg.Display)
	}

	surfaceByKey := make(map[domain.ChannelKey]string, len(cfg.Channel))
	defaultSurface := ""
	for _, channel := range cfg.Channel {
		surfaceByKey[domain.ChannelKey(channel.Key)] = channel.SurfaceID
		if channel.Key == cfg.Display.DefaultChannel {
			defaultSurface = channel.SurfaceID
		}
	}

	manager, err := NewManager(ctx, ManagerOptions{
		Logger:         logger,
		Clock:          clock.RealClock{},
		Fetcher:        catalog.NewFetcher(cfg.Catalog),
		Surface:        surface,
		Store:          store,
		Classifier:     engine.NewClassifier(cfg.Channel, cfg.Display.DefaultChannel),
		Sink:           async,
		SurfaceByKey:   surfaceByKey,
		DefaultSurface: defaultSurface,
		StartPaused:    cfg.Service.StartPaused,
	})
	if err != nil {
		_ = async.Close()
		_ = store.Close()
		return nil, err
	}

	service := &Service{
		cfg:     cfg,
		logger:  logger,
		manager: manager,
		async:   async,
		store:   store,
	}
	service.server = &http.Server{
		Addr:              cfg.HTTP.Listen,
		Handler:           service.buildMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return service, nil
}

// buildMappingStore selects the persistence backend by service mode.
// Params: cfg snapshot and logger.
// Returns: mapping store or setup error.
func buildMappingStore(cfg config.Config, logger *slog.Logger) (state.MappingStore, error) {
	if cfg.Service.Mode == config.ServiceModeNATS {
		store, err := state.NewNATSStore(config.DeriveMappingNATSConfig(cfg))
		if err != nil {
			return nil, fmt.Errorf("init nats mapping store: %w", err)
		}
		return store, nil
	}

	store, err := state.NewFileStore(cfg.Store.Path)
	if err != nil {
		// A corrupt file starts the store empty; only the decode error is reported.
		if store == nil {
			return nil, fmt.Errorf("init file mapping store: %w", err)
		}
		if logger != nil {
			logger.Warn("mapping file unreadable, starting empty", "error", err.Error())
		}
	}
	return store, nil
}

// Run drives the tick loop and HTTP endpoint until the context ends.
// Params: ctx cancellation stops the loop and shuts everything down.
// Returns: HTTP server error or nil on clean shutdown.
func (s *Service) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)
	go func() {
		if s.logger != nil {
			s.logger.Info("http endpoint listening", "addr", s.server.Addr)
		}
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	interval := config.CheckInterval(s.cfg)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if s.logger != nil {
		s.logger.Info("service started",
			"name", s.cfg.Service.Name,
			"mode", s.cfg.Service.Mode,
			"interval", interval.String())
	}

	s.runTick(ctx)
	for {
		select {
		case <-ctx.Done():
			return s.shutdown(serverErr)
		case err := <-serverErr:
			s.closeResources()
			if err != nil {
				return fmt.Errorf("http endpoint: %w", err)
			}
			return nil
		case <-ticker.C:
			s.runTick(ctx)
		}
	}
}

// runTick executes one tick behind a panic boundary.
// Params: ctx bounds the tick.
// Returns: none; a panicking tick is logged and the loop continues.
func (s *Service) runTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil && s.logger != nil {
			s.logger.Error("tick panicked", "panic", fmt.Sprint(r))
		}
	}()
	if err := s.manager.Tick(ctx); err != nil && s.logger != nil {
		s.logger.Error("tick failed", "error", err.Error())
	}
}

// shutdown stops the HTTP server and releases resources.
// Params: serverErr carries the listener exit status.
// Returns: shutdown error if the server did not stop cleanly.
func (s *Service) shutdown(serverErr <-chan error) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.server.Shutdown(shutdownCtx)
	<-serverErr

	s.closeResources()
	if s.logger != nil {
		s.logger.Info("service stopped")
	}
	if err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// closeResources drains the notify pool and closes the mapping store.
// Params: none.
// Returns: none; close errors are logged.
func (s *Service) closeResources() {
	if err := s.async.Close(); err != nil && s.logger != nil {
		s.logger.Warn("notify pool close failed", "error", err.Error())
	}
	if err := s.store.Close(); err != nil && s.logger != nil {
		s.logger.Warn("mapping store close failed", "error", err.Error())
	}
}

// buildMux registers health, readiness, and operator control routes.
// Params: none.
// Returns: configured request multiplexer.
func (s *Service) buildMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.HTTP.HealthPath, s.handleHealth)
	mux.HandleFunc(s.cfg.HTTP.ReadyPath, s.handleReady)

	prefix := s.cfg.HTTP.ControlPrefix
	mux.HandleFunc(prefix+"/pause", s.controlHandler(func(context.Context) error {
		s.manager.Pause()
		return nil
	}))
	mux.HandleFunc(prefix+"/resume", s.controlHandler(func(context.Context) error {
		s.manager.Resume()
		return nil
	}))
	mux.HandleFunc(prefix+"/reset", s.controlHandler(func(ctx context.Context) error {
		return s.manager.Reset(ctx)
	}))
	return mux
}

// handleHealth reports process liveness.
// Params: standard handler pair.
// Returns: 200 with ok body.
func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports readiness after the first completed tick.
// Params: standard handler pair.
// Returns: 200 once a tick has completed, 503 before that.
func (s *Service) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.manager.LastTick().IsZero() {
		http.Error(w, "waiting for first tick", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// controlHandler wraps one operator action as a POST-only route.
// Params: action to invoke.
// Returns: handler emitting 200 on success and 500 on action error.
func (s *Service) controlHandler(action func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := action(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
