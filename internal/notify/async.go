package notify

import (
	"context"
	"log/slog"
	"sync"

	"storefront/internal/config"
	"storefront/internal/domain"
)

// asyncTask is one queued fire-and-forget delivery.
type asyncTask struct {
	channel string
	event   domain.StockEvent
}

// AsyncDispatcher fans stock alerts out through a bounded worker pool.
// Params: wrapped dispatcher, bounded queue, and worker group.
// Returns: non-blocking delivery so alert latency never stalls the tick loop.
type AsyncDispatcher struct {
	dispatcher *Dispatcher
	queue      chan asyncTask
	wg         sync.WaitGroup
	logger     *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewAsyncDispatcher starts the worker pool around one dispatcher.
// Params: dispatcher, async pool settings, and logger.
// Returns: running async dispatcher; Close drains and stops the pool.
func NewAsyncDispatcher(dispatcher *Dispatcher, cfg config.AsyncConfig, logger *slog.Logger) *AsyncDispatcher {
	async := &AsyncDispatcher{
		dispatcher: dispatcher,
		queue:      make(chan asyncTask, cfg.QueueSize),
		logger:     logger,
	}
	for i := 0; i < cfg.Workers; i++ {
		async.wg.Add(1)
		go async.worker()
	}
	return async
}

// Enqueue queues one delivery without blocking.
// Params: destination channel and event payload.
// Returns: false when the queue is full or closed; the event is dropped with a warning.
func (a *AsyncDispatcher) Enqueue(channel string, event domain.StockEvent) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return false
	}

	select {
	case a.queue <- asyncTask{channel: channel, event: event}:
		return true
	default:
		if a.logger != nil {
			a.logger.Warn("notify queue full, dropping event",
				"channel", channel,
				"product_id", event.ProductID,
				"kind", string(event.Kind))
		}
		return false
	}
}

// EnqueueAll queues one event for every configured channel.
// Params: event payload.
// Returns: number of channels the event was queued for.
func (a *AsyncDispatcher) EnqueueAll(event domain.StockEvent) int {
	queued := 0
	for _, channel := range a.dispatcher.Channels() {
		if a.Enqueue(channel, event) {
			queued++
		}
	}
	return queued
}

// Close stops intake, drains queued deliveries, and waits for workers.
// Params: none.
// Returns: nil after the pool has stopped.
func (a *AsyncDispatcher) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	a.wg.Wait()
	return nil
}

// worker delivers queued events until the queue closes.
// Params: none.
// Returns: exits when the queue is drained; delivery failures are logged, never retried here.
func (a *AsyncDispatcher) worker() {
	defer a.wg.Done()
	for task := range a.queue {
		if err := a.dispatcher.Send(context.Background(), task.channel, task.event); err != nil {
			if a.logger != nil {
				a.logger.Warn("notify delivery failed",
					"channel", task.channel,
					"product_id", task.event.ProductID,
					"kind", string(task.event.Kind),
					"error", err.Error())
			}
		}
	}
}
