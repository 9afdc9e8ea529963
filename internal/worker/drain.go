package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Drainer exposes the queue drain used by the background worker.
type Drainer interface {
	Drain(ctx context.Context) (int, error)
}

// DrainWorker periodically drains the inbound queue. It is disabled when the
// interval is not positive.
type DrainWorker struct {
	drainer  Drainer
	interval time.Duration
	logger   *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewDrainWorker constructs DrainWorker.
func NewDrainWorker(drainer Drainer, interval time.Duration, logger *slog.Logger) *DrainWorker {
	return &DrainWorker{drainer: drainer, interval: interval, logger: logger}
}

// Enabled reports whether Start launches a background loop.
func (w *DrainWorker) Enabled() bool {
	return w.interval > 0
}

// Start launches background draining.
func (w *DrainWorker) Start(ctx context.Context) {
	if !w.Enabled() {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go w.loop(runCtx)
}

// Stop waits for the current drain to finish.
func (w *DrainWorker) Stop() {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *DrainWorker) loop(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drainOnce(ctx)
		}
	}
}

func (w *DrainWorker) drainOnce(ctx context.Context) {
	fetched, err := w.drainer.Drain(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("background drain failed", slog.String("error", err.Error()))
		}
		return
	}
	if fetched > 0 {
		w.logger.Info("background drain completed", slog.Int("fetched", fetched))
	}
}
