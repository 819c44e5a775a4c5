package stocks

import (
	"context"
	"time"

	"tally/pkg/logger"
)

// SyncWorker refreshes daily prices for every watched symbol on a fixed
// interval. One pass runs at startup so a cold database fills immediately.
type SyncWorker struct {
	service  Service
	interval time.Duration
	done     chan struct{}
	logger   *logger.Logger
}

const defaultSyncInterval = 6 * time.Hour

func NewSyncWorker(service Service, interval time.Duration) *SyncWorker {
	if interval <= 0 {
		interval = defaultSyncInterval
	}
	return &SyncWorker{
		service:  service,
		interval: interval,
		done:     make(chan struct{}),
		logger:   logger.GetDefault(),
	}
}

// Start launches the sync loop. It returns immediately; the loop stops when
// ctx is cancelled or Stop is called.
func (w *SyncWorker) Start(ctx context.Context) {
	w.logger.Info("starting stock price sync worker", "interval", w.interval.String())
	go w.run(ctx)
}

// Stop ends the sync loop.
func (w *SyncWorker) Stop() {
	close(w.done)
	w.logger.Info("stock price sync worker stopped")
}

func (w *SyncWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.syncOnce(ctx)

	for {
		select {
		case <-ticker.C:
			w.syncOnce(ctx)
		case <-w.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (w *SyncWorker) syncOnce(ctx context.Context) {
	if err := w.service.SyncAll(ctx); err != nil {
		w.logger.WithError(err).Warn("stock price sync pass failed")
	}
}
