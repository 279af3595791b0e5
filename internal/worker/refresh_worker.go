// Package worker drives the scheduled exchange-rate refresh. There is no
// caller to report to, so failures are logged and swallowed; the next tick
// simply tries again.
package worker

import (
	"context"
	"log/slog"
	"time"

	"nestegg/internal/rates"
)

type RefreshWorker struct {
	refresher *rates.Refresher
	interval  time.Duration
}

func NewRefreshWorker(refresher *rates.Refresher, interval time.Duration) *RefreshWorker {
	return &RefreshWorker{refresher: refresher, interval: interval}
}

// Run refreshes immediately, then on every tick until the context is
// cancelled.
func (w *RefreshWorker) Run(ctx context.Context) error {
	w.refreshOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping rate refresh worker", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			w.refreshOnce(ctx)
		}
	}
}

func (w *RefreshWorker) refreshOnce(ctx context.Context) {
	pair, err := w.refresher.Refresh(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Scheduled rate refresh failed", "error", err)
		return
	}
	slog.InfoContext(ctx, "Scheduled rate refresh completed",
		"cad", pair.CAD.Rate, "cny", pair.CNY.Rate)
}
