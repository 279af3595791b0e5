// nestegg-scheduler is the external timer collaborator: it periodically
// invokes the rate refresh with no response channel. Refresh failures are
// logged, never fatal.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"nestegg/internal/amqp"
	"nestegg/internal/config"
	applog "nestegg/internal/log"
	"nestegg/internal/rates"
	"nestegg/internal/storage"
	"nestegg/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: "scheduler"})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var events *amqp.Publisher
	if cfg.AMQPURL != "" {
		events, err = amqp.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without event publishing", "error", err)
			events = nil
		} else {
			defer events.Close()
		}
	}

	// A nil *amqp.Publisher must stay a nil interface inside the refresher.
	var ratesEvents rates.Publisher
	if events != nil {
		ratesEvents = events
	}
	refresher := rates.NewRefresher(rates.NewClient(cfg.RatesProviderURL), repo, ratesEvents)
	refreshWorker := worker.NewRefreshWorker(refresher, cfg.RatesRefreshInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting rate refresh scheduler",
		"interval", cfg.RatesRefreshInterval, "provider", cfg.RatesProviderURL)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return refreshWorker.Run(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Scheduler stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Scheduler stopped gracefully")
}
