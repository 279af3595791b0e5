package rates

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"nestegg/internal/core"
)

// Store is the slice of the repository the refresher needs.
type Store interface {
	UpsertRate(ctx context.Context, currency core.Currency, rate decimal.Decimal, updatedAt time.Time) error
}

// Publisher receives a notification after a successful refresh. Implemented
// by the AMQP publisher; may be nil when eventing is disabled.
type Publisher interface {
	PublishRatesUpdated(ctx context.Context, cad, cny decimal.Decimal, updatedAt time.Time) error
}

// Refresher fetches current rates and overwrites the singleton rows. Invoked
// synchronously by the public endpoint and periodically by the scheduler.
type Refresher struct {
	client *Client
	store  Store
	events Publisher
	now    func() time.Time
}

func NewRefresher(client *Client, store Store, events Publisher) *Refresher {
	return &Refresher{client: client, store: store, events: events, now: time.Now}
}

// Refresh fetches and upserts both rates. On a fetch failure the stored rows
// are left untouched and the provider error is returned.
func (r *Refresher) Refresh(ctx context.Context) (core.RatePair, error) {
	cad, cny, err := r.client.Fetch(ctx)
	if err != nil {
		return core.RatePair{}, err
	}

	now := r.now()
	if err := r.store.UpsertRate(ctx, core.CAD, cad, now); err != nil {
		return core.RatePair{}, err
	}
	if err := r.store.UpsertRate(ctx, core.CNY, cny, now); err != nil {
		return core.RatePair{}, err
	}

	if r.events != nil {
		// Fire and forget: a broker outage must not fail the refresh.
		if err := r.events.PublishRatesUpdated(ctx, cad, cny, now); err != nil {
			slog.WarnContext(ctx, "Failed to publish rates.updated event", "error", err)
		}
	}

	slog.InfoContext(ctx, "Exchange rates refreshed", "cad", cad, "cny", cny)
	return core.RatePair{
		CAD: core.ExchangeRate{Currency: core.CAD, Rate: cad, UpdatedAt: now},
		CNY: core.ExchangeRate{Currency: core.CNY, Rate: cny, UpdatedAt: now},
	}, nil
}
