package worker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"nestegg/internal/core"
	"nestegg/internal/rates"
)

type countingStore struct {
	mu      sync.Mutex
	upserts int
}

func (s *countingStore) UpsertRate(context.Context, core.Currency, decimal.Decimal, time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	return nil
}

func (s *countingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts
}

func TestRunRefreshesImmediatelyAndStopsOnCancel(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"success","rates":{"CAD":1.36,"CNY":7.25}}`))
	}))
	defer provider.Close()

	store := &countingStore{}
	refresher := rates.NewRefresher(rates.NewClient(provider.URL), store, nil)
	w := NewRefreshWorker(refresher, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// The first refresh happens before the first tick.
	deadline := time.After(5 * time.Second)
	for store.count() < 2 {
		select {
		case <-deadline:
			t.Fatal("immediate refresh never happened")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRunSwallowsRefreshFailures(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer provider.Close()

	store := &countingStore{}
	refresher := rates.NewRefresher(rates.NewClient(provider.URL), store, nil)
	w := NewRefreshWorker(refresher, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := w.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run returned %v, want context.DeadlineExceeded", err)
	}
	if store.count() != 0 {
		t.Errorf("upserts = %d, want 0 when every fetch fails", store.count())
	}
}
