package http

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 60; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d denied, want first 60 allowed", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Error("request 61 allowed, want denied")
	}
}

func TestRateLimiterTracksClientsIndependently(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 61; i++ {
		rl.allow("10.0.0.1")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("second client denied by first client's usage")
	}
}

func TestRateLimiterCleanupRemovesStaleEntries(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	rl.allow("10.0.0.1")
	rl.mu.Lock()
	rl.clients["10.0.0.1"].lastRequest = time.Now().Add(-11 * time.Minute)
	rl.mu.Unlock()

	rl.cleanupStaleEntries()

	rl.mu.Lock()
	_, exists := rl.clients["10.0.0.1"]
	rl.mu.Unlock()
	if exists {
		t.Error("stale entry survived cleanup")
	}
}
