package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger(component string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:     slog.LevelInfo,
		Component: component,
		Handler:   slog.NewTextHandler(&buf, nil),
	})
	return logger, &buf
}

func TestInfoCarriesComponent(t *testing.T) {
	logger, buf := newBufferLogger("storage")

	logger.Info("record saved", "id", 7)

	out := buf.String()
	if !strings.Contains(out, "component=storage") {
		t.Errorf("output missing component attribute: %q", out)
	}
	if !strings.Contains(out, "id=7") {
		t.Errorf("output missing caller attribute: %q", out)
	}
}

func TestWithComponent(t *testing.T) {
	logger, buf := newBufferLogger("server")

	logger.WithComponent("worker").Warn("refresh failed")

	if !strings.Contains(buf.String(), "component=worker") {
		t.Errorf("output = %q, want component=worker", buf.String())
	}
}

func TestSetDefaultCarriesComponent(t *testing.T) {
	logger, buf := newBufferLogger("server")

	prev := slog.Default()
	defer slog.SetDefault(prev)
	SetDefault(logger)

	// Package-level call sites must pick up the component too.
	slog.Info("request started")

	if !strings.Contains(buf.String(), "component=server") {
		t.Errorf("default logger output missing component: %q", buf.String())
	}
}
