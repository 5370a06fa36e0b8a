package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewDevelopmentLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(true)
	if err != nil {
		t.Fatalf("New(true) error = %v", err)
	}
	if !logger.Core().Enabled(zap.DebugLevel) {
		t.Fatal("expected debug logging in development mode")
	}
	logger.Info("development logger ready")
}

func TestNewProductionLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(false)
	if err != nil {
		t.Fatalf("New(false) error = %v", err)
	}
	if logger.Core().Enabled(zap.DebugLevel) {
		t.Fatal("expected debug logging to be off in production mode")
	}
	logger.Info("production logger ready")
}

func TestForRun(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	ForRun(zap.New(core), "builder", "run-7").Info("season scraped")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0].LoggerName != "builder" {
		t.Fatalf("expected logger name builder, got %q", entries[0].LoggerName)
	}
	if got := entries[0].ContextMap()["run_id"]; got != "run-7" {
		t.Fatalf("expected run_id run-7, got %v", got)
	}

	ForRun(nil, "x", "y").Info("discarded")
}
