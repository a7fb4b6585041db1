package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]Level{
		"":        LevelInfo,
		"debug":   LevelDebug,
		"WARNING": LevelWarn,
		" error ": LevelError,
	}
	for raw, want := range cases {
		got, err := ParseLevel(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("unexpected level for %q: got=%v want=%v", raw, got, want)
		}
	}

	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLoggerFieldsAndNaming(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	logger := FromZap(zap.New(core)).Named("settlement").With("contest_id", "c-1")

	logger.Warn("slot skipped", "rank", 3, "amount", decimal.RequireFromString("12.50"), "error", errors.New("no team"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("unexpected entries: got=%d want=1", len(entries))
	}
	entry := entries[0]
	if entry.LoggerName != "settlement" {
		t.Fatalf("unexpected logger name: %q", entry.LoggerName)
	}
	fields := entry.ContextMap()
	if fields["contest_id"] != "c-1" {
		t.Fatalf("missing contest_id field: %#v", fields)
	}
	if fields["amount"] != "12.5" {
		t.Fatalf("unexpected amount field: %#v", fields["amount"])
	}
	if fields["error"] != "no team" {
		t.Fatalf("unexpected error field: %#v", fields["error"])
	}
}

func TestNewJSONWriterRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONWriter(&buf, LevelWarn)
	logger.Info("hidden")
	logger.Warn("visible", "match_id", "m-1")
	_ = logger.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %s", out)
	}
	if !strings.Contains(out, `"match_id":"m-1"`) {
		t.Fatalf("expected warn line with field, got %s", out)
	}
}

func TestNilLoggerFallsBack(t *testing.T) {
	t.Parallel()

	var logger *Logger
	logger.Info("no panic")
	if logger.With("k", "v") == nil {
		t.Fatalf("expected non-nil logger from nil receiver")
	}
}
