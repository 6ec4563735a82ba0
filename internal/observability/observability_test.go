package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"sales-dashboard/internal/config"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LoggerConfig{Level: "warn", Format: "json"})

	logger.Info("dropped")
	logger.Warn("kept", "rows", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "kept" || entry["service"] != serviceName {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"loud":    slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestStartSpan_Nesting(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")

	ctx, parent := StartSpan(ctx, "GET /")
	if parent.TraceID != "req-1" {
		t.Errorf("root span should reuse the request id, got %q", parent.TraceID)
	}

	_, child := StartSpan(ctx, "dataset.load")
	if child.TraceID != parent.TraceID || child.ParentID != parent.SpanID {
		t.Errorf("child span not linked to parent: %+v", child)
	}
	if child.SpanID == parent.SpanID || len(child.SpanID) != 16 {
		t.Errorf("unexpected span id %q", child.SpanID)
	}
}

func TestTrace_RecordsError(t *testing.T) {
	boom := errors.New("boom")
	var seen *Span

	err := Trace(context.Background(), DiscardLogger(), "catalog.write", func(ctx context.Context, span *Span) error {
		seen = span
		if GetSpan(ctx) != span {
			t.Error("fn should receive the span in its context")
		}
		return boom
	})

	if !errors.Is(err, boom) {
		t.Errorf("expected error to pass through, got %v", err)
	}
	if seen.Status != SpanStatusError || seen.Error != "boom" {
		t.Errorf("span did not record the error: %+v", seen)
	}
}
