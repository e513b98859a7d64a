package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"  info  ", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComponentAttribute(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithHandler(slog.NewJSONHandler(&buf, nil))

	l.Component("ledger").Info("recorded", "epoch", 7)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["component"] != "ledger" {
		t.Fatalf("expected component=ledger, got %v", entry["component"])
	}
	if entry["msg"] != "recorded" {
		t.Fatalf("expected msg=recorded, got %v", entry["msg"])
	}
}

func TestDiscardProducesNothing(t *testing.T) {
	// Must not panic and must drop everything silently.
	l := Discard()
	l.Debug("a")
	l.Info("b")
	l.Warn("c")
	l.Error("d")
	l.With("k", "v").Component("x").Info("e")
}
