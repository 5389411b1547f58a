package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo)

	log.Info("transaction created", "transaction_id", "abc")
	log.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("expected JSON log line: %v", err)
	}
	if rec["msg"] != "transaction created" || rec["transaction_id"] != "abc" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFileCreatesParentAndClears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tmp", "log")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	t.Cleanup(func() { f.Close() })

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected log file to exist: %v", err)
	}

	log := New(f, slog.LevelInfo)
	log.Info("foo bar baz")

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "foo bar baz") {
		t.Fatalf("expected log line in file, got %q", data)
	}

	if err := f.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "" {
		t.Fatalf("expected empty file after clear, got %q", data)
	}

	log.Info("Logger test")
	data, _ = os.ReadFile(path)
	last := strings.TrimSpace(string(data))
	if !strings.HasPrefix(last, "{") || !strings.Contains(last, "Logger test") {
		t.Fatalf("expected fresh line after clear, got %q", data)
	}
}
