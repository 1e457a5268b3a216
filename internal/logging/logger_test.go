package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func decodeLines(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestNewLogger(t *testing.T) {
	t.Run("creates debug.log in the directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested")

		logger, err := NewLogger(dir, LevelDebug)
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}
		logger.Info("hello")
		if err := logger.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		data, err := os.ReadFile(filepath.Join(dir, FileName))
		if err != nil {
			t.Fatalf("reading log file: %v", err)
		}
		entries := decodeLines(t, data)
		if len(entries) != 1 || entries[0]["msg"] != "hello" {
			t.Errorf("unexpected entries: %v", entries)
		}
	})

	t.Run("stderr logger closes without error", func(t *testing.T) {
		logger, err := NewLogger("", LevelInfo)
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}
		if err := logger.Close(); err != nil {
			t.Errorf("Close() = %v, want nil", err)
		}
	})
}

func TestLogLevelFiltering(t *testing.T) {
	tests := []struct {
		level string
		want  []string
	}{
		{LevelDebug, []string{"d", "i", "w", "e"}},
		{LevelInfo, []string{"i", "w", "e"}},
		{LevelWarn, []string{"w", "e"}},
		{LevelError, []string{"e"}},
		{"bogus", []string{"i", "w", "e"}},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewWriterLogger(&buf, tt.level)
			logger.Debug("d")
			logger.Info("i")
			logger.Warn("w")
			logger.Error("e")

			entries := decodeLines(t, buf.Bytes())
			if len(entries) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(entries), len(tt.want))
			}
			for i, msg := range tt.want {
				if entries[i]["msg"] != msg {
					t.Errorf("entry %d msg = %v, want %q", i, entries[i]["msg"], msg)
				}
			}
		})
	}
}

func TestChildLoggers(t *testing.T) {
	var buf bytes.Buffer
	root := NewWriterLogger(&buf, LevelDebug)

	child := root.WithSession("sess-1").WithSide("side_a").WithPhase("autoplay").With("epoch", 3, 42, "dropped")
	child.Info("scheduled", "index", 4)
	root.Info("plain")

	entries := decodeLines(t, buf.Bytes())
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	first := entries[0]
	checks := map[string]any{
		"session_id": "sess-1",
		"side":       "side_a",
		"phase":      "autoplay",
		"epoch":      float64(3),
		"index":      float64(4),
	}
	for key, want := range checks {
		if first[key] != want {
			t.Errorf("%s = %v, want %v", key, first[key], want)
		}
	}

	if _, ok := entries[1]["session_id"]; ok {
		t.Error("parent logger should not inherit child attributes")
	}
}

func TestWith_NoArgsReturnsSameLogger(t *testing.T) {
	logger := NopLogger()
	if logger.With() != logger {
		t.Error("With() without args should return the receiver")
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	logger.Debug("x")
	logger.Error("y", "k", "v")
	if err := logger.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{" warn ", LevelWarn},
		{"warning", LevelWarn},
		{"Error", LevelError},
		{"", LevelInfo},
		{"trace", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	if IsValidLevel("trace") {
		t.Error("IsValidLevel(trace) = true")
	}
	for _, l := range ValidLevels() {
		if !IsValidLevel(strings.ToLower(l)) {
			t.Errorf("IsValidLevel(%q) = false", l)
		}
	}
}

func TestCloseTwice(t *testing.T) {
	logger, err := NewLogger(t.TempDir(), LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	child := logger.WithSession("s")
	if err := logger.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := child.Close(); err != nil {
		t.Errorf("child Close after parent: %v", err)
	}
}

func TestConcurrentWrites(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Go(func() {
			l := logger.With("worker", i)
			for range 10 {
				l.Info("tick")
			}
		})
	}
	wg.Wait()
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	if got := len(decodeLines(t, data)); got != 200 {
		t.Errorf("got %d lines, want 200", got)
	}
}
