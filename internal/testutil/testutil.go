// Package testutil provides testing utilities for Podium tests.
package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/podium/internal/debate"
	"github.com/Iron-Ham/podium/internal/event"
)

// NewSession creates a debate session and fails the test on error.
// An empty topic is replaced with a fixed one.
func NewSession(t *testing.T, cfg debate.Config, opts ...debate.Option) *debate.Session {
	t.Helper()

	if cfg.Topic == "" {
		cfg.Topic = "Social media does more harm than good"
	}
	s, err := debate.NewSession(cfg, opts...)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return s
}

// WriteFiles writes files (relative path to content) under a temporary
// directory and returns the directory.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for path, content := range files {
		fullPath := filepath.Join(dir, path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", path, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write file %s: %v", path, err)
		}
	}
	return dir
}

// WaitFor polls cond until it holds or timeout elapses.
func WaitFor(t *testing.T, timeout time.Duration, cond func() bool, format string, args ...any) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out: "+format, args...)
		}
		time.Sleep(time.Millisecond)
	}
}

// EventRecorder collects every event published on a bus.
type EventRecorder struct {
	mu     sync.Mutex
	events []event.Event
}

// RecordEvents subscribes a recorder to all events on bus. The
// subscription is removed when the test ends.
func RecordEvents(t *testing.T, bus *event.Bus) *EventRecorder {
	t.Helper()

	r := &EventRecorder{}
	id := bus.SubscribeAll(func(e event.Event) {
		r.mu.Lock()
		r.events = append(r.events, e)
		r.mu.Unlock()
	})
	t.Cleanup(func() { bus.Unsubscribe(id) })
	return r
}

// Events returns a copy of the recorded events.
func (r *EventRecorder) Events() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in publish order.
func (r *EventRecorder) Types() []string {
	events := r.Events()
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.EventType()
	}
	return types
}

// Count returns how many events of eventType were recorded.
func (r *EventRecorder) Count(eventType string) int {
	n := 0
	for _, e := range r.Events() {
		if e.EventType() == eventType {
			n++
		}
	}
	return n
}
