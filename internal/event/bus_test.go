package event

import (
	"errors"
	"sync"
	"testing"
)

func TestBus_Publish(t *testing.T) {
	bus := NewBus()

	var got Event
	id := bus.Subscribe(TypeSpeechAppended, func(e Event) {
		got = e
	})
	if id == "" {
		t.Fatal("Subscribe should return a non-empty ID")
	}

	bus.Publish(NewSpeechAppendedEvent("s-1", 0, "side_a", "Round 1", 1, "echo", "opening"))

	appended, ok := got.(SpeechAppendedEvent)
	if !ok {
		t.Fatalf("handler received %T, want SpeechAppendedEvent", got)
	}
	if appended.EventType() != TypeSpeechAppended {
		t.Errorf("EventType() = %q, want %q", appended.EventType(), TypeSpeechAppended)
	}
	if appended.Label != "Round 1" || appended.Side != "side_a" {
		t.Errorf("unexpected payload: %+v", appended)
	}
	if appended.Timestamp().IsZero() {
		t.Error("Timestamp() should be set")
	}
}

func TestBus_PublishNoMatchingHandlers(t *testing.T) {
	bus := NewBus()

	bus.Subscribe(TypeDebateCompleted, func(e Event) {
		t.Error("handler should not be called for a different event type")
	})

	bus.Publish(NewDebateStartedEvent("s-1", "topic", "default", "both_automated", 10))
}

func TestBus_SpecificBeforeWildcard(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.SubscribeAll(func(e Event) {
		order = append(order, "wildcard:"+e.EventType())
	})
	bus.Subscribe(TypeDebateCompleted, func(e Event) {
		order = append(order, "specific:"+e.EventType())
	})

	bus.Publish(NewDebateCompletedEvent("s-1", 10))

	want := []string{"specific:debate.completed", "wildcard:debate.completed"}
	if len(order) != len(want) {
		t.Fatalf("got %d calls, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	calls := make(map[string]int)
	first := bus.Subscribe("test.event", func(e Event) { calls["first"]++ })
	bus.Subscribe("test.event", func(e Event) { calls["second"]++ })

	if !bus.Unsubscribe(first) {
		t.Error("Unsubscribe should return true for an existing subscription")
	}
	if bus.Unsubscribe(first) {
		t.Error("Unsubscribe should return false the second time")
	}
	if bus.Unsubscribe("sub-missing") {
		t.Error("Unsubscribe should return false for an unknown ID")
	}

	bus.Publish(newBaseEvent("test.event"))

	if calls["first"] != 0 || calls["second"] != 1 {
		t.Errorf("calls = %v, want first=0 second=1", calls)
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", bus.SubscriptionCount())
	}
}

func TestBus_Clear(t *testing.T) {
	bus := NewBus()
	bus.Subscribe("event.one", func(e Event) {})
	bus.Subscribe("event.two", func(e Event) {})
	bus.SubscribeAll(func(e Event) {})

	if bus.SubscriptionCount() != 3 {
		t.Fatalf("SubscriptionCount() = %d, want 3", bus.SubscriptionCount())
	}
	bus.Clear()
	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() after Clear = %d, want 0", bus.SubscriptionCount())
	}
}

func TestBus_HandlerPanicRecovery(t *testing.T) {
	bus := NewBus()

	var recovered any
	var panickedOn string
	bus.SetPanicHandler(func(e Event, r any, stack []byte) {
		recovered = r
		panickedOn = e.EventType()
		if len(stack) == 0 {
			t.Error("panic handler should receive a stack")
		}
	})

	calls := 0
	bus.Subscribe("test.event", func(e Event) {
		calls++
		panic("handler panic")
	})
	bus.Subscribe("test.event", func(e Event) {
		calls++
	})

	bus.Publish(newBaseEvent("test.event"))

	if calls != 2 {
		t.Errorf("got %d calls, want both handlers to run despite the panic", calls)
	}
	if recovered != "handler panic" {
		t.Errorf("recovered = %v, want %q", recovered, "handler panic")
	}
	if panickedOn != "test.event" {
		t.Errorf("panic reported for %q", panickedOn)
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	calls := 0
	bus.Subscribe(TypeAutoplayStateChanged, func(e Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range 100 {
		wg.Go(func() {
			bus.Publish(NewAutoplayStateChangedEvent("s-1", "armed", "awaiting_result", 1))
		})
	}
	wg.Wait()

	if calls != 100 {
		t.Errorf("got %d calls, want 100", calls)
	}
}

func TestBus_ConcurrentSubscribeUnsubscribe(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			id := bus.Subscribe("test.event", func(e Event) {})
			bus.Unsubscribe(id)
		})
	}
	wg.Wait()

	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", bus.SubscriptionCount())
	}
}

func TestBus_UniqueIDs(t *testing.T) {
	bus := NewBus()

	ids := make(map[string]bool)
	for range 100 {
		id := bus.Subscribe("test.event", func(e Event) {})
		if ids[id] {
			t.Errorf("duplicate subscription ID: %s", id)
		}
		ids[id] = true
	}
}

func TestEventConstructors(t *testing.T) {
	cause := errors.New("backend down")
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{"started", NewDebateStartedEvent("s", "t", "default", "both_automated", 10), TypeDebateStarted},
		{"appended", NewSpeechAppendedEvent("s", 0, "side_a", "AC", 1, "", "x"), TypeSpeechAppended},
		{"completed", NewDebateCompletedEvent("s", 5), TypeDebateCompleted},
		{"autoplay", NewAutoplayStateChangedEvent("s", "idle", "armed", 1), TypeAutoplayStateChanged},
		{"failed", NewGenerationFailedEvent("s", 3, "side_b", cause), TypeGenerationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.event.EventType() != tt.want {
				t.Errorf("EventType() = %q, want %q", tt.event.EventType(), tt.want)
			}
		})
	}

	failed := NewGenerationFailedEvent("s", 3, "side_b", cause)
	if !errors.Is(failed.Err, cause) {
		t.Error("GenerationFailedEvent should carry the cause")
	}
}
