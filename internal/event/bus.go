package event

import (
	"log"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"
)

// Handler is a function that handles an event.
type Handler func(Event)

// PanicHandler receives a recovered handler panic together with its stack.
type PanicHandler func(e Event, recovered any, stack []byte)

// wildcard is the subscription key used by SubscribeAll.
const wildcard = "*"

type subscription struct {
	id        string
	eventType string
	handler   Handler
}

// Bus is a simple synchronous pub-sub event bus.
// It lets the debate core announce appended speeches, completion and
// autoplay transitions without knowing who renders or records them.
type Bus struct {
	mu            sync.RWMutex
	subscriptions map[string][]subscription // eventType -> subscriptions
	onPanic       PanicHandler
	nextID        atomic.Uint64
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subscriptions: make(map[string][]subscription),
	}
}

// SetPanicHandler replaces the default panic reporter (the standard logger).
func (b *Bus) SetPanicHandler(h PanicHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onPanic = h
}

// Subscribe registers a handler for a specific event type.
// Returns a subscription ID that can be used to unsubscribe.
func (b *Bus) Subscribe(eventType string, handler Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := "sub-" + strconv.FormatUint(b.nextID.Add(1), 10)
	b.subscriptions[eventType] = append(b.subscriptions[eventType], subscription{
		id:        id,
		eventType: eventType,
		handler:   handler,
	})
	return id
}

// SubscribeAll registers a handler for all event types.
func (b *Bus) SubscribeAll(handler Handler) string {
	return b.Subscribe(wildcard, handler)
}

// Unsubscribe removes a subscription by ID.
// Returns true if the subscription was found and removed.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subscriptions {
		for i, sub := range subs {
			if sub.id != id {
				continue
			}
			remaining := make([]subscription, 0, len(subs)-1)
			remaining = append(remaining, subs[:i]...)
			remaining = append(remaining, subs[i+1:]...)
			if len(remaining) == 0 {
				delete(b.subscriptions, eventType)
			} else {
				b.subscriptions[eventType] = remaining
			}
			return true
		}
	}
	return false
}

// Publish dispatches an event to all registered handlers.
// Specific handlers run first, then wildcard handlers, each group in
// registration order. Handlers run on the publisher's goroutine. A panicking
// handler is recovered and reported; remaining handlers still run.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	specific := append([]subscription(nil), b.subscriptions[e.EventType()]...)
	wild := append([]subscription(nil), b.subscriptions[wildcard]...)
	onPanic := b.onPanic
	b.mu.RUnlock()

	for _, sub := range specific {
		safeCall(sub.handler, e, onPanic)
	}
	for _, sub := range wild {
		safeCall(sub.handler, e, onPanic)
	}
}

func safeCall(handler Handler, e Event, onPanic PanicHandler) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		stack := debug.Stack()
		if onPanic != nil {
			onPanic(e, r, stack)
			return
		}
		log.Printf("ERROR: event handler panicked for event %s: %v\n%s", e.EventType(), r, stack)
	}()
	handler(e)
}

// Clear removes all subscriptions.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions = make(map[string][]subscription)
}

// SubscriptionCount returns the total number of active subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, subs := range b.subscriptions {
		count += len(subs)
	}
	return count
}
