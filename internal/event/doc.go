// Package event provides a pub-sub event bus for decoupled communication
// between the debate core and whatever renders, records or relays it.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub event dispatcher with thread-safe operations
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Event Categories
//
// Session:
//   - [DebateStartedEvent]: a session was created
//   - [SpeechAppendedEvent]: the ledger accepted a speech
//   - [DebateCompletedEvent]: the final speech was appended
//
// Autoplay:
//   - [AutoplayStateChangedEvent]: the driver moved between states
//   - [GenerationFailedEvent]: the text generator returned an error
//
// # Thread Safety
//
// The [Bus] is safe for concurrent use. Handlers run synchronously on the
// publishing goroutine, which for autoplay may be a timer or generation
// goroutine. A panicking handler is recovered and does not prevent other
// handlers from being called.
//
// # Basic Usage
//
//	bus := event.NewBus()
//
//	bus.Subscribe(event.TypeSpeechAppended, func(e event.Event) {
//	    s := e.(event.SpeechAppendedEvent)
//	    fmt.Printf("%s (%s): %s\n", s.Label, s.Side, s.Text)
//	})
//
//	bus.SubscribeAll(func(e event.Event) {
//	    logger.Debug("event", "type", e.EventType())
//	})
package event
