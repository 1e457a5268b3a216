// Package event defines event types for decoupling components in podium.
// The debate core publishes these so the TUI, the arena and the transcript
// recorder can react without the core depending on them.
package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "speech.appended").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeDebateStarted        = "debate.started"
	TypeSpeechAppended       = "speech.appended"
	TypeDebateCompleted      = "debate.completed"
	TypeAutoplayStateChanged = "autoplay.state_changed"
	TypeGenerationFailed     = "generation.failed"
)

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Session Events
// -----------------------------------------------------------------------------

// DebateStartedEvent is emitted once when a session is created.
type DebateStartedEvent struct {
	baseEvent
	SessionID string
	Topic     string
	Format    string
	Mode      string
	Total     int // number of speeches the format allows
}

// NewDebateStartedEvent creates a DebateStartedEvent.
func NewDebateStartedEvent(sessionID, topic, format, mode string, total int) DebateStartedEvent {
	return DebateStartedEvent{
		baseEvent: newBaseEvent(TypeDebateStarted),
		SessionID: sessionID,
		Topic:     topic,
		Format:    format,
		Mode:      mode,
		Total:     total,
	}
}

// SpeechAppendedEvent is emitted after the ledger accepts a speech.
type SpeechAppendedEvent struct {
	baseEvent
	SessionID string
	Index     int
	Side      string
	Label     string
	Round     int
	Source    string
	Text      string
}

// NewSpeechAppendedEvent creates a SpeechAppendedEvent.
func NewSpeechAppendedEvent(sessionID string, index int, side, label string, round int, source, text string) SpeechAppendedEvent {
	return SpeechAppendedEvent{
		baseEvent: newBaseEvent(TypeSpeechAppended),
		SessionID: sessionID,
		Index:     index,
		Side:      side,
		Label:     label,
		Round:     round,
		Source:    source,
		Text:      text,
	}
}

// DebateCompletedEvent is emitted when the final speech is appended.
type DebateCompletedEvent struct {
	baseEvent
	SessionID string
	Speeches  int
}

// NewDebateCompletedEvent creates a DebateCompletedEvent.
func NewDebateCompletedEvent(sessionID string, speeches int) DebateCompletedEvent {
	return DebateCompletedEvent{
		baseEvent: newBaseEvent(TypeDebateCompleted),
		SessionID: sessionID,
		Speeches:  speeches,
	}
}

// -----------------------------------------------------------------------------
// Autoplay Events
// -----------------------------------------------------------------------------

// AutoplayStateChangedEvent is emitted on every autoplay driver transition.
type AutoplayStateChangedEvent struct {
	baseEvent
	SessionID string
	From      string
	To        string
	Epoch     uint64
}

// NewAutoplayStateChangedEvent creates an AutoplayStateChangedEvent.
func NewAutoplayStateChangedEvent(sessionID, from, to string, epoch uint64) AutoplayStateChangedEvent {
	return AutoplayStateChangedEvent{
		baseEvent: newBaseEvent(TypeAutoplayStateChanged),
		SessionID: sessionID,
		From:      from,
		To:        to,
		Epoch:     epoch,
	}
}

// GenerationFailedEvent is emitted when the text generator returns an error.
type GenerationFailedEvent struct {
	baseEvent
	SessionID string
	Index     int
	Side      string
	Err       error
}

// NewGenerationFailedEvent creates a GenerationFailedEvent.
func NewGenerationFailedEvent(sessionID string, index int, side string, err error) GenerationFailedEvent {
	return GenerationFailedEvent{
		baseEvent: newBaseEvent(TypeGenerationFailed),
		SessionID: sessionID,
		Index:     index,
		Side:      side,
		Err:       err,
	}
}
