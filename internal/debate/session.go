package debate

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/podium/internal/errors"
	"github.com/Iron-Ham/podium/internal/event"
)

// Config describes a debate to set up. Zero Format, Mode and Order fall
// back to FormatDefault, ModeBothAutomated and OrderAFirst.
type Config struct {
	// ID is optional; a random UUID is used when empty.
	ID     string
	Topic  string
	Format Format
	Mode   Mode
	Order  SpeakingOrder

	// HumanSide is required in human-vs-automated mode and ignored otherwise.
	HumanSide Side

	// Participants names the speaker on each side. Missing names default to
	// the format's side display name.
	Participants map[Side]string
}

// Option configures optional Session collaborators.
type Option func(*Session)

// WithBus publishes session events to bus.
func WithBus(bus *event.Bus) Option {
	return func(s *Session) { s.bus = bus }
}

// WithClock overrides time.Now for speech timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session is one debate: its immutable setup plus the append-only speech
// ledger. It is safe for concurrent use; events are published after the
// lock is released so handlers may call back into the session.
type Session struct {
	id           string
	topic        string
	policy       Policy
	mode         Mode
	humanSide    Side
	participants map[Side]string
	createdAt    time.Time

	bus *event.Bus
	now func() time.Time

	mu       sync.RWMutex
	speeches []Speech
	autoplay bool
}

// NewSession validates cfg and creates a session. Malformed configuration
// fails here with a *errors.ValidationError rather than at the first turn.
func NewSession(cfg Config, opts ...Option) (*Session, error) {
	topic := strings.TrimSpace(cfg.Topic)
	if topic == "" {
		return nil, errors.NewValidationError("topic is required").WithField("topic")
	}

	format := cfg.Format
	if format == "" {
		format = FormatDefault
	}
	policy, err := PolicyFor(format, cfg.Order)
	if err != nil {
		return nil, err
	}

	mode := cfg.Mode
	if mode == "" {
		mode = ModeBothAutomated
	}
	if !mode.Valid() {
		return nil, errors.NewValidationError("unknown debate mode").
			WithField("mode").WithValue(string(mode))
	}

	var human Side
	if mode == ModeHumanVsAutomated {
		if !cfg.HumanSide.Valid() {
			return nil, errors.NewValidationError("human side must be side_a or side_b in human_vs_automated mode").
				WithField("human_side").WithValue(string(cfg.HumanSide))
		}
		human = cfg.HumanSide
	}

	s := &Session{
		id:           cfg.ID,
		topic:        topic,
		policy:       policy,
		mode:         mode,
		humanSide:    human,
		participants: make(map[Side]string, 2),
		now:          time.Now,
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	for _, side := range []Side{SideA, SideB} {
		name := strings.TrimSpace(cfg.Participants[side])
		if name == "" {
			name = SideName(format, side)
		}
		s.participants[side] = name
	}
	for _, opt := range opts {
		opt(s)
	}
	s.createdAt = s.now()
	s.speeches = make([]Speech, 0, policy.TotalSpeeches())

	if s.bus != nil {
		s.bus.Publish(event.NewDebateStartedEvent(s.id, s.topic, string(format), string(mode), policy.TotalSpeeches()))
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Topic returns the resolution being debated.
func (s *Session) Topic() string { return s.topic }

// Format returns the session's format.
func (s *Session) Format() Format { return s.policy.Format() }

// Mode returns the session's mode.
func (s *Session) Mode() Mode { return s.mode }

// Order returns the speaking order.
func (s *Session) Order() SpeakingOrder { return s.policy.Order() }

// Policy returns the session's format policy.
func (s *Session) Policy() Policy { return s.policy }

// HumanSide returns the human's side in human-vs-automated mode, or "".
func (s *Session) HumanSide() Side { return s.humanSide }

// Participant returns the display name of the speaker on side.
func (s *Session) Participant(side Side) string { return s.participants[side] }

// SideName returns the format's display name for side.
func (s *Session) SideName(side Side) string { return SideName(s.Format(), side) }

// Bus returns the event bus the session publishes to, which may be nil.
func (s *Session) Bus() *event.Bus { return s.bus }

// Turn returns the current turn.
func (s *Session) Turn() Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return resolveTurn(s.policy, s.mode, s.humanSide, len(s.speeches))
}

// Len returns the number of speeches delivered so far.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.speeches)
}

// IsComplete reports whether the ledger holds every speech of the format.
// Once true it stays true.
func (s *Session) IsComplete() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.speeches) >= s.policy.TotalSpeeches()
}

// Speeches returns a copy of the ledger in delivery order.
func (s *Session) Speeches() []Speech {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Speech, len(s.speeches))
	copy(out, s.speeches)
	return out
}

// NextMetadata returns format metadata for the next speech. It fails with
// an OutOfRange error once the debate is complete.
func (s *Session) NextMetadata() (SpeechMetadata, error) {
	return s.policy.Metadata(s.Len())
}

// Append adds the next speech to the ledger. side must be the side the
// format schedules at the current position; anything else is rejected with
// a *errors.TurnError and the ledger is left untouched. Appending to a
// complete ledger fails with a *errors.RangeError.
func (s *Session) Append(side Side, text, source string) (Speech, error) {
	s.mu.Lock()
	speech, completed, err := s.appendLocked(side, text, source)
	s.mu.Unlock()
	if err != nil {
		return Speech{}, err
	}
	s.publishAppended(speech, completed)
	return speech, nil
}

// AppendAt is Append conditioned on the ledger holding exactly index
// speeches. A result computed for an earlier position fails with an error
// matching errors.ErrStaleResult and is not appended.
func (s *Session) AppendAt(index int, side Side, text, source string) (Speech, error) {
	speech, publish, err := s.AppendAtDeferred(index, side, text, source)
	if err != nil {
		return Speech{}, err
	}
	publish()
	return speech, nil
}

// AppendAtDeferred is AppendAt without publishing. The caller runs the
// returned publish func once it has released its own locks; it is nil when
// err is not.
func (s *Session) AppendAtDeferred(index int, side Side, text, source string) (Speech, func(), error) {
	s.mu.Lock()
	if n := len(s.speeches); n != index {
		s.mu.Unlock()
		return Speech{}, nil, fmt.Errorf("%w: speech %d offered at ledger length %d", errors.ErrStaleResult, index, n)
	}
	speech, completed, err := s.appendLocked(side, text, source)
	s.mu.Unlock()
	if err != nil {
		return Speech{}, nil, err
	}
	return speech, func() { s.publishAppended(speech, completed) }, nil
}

// SubmitHuman appends a speech typed by the human seated on side. It is
// rejected with a *errors.TurnError unless the mode lets that human speak
// right now. The participant's name is recorded as the speech source.
func (s *Session) SubmitHuman(side Side, text string) (Speech, error) {
	if strings.TrimSpace(text) == "" {
		return Speech{}, errors.NewValidationError("speech text is empty").WithField("text")
	}

	s.mu.Lock()
	n := len(s.speeches)
	t := resolveTurn(s.policy, s.mode, s.humanSide, n)
	var err error
	switch {
	case t.Complete:
		err = errors.NewRangeError(n, s.policy.TotalSpeeches())
	case s.mode == ModeBothAutomated:
		err = errors.NewTurnError(n, string(t.Expected), string(side)).
			WithMessage("no human participates in a both_automated debate")
	case s.mode == ModeHumanVsAutomated && side != s.humanSide:
		err = errors.NewTurnError(n, string(s.humanSide), string(side)).
			WithMessage("side is not bound to the human participant")
	case side != t.Expected:
		err = errors.NewTurnError(n, string(t.Expected), string(side))
	}
	if err != nil {
		s.mu.Unlock()
		return Speech{}, err
	}
	speech, completed, err := s.appendLocked(side, text, s.participants[side])
	s.mu.Unlock()
	if err != nil {
		return Speech{}, err
	}
	s.publishAppended(speech, completed)
	return speech, nil
}

// appendLocked requires s.mu held for writing.
func (s *Session) appendLocked(side Side, text, source string) (Speech, bool, error) {
	n := len(s.speeches)
	total := s.policy.TotalSpeeches()
	if n >= total {
		return Speech{}, false, errors.NewRangeError(n, total)
	}
	expected, _ := s.policy.SideFor(n)
	if side != expected {
		return Speech{}, false, errors.NewTurnError(n, string(expected), string(side))
	}
	md, _ := s.policy.Metadata(n)

	speech := Speech{
		Index:     n,
		Side:      side,
		Text:      text,
		Source:    source,
		Round:     md.Round,
		Label:     md.Label,
		CreatedAt: s.now(),
	}
	s.speeches = append(s.speeches, speech)
	return speech, len(s.speeches) == total, nil
}

func (s *Session) publishAppended(sp Speech, completed bool) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event.NewSpeechAppendedEvent(s.id, sp.Index, string(sp.Side), sp.Label, sp.Round, sp.Source, sp.Text))
	if completed {
		s.bus.Publish(event.NewDebateCompletedEvent(s.id, sp.Index+1))
	}
}

// SetAutoplayActive records whether an autoplay driver is running.
func (s *Session) SetAutoplayActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoplay = active
}

// AutoplayActive reports whether an autoplay driver is running.
func (s *Session) AutoplayActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autoplay
}

// Snapshot returns a read-only copy of the session for export.
func (s *Session) Snapshot() Transcript {
	s.mu.RLock()
	defer s.mu.RUnlock()

	speeches := make([]Speech, len(s.speeches))
	copy(speeches, s.speeches)
	participants := make(map[Side]string, len(s.participants))
	for k, v := range s.participants {
		participants[k] = v
	}
	return Transcript{
		ID:            s.id,
		Topic:         s.topic,
		Format:        s.policy.Format(),
		Mode:          s.mode,
		SpeakingOrder: s.policy.Order(),
		HumanSide:     s.humanSide,
		Participants:  participants,
		TotalSpeeches: s.policy.TotalSpeeches(),
		Complete:      len(s.speeches) >= s.policy.TotalSpeeches(),
		Speeches:      speeches,
		CreatedAt:     s.createdAt,
	}
}
