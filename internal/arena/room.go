package arena

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/podium/internal/debate"
	"github.com/Iron-Ham/podium/internal/errors"
	"github.com/Iron-Ham/podium/internal/event"
	"github.com/Iron-Ham/podium/internal/logging"
)

// Conn is the part of a websocket connection a room writes to.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Reader is the part of a websocket connection a seat reads from.
type Reader interface {
	ReadMessage() (messageType int, p []byte, err error)
}

// Client is one connection seated in a room, either at a side or watching.
type Client struct {
	ID   string
	Name string
	Side string

	conn Conn
	mu   sync.Mutex
	// since is the number of speeches the welcome transcript carried.
	since int
}

// Send writes f to the client. Writes are serialized per connection.
func (c *Client) Send(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(f)
}

// Room is a human_vs_human debate whose two sides are websocket
// connections. Spectators may watch.
type Room struct {
	id             string
	session        *debate.Session
	logger         *logging.Logger
	maxSpeechBytes int
	createdAt      time.Time

	mu       sync.Mutex
	seats    map[debate.Side]*Client
	watchers map[string]*Client

	// release frees the room's hub slot; it runs at most once.
	release     func()
	releaseOnce sync.Once
}

func newRoom(cfg debate.Config, maxSpeechBytes int, logger *logging.Logger) (*Room, error) {
	cfg.ID = uuid.NewString()
	cfg.Mode = debate.ModeHumanVsHuman
	cfg.HumanSide = ""

	bus := event.NewBus()
	session, err := debate.NewSession(cfg, debate.WithBus(bus))
	if err != nil {
		return nil, err
	}
	r := &Room{
		id:             session.ID(),
		session:        session,
		logger:         logger.WithSession(session.ID()).WithPhase("arena"),
		maxSpeechBytes: maxSpeechBytes,
		createdAt:      time.Now(),
		seats:          make(map[debate.Side]*Client, 2),
		watchers:       make(map[string]*Client),
	}
	bus.SetPanicHandler(func(e event.Event, recovered any, _ []byte) {
		r.logger.Error("event handler panicked", "event", e.EventType(), "panic", recovered)
	})
	bus.Subscribe(event.TypeSpeechAppended, r.onSpeech)
	bus.Subscribe(event.TypeDebateCompleted, r.onComplete)
	return r, nil
}

// ID returns the room identifier, which is also the session ID.
func (r *Room) ID() string { return r.id }

// Session returns the room's debate session.
func (r *Room) Session() *debate.Session { return r.session }

// Occupied reports which sides hold a connection.
func (r *Room) Occupied() map[debate.Side]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[debate.Side]bool, 2)
	for side := range r.seats {
		out[side] = true
	}
	return out
}

// Watchers returns the number of spectators.
func (r *Room) Watchers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.watchers)
}

// CanJoin checks whether side can be claimed without claiming it.
func (r *Room) CanJoin(side string) error {
	if side == WatchSide {
		return nil
	}
	s, err := debate.ParseSide(side)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.seats[s]; taken {
		return errors.NewAlreadyExistsError("seat", string(s))
	}
	return nil
}

// Join seats conn at side ("side_a", "side_b", an alias, or "watch").
// Each side takes one connection; a second claim fails with an
// AlreadyExists error. The new client receives a welcome frame with the
// transcript so far and everyone else a joined frame. Speeches already in
// the welcome transcript are not sent to the client again.
func (r *Room) Join(side, name string, conn Conn) (*Client, error) {
	c := &Client{ID: uuid.NewString(), Name: strings.TrimSpace(name), conn: conn}

	var seat debate.Side
	if side == WatchSide {
		c.Side = WatchSide
	} else {
		s, err := debate.ParseSide(side)
		if err != nil {
			return nil, err
		}
		seat = s
		c.Side = string(s)
	}
	if c.Name == "" {
		if c.Side == WatchSide {
			c.Name = "spectator"
		} else {
			c.Name = r.session.Participant(seat)
		}
	}

	r.mu.Lock()
	if seat != "" {
		if _, taken := r.seats[seat]; taken {
			r.mu.Unlock()
			return nil, errors.NewAlreadyExistsError("seat", string(seat))
		}
	}
	snap := r.session.Snapshot()
	c.since = len(snap.Speeches)
	next, _ := r.session.Policy().SideFor(c.since)
	if snap.Complete {
		next = ""
	}
	welcome := Frame{Type: FrameWelcome, Side: c.Side, Name: c.Name, Transcript: &snap, Next: string(next)}
	if err := c.Send(welcome); err != nil {
		r.logger.Warn("welcome write failed", "client", c.ID, "error", err)
	}
	if seat != "" {
		r.seats[seat] = c
	} else {
		r.watchers[c.ID] = c
	}
	r.mu.Unlock()

	r.logger.Info("client joined", "side", c.Side, "name", c.Name)
	r.broadcast(Frame{Type: FrameJoined, Side: c.Side, Name: c.Name}, c.ID)
	return c, nil
}

// Leave frees the client's seat and tells the others. The room gives up
// its hub slot when the last client leaves.
func (r *Room) Leave(c *Client) {
	r.mu.Lock()
	if c.Side == WatchSide {
		delete(r.watchers, c.ID)
	} else if cur := r.seats[debate.Side(c.Side)]; cur == c {
		delete(r.seats, debate.Side(c.Side))
	}
	empty := len(r.seats) == 0 && len(r.watchers) == 0
	r.mu.Unlock()

	r.logger.Info("client left", "side", c.Side, "name", c.Name)
	r.broadcast(Frame{Type: FrameLeft, Side: c.Side, Name: c.Name}, c.ID)
	if empty {
		r.releaseSlot("empty")
	}
}

// Submit delivers a speech from c. Acceptance is broadcast to everyone by
// the session's speech.appended event.
func (r *Room) Submit(c *Client, text string) error {
	if c.Side == WatchSide {
		return errors.NewValidationError("spectators cannot deliver speeches").WithField("side").WithValue(WatchSide)
	}
	if r.maxSpeechBytes > 0 && len(text) > r.maxSpeechBytes {
		return errors.NewValidationError("speech exceeds the size limit").
			WithField("text").WithValue(len(text))
	}
	_, err := r.session.SubmitHuman(debate.Side(c.Side), text)
	return err
}

// Serve reads frames from rd until it fails. Rejected speeches are
// answered with an error frame to the sender only.
func (r *Room) Serve(c *Client, rd Reader) {
	for {
		_, data, err := rd.ReadMessage()
		if err != nil {
			return
		}

		var in Frame
		if err := json.Unmarshal(data, &in); err != nil {
			_ = c.Send(errorFrame(errors.NewValidationError("malformed frame").WithCause(err)))
			continue
		}
		switch in.Type {
		case FrameSpeech:
			if err := r.Submit(c, in.Text); err != nil {
				r.logger.Debug("speech rejected", "side", c.Side, "error", err)
				_ = c.Send(errorFrame(err))
			}
		default:
			_ = c.Send(errorFrame(errors.NewValidationError("unsupported frame type").WithField("type").WithValue(in.Type)))
		}
	}
}

// Close disconnects every client.
func (r *Room) Close() {
	for _, c := range r.clients() {
		_ = c.conn.Close()
	}
}

func (r *Room) onSpeech(e event.Event) {
	se, ok := e.(event.SpeechAppendedEvent)
	if !ok {
		return
	}
	sp := debate.Speech{
		Index:  se.Index,
		Side:   debate.Side(se.Side),
		Text:   se.Text,
		Source: se.Source,
		Round:  se.Round,
		Label:  se.Label,
	}
	r.logger.Info("speech appended", "index", sp.Index, "side", se.Side, "label", sp.Label)
	f := Frame{Type: FrameSpeech, Speech: &sp, Next: r.nextSide()}
	for _, c := range r.clients() {
		if sp.Index < c.since {
			continue
		}
		if err := c.Send(f); err != nil {
			r.logger.Warn("broadcast write failed", "client", c.ID, "side", c.Side, "error", err)
		}
	}
}

// onComplete sends the final transcript and then frees the room's slot.
func (r *Room) onComplete(e event.Event) {
	snap := r.session.Snapshot()
	r.logger.Info("debate complete", "speeches", len(snap.Speeches))
	r.broadcast(Frame{Type: FrameComplete, Transcript: &snap}, "")
	r.releaseSlot("complete")
}

func (r *Room) releaseSlot(reason string) {
	r.releaseOnce.Do(func() {
		r.logger.Info("room released", "reason", reason)
		if r.release != nil {
			r.release()
		}
	})
}

func (r *Room) nextSide() string {
	side, _ := debate.ExpectedSide(r.session)
	return string(side)
}

func (r *Room) clients() []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Client, 0, len(r.seats)+len(r.watchers))
	for _, c := range r.seats {
		out = append(out, c)
	}
	for _, c := range r.watchers {
		out = append(out, c)
	}
	return out
}

// broadcast sends f to every client except skipID.
func (r *Room) broadcast(f Frame, skipID string) {
	for _, c := range r.clients() {
		if c.ID == skipID {
			continue
		}
		if err := c.Send(f); err != nil {
			r.logger.Warn("broadcast write failed", "client", c.ID, "side", c.Side, "error", err)
		}
	}
}
