// Package moderator owns a debate session and its collaborators: the
// speech generator, the autoplay driver, the event bus and the logger.
// User interfaces talk to a Moderator instead of wiring those pieces
// together themselves.
package moderator

import (
	"context"
	"sync"

	"github.com/Iron-Ham/podium/internal/autoplay"
	"github.com/Iron-Ham/podium/internal/debate"
	"github.com/Iron-Ham/podium/internal/errors"
	"github.com/Iron-Ham/podium/internal/event"
	"github.com/Iron-Ham/podium/internal/generate"
	"github.com/Iron-Ham/podium/internal/logging"
)

// Option configures a Moderator.
type Option func(*Moderator)

// WithLogger sets the logger used by the moderator and its driver.
func WithLogger(l *logging.Logger) Option {
	return func(m *Moderator) { m.logger = l }
}

// WithAutoplay passes options through to the autoplay driver.
func WithAutoplay(opts ...autoplay.Option) Option {
	return func(m *Moderator) { m.driverOpts = append(m.driverOpts, opts...) }
}

// Moderator coordinates one debate.
type Moderator struct {
	session    *debate.Session
	gen        generate.Generator
	driver     *autoplay.Driver
	logger     *logging.Logger
	driverOpts []autoplay.Option

	// genMu serializes manual generations so two callers cannot race for
	// the same ledger position.
	genMu sync.Mutex
}

// New creates a moderator for session.
func New(session *debate.Session, gen generate.Generator, opts ...Option) *Moderator {
	m := &Moderator{session: session, gen: gen}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logging.NopLogger()
	}
	m.logger = m.logger.WithSession(session.ID())

	driverOpts := append([]autoplay.Option{autoplay.WithLogger(m.logger)}, m.driverOpts...)
	m.driver = autoplay.New(session, gen, driverOpts...)
	m.logger = m.logger.WithPhase("moderator")
	return m
}

// Session returns the moderated session.
func (m *Moderator) Session() *debate.Session { return m.session }

// Driver returns the autoplay driver.
func (m *Moderator) Driver() *autoplay.Driver { return m.driver }

// Bus returns the session's event bus, which may be nil.
func (m *Moderator) Bus() *event.Bus { return m.session.Bus() }

// Snapshot returns a read-only copy of the debate for export.
func (m *Moderator) Snapshot() debate.Transcript { return m.session.Snapshot() }

// SubmitHuman records a human speech. In human_vs_automated mode the
// automated side then answers until the human holds the turn again or the
// debate ends.
//
// A returned speech with a non-nil error means the human speech was
// accepted but an automated reply failed; the turn stays open and can be
// retried with RequestAutomated.
func (m *Moderator) SubmitHuman(ctx context.Context, side debate.Side, text string) (debate.Speech, error) {
	sp, err := m.session.SubmitHuman(side, text)
	if err != nil {
		m.logger.WithSide(string(side)).Warn("human speech rejected", "error", err)
		return debate.Speech{}, err
	}
	m.logger.WithSide(string(side)).Info("human speech accepted", "index", sp.Index, "label", sp.Label)

	if m.session.Mode() == debate.ModeHumanVsAutomated {
		if _, err := m.Advance(ctx); err != nil {
			return sp, err
		}
	}
	return sp, nil
}

// Advance generates automated speeches for as long as an automated side
// holds the turn. It returns the speeches appended.
func (m *Moderator) Advance(ctx context.Context) ([]debate.Speech, error) {
	var out []debate.Speech
	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		side, ok := debate.NextAutomatedSide(m.session)
		if !ok {
			return out, nil
		}
		sp, err := m.generate(ctx, side)
		if err != nil {
			return out, err
		}
		out = append(out, sp)
	}
}

// RequestAutomated generates exactly one speech for the automated side
// that holds the turn. It is the manual alternative to autoplay and is
// refused while autoplay runs.
func (m *Moderator) RequestAutomated(ctx context.Context) (debate.Speech, error) {
	switch m.driver.State() {
	case autoplay.StateArmed, autoplay.StateAwaitingResult:
		return debate.Speech{}, autoplay.ErrAlreadyRunning
	}

	t := m.session.Turn()
	if t.Complete {
		return debate.Speech{}, errors.NewRangeError(t.Index, m.session.Policy().TotalSpeeches())
	}
	if !t.Automated {
		return debate.Speech{}, errors.NewTurnError(t.Index, string(t.Expected), string(t.Expected)).
			WithMessage("the next speech belongs to a human participant")
	}
	return m.generate(ctx, t.Expected)
}

// StartAutoplay starts the autoplay driver.
func (m *Moderator) StartAutoplay(ctx context.Context) error {
	return m.driver.Start(ctx)
}

// StopAutoplay stops the autoplay driver. It is safe to call at any time.
func (m *Moderator) StopAutoplay() {
	m.driver.Stop()
}

// Close stops autoplay and waits for in-flight generations to return.
func (m *Moderator) Close() {
	m.driver.Stop()
	m.driver.Wait()
}

func (m *Moderator) generate(ctx context.Context, side debate.Side) (debate.Speech, error) {
	m.genMu.Lock()
	defer m.genMu.Unlock()

	log := m.logger.WithSide(string(side))
	req, err := generate.RequestFor(m.session, side)
	if err != nil {
		return debate.Speech{}, err
	}
	log.Debug("requesting speech", "index", req.Index, "label", req.Metadata.Label)

	text, err := m.gen.Generate(ctx, req)
	if err != nil {
		var genErr *errors.GenerationError
		if !errors.As(err, &genErr) {
			err = errors.NewGenerationError(req.Index, string(side), err).
				WithBackend(generate.SourceFor(m.gen, side))
		}
		log.Error("speech generation failed", "index", req.Index, "error", err)
		if bus := m.session.Bus(); bus != nil {
			bus.Publish(event.NewGenerationFailedEvent(m.session.ID(), req.Index, string(side), err))
		}
		return debate.Speech{}, err
	}

	sp, err := m.session.AppendAt(req.Index, side, text, generate.SourceFor(m.gen, side))
	if err != nil {
		log.Warn("generated speech not appended", "index", req.Index, "error", err)
		return debate.Speech{}, err
	}
	log.Info("speech appended", "index", sp.Index, "label", sp.Label)
	return sp, nil
}
