package autoplay

import (
	"context"
	"sync"
	"time"

	"github.com/Iron-Ham/podium/internal/debate"
	"github.com/Iron-Ham/podium/internal/errors"
	"github.com/Iron-Ham/podium/internal/event"
	"github.com/Iron-Ham/podium/internal/generate"
	"github.com/Iron-Ham/podium/internal/logging"
)

// State is the driver's lifecycle state.
type State string

const (
	StateIdle           State = "idle"
	StateArmed          State = "armed"
	StateAwaitingResult State = "awaiting_result"
	StateStopped        State = "stopped"
)

// DefaultDelay separates consecutive automated speeches.
const DefaultDelay = 3 * time.Second

// ErrAlreadyRunning is returned by Start while the driver is armed or
// awaiting a result.
var ErrAlreadyRunning = errors.New("autoplay already running")

// Timer is the handle returned by an AfterFunc.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc is the default.
type AfterFunc func(d time.Duration, f func()) Timer

func stdAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Driver.
type Option func(*Driver)

// WithDelay sets the pause between speeches. Negative values are treated
// as zero.
func WithDelay(d time.Duration) Option {
	return func(dr *Driver) {
		if d < 0 {
			d = 0
		}
		dr.delay = d
	}
}

// WithAfterFunc replaces time.AfterFunc, letting tests fire timers by hand.
func WithAfterFunc(fn AfterFunc) Option {
	return func(dr *Driver) { dr.afterFunc = fn }
}

// WithLogger sets the driver's logger.
func WithLogger(l *logging.Logger) Option {
	return func(dr *Driver) { dr.logger = l }
}

// OnError registers a callback for generation failures.
func OnError(fn func(error)) Option {
	return func(dr *Driver) { dr.onError = fn }
}

// OnStateChange registers a callback invoked after every transition.
func OnStateChange(fn func(from, to State)) Option {
	return func(dr *Driver) { dr.onStateChange = fn }
}

// Driver runs a both_automated session. Callbacks and bus events are
// delivered after the driver's lock is released, so they may call back
// into the driver.
type Driver struct {
	session       *debate.Session
	gen           generate.Generator
	delay         time.Duration
	afterFunc     AfterFunc
	logger        *logging.Logger
	onError       func(error)
	onStateChange func(from, to State)

	mu      sync.Mutex
	state   State
	epoch   uint64
	timer   Timer
	parent  context.Context
	cancel  context.CancelFunc
	release func() bool
	err     error
	notes   []func()

	wg sync.WaitGroup
}

// New creates an idle driver for session.
func New(session *debate.Session, gen generate.Generator, opts ...Option) *Driver {
	d := &Driver{
		session:   session,
		gen:       gen,
		delay:     DefaultDelay,
		afterFunc: stdAfterFunc,
		state:     StateIdle,
		parent:    context.Background(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logging.NopLogger()
	}
	d.logger = d.logger.WithSession(session.ID()).WithPhase("autoplay")
	return d
}

// Start begins autoplay, issuing the first generation immediately. It is
// accepted from idle and, for an unfinished debate, from stopped. On a
// complete debate the driver moves to stopped and Start returns nil.
// Canceling ctx stops the driver.
func (d *Driver) Start(ctx context.Context) error {
	if mode := d.session.Mode(); mode != debate.ModeBothAutomated {
		return errors.NewValidationError("autoplay requires a both_automated debate").
			WithField("mode").WithValue(string(mode))
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.Lock()
	if d.state == StateArmed || d.state == StateAwaitingResult {
		d.mu.Unlock()
		return ErrAlreadyRunning
	}
	if d.session.IsComplete() {
		d.setStateLocked(StateStopped)
		d.unlockAndNotify()
		return nil
	}

	d.epoch++
	d.err = nil
	d.parent = ctx
	d.release = context.AfterFunc(ctx, d.Stop)
	d.session.SetAutoplayActive(true)
	d.setStateLocked(StateArmed)
	d.issueLocked()
	d.unlockAndNotify()
	return nil
}

// Stop halts autoplay from any state, cancelling the pending timer and any
// in-flight generation. A result that arrives afterwards is discarded.
// Calling Stop on a stopped driver does nothing.
func (d *Driver) Stop() {
	d.mu.Lock()
	if d.state == StateStopped {
		d.mu.Unlock()
		return
	}
	d.stopLocked()
	d.unlockAndNotify()
}

// State returns the current state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Epoch returns the current epoch token.
func (d *Driver) Epoch() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.epoch
}

// Err returns the generation failure that stopped the driver, if any. It
// is cleared by the next Start.
func (d *Driver) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// HasPendingTimer reports whether a re-arm timer is scheduled.
func (d *Driver) HasPendingTimer() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Delay returns the pause between speeches.
func (d *Driver) Delay() time.Duration { return d.delay }

// Wait blocks until no generation started by the driver is in flight.
func (d *Driver) Wait() {
	d.wg.Wait()
}

// issueLocked requests the next speech. The side is re-queried from the
// session every time.
func (d *Driver) issueLocked() {
	side, ok := debate.NextAutomatedSide(d.session)
	if !ok {
		d.logger.Info("debate complete", "speeches", d.session.Len())
		d.stopLocked()
		return
	}
	req, err := generate.RequestFor(d.session, side)
	if err != nil {
		d.failLocked(req, err)
		return
	}

	ctx, cancel := context.WithCancel(d.parent)
	d.cancel = cancel
	epoch := d.epoch
	d.setStateLocked(StateAwaitingResult)
	d.logger.Debug("requesting speech", "index", req.Index, "side", string(side), "label", req.Metadata.Label, "epoch", epoch)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		text, err := d.gen.Generate(ctx, req)
		d.handleResult(epoch, req, text, err)
	}()
}

// handleResult applies a generation outcome. The epoch check and the
// ledger append happen under d.mu, so once Stop returns no result of the
// stopped epoch can reach the ledger.
func (d *Driver) handleResult(epoch uint64, req generate.Request, text string, genErr error) {
	var source string
	if genErr == nil {
		source = generate.SourceFor(d.gen, req.Side)
	}

	d.mu.Lock()
	if !d.currentLocked(epoch, StateAwaitingResult) {
		d.discardLocked(epoch, req)
		d.mu.Unlock()
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if genErr != nil {
		if d.parent.Err() != nil {
			d.stopLocked()
		} else {
			d.failLocked(req, genErr)
		}
		d.unlockAndNotify()
		return
	}

	sp, publish, appendErr := d.session.AppendAtDeferred(req.Index, req.Side, text, source)
	if publish != nil {
		d.notes = append(d.notes, publish)
	}
	switch {
	case errors.IsStale(appendErr):
		d.logger.Debug("ledger moved during generation, reissuing", "index", req.Index, "ledger_len", d.session.Len())
		d.issueLocked()
	case appendErr != nil:
		d.failLocked(req, appendErr)
	case d.session.IsComplete():
		d.logger.Info("debate complete", "speeches", sp.Index+1)
		d.stopLocked()
	default:
		d.logger.Info("speech appended", "index", sp.Index, "side", string(sp.Side), "label", sp.Label)
		d.epoch++
		d.setStateLocked(StateArmed)
		d.scheduleLocked()
	}
	d.unlockAndNotify()
}

// scheduleLocked arms the re-arm timer, cancelling any earlier one first
// so at most one timer is ever pending.
func (d *Driver) scheduleLocked() {
	if d.timer != nil {
		d.timer.Stop()
	}
	epoch := d.epoch
	d.timer = d.afterFunc(d.delay, func() { d.fire(epoch) })
}

func (d *Driver) fire(epoch uint64) {
	d.mu.Lock()
	if !d.currentLocked(epoch, StateArmed) {
		d.logger.Debug("ignoring stale timer", "epoch", epoch, "current_epoch", d.epoch)
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.issueLocked()
	d.unlockAndNotify()
}

func (d *Driver) currentLocked(epoch uint64, want State) bool {
	return d.epoch == epoch && d.state == want
}

func (d *Driver) discardLocked(epoch uint64, req generate.Request) {
	d.logger.Debug("discarding stale generation result",
		"index", req.Index,
		"side", string(req.Side),
		"epoch", epoch,
		"current_epoch", d.epoch,
		"error", errors.ErrStaleResult,
	)
}

func (d *Driver) stopLocked() {
	d.epoch++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.release != nil {
		d.release()
		d.release = nil
	}
	d.session.SetAutoplayActive(false)
	d.setStateLocked(StateStopped)
}

func (d *Driver) failLocked(req generate.Request, err error) {
	var genErr *errors.GenerationError
	if !errors.As(err, &genErr) {
		err = errors.NewGenerationError(req.Index, string(req.Side), err).
			WithBackend(generate.SourceFor(d.gen, req.Side))
	}
	d.err = err
	d.logger.Error("speech generation failed", "index", req.Index, "side", string(req.Side), "error", err)
	d.stopLocked()

	onError := d.onError
	bus := d.session.Bus()
	id := d.session.ID()
	d.notes = append(d.notes, func() {
		if onError != nil {
			onError(err)
		}
		if bus != nil {
			bus.Publish(event.NewGenerationFailedEvent(id, req.Index, string(req.Side), err))
		}
	})
}

func (d *Driver) setStateLocked(to State) {
	from := d.state
	if from == to {
		return
	}
	d.state = to
	epoch := d.epoch
	d.logger.Info("autoplay state changed", "from", string(from), "to", string(to), "epoch", epoch)

	onChange := d.onStateChange
	bus := d.session.Bus()
	id := d.session.ID()
	d.notes = append(d.notes, func() {
		if onChange != nil {
			onChange(from, to)
		}
		if bus != nil {
			bus.Publish(event.NewAutoplayStateChangedEvent(id, string(from), string(to), epoch))
		}
	})
}

// unlockAndNotify releases d.mu and then delivers queued notifications.
func (d *Driver) unlockAndNotify() {
	notes := d.notes
	d.notes = nil
	d.mu.Unlock()
	for _, n := range notes {
		n()
	}
}
