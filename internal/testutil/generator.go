package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Iron-Ham/podium/internal/generate"
)

// ControlledGenerator is a generate.Generator whose calls block until the
// test answers them.
type ControlledGenerator struct {
	// IgnoreCancel makes Generate wait for an answer even after its
	// context is canceled, so tests can deliver late results.
	IgnoreCancel bool

	calls chan *Call
}

// Call is one pending Generate invocation.
type Call struct {
	Req   generate.Request
	Ctx   context.Context
	reply chan reply
}

type reply struct {
	text string
	err  error
}

// NewControlledGenerator returns a generator with room for buffer
// unanswered calls before Generate blocks on delivery.
func NewControlledGenerator(buffer int) *ControlledGenerator {
	return &ControlledGenerator{calls: make(chan *Call, buffer)}
}

// Name implements generate.Named.
func (g *ControlledGenerator) Name() string { return "controlled" }

// Generate implements generate.Generator.
func (g *ControlledGenerator) Generate(ctx context.Context, req generate.Request) (string, error) {
	c := &Call{Req: req, Ctx: ctx, reply: make(chan reply, 1)}
	g.calls <- c
	if g.IgnoreCancel {
		r := <-c.reply
		return r.text, r.err
	}
	select {
	case r := <-c.reply:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Next waits for the next call.
func (g *ControlledGenerator) Next(t *testing.T, timeout time.Duration) *Call {
	t.Helper()

	select {
	case c := <-g.calls:
		return c
	case <-time.After(timeout):
		t.Fatalf("no generation request within %s", timeout)
		return nil
	}
}

// Idle reports whether no call is waiting to be picked up.
func (g *ControlledGenerator) Idle() bool {
	return len(g.calls) == 0
}

// Respond answers the call with text.
func (c *Call) Respond(text string) { c.reply <- reply{text: text} }

// Fail answers the call with err.
func (c *Call) Fail(err error) { c.reply <- reply{err: err} }
