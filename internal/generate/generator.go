// Package generate produces speech text for automated debate sides.
//
// The debate core never builds prompts or talks to a model. It hands a
// [Request] (topic, side, format metadata, prior transcript) to a
// [Generator] and appends whatever text comes back.
package generate

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/Iron-Ham/podium/internal/debate"
	"github.com/Iron-Ham/podium/internal/errors"
)

// Generator produces the text of one speech.
// Implementations must honor ctx cancellation.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Named is implemented by generators that can report a source label, such
// as a model identifier, to record on the speech.
type Named interface {
	Name() string
}

// NameOf returns g's source label, or "" if it has none.
func NameOf(g Generator) string {
	if n, ok := g.(Named); ok {
		return n.Name()
	}
	return ""
}

// SourceFor returns the source label to record for a speech on side.
func SourceFor(g Generator, side debate.Side) string {
	if s, ok := g.(*Sides); ok {
		return s.NameFor(side)
	}
	return NameOf(g)
}

// Request is everything a generator may use to write one speech.
type Request struct {
	Topic        string
	Side         debate.Side
	SideName     string
	OpponentName string
	Format       debate.Format
	Index        int
	Prior        []debate.Speech
	Metadata     debate.SpeechMetadata
}

// RequestFor builds the request for the next speech of s, spoken by side.
// It fails with an OutOfRange error when the debate is complete.
func RequestFor(s *debate.Session, side debate.Side) (Request, error) {
	prior := s.Speeches()
	md, err := s.Policy().Metadata(len(prior))
	if err != nil {
		return Request{}, err
	}
	return Request{
		Topic:        s.Topic(),
		Side:         side,
		SideName:     s.SideName(side),
		OpponentName: s.SideName(side.Opponent()),
		Format:       s.Format(),
		Index:        len(prior),
		Prior:        prior,
		Metadata:     md,
	}, nil
}

// Func adapts a plain function to Generator.
type Func func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Sides routes each side to its own generator so two models can debate.
type Sides struct {
	A, B Generator
}

// Generate dispatches to the generator bound to req.Side.
func (s *Sides) Generate(ctx context.Context, req Request) (string, error) {
	if req.Side == debate.SideB {
		return s.B.Generate(ctx, req)
	}
	return s.A.Generate(ctx, req)
}

// NameFor returns the source label of the generator bound to side.
func (s *Sides) NameFor(side debate.Side) string {
	if side == debate.SideB {
		return NameOf(s.B)
	}
	return NameOf(s.A)
}

// Name describes both generators, e.g. "llama3 vs mistral".
func (s *Sides) Name() string {
	a, b := NameOf(s.A), NameOf(s.B)
	if a == b {
		return a
	}
	return a + " vs " + b
}

// errNotConfigured marks failures that no retry can fix.
var errNotConfigured = errors.New("generator not configured")

// fail wraps a backend error as a *errors.GenerationError. Deadline and
// network timeouts become a *errors.TimeoutError cause.
func fail(req Request, backend, op string, timeout time.Duration, err error) error {
	var genErr *errors.GenerationError
	if errors.As(err, &genErr) {
		return err
	}
	cause := err
	if isTimeout(err) {
		cause = errors.NewTimeoutError(op, timeout).WithCause(err)
	}
	out := errors.NewGenerationError(req.Index, string(req.Side), cause).WithBackend(backend)

	var status *statusError
	if errors.Is(err, errNotConfigured) || (errors.As(err, &status) && !status.retryable()) {
		out.WithRetryable(false)
	}
	return out
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// cleanText trims model output and strips a leading heading line that
// repeats the speech label, which chat models like to add.
func cleanText(text, label string) string {
	text = strings.TrimSpace(text)
	first, rest, found := strings.Cut(text, "\n")
	if found && label != "" {
		heading := strings.Trim(strings.TrimSpace(first), "#*: ")
		if strings.EqualFold(heading, label) {
			text = strings.TrimSpace(rest)
		}
	}
	return text
}
