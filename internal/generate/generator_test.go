package generate

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Iron-Ham/podium/internal/config"
	"github.com/Iron-Ham/podium/internal/debate"
	"github.com/Iron-Ham/podium/internal/errors"
)

func newSession(t *testing.T, f debate.Format) *debate.Session {
	t.Helper()
	s, err := debate.NewSession(debate.Config{Topic: "Homework should be abolished", Format: f})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestRequestFor(t *testing.T) {
	s := newSession(t, debate.FormatLincolnDouglas)
	if _, err := s.Append(debate.SideA, "AC text", "echo"); err != nil {
		t.Fatal(err)
	}

	req, err := RequestFor(s, debate.SideB)
	if err != nil {
		t.Fatalf("RequestFor: %v", err)
	}
	if req.Index != 1 || req.Metadata.Label != "NC" || req.Metadata.WordBudget != 1050 {
		t.Errorf("unexpected request metadata: %+v", req.Metadata)
	}
	if req.SideName != "Negative" || req.OpponentName != "Affirmative" {
		t.Errorf("side names = %q / %q", req.SideName, req.OpponentName)
	}
	if len(req.Prior) != 1 || req.Prior[0].Text != "AC text" {
		t.Errorf("Prior = %+v", req.Prior)
	}
}

func TestRequestFor_Complete(t *testing.T) {
	s := newSession(t, debate.FormatLincolnDouglas)
	for range 5 {
		side, _ := debate.ExpectedSide(s)
		if _, err := s.Append(side, "x", ""); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := RequestFor(s, debate.SideB); !errors.Is(err, errors.ErrOutOfRange) {
		t.Errorf("err = %v, want OutOfRange", err)
	}
}

func TestEchoGenerator(t *testing.T) {
	s := newSession(t, debate.FormatPublicForum)
	req, _ := RequestFor(s, debate.SideA)

	g := &EchoGenerator{}
	text, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(text, "Pro, CONSTRUCTIVE: ") || !strings.Contains(text, "supports") {
		t.Errorf("text = %q", text)
	}
	if NameOf(g) != "echo" {
		t.Errorf("NameOf = %q", NameOf(g))
	}
}

func TestEchoGenerator_RespectsCancel(t *testing.T) {
	g := &EchoGenerator{Latency: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, Request{Index: 2, Side: debate.SideB})
	if !errors.Is(err, errors.ErrGenerationFailed) {
		t.Fatalf("err = %v, want generation failure", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err should wrap context.Canceled: %v", err)
	}
}

func TestEchoGenerator_DeadlineIsTimeout(t *testing.T) {
	g := &EchoGenerator{Latency: time.Hour}
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	_, err := g.Generate(ctx, Request{})
	if !errors.Is(err, errors.ErrTimeout) {
		t.Errorf("err = %v, want timeout", err)
	}
}

func TestSides(t *testing.T) {
	named := func(name string) Generator {
		return &namedFunc{name: name}
	}
	g := &Sides{A: named("llama3"), B: named("mistral")}

	text, err := g.Generate(context.Background(), Request{Side: debate.SideB})
	if err != nil || text != "mistral" {
		t.Errorf("Generate(side_b) = %q, %v", text, err)
	}
	if SourceFor(g, debate.SideA) != "llama3" || SourceFor(g, debate.SideB) != "mistral" {
		t.Error("SourceFor should report the per-side generator")
	}
	if g.Name() != "llama3 vs mistral" {
		t.Errorf("Name() = %q", g.Name())
	}
}

type namedFunc struct{ name string }

func (n *namedFunc) Name() string { return n.name }
func (n *namedFunc) Generate(context.Context, Request) (string, error) {
	return n.name, nil
}

func TestFunc(t *testing.T) {
	g := Func(func(_ context.Context, req Request) (string, error) {
		return req.Topic, nil
	})
	text, _ := g.Generate(context.Background(), Request{Topic: "t"})
	if text != "t" {
		t.Errorf("Func result = %q", text)
	}
	if NameOf(g) != "" {
		t.Errorf("Func should have no name")
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in, label, want string
	}{
		{"  plain speech  ", "AC", "plain speech"},
		{"## AC\nThe body.", "AC", "The body."},
		{"**Rebuttal:**\nBody", "REBUTTAL", "Body"},
		{"First line\nSecond", "AC", "First line\nSecond"},
	}
	for _, tt := range tests {
		if got := cleanText(tt.in, tt.label); got != tt.want {
			t.Errorf("cleanText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewFromConfig(t *testing.T) {
	t.Run("echo", func(t *testing.T) {
		cfg := config.Default().Generator
		g, err := NewFromConfig(&cfg)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := g.(*EchoGenerator); !ok {
			t.Errorf("got %T, want *EchoGenerator", g)
		}
	})

	t.Run("ollama per side", func(t *testing.T) {
		cfg := config.Default().Generator
		cfg.Backend = "ollama"
		cfg.Model = "llama3"
		cfg.SideBModel = "mistral"
		g, err := NewFromConfig(&cfg)
		if err != nil {
			t.Fatal(err)
		}
		sides, ok := g.(*Sides)
		if !ok {
			t.Fatalf("got %T, want *Sides", g)
		}
		if sides.NameFor(debate.SideA) != "llama3" || sides.NameFor(debate.SideB) != "mistral" {
			t.Errorf("models = %s / %s", sides.NameFor(debate.SideA), sides.NameFor(debate.SideB))
		}
	})

	t.Run("ollama without model", func(t *testing.T) {
		cfg := config.Default().Generator
		cfg.Backend = "ollama"
		_, err := NewFromConfig(&cfg)
		assertConfigFault(t, err, "generator.model")
	})

	t.Run("openrouter without key", func(t *testing.T) {
		cfg := config.Default().Generator
		cfg.Backend = "openrouter"
		cfg.APIKeyEnv = "PODIUM_TEST_MISSING_KEY"
		t.Setenv("PODIUM_TEST_MISSING_KEY", "")
		_, err := NewFromConfig(&cfg)
		assertConfigFault(t, err, "generator.api_key_env")
	})

	t.Run("openrouter with key", func(t *testing.T) {
		cfg := config.Default().Generator
		cfg.Backend = "openrouter"
		cfg.APIKeyEnv = "PODIUM_TEST_KEY"
		t.Setenv("PODIUM_TEST_KEY", "sk-1")
		g, err := NewFromConfig(&cfg)
		if err != nil {
			t.Fatal(err)
		}
		if NameOf(g) != DefaultOpenRouterModel {
			t.Errorf("NameOf = %q, want default model", NameOf(g))
		}
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := config.Default().Generator
		cfg.Backend = "gpt"
		_, err := NewFromConfig(&cfg)
		if !errors.Is(err, ErrUnknownBackend) {
			t.Errorf("err = %v, want ErrUnknownBackend", err)
		}
		assertConfigFault(t, err, "generator.backend")
	})

	_, err := NewFromConfig(nil)
	assertConfigFault(t, err, "generator")
}

// assertConfigFault checks err is a non-retryable validation error on field.
func assertConfigFault(t *testing.T, err error, field string) {
	t.Helper()
	var ve *errors.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want *errors.ValidationError", err)
	}
	if ve.Field != field {
		t.Errorf("field = %q, want %q", ve.Field, field)
	}
	if !errors.Is(err, errors.ErrInvalidInput) || errors.IsRetryable(err) {
		t.Errorf("err = %v should be invalid input and not retryable", err)
	}
}
