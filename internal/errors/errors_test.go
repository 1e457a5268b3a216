package errors

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestTurnError(t *testing.T) {
	err := NewTurnError(1, "side_b", "side_a")

	want := "turn error [index=1, expected=side_b, got=side_a]: side is not expected to speak"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !Is(err, ErrInvalidTurn) {
		t.Error("TurnError should match ErrInvalidTurn")
	}
	if Is(err, ErrOutOfRange) {
		t.Error("TurnError should not match ErrOutOfRange")
	}

	wrapped := fmt.Errorf("submit: %w", err.WithMessage("the human does not hold the turn"))
	var turnErr *TurnError
	if !As(wrapped, &turnErr) {
		t.Fatal("As should find the TurnError")
	}
	if turnErr.Expected != "side_b" || !strings.Contains(wrapped.Error(), "does not hold the turn") {
		t.Errorf("unwrapped = %+v, message %q", turnErr, wrapped)
	}
}

func TestRangeError(t *testing.T) {
	err := NewRangeError(5, 5)
	if got := err.Error(); got != "range error: speech index 5 outside [0, 5)" {
		t.Errorf("Error() = %q", got)
	}
	if !Is(err, ErrOutOfRange) {
		t.Error("RangeError should match ErrOutOfRange")
	}
	if IsRetryable(err) {
		t.Error("RangeError should not be retryable")
	}
}

func TestGenerationError(t *testing.T) {
	cause := New("connection refused")
	err := NewGenerationError(3, "side_a", cause).WithBackend("ollama")

	for _, want := range []string{"index=3", "side=side_a", "backend=ollama", "connection refused"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Error() = %q, missing %q", err.Error(), want)
		}
	}
	if !Is(err, ErrGenerationFailed) || !Is(err, cause) {
		t.Error("GenerationError should match ErrGenerationFailed and its cause")
	}
	if !IsRetryable(err) {
		t.Error("generation failures are retryable by default")
	}
	if IsRetryable(err.WithRetryable(false)) {
		t.Error("WithRetryable(false) should stick")
	}
}

func TestGenerationError_WrapsTimeout(t *testing.T) {
	timeout := NewTimeoutError("ollama chat", 2*time.Second).WithCause(context.DeadlineExceeded)
	err := NewGenerationError(0, "side_b", timeout)

	if !Is(err, ErrTimeout) || !Is(err, context.DeadlineExceeded) {
		t.Error("GenerationError should match the timeout it wraps")
	}
	var te *TimeoutError
	if !As(err, &te) || te.Operation != "ollama chat" {
		t.Errorf("As(*TimeoutError) = %+v", te)
	}
}

func TestResourceErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		want     string
	}{
		{"not found", NewNotFoundError("room", "r1"), ErrNotFound, "room not found: r1"},
		{"already exists", NewAlreadyExistsError("seat", "side_a"), ErrAlreadyExists, "seat already exists: side_a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.want)
			}
			if !Is(tt.err, tt.sentinel) {
				t.Errorf("%v should match %v", tt.err, tt.sentinel)
			}
			if IsRetryable(tt.err) {
				t.Error("resource errors are not retryable")
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "message only",
			err:  NewValidationError("topic is required"),
			want: "validation error: topic is required",
		},
		{
			name: "field and value",
			err:  NewValidationError("unknown debate format").WithField("format").WithValue("oxford"),
			want: "validation error [field=format, value=oxford]: unknown debate format",
		},
		{
			name: "cause",
			err:  NewValidationError("malformed frame").WithCause(New("unexpected EOF")),
			want: "validation error: malformed frame: unexpected EOF",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if !Is(tt.err, ErrInvalidInput) {
				t.Error("ValidationError should match ErrInvalidInput")
			}
		})
	}
}

func TestTimeoutError(t *testing.T) {
	err := NewTimeoutError("generate", 30*time.Second)
	if got := err.Error(); got != "timeout error: generate (timeout: 30s)" {
		t.Errorf("Error() = %q", got)
	}
	if !Is(err, ErrTimeout) || !IsRetryable(err) {
		t.Error("TimeoutError should match ErrTimeout and be retryable")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", New("boom"), false},
		{"wrapped timeout sentinel", fmt.Errorf("dial: %w", ErrTimeout), true},
		{"validation", NewValidationError("bad"), false},
		{"wrapped generation", fmt.Errorf("advance: %w", NewGenerationError(0, "side_a", New("x"))), true},
		{"outermost decides", NewGenerationError(0, "side_a", NewTimeoutError("op", time.Second)).WithRetryable(false), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsStale(t *testing.T) {
	if !IsStale(fmt.Errorf("speech 4: %w", ErrStaleResult)) {
		t.Error("wrapped ErrStaleResult should be stale")
	}
	if IsStale(ErrGenerationFailed) || IsStale(nil) {
		t.Error("only ErrStaleResult is stale")
	}
}
