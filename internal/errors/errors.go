// Package errors defines the error vocabulary shared by podium's packages.
//
// Every typed error matches exactly one sentinel through errors.Is, so
// callers can branch on the condition without caring about the concrete
// type, and use errors.As when they need the details:
//
//	if errors.Is(err, errors.ErrInvalidTurn) { ... }
//
//	var genErr *errors.GenerationError
//	if errors.As(err, &genErr) {
//	    log.Warn("generation failed", "index", genErr.Index, "backend", genErr.Backend)
//	}
//
// Debate-core conditions are TurnError (ErrInvalidTurn), RangeError
// (ErrOutOfRange) and GenerationError (ErrGenerationFailed). Supporting
// layers use NotFoundError, AlreadyExistsError, ValidationError and
// TimeoutError. IsRetryable reports whether repeating the failed operation
// may succeed.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-exported from the standard library so callers need a single import.
var (
	Is  = errors.Is
	As  = errors.As
	New = errors.New
)

// Debate core.
var (
	// ErrInvalidTurn: a speech was offered for a side the format does not
	// schedule at the current ledger position.
	ErrInvalidTurn = New("invalid turn")
	// ErrOutOfRange: a speech index at or beyond the format's total.
	ErrOutOfRange = New("speech index out of range")
	// ErrGenerationFailed: the text generator did not produce a speech.
	ErrGenerationFailed = New("speech generation failed")
	// ErrStaleResult: a generation result arrived for a ledger position or
	// autoplay epoch that is no longer current. It is never shown to users.
	ErrStaleResult = New("stale generation result")
)

// Supporting layers.
var (
	ErrNotFound      = New("not found")
	ErrAlreadyExists = New("already exists")
	ErrInvalidInput  = New("invalid input")
	ErrTimeout       = New("operation timed out")
)

// base carries what every typed error shares.
type base struct {
	msg       string
	cause     error
	retryable bool
	kind      error // sentinel matched by Is
}

func (e *base) Unwrap() error { return e.cause }

func (e *base) Is(target error) bool { return target == e.kind }

// IsRetryable reports whether repeating the operation may succeed.
func (e *base) IsRetryable() bool { return e.retryable }

// withCause formats "prefix: msg: cause", dropping empty parts.
func (e *base) withCause(prefix string) string {
	s := prefix
	if e.msg != "" {
		s += ": " + e.msg
	}
	if e.cause != nil {
		s += fmt.Sprintf(": %v", e.cause)
	}
	return s
}

// tags renders "[k=v, ...]" for the non-empty pairs.
func tags(kv ...string) string {
	var parts []string
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			parts = append(parts, kv[i]+"="+kv[i+1])
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

// TurnError rejects a speech offered for the wrong side. It signals a
// gating bug in the caller and is never corrected automatically.
//
//	errors.NewTurnError(1, "side_b", "side_a")
//	// turn error [index=1, expected=side_b, got=side_a]: side is not expected to speak
type TurnError struct {
	base
	Index    int
	Expected string
	Got      string
}

// NewTurnError creates a TurnError for ledger position index.
func NewTurnError(index int, expected, got string) *TurnError {
	return &TurnError{
		base:     base{msg: "side is not expected to speak", kind: ErrInvalidTurn},
		Index:    index,
		Expected: expected,
		Got:      got,
	}
}

// WithMessage replaces the default explanation.
func (e *TurnError) WithMessage(message string) *TurnError {
	e.msg = message
	return e
}

func (e *TurnError) Error() string {
	return e.withCause("turn error" + tags("index", fmt.Sprint(e.Index), "expected", e.Expected, "got", e.Got))
}

// RangeError reports a speech index outside [0, Total).
type RangeError struct {
	base
	Index int
	Total int
}

// NewRangeError creates a RangeError.
func NewRangeError(index, total int) *RangeError {
	return &RangeError{base: base{kind: ErrOutOfRange}, Index: index, Total: total}
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range error: speech index %d outside [0, %d)", e.Index, e.Total)
}

// GenerationError wraps a text generator failure for speech Index. The
// turn stays open; whether to retry is the caller's decision. Generation
// failures are retryable unless marked otherwise.
type GenerationError struct {
	base
	Index   int
	Side    string
	Backend string
}

// NewGenerationError creates a GenerationError wrapping cause.
func NewGenerationError(index int, side string, cause error) *GenerationError {
	return &GenerationError{
		base:  base{msg: "speech generation failed", cause: cause, retryable: true, kind: ErrGenerationFailed},
		Index: index,
		Side:  side,
	}
}

// WithBackend records which generator failed.
func (e *GenerationError) WithBackend(backend string) *GenerationError {
	e.Backend = backend
	return e
}

// WithRetryable overrides whether a retry may succeed.
func (e *GenerationError) WithRetryable(r bool) *GenerationError {
	e.retryable = r
	return e
}

func (e *GenerationError) Error() string {
	return e.withCause("generation error" + tags("index", fmt.Sprint(e.Index), "side", e.Side, "backend", e.Backend))
}

// Is matches ErrGenerationFailed and anything the cause matches, so a
// generation that timed out is also ErrTimeout.
func (e *GenerationError) Is(target error) bool {
	return target == e.kind || (e.cause != nil && errors.Is(e.cause, target))
}

// NotFoundError reports a missing resource, e.g. an arena room.
type NotFoundError struct {
	base
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		base:         base{kind: ErrNotFound},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

func (e *NotFoundError) Error() string {
	return e.withCause(fmt.Sprintf("%s not found: %s", e.ResourceType, e.ResourceID))
}

// AlreadyExistsError reports a resource that is already taken, e.g. a
// claimed arena seat.
type AlreadyExistsError struct {
	base
	ResourceType string
	ResourceID   string
}

// NewAlreadyExistsError creates an AlreadyExistsError.
func NewAlreadyExistsError(resourceType, resourceID string) *AlreadyExistsError {
	return &AlreadyExistsError{
		base:         base{kind: ErrAlreadyExists},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.ResourceType, e.ResourceID)
}

// ValidationError rejects malformed input: a bad debate configuration, an
// empty speech, an unknown format name.
//
//	errors.NewValidationError("unknown debate format").WithField("format").WithValue("oxford")
type ValidationError struct {
	base
	Field string
	Value any
}

// NewValidationError creates a ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{base: base{msg: message, kind: ErrInvalidInput}}
}

// WithField names the offending field.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue records the offending value.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause records the underlying error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

func (e *ValidationError) Error() string {
	value := ""
	if e.Value != nil {
		value = fmt.Sprint(e.Value)
	}
	return e.withCause("validation error" + tags("field", e.Field, "value", value))
}

// TimeoutError reports an operation that ran out of time. Timeouts are
// retryable.
type TimeoutError struct {
	base
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		base:      base{retryable: true, kind: ErrTimeout},
		Operation: operation,
		Duration:  duration,
	}
}

// WithCause records the underlying error.
func (e *TimeoutError) WithCause(cause error) *TimeoutError {
	e.cause = cause
	return e
}

func (e *TimeoutError) Error() string {
	return e.withCause(fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration))
}

// IsRetryable reports whether repeating the failed operation may succeed:
// the outermost podium error decides, and plain errors are retryable only
// when they wrap ErrTimeout.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var r interface{ IsRetryable() bool }
	if As(err, &r) {
		return r.IsRetryable()
	}
	return Is(err, ErrTimeout)
}

// IsStale reports whether err marks a discarded generation result.
func IsStale(err error) bool {
	return Is(err, ErrStaleResult)
}
