package config

import (
	"fmt"
	"net"
	"slices"
	"strings"

	"github.com/Iron-Ham/podium/internal/debate"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "autoplay.delay_ms")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// MaxAutoplayDelayMs is the longest accepted autoplay delay.
const MaxAutoplayDelayMs = 60_000

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidBackends returns the list of valid generator backends
func ValidBackends() []string {
	return []string{"echo", "ollama", "openrouter"}
}

// ValidTranscriptFormats returns the list of valid transcript export formats
func ValidTranscriptFormats() []string {
	return []string{"json", "yaml", "markdown"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateDebate()...)
	errors = append(errors, c.validateAutoplay()...)
	errors = append(errors, c.validateGenerator()...)
	errors = append(errors, c.validateArena()...)
	errors = append(errors, c.validateTUI()...)
	errors = append(errors, c.validateTranscript()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateDebate() []ValidationError {
	var errors []ValidationError

	if _, err := debate.ParseFormat(c.Debate.Format); err != nil {
		errors = append(errors, ValidationError{
			Field:   "debate.format",
			Value:   c.Debate.Format,
			Message: "must be one of: default, public_forum, lincoln_douglas",
		})
	}
	if _, err := debate.ParseMode(c.Debate.Mode); err != nil {
		errors = append(errors, ValidationError{
			Field:   "debate.mode",
			Value:   c.Debate.Mode,
			Message: "must be one of: both_automated, human_vs_automated, human_vs_human",
		})
	}
	if c.Debate.HumanSide != "" {
		if _, err := debate.ParseSide(c.Debate.HumanSide); err != nil {
			errors = append(errors, ValidationError{
				Field:   "debate.human_side",
				Value:   c.Debate.HumanSide,
				Message: "must be side_a or side_b",
			})
		}
	}
	if _, err := debate.ParseSpeakingOrder(c.Debate.SpeakingOrder); err != nil {
		errors = append(errors, ValidationError{
			Field:   "debate.speaking_order",
			Value:   c.Debate.SpeakingOrder,
			Message: "must be a_first or b_first",
		})
	}

	return errors
}

func (c *Config) validateAutoplay() []ValidationError {
	var errors []ValidationError

	if c.Autoplay.DelayMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "autoplay.delay_ms",
			Value:   c.Autoplay.DelayMs,
			Message: "must be non-negative",
		})
	}
	if c.Autoplay.DelayMs > MaxAutoplayDelayMs {
		errors = append(errors, ValidationError{
			Field:   "autoplay.delay_ms",
			Value:   c.Autoplay.DelayMs,
			Message: fmt.Sprintf("exceeds maximum of %dms", MaxAutoplayDelayMs),
		})
	}

	return errors
}

func (c *Config) validateGenerator() []ValidationError {
	var errors []ValidationError
	g := c.Generator

	if !slices.Contains(ValidBackends(), g.Backend) {
		errors = append(errors, ValidationError{
			Field:   "generator.backend",
			Value:   g.Backend,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidBackends(), ", ")),
		})
	}
	if g.TimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "generator.timeout_seconds",
			Value:   g.TimeoutSeconds,
			Message: "must be positive",
		})
	}
	if g.Temperature < 0 || g.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "generator.temperature",
			Value:   g.Temperature,
			Message: "must be between 0 and 2",
		})
	}
	if g.MaxTokens < 0 {
		errors = append(errors, ValidationError{
			Field:   "generator.max_tokens",
			Value:   g.MaxTokens,
			Message: "must be non-negative",
		})
	}
	if g.WordScale <= 0 || g.WordScale > 4 {
		errors = append(errors, ValidationError{
			Field:   "generator.word_scale",
			Value:   g.WordScale,
			Message: "must be greater than 0 and at most 4",
		})
	}
	if g.EchoLatencyMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "generator.echo_latency_ms",
			Value:   g.EchoLatencyMs,
			Message: "must be non-negative",
		})
	}
	if g.BaseURL != "" && !strings.HasPrefix(g.BaseURL, "http://") && !strings.HasPrefix(g.BaseURL, "https://") {
		errors = append(errors, ValidationError{
			Field:   "generator.base_url",
			Value:   g.BaseURL,
			Message: "must start with http:// or https://",
		})
	}

	return errors
}

func (c *Config) validateArena() []ValidationError {
	var errors []ValidationError

	if _, port, err := net.SplitHostPort(c.Arena.Address); err != nil || port == "" {
		errors = append(errors, ValidationError{
			Field:   "arena.address",
			Value:   c.Arena.Address,
			Message: "must be host:port (host may be empty)",
		})
	}
	if c.Arena.MaxRooms <= 0 {
		errors = append(errors, ValidationError{
			Field:   "arena.max_rooms",
			Value:   c.Arena.MaxRooms,
			Message: "must be positive",
		})
	}
	if c.Arena.MaxSpeechBytes < 256 {
		errors = append(errors, ValidationError{
			Field:   "arena.max_speech_bytes",
			Value:   c.Arena.MaxSpeechBytes,
			Message: "must be at least 256",
		})
	}

	return errors
}

func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	const minInputHeight, maxInputHeight = 3, 20
	if c.TUI.InputHeight < minInputHeight || c.TUI.InputHeight > maxInputHeight {
		errors = append(errors, ValidationError{
			Field:   "tui.input_height",
			Value:   c.TUI.InputHeight,
			Message: fmt.Sprintf("must be between %d and %d", minInputHeight, maxInputHeight),
		})
	}

	return errors
}

func (c *Config) validateTranscript() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidTranscriptFormats(), c.Transcript.Format) {
		errors = append(errors, ValidationError{
			Field:   "transcript.format",
			Value:   c.Transcript.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidTranscriptFormats(), ", ")),
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
