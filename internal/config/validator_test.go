package config

import (
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "autoplay.delay_ms",
		Value:   -1,
		Message: "must be non-negative",
	}

	expected := "autoplay.delay_ms: must be non-negative (got: -1)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{{Field: "f", Value: 1, Message: "is invalid"}}
		if errs.Error() != "f: is invalid (got: 1)" {
			t.Errorf("Error() = %q", errs.Error())
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "1. field1") || !strings.Contains(result, "2. field2") {
			t.Errorf("Error() should number each error: %s", result)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown format", func(c *Config) { c.Debate.Format = "oxford" }, "debate.format"},
		{"unknown mode", func(c *Config) { c.Debate.Mode = "spectator" }, "debate.mode"},
		{"bad human side", func(c *Config) { c.Debate.HumanSide = "judge" }, "debate.human_side"},
		{"bad order", func(c *Config) { c.Debate.SpeakingOrder = "random" }, "debate.speaking_order"},
		{"negative delay", func(c *Config) { c.Autoplay.DelayMs = -1 }, "autoplay.delay_ms"},
		{"huge delay", func(c *Config) { c.Autoplay.DelayMs = MaxAutoplayDelayMs + 1 }, "autoplay.delay_ms"},
		{"unknown backend", func(c *Config) { c.Generator.Backend = "gpt" }, "generator.backend"},
		{"zero timeout", func(c *Config) { c.Generator.TimeoutSeconds = 0 }, "generator.timeout_seconds"},
		{"hot temperature", func(c *Config) { c.Generator.Temperature = 2.5 }, "generator.temperature"},
		{"negative max tokens", func(c *Config) { c.Generator.MaxTokens = -1 }, "generator.max_tokens"},
		{"zero word scale", func(c *Config) { c.Generator.WordScale = 0 }, "generator.word_scale"},
		{"negative echo latency", func(c *Config) { c.Generator.EchoLatencyMs = -1 }, "generator.echo_latency_ms"},
		{"bad base url", func(c *Config) { c.Generator.BaseURL = "localhost:11434" }, "generator.base_url"},
		{"bad address", func(c *Config) { c.Arena.Address = "8080" }, "arena.address"},
		{"zero rooms", func(c *Config) { c.Arena.MaxRooms = 0 }, "arena.max_rooms"},
		{"tiny speech limit", func(c *Config) { c.Arena.MaxSpeechBytes = 10 }, "arena.max_speech_bytes"},
		{"tall input", func(c *Config) { c.TUI.InputHeight = 40 }, "tui.input_height"},
		{"transcript format", func(c *Config) { c.Transcript.Format = "pdf" }, "transcript.format"},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"log size", func(c *Config) { c.Logging.MaxSizeMB = 0 }, "logging.max_size_mb"},
		{"log size max", func(c *Config) { c.Logging.MaxSizeMB = 5000 }, "logging.max_size_mb"},
		{"log backups", func(c *Config) { c.Logging.MaxBackups = -1 }, "logging.max_backups"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), ValidationErrors(errs))
			}
			if errs[0].Field != tt.field {
				t.Errorf("Field = %q, want %q", errs[0].Field, tt.field)
			}
		})
	}
}

func TestValidate_AcceptsAliasesAndEdges(t *testing.T) {
	cfg := Default()
	cfg.Debate.Format = "pf"
	cfg.Debate.Mode = "hvh"
	cfg.Debate.HumanSide = ""
	cfg.Debate.SpeakingOrder = "b_first"
	cfg.Autoplay.DelayMs = 0
	cfg.Generator.BaseURL = "http://localhost:11434"
	cfg.Arena.Address = "127.0.0.1:9000"
	cfg.Logging.Level = ""

	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", ValidationErrors(errs))
	}
}
