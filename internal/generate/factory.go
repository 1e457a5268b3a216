package generate

import (
	"strings"
	"time"

	"github.com/Iron-Ham/podium/internal/config"
	"github.com/Iron-Ham/podium/internal/errors"
)

// Backend names accepted by NewFromConfig.
const (
	BackendEcho       = "echo"
	BackendOllama     = "ollama"
	BackendOpenRouter = "openrouter"
)

// ErrUnknownBackend is the cause of the validation error returned for an
// unsupported backend.
var ErrUnknownBackend = errors.New("unknown generator backend")

// NewFromConfig builds the configured generator. When side_a_model and
// side_b_model differ, each side gets its own generator. Configuration
// faults are *errors.ValidationError values.
func NewFromConfig(cfg *config.GeneratorConfig) (Generator, error) {
	if cfg == nil {
		return nil, errors.NewValidationError("missing generator config").WithField("generator")
	}

	modelA, modelB := cfg.ModelFor("side_a"), cfg.ModelFor("side_b")
	a, err := newBackend(cfg, modelA)
	if err != nil {
		return nil, err
	}
	if modelA == modelB {
		return a, nil
	}
	b, err := newBackend(cfg, modelB)
	if err != nil {
		return nil, err
	}
	return &Sides{A: a, B: b}, nil
}

func newBackend(cfg *config.GeneratorConfig, model string) (Generator, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendEcho, "":
		return &EchoGenerator{Latency: time.Duration(cfg.EchoLatencyMs) * time.Millisecond}, nil
	case BackendOllama:
		if model == "" {
			return nil, errors.NewValidationError("ollama backend requires a model").WithField("generator.model")
		}
		return &OllamaGenerator{
			BaseURL:     cfg.BaseURL,
			Model:       model,
			Temperature: cfg.Temperature,
			WordScale:   cfg.WordScale,
			Timeout:     cfg.Timeout(),
		}, nil
	case BackendOpenRouter:
		key := cfg.APIKey()
		if key == "" {
			return nil, errors.NewValidationError("openrouter backend requires an API key").
				WithField("generator.api_key_env").WithValue(cfg.APIKeyEnv)
		}
		return &OpenRouterGenerator{
			BaseURL:     cfg.BaseURL,
			APIKey:      key,
			Model:       model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			WordScale:   cfg.WordScale,
			Timeout:     cfg.Timeout(),
		}, nil
	default:
		return nil, errors.NewValidationError("want echo, ollama or openrouter").
			WithField("generator.backend").WithValue(cfg.Backend).WithCause(ErrUnknownBackend)
	}
}
