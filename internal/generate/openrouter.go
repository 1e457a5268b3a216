package generate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultOpenRouterURL is the OpenRouter API base.
	DefaultOpenRouterURL = "https://openrouter.ai/api/v1"

	// DefaultOpenRouterModel is used when no model is configured.
	DefaultOpenRouterModel = "deepseek/deepseek-chat-v3.1:free"
)

// OpenRouterGenerator writes speeches through the OpenRouter chat
// completions API.
type OpenRouterGenerator struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	WordScale   float64
	Timeout     time.Duration
	Client      *http.Client
}

// Name implements Named.
func (o *OpenRouterGenerator) Name() string { return o.model() }

func (o *OpenRouterGenerator) model() string {
	if o.Model == "" {
		return DefaultOpenRouterModel
	}
	return o.Model
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate implements Generator.
func (o *OpenRouterGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if o.APIKey == "" {
		return "", fail(req, "openrouter", "", 0, fmt.Errorf("%w: openrouter API key not set", errNotConfigured))
	}
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	base := o.BaseURL
	if base == "" {
		base = DefaultOpenRouterURL
	}
	endpoint := strings.TrimRight(base, "/") + "/chat/completions"

	body := chatCompletionRequest{
		Model:       o.model(),
		Messages:    BuildPrompt(req, o.WordScale),
		MaxTokens:   o.MaxTokens,
		Temperature: o.Temperature,
	}
	headers := map[string]string{"Authorization": "Bearer " + o.APIKey}

	var out chatCompletionResponse
	if err := postJSON(ctx, o.client(), endpoint, headers, body, &out); err != nil {
		return "", fail(req, "openrouter", "openrouter chat completion", o.Timeout, err)
	}
	if out.Error != nil && out.Error.Message != "" {
		return "", fail(req, "openrouter", "", 0, fmt.Errorf("openrouter: %s", out.Error.Message))
	}
	if len(out.Choices) == 0 {
		return "", fail(req, "openrouter", "", 0, fmt.Errorf("openrouter returned no choices"))
	}
	text := cleanText(out.Choices[0].Message.Content, req.Metadata.Label)
	if text == "" {
		return "", fail(req, "openrouter", "", 0, fmt.Errorf("openrouter returned empty content"))
	}
	return text, nil
}

func (o *OpenRouterGenerator) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return http.DefaultClient
}
