package generate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultOllamaURL is the local Ollama server address.
const DefaultOllamaURL = "http://localhost:11434"

// OllamaGenerator writes speeches with a local Ollama model through the
// non-streaming /api/chat endpoint.
type OllamaGenerator struct {
	BaseURL     string
	Model       string
	Temperature float64
	WordScale   float64
	Timeout     time.Duration
	Client      *http.Client
}

// Name implements Named.
func (o *OllamaGenerator) Name() string { return o.Model }

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Stream   bool           `json:"stream"`
	Messages []Message      `json:"messages"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Error string `json:"error,omitempty"`
}

// Generate implements Generator.
func (o *OllamaGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if o.Model == "" {
		return "", fail(req, "ollama", "", 0, fmt.Errorf("%w: no ollama model set", errNotConfigured))
	}
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	base := o.BaseURL
	if base == "" {
		base = DefaultOllamaURL
	}
	endpoint := strings.TrimRight(strings.TrimSpace(base), "/") + "/api/chat"

	body := ollamaChatRequest{
		Model:    o.Model,
		Stream:   false,
		Messages: BuildPrompt(req, o.WordScale),
		Options:  map[string]any{"temperature": o.Temperature},
	}
	var out ollamaChatResponse
	if err := postJSON(ctx, o.client(), endpoint, nil, body, &out); err != nil {
		return "", fail(req, "ollama", "ollama chat request", o.Timeout, err)
	}
	if out.Error != "" {
		return "", fail(req, "ollama", "", 0, fmt.Errorf("ollama: %s", out.Error))
	}
	text := cleanText(out.Message.Content, req.Metadata.Label)
	if text == "" {
		return "", fail(req, "ollama", "", 0, fmt.Errorf("ollama returned empty response content"))
	}
	return text, nil
}

func (o *OllamaGenerator) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return http.DefaultClient
}
