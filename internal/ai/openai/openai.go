// Package openai implements a provider for any OpenAI-compatible chat
// completions endpoint.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spigell/fitcheck/internal/ai"
	"github.com/spigell/fitcheck/internal/ai/transport"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

// Config describes one OpenAI-compatible endpoint.
type Config struct {
	Name    string
	APIKey  string
	BaseURL string
	Model   string
}

// Provider talks to POST {base}/chat/completions.
type Provider struct {
	name    string
	baseURL string
	model   string
	client  *transport.Client
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content any `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// New validates cfg and returns a provider. A missing API key is a configuration error.
func New(cfg Config, httpClient *http.Client) (*Provider, error) {
	name := cfg.Name
	if name == "" {
		name = string(ai.ProviderOpenAI)
	}

	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &ai.ConfigError{Provider: ai.ProviderName(name), Message: "missing OPENAI_API_KEY"}
	}

	baseURL := cfg.BaseURL
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	return &Provider{
		name:    name,
		baseURL: transport.TrimBaseURL(baseURL),
		model:   model,
		client:  transport.New(name, httpClient, strings.TrimSpace(cfg.APIKey)),
	}, nil
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Generate(ctx context.Context, req ai.Request) (*ai.Response, error) {
	body := chatRequest{
		Model:       req.ModelOr(p.model),
		Temperature: req.TemperatureOr(ai.DefaultTemperature),
		Messages: []message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
	}

	var raw chatResponse
	if err := p.client.Post(ctx, "request", p.baseURL+"/chat/completions", body, &raw); err != nil {
		return nil, err
	}

	text := extractText(raw)
	if text == "" {
		return nil, fmt.Errorf("%s returned no text content", p.name)
	}
	return &ai.Response{Text: text, Raw: raw}, nil
}

func extractText(raw chatResponse) string {
	if len(raw.Choices) == 0 {
		return ""
	}

	switch content := raw.Choices[0].Message.Content.(type) {
	case string:
		return content
	case []any:
		var b strings.Builder
		for _, part := range content {
			if obj, ok := part.(map[string]any); ok {
				if text, ok := obj["text"].(string); ok {
					b.WriteString(text)
				}
			}
		}
		return strings.TrimSpace(b.String())
	}
	return ""
}
