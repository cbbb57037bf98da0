// Package ollama implements a provider for a local Ollama server.
package ollama

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/spigell/fitcheck/internal/ai"
	"github.com/spigell/fitcheck/internal/ai/transport"
)

const (
	DefaultBaseURL = "http://127.0.0.1:11434"
	DefaultModel   = "llama3.2"
)

type Config struct {
	BaseURL string
	Model   string
}

type Provider struct {
	baseURL string
	model   string
	client  *transport.Client
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type options struct {
	Temperature float64 `json:"temperature"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Stream   bool      `json:"stream"`
	Options  options   `json:"options"`
	Messages []message `json:"messages"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

func New(cfg Config, httpClient *http.Client) *Provider {
	baseURL := cfg.BaseURL
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	return &Provider{
		baseURL: transport.TrimBaseURL(baseURL),
		model:   model,
		client:  transport.New(string(ai.ProviderOllama), httpClient, ""),
	}
}

func (p *Provider) Name() string { return string(ai.ProviderOllama) }

func (p *Provider) Generate(ctx context.Context, req ai.Request) (*ai.Response, error) {
	body := chatRequest{
		Model:   req.ModelOr(p.model),
		Stream:  false,
		Options: options{Temperature: req.TemperatureOr(ai.DefaultTemperature)},
		Messages: []message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
	}

	var raw chatResponse
	if err := p.client.Post(ctx, "request", p.baseURL+"/api/chat", body, &raw); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(raw.Message.Content)
	if text == "" {
		return nil, errors.New("ollama returned no text content")
	}
	return &ai.Response{Text: text, Raw: raw}, nil
}

// ListModels returns the locally pulled models from GET /api/tags.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	var raw any
	if err := p.client.Get(ctx, "model list", p.baseURL+"/api/tags", &raw); err != nil {
		return nil, err
	}
	return ai.NormalizeModelList(raw), nil
}
