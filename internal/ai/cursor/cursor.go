// Package cursor implements the launch-then-poll background agent provider.
package cursor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spigell/fitcheck/internal/ai"
	"github.com/spigell/fitcheck/internal/ai/transport"
	"github.com/spigell/fitcheck/internal/logger"
	"github.com/spigell/fitcheck/internal/utils"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL      = "https://api.cursor.com"
	DefaultModel        = "claude-4-sonnet-thinking"
	DefaultPollInterval = time.Second
	DefaultMaxPolls     = 30
)

var (
	doneStatuses   = []string{"completed", "complete", "succeeded", "done"}
	failedStatuses = []string{"failed", "error", "cancelled", "canceled", "stopped"}
)

// ErrNotCompleted is returned when the agent is still running after the poll budget.
var ErrNotCompleted = errors.New("cursor agent did not complete in time")

type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	PollInterval time.Duration
	MaxPolls     int
}

type Provider struct {
	baseURL      string
	model        string
	pollInterval time.Duration
	maxPolls     int
	client       *transport.Client
	logger       *zap.Logger
}

type launchRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type launchResponse struct {
	ID         string `json:"id"`
	AgentID    string `json:"agentId"`
	AgentIDAlt string `json:"agent_id"`
}

func (r launchResponse) agentID() string {
	for _, id := range []string{r.ID, r.AgentID, r.AgentIDAlt} {
		if id != "" {
			return id
		}
	}
	return ""
}

type statusResponse struct {
	Status string `json:"status"`
	State  string `json:"state"`
	Agent  struct {
		Status string `json:"status"`
	} `json:"agent"`
}

func (r statusResponse) status() string {
	for _, s := range []string{r.Status, r.State, r.Agent.Status} {
		if s != "" {
			return strings.ToLower(s)
		}
	}
	return ""
}

// New validates cfg and returns a provider. A missing API key is a configuration error.
func New(cfg Config, httpClient *http.Client, l *zap.Logger) (*Provider, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, &ai.ConfigError{Provider: ai.ProviderCursor, Message: "missing CURSOR_API_KEY"}
	}

	p := &Provider{
		baseURL:      transport.TrimBaseURL(cfg.BaseURL),
		model:        strings.TrimSpace(cfg.Model),
		pollInterval: cfg.PollInterval,
		maxPolls:     cfg.MaxPolls,
		client:       transport.New(string(ai.ProviderCursor), httpClient, apiKey),
		logger:       logger.WithCommonFields(l, string(ai.ProviderCursor), ""),
	}

	if p.baseURL == "" {
		p.baseURL = DefaultBaseURL
	}
	if p.model == "" {
		p.model = DefaultModel
	}
	if p.pollInterval <= 0 {
		p.pollInterval = DefaultPollInterval
	}
	if p.maxPolls <= 0 {
		p.maxPolls = DefaultMaxPolls
	}

	return p, nil
}

func (p *Provider) Name() string { return string(ai.ProviderCursor) }

func (p *Provider) Generate(ctx context.Context, req ai.Request) (*ai.Response, error) {
	launch := launchRequest{
		Model:  req.ModelOr(p.model),
		Prompt: fmt.Sprintf("System:\n%s\n\nUser:\n%s", req.System, req.User),
	}

	var launched launchResponse
	if err := p.client.Post(ctx, "launch", p.baseURL+"/v0/agents", launch, &launched); err != nil {
		return nil, err
	}

	id := launched.agentID()
	if id == "" {
		return nil, errors.New("cursor launch returned no agent id")
	}

	agentURL := p.baseURL + "/v0/agents/" + url.PathEscape(id)
	if err := p.waitForCompletion(ctx, id, agentURL); err != nil {
		return nil, err
	}

	var conversation any
	if err := p.client.Get(ctx, "conversation", agentURL+"/conversation", &conversation); err != nil {
		return nil, err
	}

	text := assistantText(conversation)
	if text == "" {
		return nil, errors.New("cursor returned no assistant text in conversation")
	}
	return &ai.Response{Text: text, Raw: conversation}, nil
}

// ListModels returns the models advertised by GET /v0/models.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	var raw any
	if err := p.client.Get(ctx, "model list", p.baseURL+"/v0/models", &raw); err != nil {
		return nil, err
	}
	return ai.NormalizeModelList(raw), nil
}

func (p *Provider) waitForCompletion(ctx context.Context, id, agentURL string) error {
	for poll := 1; poll <= p.maxPolls; poll++ {
		var raw statusResponse
		if err := p.client.Get(ctx, "agent status", agentURL, &raw); err != nil {
			return err
		}

		status := raw.status()
		p.logger.Debug("cursor agent status", zap.String("agent_id", id), zap.String("status", status), zap.Int("poll", poll))

		if contains(doneStatuses, status) {
			return nil
		}
		if contains(failedStatuses, status) {
			return fmt.Errorf("cursor agent ended with status: %s", status)
		}

		if err := utils.WaitFor(ctx, p.pollInterval); err != nil {
			return fmt.Errorf("waiting for cursor agent %s: %w", id, err)
		}
	}

	return ErrNotCompleted
}

func assistantText(raw any) string {
	obj, ok := raw.(map[string]any)
	if !ok {
		return ""
	}

	var messages []any
	for _, key := range []string{"messages", "conversation", "items"} {
		if list, ok := obj[key].([]any); ok {
			messages = list
			break
		}
	}

	var last map[string]any
	for _, item := range messages {
		msg, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if role, _ := msg["role"].(string); strings.EqualFold(role, "assistant") {
			last = msg
		}
	}
	if last == nil {
		return ""
	}

	switch content := last["content"].(type) {
	case string:
		return content
	case []any:
		var b strings.Builder
		for _, part := range content {
			switch v := part.(type) {
			case string:
				b.WriteString(v)
			case map[string]any:
				if text, ok := v["text"].(string); ok {
					b.WriteString(text)
				}
			}
		}
		return strings.TrimSpace(b.String())
	}
	return ""
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
