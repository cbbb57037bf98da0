// Package gemini adapts the Google GenAI SDK to the provider interface.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/fitcheck/internal/ai"
	"github.com/spigell/fitcheck/internal/logger"
	"github.com/spigell/fitcheck/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	DefaultModel      = "gemini-2.5-pro"
	defaultMaxRetries = 3
	retryBaseDelay    = 2 * time.Second
	// maxRetryDelay is the longest server-requested delay still worth waiting for.
	maxRetryDelay = 30 * time.Second
)

var retryAfterPattern = regexp.MustCompile(`(?i)retry (?:after|in) (\d+(?:\.\d+)?)\s*s`)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Config struct {
	APIKey     string
	Model      string
	MaxRetries int
}

// Generator sends system+user prompts to Gemini and retries transient failures.
type Generator struct {
	models     contentGenerator
	model      string
	maxRetries int
	logger     *zap.Logger
}

// NewGenerator creates a Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, cfg Config, l *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, &ai.ConfigError{Provider: ai.ProviderGemini, Message: "missing GEMINI_API_KEY"}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, cfg, l), nil
}

func newGenerator(models contentGenerator, cfg Config, l *zap.Logger) *Generator {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}

	return &Generator{
		models:     models,
		model:      model,
		maxRetries: retries,
		logger:     logger.WithCommonFields(l, string(ai.ProviderGemini), model),
	}
}

func (g *Generator) Name() string { return string(ai.ProviderGemini) }

// ListModels reports the configured model.
func (g *Generator) ListModels(context.Context) ([]string, error) {
	return []string{g.model}, nil
}

func (g *Generator) Generate(ctx context.Context, req ai.Request) (*ai.Response, error) {
	text, err := g.GenerateContent(ctx, req.System, req.User, req.ModelOr(g.model), float32(req.TemperatureOr(ai.DefaultTemperature)))
	if err != nil {
		return nil, err
	}
	return &ai.Response{Text: text}, nil
}

// GenerateContent sends one prompt pair and returns the concatenated candidate text.
func (g *Generator) GenerateContent(ctx context.Context, system, user, model string, temperature float32) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	user = strings.TrimSpace(user)
	if user == "" {
		return "", errors.New("prompt must not be empty")
	}

	config := &genai.GenerateContentConfig{Temperature: genai.Ptr(temperature)}
	if strings.TrimSpace(system) != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		resp, err := g.models.GenerateContent(ctx, model, genai.Text(user), config)
		if err == nil {
			return responseText(resp)
		}
		lastErr = err

		delay, retry := retryDelay(err, attempt)
		if !retry || attempt == g.maxRetries {
			break
		}

		g.logger.Warn("gemini request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := utils.WaitFor(ctx, delay); err != nil {
			return "", fmt.Errorf("generate content: %w", err)
		}
	}

	return "", fmt.Errorf("generate content: %w", lastErr)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("gemini api returned empty response")
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return output, nil
}

// retryDelay decides whether err is transient and how long to wait before the next attempt.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return 0, false
	}

	switch apiErr.Code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
	default:
		return 0, false
	}

	if m := retryAfterPattern.FindStringSubmatch(apiErr.Message); m != nil {
		seconds, parseErr := strconv.ParseFloat(m[1], 64)
		if parseErr == nil {
			delay := time.Duration(seconds * float64(time.Second))
			if delay > maxRetryDelay {
				return 0, false
			}
			return delay, true
		}
	}

	return time.Duration(attempt) * retryBaseDelay, true
}
