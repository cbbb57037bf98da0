// Package registry maps provider names to constructors and resolves the
// provider chain for a call.
package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spigell/fitcheck/internal/ai"
	"github.com/spigell/fitcheck/internal/ai/cursor"
	"github.com/spigell/fitcheck/internal/ai/gemini"
	"github.com/spigell/fitcheck/internal/ai/mock"
	"github.com/spigell/fitcheck/internal/ai/ollama"
	"github.com/spigell/fitcheck/internal/ai/openai"
	"github.com/spigell/fitcheck/internal/logger"
	"github.com/spigell/fitcheck/internal/secrets"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Factory builds one provider from the registry configuration.
type Factory func(ctx context.Context, r *Registry) (ai.Provider, error)

// ModelLister is implemented by providers that can enumerate their models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

type OpenAIConfig struct {
	Key     secrets.Source
	BaseURL string
	Model   string
	// Models is the static list reported by model discovery.
	Models []string
}

type CursorConfig struct {
	Key          secrets.Source
	BaseURL      string
	Model        string
	PollInterval time.Duration
	MaxPolls     int
}

type GeminiConfig struct {
	Key        secrets.Source
	Model      string
	MaxRetries int
}

// Config is everything the host application knows about providers.
type Config struct {
	Defaults   ai.Defaults
	OpenAI     OpenAIConfig
	Ollama     ollama.Config
	Cursor     CursorConfig
	Gemini     GeminiConfig
	HTTPClient *http.Client
}

// Registry resolves provider chains. It is read-only after construction.
type Registry struct {
	cfg       Config
	logger    *zap.Logger
	factories map[ai.ProviderName]Factory
}

type Option func(*Registry)

// WithFactory replaces the constructor used for name.
func WithFactory(name ai.ProviderName, f Factory) Option {
	return func(r *Registry) { r.factories[name] = f }
}

func New(cfg Config, l *zap.Logger, opts ...Option) *Registry {
	r := &Registry{
		cfg:    cfg,
		logger: logger.OrNop(l),
		factories: map[ai.ProviderName]Factory{
			ai.ProviderMock:   newMock,
			ai.ProviderOpenAI: newOpenAI,
			ai.ProviderOllama: newOllama,
			ai.ProviderCursor: newCursor,
			ai.ProviderGemini: newGemini,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Defaults returns the process-wide provider defaults.
func (r *Registry) Defaults() ai.Defaults {
	return r.cfg.Defaults
}

// Provider builds a single provider by name. Unknown names build mock.
func (r *Registry) Provider(ctx context.Context, name ai.ProviderName) (ai.Provider, error) {
	if !ai.IsKnownProvider(name) {
		name = ai.ProviderMock
	}
	factory, ok := r.factories[name]
	if !ok {
		return nil, &ai.ConfigError{Provider: name, Message: "provider is not registered"}
	}
	return factory(ctx, r)
}

// Resolve builds the primary provider and its fallbacks for one call.
// A configuration error from any factory aborts resolution.
func (r *Registry) Resolve(ctx context.Context, settings *ai.Settings) (ai.Chain, error) {
	primaryName, fallbackNames := ai.ResolveNames(settings, r.cfg.Defaults)

	primary, err := r.Provider(ctx, primaryName)
	if err != nil {
		return ai.Chain{}, fmt.Errorf("resolving primary provider %s: %w", primaryName, err)
	}

	chain := ai.Chain{Primary: primary, Fallbacks: make([]ai.Provider, 0, len(fallbackNames))}
	for _, name := range fallbackNames {
		fallback, err := r.Provider(ctx, name)
		if err != nil {
			return ai.Chain{}, fmt.Errorf("resolving fallback provider %s: %w", name, err)
		}
		chain.Fallbacks = append(chain.Fallbacks, fallback)
	}

	r.logger.Debug("resolved llm providers", zap.Strings("chain", chain.Names()))
	return chain, nil
}

// ListModels returns the models the named provider can serve.
func (r *Registry) ListModels(ctx context.Context, name ai.ProviderName) ([]string, error) {
	switch name {
	case ai.ProviderMock:
		return []string{mock.Model}, nil
	case ai.ProviderOpenAI:
		return append([]string{}, r.cfg.OpenAI.Models...), nil
	}

	if !ai.IsKnownProvider(name) {
		return nil, fmt.Errorf("unknown provider %q", name)
	}

	provider, err := r.Provider(ctx, name)
	if err != nil {
		return nil, err
	}
	lister, ok := provider.(ModelLister)
	if !ok {
		return nil, fmt.Errorf("provider %s does not support model listing", name)
	}
	return lister.ListModels(ctx)
}

// ModelListing is the outcome of listing one provider.
type ModelListing struct {
	Provider ai.ProviderName `json:"provider"`
	Models   []string        `json:"models"`
	Error    string          `json:"error,omitempty"`
}

// ListAllModels lists every known provider concurrently. Per-provider errors
// are recorded in the listing; cancellation of ctx aborts the whole call.
func (r *Registry) ListAllModels(ctx context.Context) ([]ModelListing, error) {
	listings := make([]ModelListing, len(ai.KnownProviders))
	g, gctx := errgroup.WithContext(ctx)

	for i, name := range ai.KnownProviders {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			models, err := r.ListModels(gctx, name)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			listings[i] = ModelListing{Provider: name, Models: models}
			if err != nil {
				listings[i].Error = err.Error()
				r.logger.Debug("model listing failed", zap.String(logger.FieldProvider, string(name)), zap.Error(err))
			}
			if listings[i].Models == nil {
				listings[i].Models = []string{}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	return listings, nil
}

func newMock(context.Context, *Registry) (ai.Provider, error) {
	return mock.New(string(ai.ProviderMock)), nil
}

func newOpenAI(_ context.Context, r *Registry) (ai.Provider, error) {
	key, err := loadKey(ai.ProviderOpenAI, r.cfg.OpenAI.Key)
	if err != nil {
		return nil, err
	}
	return openai.New(openai.Config{
		Name:    string(ai.ProviderOpenAI),
		APIKey:  key,
		BaseURL: r.cfg.OpenAI.BaseURL,
		Model:   firstNonEmpty(r.cfg.OpenAI.Model, r.cfg.Defaults.Model),
	}, r.cfg.HTTPClient)
}

func newOllama(_ context.Context, r *Registry) (ai.Provider, error) {
	return ollama.New(ollama.Config{
		BaseURL: r.cfg.Ollama.BaseURL,
		Model:   firstNonEmpty(r.cfg.Ollama.Model, r.cfg.Defaults.Model),
	}, r.cfg.HTTPClient), nil
}

func newCursor(_ context.Context, r *Registry) (ai.Provider, error) {
	key, err := loadKey(ai.ProviderCursor, r.cfg.Cursor.Key)
	if err != nil {
		return nil, err
	}
	return cursor.New(cursor.Config{
		APIKey:       key,
		BaseURL:      r.cfg.Cursor.BaseURL,
		Model:        firstNonEmpty(r.cfg.Cursor.Model, r.cfg.Defaults.Model),
		PollInterval: r.cfg.Cursor.PollInterval,
		MaxPolls:     r.cfg.Cursor.MaxPolls,
	}, r.cfg.HTTPClient, r.logger)
}

func newGemini(ctx context.Context, r *Registry) (ai.Provider, error) {
	key, err := loadKey(ai.ProviderGemini, r.cfg.Gemini.Key)
	if err != nil {
		return nil, err
	}
	return gemini.NewGenerator(ctx, gemini.Config{
		APIKey:     key,
		Model:      firstNonEmpty(r.cfg.Gemini.Model, r.cfg.Defaults.Model),
		MaxRetries: r.cfg.Gemini.MaxRetries,
	}, r.logger)
}

func loadKey(provider ai.ProviderName, src secrets.Source) (string, error) {
	if !src.Configured() {
		return "", &ai.ConfigError{Provider: provider, Message: "missing API key", Err: secrets.ErrNotConfigured}
	}

	key, err := secrets.Load(src)
	if err == nil {
		return key, nil
	}

	msg := "failed to load API key"
	if errors.Is(err, secrets.ErrNotConfigured) {
		msg = "missing API key"
	}
	return "", &ai.ConfigError{Provider: provider, Message: msg, Err: err}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
