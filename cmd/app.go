package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spigell/fitcheck/internal/ai"
	"github.com/spigell/fitcheck/internal/ai/ollama"
	"github.com/spigell/fitcheck/internal/ai/registry"
	"github.com/spigell/fitcheck/internal/fit"
	"github.com/spigell/fitcheck/internal/metrics"
	"github.com/spigell/fitcheck/internal/recent"
	"github.com/spigell/fitcheck/internal/secrets"
)

// application holds the wired pipeline shared by the commands.
type application struct {
	registry *registry.Registry
	assessor *fit.Assessor
	recent   recent.Store
	metrics  *metrics.Metrics
	closers  []func() error
}

// newApplication wires providers, gateway and the assessor. m may be nil.
func newApplication(config *Config, m *metrics.Metrics, logger *zap.Logger) (*application, error) {
	reg := registry.New(registryConfig(config.LLM), logger)

	var opts []ai.GatewayOption
	if m != nil {
		opts = append(opts, ai.WithObserver(m))
	}
	gateway := ai.NewGateway(logger, config.LLM.MaxLogLength, opts...)

	corrector := fit.NewCorrector(config.Fit.ExtraTechTerms, config.Fit.ExtraHardConstraints)

	a := &application{
		registry: reg,
		assessor: fit.NewAssessor(reg, gateway, corrector, logger),
		metrics:  m,
	}

	store, closer, err := newRecentStore(config.Recent)
	if err != nil {
		return nil, err
	}
	a.recent = store
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	return a, nil
}

func (a *application) Close() {
	for _, c := range a.closers {
		_ = c()
	}
}

func registryConfig(cfg *LLMConfig) registry.Config {
	fallbacks := make([]ai.ProviderName, 0, len(cfg.FallbackProviders))
	for _, name := range cfg.FallbackProviders {
		fallbacks = append(fallbacks, ai.ParseProviderNames(name)...)
	}

	return registry.Config{
		Defaults: ai.Defaults{
			Provider:          ai.ParseProviderName(cfg.Provider),
			FallbackProviders: fallbacks,
			Model:             strings.TrimSpace(cfg.Model),
			Temperature:       cfg.Temperature,
		},
		OpenAI: registry.OpenAIConfig{
			Key:     secrets.Source{Name: "OPENAI_API_KEY", Value: cfg.OpenAI.APIKey, File: cfg.OpenAI.APIKeyFile},
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
			Models:  splitList(cfg.OpenAI.Models),
		},
		Ollama: ollama.Config{
			BaseURL: cfg.Ollama.BaseURL,
			Model:   cfg.Ollama.Model,
		},
		Cursor: registry.CursorConfig{
			Key:          secrets.Source{Name: "CURSOR_API_KEY", Value: cfg.Cursor.APIKey, File: cfg.Cursor.APIKeyFile},
			BaseURL:      cfg.Cursor.BaseURL,
			Model:        cfg.Cursor.Model,
			PollInterval: cfg.Cursor.PollInterval,
			MaxPolls:     cfg.Cursor.MaxPolls,
		},
		Gemini: registry.GeminiConfig{
			Key:        secrets.Source{Name: "GEMINI_API_KEY", Value: cfg.Gemini.APIKey, File: cfg.Gemini.APIKeyFile},
			Model:      cfg.Gemini.Model,
			MaxRetries: cfg.Gemini.MaxRetries,
		},
	}
}

// splitList flattens entries that may themselves be comma separated.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, ai.SplitModelList(v)...)
	}
	return out
}

func newRecentStore(cfg *RecentConfig) (recent.Store, func() error, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "file":
		path := cfg.File
		if path == "" {
			path = defaultRecentFile()
		}
		return recent.NewFileStore(path, cfg.Max), nil, nil
	case "redis":
		if cfg.Redis.Addr == "" {
			return nil, nil, fmt.Errorf("recent.redis.addr is required for the redis backend (or set FITCHECK_REDIS_ADDR)")
		}
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		store := recent.NewRedisStore(client, cfg.Redis.Key, cfg.Max)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, err
		}
		return store, client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported recent roles backend: %s", cfg.Backend)
	}
}

func defaultRecentFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "." + app + "-recent.json"
	}
	return filepath.Join(dir, app, "recent.json")
}
