package ai

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/spigell/fitcheck/internal/logger"
	"github.com/spigell/fitcheck/internal/utils"
	"go.uber.org/zap"
)

const defaultMaxLogLength = 200

// Observer receives the outcome of every provider attempt. It is optional.
type Observer interface {
	ObserveProviderCall(provider string, err error)
}

// Gateway sends one prompt pair through a provider chain with sequential failover.
type Gateway struct {
	logger    *zap.Logger
	maxLogLen int
	observer  Observer
}

// GatewayOption customises a Gateway.
type GatewayOption func(*Gateway)

// WithObserver reports each provider attempt to o.
func WithObserver(o Observer) GatewayOption {
	return func(g *Gateway) { g.observer = o }
}

// NewGateway builds a gateway. A non-positive maxLogLength falls back to 200 runes.
func NewGateway(l *zap.Logger, maxLogLength int, opts ...GatewayOption) *Gateway {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	g := &Gateway{logger: logger.OrNop(l), maxLogLen: maxLogLength}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate tries the chain primary first, then each fallback in order, and
// returns the text of the first success.
func (g *Gateway) Generate(ctx context.Context, chain Chain, req Request) (string, error) {
	providers := chain.Providers()
	if len(providers) == 0 {
		return "", &ConfigError{Provider: ProviderMock, Message: "no providers in chain"}
	}

	g.logger.Debug("llm system prompt",
		zap.Int("length", utf8.RuneCountInString(req.System)),
		zap.String("preview", utils.TruncateForLog(req.System, g.maxLogLen)),
	)
	g.logger.Debug("llm user prompt",
		zap.Int("length", utf8.RuneCountInString(req.User)),
		zap.String("preview", utils.TruncateForLog(req.User, g.maxLogLen)),
	)

	failures := make([]ProviderFailure, 0, len(providers))
	for _, provider := range providers {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("llm chain interrupted before %s: %w", provider.Name(), err)
		}

		l := logger.WithCommonFields(g.logger, provider.Name(), req.Model)

		resp, err := provider.Generate(ctx, req)
		if err == nil && resp == nil {
			err = errors.New("empty response")
		}
		if g.observer != nil {
			g.observer.ObserveProviderCall(provider.Name(), err)
		}
		if err != nil {
			l.Warn("llm provider failed", zap.Error(err))
			failures = append(failures, ProviderFailure{Provider: provider.Name(), Err: err})
			continue
		}

		l.Debug("llm provider response",
			zap.Int("length", utf8.RuneCountInString(resp.Text)),
			zap.String("preview", utils.TruncateForLog(resp.Text, g.maxLogLen)),
		)
		return resp.Text, nil
	}

	return "", &AllProvidersFailedError{Failures: failures}
}
