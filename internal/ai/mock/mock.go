// Package mock is the offline provider used when nothing else is configured.
package mock

import (
	"context"
	"fmt"

	"github.com/spigell/fitcheck/internal/ai"
	"github.com/spigell/fitcheck/internal/utils"
)

const previewLength = 200

// Model is the only model the mock provider reports.
const Model = "mock-model"

// Provider echoes a placeholder that embeds a preview of the user prompt.
type Provider struct {
	name string
}

// New returns a mock provider. An empty name defaults to mock.
func New(name string) *Provider {
	if name == "" {
		name = string(ai.ProviderMock)
	}
	return &Provider{name: name}
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Generate(_ context.Context, req ai.Request) (*ai.Response, error) {
	text := fmt.Sprintf("LLM stub (%s): plug in a real model provider. Prompt preview: %s...", p.name, utils.Clip(req.User, previewLength))
	return &ai.Response{Text: text}, nil
}
