// Package ai is the uniform gateway to pluggable text-completion backends.
package ai

import (
	"context"
	"strings"
)

// ProviderName identifies a backend in the provider table.
type ProviderName string

const (
	ProviderMock   ProviderName = "mock"
	ProviderOpenAI ProviderName = "openai"
	ProviderOllama ProviderName = "ollama"
	ProviderCursor ProviderName = "cursor"
	ProviderGemini ProviderName = "gemini"
)

// KnownProviders lists every provider in table order.
var KnownProviders = []ProviderName{ProviderMock, ProviderOpenAI, ProviderCursor, ProviderOllama, ProviderGemini}

// DefaultTemperature is used when neither the request nor the defaults set one.
const DefaultTemperature = 0.2

// Request is a single system+user prompt pair.
type Request struct {
	System      string
	User        string
	Model       string
	Temperature *float64
}

// TemperatureOr returns the request temperature or fallback when unset.
func (r Request) TemperatureOr(fallback float64) float64 {
	if r.Temperature == nil {
		return fallback
	}
	return *r.Temperature
}

// ModelOr returns the request model or fallback when unset.
func (r Request) ModelOr(fallback string) string {
	if model := strings.TrimSpace(r.Model); model != "" {
		return model
	}
	return fallback
}

// Response carries the text returned by a provider together with the decoded payload.
type Response struct {
	Text string
	Raw  any
}

// Provider is a single text-completion backend.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Chain is the ordered list of providers tried for one call.
type Chain struct {
	Primary   Provider
	Fallbacks []Provider
}

// Providers returns primary followed by fallbacks, skipping nil entries.
func (c Chain) Providers() []Provider {
	providers := make([]Provider, 0, 1+len(c.Fallbacks))
	if c.Primary != nil {
		providers = append(providers, c.Primary)
	}
	for _, fallback := range c.Fallbacks {
		if fallback != nil {
			providers = append(providers, fallback)
		}
	}
	return providers
}

// Names returns provider names in call order.
func (c Chain) Names() []string {
	providers := c.Providers()
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	return names
}
