package ai

import (
	"fmt"
	"strings"
)

// ConfigError reports a provider that cannot run because it is misconfigured,
// typically a missing API key. It is never retried.
type ConfigError struct {
	Provider ProviderName
	Message  string
	Err      error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s provider misconfigured: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s provider misconfigured: %s", e.Provider, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ProviderFailure is one failed attempt within a chain.
type ProviderFailure struct {
	Provider string
	Err      error
}

// AllProvidersFailedError is returned when every provider of a chain failed.
type AllProvidersFailedError struct {
	Failures []ProviderFailure
}

func (e *AllProvidersFailedError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, failure := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", failure.Provider, failure.Err))
	}
	return "All LLM providers failed. " + strings.Join(parts, " | ")
}

// Unwrap exposes each provider error to errors.Is and errors.As.
func (e *AllProvidersFailedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, failure := range e.Failures {
		errs = append(errs, failure.Err)
	}
	return errs
}
