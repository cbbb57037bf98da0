package ai

import "strings"

// Settings are per-call runtime overrides supplied by the caller.
type Settings struct {
	Provider          ProviderName   `json:"provider,omitempty" mapstructure:"provider"`
	FallbackProviders []ProviderName `json:"fallbackProviders,omitempty" mapstructure:"fallback-providers"`
	Model             string         `json:"model,omitempty" mapstructure:"model"`
	Temperature       *float64       `json:"temperature,omitempty" mapstructure:"temperature"`
	// Debug asks the pipeline to attach raw LLM text to the result.
	Debug bool `json:"debug,omitempty" mapstructure:"debug"`
}

// Defaults are process-wide values supplied by the host application.
// They are used whenever Settings leave a field unset.
type Defaults struct {
	Provider          ProviderName
	FallbackProviders []ProviderName
	Model             string
	Temperature       float64
}

// ParseProviderName maps a loosely written name to a known provider.
// Unknown or empty names resolve to mock.
func ParseProviderName(value string) ProviderName {
	name := ProviderName(strings.ToLower(strings.TrimSpace(value)))
	if IsKnownProvider(name) {
		return name
	}
	return ProviderMock
}

// IsKnownProvider reports whether name is in the provider table.
func IsKnownProvider(name ProviderName) bool {
	for _, known := range KnownProviders {
		if name == known {
			return true
		}
	}
	return false
}

// ParseProviderNames splits a comma separated list, dropping unknown entries.
func ParseProviderNames(csv string) []ProviderName {
	names := make([]ProviderName, 0)
	for _, item := range strings.Split(csv, ",") {
		name := ProviderName(strings.ToLower(strings.TrimSpace(item)))
		if IsKnownProvider(name) {
			names = append(names, name)
		}
	}
	return names
}

// ResolveNames returns the primary provider name and the fallback names for
// a call: settings win over defaults, unknown names become mock, and the
// primary never appears among its own fallbacks.
func ResolveNames(settings *Settings, defaults Defaults) (ProviderName, []ProviderName) {
	var primaryRaw string
	var fallbacksRaw []ProviderName

	if settings != nil && settings.Provider != "" {
		primaryRaw = string(settings.Provider)
	} else {
		primaryRaw = string(defaults.Provider)
	}

	if settings != nil && settings.FallbackProviders != nil {
		fallbacksRaw = settings.FallbackProviders
	} else {
		fallbacksRaw = defaults.FallbackProviders
	}

	primary := ParseProviderName(primaryRaw)
	fallbacks := make([]ProviderName, 0, len(fallbacksRaw))
	for _, raw := range fallbacksRaw {
		name := ParseProviderName(string(raw))
		if name == primary {
			continue
		}
		fallbacks = append(fallbacks, name)
	}

	return primary, fallbacks
}

// BuildRequest merges the prompt pair with settings and defaults.
func BuildRequest(system, user string, settings *Settings, defaults Defaults) Request {
	req := Request{System: system, User: user, Model: defaults.Model}

	temperature := defaults.Temperature
	if settings != nil {
		if model := strings.TrimSpace(settings.Model); model != "" {
			req.Model = model
		}
		if settings.Temperature != nil {
			temperature = *settings.Temperature
		}
	}
	req.Temperature = &temperature

	return req
}
