package fit

import (
	"context"
	"errors"
	"strings"

	"github.com/spigell/fitcheck/internal/ai"
	"github.com/spigell/fitcheck/internal/profile"
)

// MinJobDescriptionLength is the shortest trimmed job description accepted.
const MinJobDescriptionLength = 40

const (
	msgShortJobDescription = "Please paste a reasonably complete job description."
	msgProviderUnavailable = "The AI provider is not available. Please check your settings or try again later."
	msgMalformedResponse   = "The AI response was not in the expected format. Try again, or simplify the job description."
)

// InputError rejects an assessment before any model call is made.
type InputError struct {
	Message string
	Err     error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *InputError) Unwrap() error { return e.Err }

// StageError reports a pipeline stage that could not turn model output into requirements.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// ErrorKind is the coarse class of an assessment failure.
type ErrorKind string

const (
	KindInput     ErrorKind = "input"
	KindConfig    ErrorKind = "config"
	KindProvider  ErrorKind = "provider"
	KindMalformed ErrorKind = "malformed"
	KindUnknown   ErrorKind = "unknown"
)

// Classify maps an error returned by Assess onto an ErrorKind.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var inputErr *InputError
	var validationErr *profile.ValidationError
	var stageErr *StageError
	var cfgErr *ai.ConfigError
	var failedErr *ai.AllProvidersFailedError

	switch {
	case errors.As(err, &inputErr), errors.As(err, &validationErr):
		return KindInput
	case errors.As(err, &stageErr), errors.Is(err, ErrInvalidRequirements):
		return KindMalformed
	case errors.As(err, &cfgErr):
		return KindConfig
	case errors.As(err, &failedErr), errors.Is(err, context.DeadlineExceeded):
		return KindProvider
	}
	return KindUnknown
}

var (
	providerHints  = []string{"all llm providers failed", "fetch failed", "network", "http", "timeout", "econn", "enotfound"}
	malformedHints = []string{"did not return a valid", "valid json", "json parse", "unexpected token"}
)

// FriendlyMessage turns an assessment error into a message fit for end users.
// Provider and malformed-output failures get fixed messages; anything else
// keeps its own message.
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}

	switch Classify(err) {
	case KindProvider:
		return msgProviderUnavailable
	case KindMalformed:
		return msgMalformedResponse
	case KindInput, KindConfig:
		return err.Error()
	}

	normalized := strings.ToLower(err.Error())
	if containsAny(normalized, providerHints) {
		return msgProviderUnavailable
	}
	if containsAny(normalized, malformedHints) {
		return msgMalformedResponse
	}
	return err.Error()
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
