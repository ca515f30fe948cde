// Package llm wraps the natural-language services used to interpret queries.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingCredential is returned when a provider is configured without an API key.
var ErrMissingCredential = errors.New("llm: missing provider api key")

// Completer sends one system instruction plus one user message and returns
// the raw text of the reply.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Options configures NewCompleter.
type Options struct {
	Provider   string
	APIKey     string
	Model      string
	BaseURL    string
	MaxRetries int
}

// NewCompleter builds a Completer for the named provider.
func NewCompleter(opts Options) (Completer, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w (provider %q)", ErrMissingCredential, provider)
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("llm: missing model")
	}

	switch provider {
	case "", "openai":
		return newOpenAICompleter(apiKey, opts), nil
	case "anthropic":
		return newAnthropicCompleter(apiKey, opts), nil
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", provider)
	}
}
