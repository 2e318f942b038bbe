// Package generator wraps hosted text-generation backends behind one
// operation: prompt string in, generated text out.
//
// Three providers are supported (gemini, anthropic, openai). All of them are
// configured with SDK retries switched off: a failed call is reported to the
// caller once and never replayed.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Generator produces text for a prompt. An empty string with a nil error is
// a valid answer; callers decide whether that is a failure.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Provider names a text-generation backend.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// ErrMissingCredential is returned by New when no API key is configured.
var ErrMissingCredential = errors.New("generator: API key is not configured")

// Config selects and configures one provider.
type Config struct {
	Provider  Provider
	APIKey    string
	Model     string // empty means the provider default
	BaseURL   string // optional override, e.g. a proxy
	MaxTokens int
}

// DefaultModel returns the model used when Config.Model is empty.
func DefaultModel(p Provider) string {
	switch p {
	case ProviderAnthropic:
		return "claude-sonnet-4-5"
	case ProviderOpenAI:
		return "gpt-4o-mini"
	default:
		return "gemini-2.5-flash"
	}
}

// ParseProvider normalises a provider name. Empty means gemini.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ProviderGemini, nil
	case ProviderGemini, ProviderAnthropic, ProviderOpenAI:
		return p, nil
	default:
		return "", fmt.Errorf("generator: unsupported provider %q", s)
	}
}

// New builds the generator for cfg.Provider.
func New(ctx context.Context, cfg Config) (Generator, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingCredential
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}

	if cfg.Provider == "" {
		cfg.Provider = ProviderGemini
	}

	var gen Generator
	switch cfg.Provider {
	case ProviderGemini:
		g, err := NewGemini(ctx, cfg)
		if err != nil {
			return nil, err
		}
		gen = g
	case ProviderAnthropic:
		gen = NewAnthropic(cfg)
	case ProviderOpenAI:
		gen = NewOpenAI(cfg)
	default:
		return nil, fmt.Errorf("generator: unsupported provider %q", cfg.Provider)
	}

	return Instrument(gen, cfg.Provider, cfg.Model), nil
}
