package provider

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/agentdesk/deepresearch/config"
	openai_provider "github.com/agentdesk/deepresearch/provider/openai"
)

// ErrUnavailable indicates the completion endpoint cannot be used at
// all (no provider configured, or the provider is explicitly disabled).
// Agents treat it like any other completion failure and fall back to
// their deterministic paths.
var ErrUnavailable = errors.New("llm provider unavailable")

// Provider is the text-completion boundary consumed by every agent.
// Implementations may fail for transport or credential reasons; callers
// must never propagate such failures past their own fallback logic.
type Provider interface {
	Complete(ctx context.Context, system, user, model string, temperature float64, maxTokens int) (string, error)
}

// Disabled is a Provider that always fails. It is the default when no
// provider is configured and the workhorse of fallback-path tests.
type Disabled struct{}

func (Disabled) Complete(ctx context.Context, system, user, model string, temperature float64, maxTokens int) (string, error) {
	return "", ErrUnavailable
}

// NewProvider builds a Provider from configuration. The first
// configured provider wins; with none configured, an OpenAI provider is
// assembled from the environment when OPENAI_API_KEY is set, otherwise
// the Disabled provider is returned so the pipeline runs on fallbacks.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	for name, pc := range cfg.Providers {
		switch pc.Type {
		case "openai":
			return openai_provider.NewClient(pc.APIKey, pc.BaseURL, pc.Timeout), nil
		case "disabled":
			return Disabled{}, nil
		default:
			return nil, fmt.Errorf("unsupported llm provider type %q (provider %s)", pc.Type, name)
		}
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return openai_provider.NewClient(key, "", 30*time.Second), nil
	}
	return Disabled{}, nil
}
