// Package inference abstracts the language-model capability the urgency
// classifier depends on. The concrete provider is chosen once at
// construction from configuration.
package inference

import (
	"context"
	"fmt"

	"herald/internal/config"
	"herald/internal/logger"
)

// Capability is a bounded text-completion dependency. Implementations
// enforce their own timeout and rate limit; callers just see a slow or
// failed call.
type Capability interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Providers accepted by config.
const (
	ProviderOpenAI = "openai"
	ProviderStub   = "stub"
)

// New builds the capability named by cfg.Provider.
func New(cfg config.InferenceConfig, log logger.Logger) (Capability, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(cfg, log)
	case ProviderStub:
		return NewStubClient(), nil
	default:
		return nil, fmt.Errorf("unknown inference provider: %q", cfg.Provider)
	}
}
