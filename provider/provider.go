package provider

import (
	"context"
	"fmt"

	"github.com/giygas/interactions-api/config"
	"github.com/giygas/interactions-api/entities"
	"github.com/giygas/interactions-api/interfaces"
	"github.com/giygas/interactions-api/logging"
)

// Compile-time check to ensure Disabled implements TextGenerationProvider
var _ interfaces.TextGenerationProvider = Disabled{}

// Disabled is used when no provider is configured. Every call fails fast so
// narratives use the fallback text.
type Disabled struct{}

func (Disabled) Name() string { return config.ProviderNone }

func (Disabled) Generate(context.Context, string, entities.GenerationParams) (string, error) {
	return "", fmt.Errorf("%w: no provider configured", entities.ErrProviderUnavailable)
}

// IsDisabled reports whether p is the Disabled provider
func IsDisabled(p interfaces.TextGenerationProvider) bool {
	_, ok := p.(Disabled)
	return ok
}

// New builds the configured provider wrapped in a circuit breaker. A
// provider without credentials is replaced by Disabled rather than failing
// startup.
func New(ctx context.Context, cfg *config.Config) (interfaces.TextGenerationProvider, error) {
	if !cfg.ProviderEnabled() {
		if cfg.Provider != config.ProviderNone {
			logging.Warn("Text generation provider has no credentials, narratives will use fallback text",
				"provider", cfg.Provider)
		}
		return Disabled{}, nil
	}

	var p interfaces.TextGenerationProvider
	switch cfg.Provider {
	case config.ProviderHuggingFace:
		p = NewHuggingFace(cfg.HFModelURL, cfg.HFAPIToken)
	case config.ProviderGemini:
		gemini, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		p = gemini
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	logging.Info("Text generation provider configured", "provider", p.Name())
	return WithBreaker(p, DefaultBreakerConfig()), nil
}
