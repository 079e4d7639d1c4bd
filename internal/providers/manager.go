package providers

import (
	"fmt"
	"strings"

	"coursetrack/internal/config"
)

// New builds the configured provider. "openrouter" needs an API key;
// "local" and "mock" always work.
func New(cfg config.Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "local":
		return NewLocalProvider(), nil
	case "mock":
		return NewMockProvider(), nil
	case "openrouter":
		if strings.TrimSpace(cfg.OpenRouterAPIKey) == "" {
			return nil, fmt.Errorf("openrouter provider selected but OPENROUTER_API_KEY is empty")
		}
		return NewOpenRouterProvider(cfg.OpenRouterAPIKey, cfg.OpenRouterModel), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
