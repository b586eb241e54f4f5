package advisor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/edgard/intillasense/internal/config"
)

// Supported provider names for config.AIConfig.Provider.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// NewClient builds the Client for the configured provider.
func NewClient(ctx context.Context, cfg config.AIConfig, log *zap.Logger) (Client, error) {
	switch cfg.Provider {
	case ProviderOpenAI, "":
		return NewOpenAIClient(cfg, log), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
