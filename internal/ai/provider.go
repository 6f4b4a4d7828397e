package ai

import (
	"context"
	"fmt"

	"github.com/classroomhelper/notes-assistant/internal/models"
)

// Provider sends a single-message prompt to a language model and returns its reply
type Provider interface {
	Name() string
	Model() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Pinger is implemented by providers that can report backend reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewProvider creates the provider named by cfg.DefaultProvider
func NewProvider(ctx context.Context, cfg models.AIConfig) (Provider, error) {
	switch cfg.DefaultProvider {
	case "", "ollama":
		return NewOllamaProvider(cfg.Ollama.BaseURL, cfg.Ollama.Model), nil

	case "openai":
		if cfg.OpenAI.APIKey == "" && cfg.OpenAI.BaseURL == "" {
			return nil, fmt.Errorf("openai provider requires an API key or base URL")
		}
		return NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model), nil

	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return NewGeminiProvider(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)

	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.DefaultProvider)
	}
}
