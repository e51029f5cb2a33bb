package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/alex-user-go/sheltersignal/internal/config"
)

// NewClient builds the client for cfg.Provider. It returns a nil Client and no error when
// no API key is configured for a provider that needs one; callers treat that as "disabled".
func NewClient(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "gemini":
		if cfg.APIKey == "" {
			return nil, nil
		}
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		return c, nil

	case "openai":
		if cfg.APIKey == "" {
			return nil, nil
		}
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "claude":
		if cfg.APIKey == "" {
			return nil, nil
		}
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "ollama":
		// Ollama speaks the OpenAI API under /v1 and ignores the key.
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		return NewOpenAIClient(apiKey, cfg.Model, baseURL), nil

	case "", "none":
		return nil, nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
