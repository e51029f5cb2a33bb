package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-user-go/sheltersignal/internal/config"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.LLMConfig
		wantNil  bool
		wantType any
		wantErr  bool
	}{
		{name: "gemini without key is disabled", cfg: config.LLMConfig{Provider: "gemini"}, wantNil: true},
		{name: "openai without key is disabled", cfg: config.LLMConfig{Provider: "openai"}, wantNil: true},
		{name: "claude without key is disabled", cfg: config.LLMConfig{Provider: "Claude"}, wantNil: true},
		{name: "none", cfg: config.LLMConfig{Provider: "none"}, wantNil: true},
		{name: "openai", cfg: config.LLMConfig{Provider: "openai", APIKey: "k", Model: "gpt-4o-mini"}, wantType: &OpenAIClient{}},
		{name: "claude", cfg: config.LLMConfig{Provider: "claude", APIKey: "k", Model: "claude-3-5-haiku-latest"}, wantType: &ClaudeClient{}},
		{name: "ollama needs no key", cfg: config.LLMConfig{Provider: "ollama", Model: "llama3"}, wantType: &OpenAIClient{}},
		{name: "unknown provider", cfg: config.LLMConfig{Provider: "markov"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(context.Background(), tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, c)
				return
			}
			assert.IsType(t, tt.wantType, c)
		})
	}
}
