// Package llm wraps the chat completion provider.
package llm

import (
	"github.com/sashabaranov/go-openai"

	"github.com/linegpt/relay/internal/config"
)

// NewClient creates an OpenAI client for the configured endpoint.
func NewClient(cfg config.LLMConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}
