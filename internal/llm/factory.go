package llm

import (
	"fmt"
	"strings"

	"github.com/mkarel/prospect/internal/model"
)

// NewProvider creates an inference provider from configuration.
func NewProvider(config model.LLMConfig) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "cerebras", "":
		// Cerebras speaks the OpenAI wire protocol at its own base URL.
		if config.BaseURL == "" {
			config.BaseURL = CerebrasBaseURL
		}
		return NewOpenAIProvider("cerebras", config)

	case "openai":
		return NewOpenAIProvider("openai", config)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: cerebras, openai)", config.Provider)
	}
}
