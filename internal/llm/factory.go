package llm

import (
	"strings"

	"github.com/pkg/errors"
)

// NewProvider creates a completion provider from configuration. An empty
// provider name returns (nil, nil): the pipeline then runs in rule-based
// degraded mode, which is a legitimate configuration, not an error.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, nil

	default:
		return nil, errors.Errorf("unknown LLM provider: %s (supported: openai, ollama)", config.Provider)
	}
}
