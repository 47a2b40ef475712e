package llm

import (
	"context"
	"time"

	"github.com/LewisWJackson/confirmd-sub001/internal/model"
)

// Provider is the LLM-completion collaborator. Its output is untrusted
// text expected to be JSON, possibly wrapped in code fences; callers own
// schema validation and numeric clamping.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Complete sends a system+user prompt pair and returns the raw text
	// response.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// IsAvailable checks if the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// Config holds provider configuration.
type Config struct {
	// Provider name: "openai", "ollama", "".
	Provider string

	// Model name (provider-specific).
	Model string

	// APIKey for hosted providers.
	APIKey string

	// BaseURL for custom endpoints (e.g. Ollama, OpenAI-compatible proxies).
	BaseURL string

	// Timeout per completion call.
	Timeout time.Duration

	// MaxTokens for response generation.
	MaxTokens int

	// MaxRetries bounds retry attempts on transient failures.
	MaxRetries int

	// Proxy settings.
	HTTPProxy  string
	HTTPSProxy string
}

// ConfigFromModel converts model.LLMConfig to llm.Config.
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:   mc.Provider,
		Model:      mc.Model,
		APIKey:     mc.APIKey,
		BaseURL:    mc.BaseURL,
		Timeout:    mc.Timeout,
		MaxTokens:  mc.MaxTokens,
		MaxRetries: mc.MaxRetries,
		HTTPProxy:  mc.HTTPProxy,
		HTTPSProxy: mc.HTTPSProxy,
	}
}
