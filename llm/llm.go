// Package llm adapts generative model providers to the report.TextGenerator
// contract. Two backends are supported: any OpenAI-compatible chat endpoint
// (the default, pointed at a local Ollama server) and the Anthropic
// Messages API.
package llm

import (
	"fmt"
	"strings"

	"github.com/giygas/pharma-assistant-api/config"
	"github.com/giygas/pharma-assistant-api/report"
)

// Compile-time checks that both providers satisfy the generator contract
var (
	_ report.TextGenerator = (*OpenAIGenerator)(nil)
	_ report.TextGenerator = (*AnthropicGenerator)(nil)
)

// ServiceFailure wraps any provider-side problem: transport errors,
// deadline hits and empty completions. The analysis pipeline treats it as
// a signal to fall back, never as a request failure.
type ServiceFailure struct {
	Provider string
	Err      error
}

func (e *ServiceFailure) Error() string {
	return fmt.Sprintf("generative service %s failed: %v", e.Provider, e.Err)
}

func (e *ServiceFailure) Unwrap() error {
	return e.Err
}

// Options configures the provider built by New.
type Options struct {
	Provider    string
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// FromConfig maps the application configuration onto provider options.
func FromConfig(cfg *config.Config) Options {
	return Options{
		Provider:    cfg.LLMProvider,
		BaseURL:     cfg.LLMBaseURL,
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
	}
}

// New builds the configured text generator.
func New(opts Options) (report.TextGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "openai":
		return NewOpenAIGenerator(opts), nil
	case "anthropic":
		return NewAnthropicGenerator(opts), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", opts.Provider)
	}
}
