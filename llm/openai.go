package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/openai/openai-go"
	ooption "github.com/openai/openai-go/option"
)

// defaultOpenAIBaseURL targets a local Ollama server in OpenAI
// compatibility mode, keeping patient data on the host by default.
const defaultOpenAIBaseURL = "http://localhost:11434/v1"

// OpenAIGenerator talks to an OpenAI-compatible chat completion endpoint.
type OpenAIGenerator struct {
	client      openai.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewOpenAIGenerator builds the client. An empty base URL selects the
// local Ollama endpoint; an empty API key is fine for keyless local
// servers.
func NewOpenAIGenerator(opts Options) *OpenAIGenerator {
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	clientOpts := []ooption.RequestOption{ooption.WithBaseURL(baseURL)}
	if key := strings.TrimSpace(opts.APIKey); key != "" {
		clientOpts = append(clientOpts, ooption.WithAPIKey(key))
	}

	return &OpenAIGenerator{
		client:      openai.NewClient(clientOpts...),
		model:       opts.Model,
		maxTokens:   int64(opts.MaxTokens),
		temperature: opts.Temperature,
	}
}

// Name identifies the provider and model for logs and metrics
func (g *OpenAIGenerator) Name() string {
	return "openai/" + g.model
}

// Generate runs one chat completion for the prompt
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(g.temperature),
		MaxTokens:   openai.Int(g.maxTokens),
	})
	if err != nil {
		return "", &ServiceFailure{Provider: g.Name(), Err: err}
	}

	if len(completion.Choices) == 0 {
		return "", &ServiceFailure{Provider: g.Name(), Err: errors.New("no completion choices returned")}
	}

	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return "", &ServiceFailure{Provider: g.Name(), Err: errors.New("empty completion")}
	}

	return text, nil
}
