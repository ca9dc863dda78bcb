package llm

import (
	"context"
	"errors"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	aoption "github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicGenerator talks to the Anthropic Messages API.
type AnthropicGenerator struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewAnthropicGenerator builds the client. The base URL is only overridden
// when explicitly configured, e.g. for a gateway.
func NewAnthropicGenerator(opts Options) *AnthropicGenerator {
	clientOpts := []aoption.RequestOption{}
	if key := strings.TrimSpace(opts.APIKey); key != "" {
		clientOpts = append(clientOpts, aoption.WithAPIKey(key))
	}
	if baseURL := strings.TrimSpace(opts.BaseURL); baseURL != "" {
		clientOpts = append(clientOpts, aoption.WithBaseURL(baseURL))
	}

	return &AnthropicGenerator{
		client:      anthropic.NewClient(clientOpts...),
		model:       opts.Model,
		maxTokens:   int64(opts.MaxTokens),
		temperature: opts.Temperature,
	}
}

// Name identifies the provider and model for logs and metrics
func (g *AnthropicGenerator) Name() string {
	return "anthropic/" + g.model
}

// Generate runs one message turn for the prompt
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   g.maxTokens,
		Temperature: anthropic.Float(g.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", &ServiceFailure{Provider: g.Name(), Err: err}
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", &ServiceFailure{Provider: g.Name(), Err: errors.New("empty completion")}
	}

	return text, nil
}
