package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.opentelemetry.io/otel/attribute"

	"github.com/geulmoi/geulssaem/internal/model"
)

// AnthropicGenerator generates text using the Anthropic Messages API.
// Works with both direct Anthropic API and Azure AI Foundry.
type AnthropicGenerator struct {
	client anthropic.Client
	model  string
}

// AnthropicConfig holds configuration for the Anthropic generator.
type AnthropicConfig struct {
	// BaseURL is the API endpoint (e.g., "https://resource.services.ai.azure.com/anthropic/").
	BaseURL string
	// APIKey is the API key.
	APIKey string
	// Model is the model name (e.g., "claude-sonnet-4-5").
	Model string
	// ExtraHeaders are additional HTTP headers (e.g., "api-key" for Azure).
	ExtraHeaders map[string]string
}

// NewAnthropicGenerator creates a new Anthropic generator.
func NewAnthropicGenerator(cfg AnthropicConfig) *AnthropicGenerator {
	var opts []option.RequestOption

	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	for k, v := range cfg.ExtraHeaders {
		opts = append(opts, option.WithHeader(k, v))
	}

	return &AnthropicGenerator{
		client: anthropic.NewClient(opts...),
		model:  cfg.Model,
	}
}

// Provider returns "anthropic".
func (g *AnthropicGenerator) Provider() string {
	return "anthropic"
}

// Model returns the model name.
func (g *AnthropicGenerator) Model() string {
	return g.model
}

// Generate sends the prompt to the Anthropic API and returns the raw reply.
func (g *AnthropicGenerator) Generate(ctx context.Context, req model.GenerationRequest) (*model.Reply, error) {
	ctx, span := startGenerationSpan(ctx, "anthropic", g.model, req)
	defer span.End()

	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   req.MaxOutputTokens,
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(req.Prompt),
			),
		},
	})
	if err != nil {
		span.SetAttributes(attribute.String("error.type", "api_error"))
		return nil, fmt.Errorf("anthropic API call failed: %w", err)
	}

	if len(resp.Content) == 0 {
		span.SetAttributes(attribute.String("error.type", "empty_response"))
		return nil, fmt.Errorf("anthropic API returned empty response")
	}

	text := resp.Content[0].Text
	usage := model.TokenUsage{
		InputTokens:              resp.Usage.InputTokens,
		OutputTokens:             resp.Usage.OutputTokens,
		CacheReadInputTokens:     resp.Usage.CacheReadInputTokens,
		CacheCreationInputTokens: resp.Usage.CacheCreationInputTokens,
	}

	recordReplySpan(span, g.model, string(resp.StopReason), text, usage)

	return &model.Reply{Text: text, Usage: usage}, nil
}
