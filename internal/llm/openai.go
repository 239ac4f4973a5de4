package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"

	"github.com/geulmoi/geulssaem/internal/model"
)

// OpenAIGenerator generates text using an OpenAI-compatible Chat Completions
// API. Works with OpenAI, Azure OpenAI, and any OpenAI-compatible endpoint.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

// OpenAIConfig holds configuration for the OpenAI generator.
type OpenAIConfig struct {
	// BaseURL is the API endpoint.
	BaseURL string
	// APIKey is the API key.
	APIKey string
	// Model is the model name (e.g., "gpt-4o-mini").
	Model string
	// ExtraHeaders are additional HTTP headers.
	ExtraHeaders map[string]string
}

// NewOpenAIGenerator creates a new OpenAI-compatible generator.
func NewOpenAIGenerator(cfg OpenAIConfig) *OpenAIGenerator {
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

	return &OpenAIGenerator{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

// Provider returns "openai".
func (g *OpenAIGenerator) Provider() string {
	return "openai"
}

// Model returns the model name.
func (g *OpenAIGenerator) Model() string {
	return g.model
}

// Generate sends the prompt to an OpenAI-compatible API and returns the raw reply.
func (g *OpenAIGenerator) Generate(ctx context.Context, req model.GenerationRequest) (*model.Reply, error) {
	ctx, span := startGenerationSpan(ctx, "openai", g.model, req)
	defer span.End()

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		Temperature:         openai.Float(req.Temperature),
		MaxCompletionTokens: openai.Int(req.MaxOutputTokens),
	})
	if err != nil {
		span.SetAttributes(attribute.String("error.type", "api_error"))
		return nil, fmt.Errorf("openai API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		span.SetAttributes(attribute.String("error.type", "empty_response"))
		return nil, fmt.Errorf("openai API returned empty response")
	}

	text := resp.Choices[0].Message.Content
	usage := model.TokenUsage{
		InputTokens:          resp.Usage.PromptTokens,
		OutputTokens:         resp.Usage.CompletionTokens,
		CacheReadInputTokens: resp.Usage.PromptTokensDetails.CachedTokens,
	}

	span.SetAttributes(attribute.String("gen_ai.response.id", resp.ID))
	recordReplySpan(span, resp.Model, string(resp.Choices[0].FinishReason), text, usage)

	return &model.Reply{Text: text, Usage: usage}, nil
}
