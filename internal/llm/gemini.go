package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/option"

	"github.com/geulmoi/geulssaem/internal/model"
)

// GeminiGenerator generates text using the Google Gemini API. This is the
// default provider: the tutor was built around gemini-1.5-flash-latest.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// GeminiConfig holds configuration for the Gemini generator.
type GeminiConfig struct {
	// APIKey is the Google AI Studio API key.
	APIKey string
	// Model is the model name (e.g., "gemini-1.5-flash-latest").
	Model string
	// BaseURL overrides the API endpoint. Empty uses the default.
	BaseURL string
}

// NewGeminiGenerator creates a new Gemini generator. The context is only
// used for client construction.
func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig) (*GeminiGenerator, error) {
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiGenerator{
		client: client,
		model:  cfg.Model,
	}, nil
}

// Provider returns "gemini".
func (g *GeminiGenerator) Provider() string {
	return "gemini"
}

// Model returns the model name.
func (g *GeminiGenerator) Model() string {
	return g.model
}

// Close releases the underlying API client.
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// Generate sends the prompt to the Gemini API and returns the raw reply.
func (g *GeminiGenerator) Generate(ctx context.Context, req model.GenerationRequest) (*model.Reply, error) {
	ctx, span := startGenerationSpan(ctx, "gemini", g.model, req)
	defer span.End()

	gm := g.client.GenerativeModel(g.model)
	gm.SetTemperature(float32(req.Temperature))
	gm.SetMaxOutputTokens(int32(req.MaxOutputTokens))

	resp, err := gm.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		span.SetAttributes(attribute.String("error.type", "api_error"))
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		span.SetAttributes(attribute.String("error.type", "empty_response"))
		return nil, fmt.Errorf("gemini API returned no candidates")
	}

	cand := resp.Candidates[0]
	var text string
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text += string(t)
		}
	}
	if text == "" {
		span.SetAttributes(attribute.String("error.type", "empty_response"))
		return nil, fmt.Errorf("gemini API returned no text parts")
	}

	var usage model.TokenUsage
	if resp.UsageMetadata != nil {
		usage = model.TokenUsage{
			InputTokens:  int64(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
		}
	}

	recordReplySpan(span, g.model, cand.FinishReason.String(), text, usage)

	return &model.Reply{Text: text, Usage: usage}, nil
}
