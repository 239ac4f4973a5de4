// Package llm provides thin clients for the language models behind the tutor.
//
// This package is pure transport: it sends one prompt and returns the raw
// reply text. Prompt construction, response parsing, and every judgment about
// the student's writing live in the tutor package. Keeping the client opaque
// means any provider that can complete text can power the tutor.
package llm

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/geulmoi/geulssaem/internal/model"
)

// Generator sends a single prompt to a language model and returns its reply.
type Generator interface {
	// Generate sends the prompt and returns the raw reply text.
	Generate(ctx context.Context, req model.GenerationRequest) (*model.Reply, error)

	// Provider returns the provider name (e.g., "gemini", "anthropic", "openai").
	Provider() string

	// Model returns the model name used for generation.
	Model() string
}

// Default model per provider, used when no model is configured.
const (
	DefaultGeminiModel    = "gemini-1.5-flash-latest"
	DefaultAnthropicModel = "claude-sonnet-4-5"
	DefaultOpenAIModel    = "gpt-4o-mini"
)

var genTracer = otel.Tracer("geulssaem/llm")

// startGenerationSpan opens a GenAI generation span following OTel GenAI
// semantic conventions. Span name: "{operation} {model}" per the conventions.
func startGenerationSpan(ctx context.Context, provider, modelName string, req model.GenerationRequest) (context.Context, trace.Span) {
	ctx, span := genTracer.Start(ctx, "chat "+modelName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			// GenAI semantic conventions (required + recommended)
			attribute.String("gen_ai.operation.name", "chat"),
			attribute.String("gen_ai.provider.name", provider),
			attribute.String("gen_ai.request.model", modelName),
			attribute.Float64("gen_ai.request.temperature", req.Temperature),
			attribute.Int64("gen_ai.request.max_tokens", req.MaxOutputTokens),

			// Langfuse-specific: ensure this shows as a "generation"
			attribute.String("langfuse.observation.type", "generation"),
		),
	)

	// Record input as a single user message
	inputMessages := []map[string]string{
		{"role": "user", "content": req.Prompt},
	}
	if inputJSON, err := json.Marshal(inputMessages); err == nil {
		span.SetAttributes(attribute.String("gen_ai.input.messages", string(inputJSON)))
	}

	return ctx, span
}

// recordReplySpan records response attributes and the output message on a
// generation span.
func recordReplySpan(span trace.Span, responseModel, finishReason, text string, usage model.TokenUsage) {
	span.SetAttributes(
		attribute.String("gen_ai.response.model", responseModel),
		attribute.Int64("gen_ai.usage.input_tokens", usage.InputTokens),
		attribute.Int64("gen_ai.usage.output_tokens", usage.OutputTokens),
	)
	if finishReason != "" {
		span.SetAttributes(attribute.StringSlice("gen_ai.response.finish_reasons", []string{finishReason}))
	}

	outputMessages := []map[string]string{
		{"role": "assistant", "content": text},
	}
	if outputJSON, err := json.Marshal(outputMessages); err == nil {
		span.SetAttributes(attribute.String("gen_ai.output.messages", string(outputJSON)))
	}
}
