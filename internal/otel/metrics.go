package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "geulssaem"

// Metrics holds all OTEL metric instruments for geulssaem.
// All counters are cumulative (monotonic) and safe for concurrent use.
type Metrics struct {
	// LLM token counters (partitioned by provider + model via attributes)
	InputTokens         metric.Int64Counter
	OutputTokens        metric.Int64Counter
	CacheReadTokens     metric.Int64Counter
	CacheCreationTokens metric.Int64Counter

	// Model call attempts (partitioned by provider + result: ok, error)
	Attempts metric.Int64Counter

	// Evaluation counters (partitioned by outcome: scored, or the fallback reason)
	Evaluations metric.Int64Counter

	// Conversation counters (partitioned by outcome: replied, fallback)
	Conversations metric.Int64Counter
}

// NewMetrics creates all metric instruments. Returns no-op instruments
// when no MeterProvider is registered (safe to call unconditionally).
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	// --- LLM token counters ---

	m.InputTokens, err = meter.Int64Counter("llm.tokens.input",
		metric.WithDescription("Total LLM input tokens consumed"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	m.OutputTokens, err = meter.Int64Counter("llm.tokens.output",
		metric.WithDescription("Total LLM output tokens consumed"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	m.CacheReadTokens, err = meter.Int64Counter("llm.tokens.cache_read",
		metric.WithDescription("Total input tokens served from provider prompt cache"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	m.CacheCreationTokens, err = meter.Int64Counter("llm.tokens.cache_creation",
		metric.WithDescription("Total input tokens used to create provider prompt cache entries"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	// --- Model call counters ---

	m.Attempts, err = meter.Int64Counter("llm.attempts.total",
		metric.WithDescription("Total model call attempts partitioned by provider and result (ok, error)"))
	if err != nil {
		return nil, err
	}

	// --- Tutoring counters ---

	m.Evaluations, err = meter.Int64Counter("evaluations.total",
		metric.WithDescription("Total writing evaluations partitioned by outcome (scored, or the fallback reason)"))
	if err != nil {
		return nil, err
	}

	m.Conversations, err = meter.Int64Counter("conversations.total",
		metric.WithDescription("Total conversation turns partitioned by outcome (replied, fallback)"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordTokens records LLM token usage on the metric counters.
func (m *Metrics) RecordTokens(ctx context.Context, provider, model string, input, output, cacheRead, cacheCreation int64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("llm.provider", provider),
		attribute.String("llm.model", model),
	)
	m.InputTokens.Add(ctx, input, attrs)
	m.OutputTokens.Add(ctx, output, attrs)
	if cacheRead > 0 {
		m.CacheReadTokens.Add(ctx, cacheRead, attrs)
	}
	if cacheCreation > 0 {
		m.CacheCreationTokens.Add(ctx, cacheCreation, attrs)
	}
}

// RecordAttempt records one model call attempt and its result.
func (m *Metrics) RecordAttempt(ctx context.Context, provider string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.Attempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("llm.provider", provider),
		attribute.String("llm.result", result),
	))
}

// RecordEvaluation records a finished evaluation. outcome is "scored"
// for a model-produced score, otherwise the fallback reason.
func (m *Metrics) RecordEvaluation(ctx context.Context, provider, outcome string) {
	if m == nil {
		return
	}
	m.Evaluations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("llm.provider", provider),
		attribute.String("evaluation.outcome", outcome),
	))
}

// RecordConversation records a finished conversation turn.
func (m *Metrics) RecordConversation(ctx context.Context, provider string, fallback bool) {
	if m == nil {
		return
	}
	outcome := "replied"
	if fallback {
		outcome = "fallback"
	}
	m.Conversations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("llm.provider", provider),
		attribute.String("conversation.outcome", outcome),
	))
}
