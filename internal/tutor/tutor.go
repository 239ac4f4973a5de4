// Package tutor implements the writing tutor: prompt construction, the
// evaluation retry loop, response validation, and the conversation path.
//
// Evaluate and Converse are total. They always return something the student
// can be shown, substituting a fixed score and message when the model cannot
// be reached or its reply cannot be understood.
package tutor

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/geulmoi/geulssaem/internal/events"
	"github.com/geulmoi/geulssaem/internal/llm"
	"github.com/geulmoi/geulssaem/internal/model"
	gsotel "github.com/geulmoi/geulssaem/internal/otel"
)

// Generation parameters per mode. Evaluation runs cool and bounded
// because the reply must stay machine-readable; conversation runs warmer.
const (
	evalTemperature = 0.3
	evalMaxTokens   = 800
	chatTemperature = 0.7
	chatMaxTokens   = 500
)

const (
	// minSubmissionRunes is the shortest submission worth evaluating,
	// counted in runes after trimming so Korean text is measured per
	// character, not per byte.
	minSubmissionRunes = 10

	maxAttempts        = 3
	transportRetryWait = 2 * time.Second
	invalidRetryWait   = 1 * time.Second
)

var tracer = otel.Tracer("geulssaem")

// Tutor evaluates student writing and holds conversations about it.
// Gen is required; everything else is optional.
type Tutor struct {
	Gen            llm.Generator
	AttemptTimeout time.Duration   // per-attempt deadline; 0 disables
	Events         *events.Store   // session activity log; nil disables
	Metrics        *gsotel.Metrics // OTEL metric counters; nil-safe

	// Sleep replaces the retry wait in tests. Nil means a real,
	// context-aware sleep.
	Sleep func(ctx context.Context, d time.Duration)
}

// EvaluateRequest is one submission to score.
type EvaluateRequest struct {
	Text      string
	Settings  Settings
	SessionID string // for the activity log; empty is fine
}

// ConverseRequest is one conversational utterance. History should already
// contain the student's new utterance as its last turn; the prompt carries
// the utterance both inside the transcript and as the explicit question.
type ConverseRequest struct {
	Utterance string
	Settings  Settings
	History   []model.Turn
	SessionID string
}

// ConverseResult is the outcome of one conversation turn.
type ConverseResult struct {
	Reply    string           `json:"reply"`
	Fallback bool             `json:"fallback,omitempty"`
	Usage    model.TokenUsage `json:"usage,omitempty"`
}

// evalState tracks the retry loop. lastFailure is what the fallback
// mapping consults once attempts run out.
type evalState struct {
	attemptsRemaining int
	lastFailure       model.FallbackReason
}

// Evaluate scores one submission. It never returns an error: when the
// model cannot be consulted or understood, the result carries a substitute
// score with Fallback naming the path taken.
//
// Submissions under 10 runes are rejected without any model call. Otherwise
// up to 3 attempts are made; a failed call waits 2s before the next attempt,
// an unusable reply waits 1s.
func (t *Tutor) Evaluate(ctx context.Context, req EvaluateRequest) model.EvaluationResult {
	ctx, span := tracer.Start(ctx, "evaluate",
		trace.WithAttributes(
			attribute.String("settings.grade", req.Settings.Grade),
			attribute.String("settings.subject", req.Settings.Subject),
			attribute.String("settings.writing_type", req.Settings.WritingType),

			// Langfuse trace-level attributes
			attribute.String("langfuse.trace.name", "geulssaem-evaluate"),
			attribute.String("langfuse.session.id", req.SessionID),
			attribute.StringSlice("langfuse.trace.tags", []string{"geulssaem", "evaluate"}),
			attribute.String("langfuse.observation.input", req.Text),
		))
	defer span.End()

	start := time.Now()
	result := t.runEvaluation(ctx, req)
	result.Provider = t.Gen.Provider()
	result.Model = t.Gen.Model()
	result.EvaluatedAt = time.Now().UTC()
	result.DurationMs = time.Since(start).Milliseconds()

	outcome := "scored"
	if result.Fallback != "" {
		outcome = string(result.Fallback)
	}
	span.SetAttributes(
		attribute.Int("evaluation.score", result.Score),
		attribute.String("evaluation.outcome", outcome),
		attribute.Int("evaluation.attempts", result.Attempts),
	)
	t.Metrics.RecordEvaluation(ctx, t.Gen.Provider(), outcome)

	e := events.Event{
		SessionID: req.SessionID,
		Kind:      events.KindEvaluated,
		Score:     result.Score,
		Attempt:   result.Attempts,
		Provider:  result.Provider,
	}
	if result.Fallback != "" {
		e.Kind = events.KindFallback
		e.Reason = string(result.Fallback)
	}
	t.Events.Record(e)

	return result
}

func (t *Tutor) runEvaluation(ctx context.Context, req EvaluateRequest) model.EvaluationResult {
	if utf8.RuneCountInString(strings.TrimSpace(req.Text)) < minSubmissionRunes {
		score, msg := fallbackFor(model.FallbackTooShort)
		return model.EvaluationResult{Score: score, Feedback: msg, Fallback: model.FallbackTooShort}
	}

	prompt := BuildEvaluationPrompt(req.Settings, req.Text)
	genReq := model.GenerationRequest{
		Prompt:          prompt,
		Temperature:     evalTemperature,
		MaxOutputTokens: evalMaxTokens,
	}

	st := evalState{attemptsRemaining: maxAttempts}
	var usage model.TokenUsage
	attempts := 0

	for st.attemptsRemaining > 0 {
		st.attemptsRemaining--
		attempts++

		reply, err := t.generateOnce(ctx, genReq)
		if err != nil {
			st.lastFailure = model.FallbackTransport
			t.Metrics.RecordAttempt(ctx, t.Gen.Provider(), false)
			t.recordAttemptFailure(req.SessionID, attempts, model.FallbackTransport)
			if ctx.Err() != nil {
				// The caller is gone; waiting and retrying would only
				// burn time against a dead context.
				break
			}
			if st.attemptsRemaining > 0 {
				t.wait(ctx, transportRetryWait)
			}
			continue
		}

		usage.Add(reply.Usage)
		t.Metrics.RecordAttempt(ctx, t.Gen.Provider(), true)
		t.Metrics.RecordTokens(ctx, t.Gen.Provider(), t.Gen.Model(),
			reply.Usage.InputTokens, reply.Usage.OutputTokens,
			reply.Usage.CacheReadInputTokens, reply.Usage.CacheCreationInputTokens)

		score, feedback, reason := parseEvaluation(normalizeReply(reply.Text))
		if reason == "" {
			return model.EvaluationResult{Score: score, Feedback: feedback, Attempts: attempts, Usage: usage}
		}

		st.lastFailure = reason
		t.recordAttemptFailure(req.SessionID, attempts, reason)
		if st.attemptsRemaining > 0 {
			t.wait(ctx, invalidRetryWait)
		}
	}

	if st.lastFailure == "" {
		st.lastFailure = model.FallbackExhausted
	}
	score, msg := fallbackFor(st.lastFailure)
	return model.EvaluationResult{Score: score, Feedback: msg, Fallback: st.lastFailure, Attempts: attempts, Usage: usage}
}

// Converse answers one conversational utterance. Like Evaluate it is total:
// a failed or empty generation yields the fixed apology reply. Conversation
// makes a single attempt; the student is waiting at a chat box, so a quick
// apology beats a long retry loop.
func (t *Tutor) Converse(ctx context.Context, req ConverseRequest) ConverseResult {
	ctx, span := tracer.Start(ctx, "converse",
		trace.WithAttributes(
			attribute.String("settings.grade", req.Settings.Grade),
			attribute.String("settings.subject", req.Settings.Subject),
			attribute.String("settings.writing_type", req.Settings.WritingType),
			attribute.Int("history.turns", len(req.History)),

			// Langfuse trace-level attributes
			attribute.String("langfuse.trace.name", "geulssaem-converse"),
			attribute.String("langfuse.session.id", req.SessionID),
			attribute.StringSlice("langfuse.trace.tags", []string{"geulssaem", "chat"}),
			attribute.String("langfuse.observation.input", req.Utterance),
		))
	defer span.End()

	prompt := BuildConversationPrompt(req.Settings, FormatTranscript(req.History), req.Utterance)
	reply, err := t.generateOnce(ctx, model.GenerationRequest{
		Prompt:          prompt,
		Temperature:     chatTemperature,
		MaxOutputTokens: chatMaxTokens,
	})
	if err != nil {
		t.Metrics.RecordAttempt(ctx, t.Gen.Provider(), false)
		return t.converseFallback(ctx, span, req.SessionID, "transport")
	}

	t.Metrics.RecordAttempt(ctx, t.Gen.Provider(), true)
	t.Metrics.RecordTokens(ctx, t.Gen.Provider(), t.Gen.Model(),
		reply.Usage.InputTokens, reply.Usage.OutputTokens,
		reply.Usage.CacheReadInputTokens, reply.Usage.CacheCreationInputTokens)

	text := strings.TrimSpace(reply.Text)
	if text == "" {
		return t.converseFallback(ctx, span, req.SessionID, "empty_reply")
	}

	span.SetAttributes(attribute.String("conversation.outcome", "replied"))
	t.Metrics.RecordConversation(ctx, t.Gen.Provider(), false)
	t.Events.Record(events.Event{
		SessionID: req.SessionID,
		Kind:      events.KindReply,
		Provider:  t.Gen.Provider(),
	})
	return ConverseResult{Reply: text, Usage: reply.Usage}
}

func (t *Tutor) converseFallback(ctx context.Context, span trace.Span, sessionID, reason string) ConverseResult {
	span.SetAttributes(
		attribute.String("conversation.outcome", "fallback"),
		attribute.String("conversation.reason", reason),
	)
	t.Metrics.RecordConversation(ctx, t.Gen.Provider(), true)
	t.Events.Record(events.Event{
		SessionID: sessionID,
		Kind:      events.KindReplyFallback,
		Reason:    reason,
		Provider:  t.Gen.Provider(),
	})
	return ConverseResult{Reply: msgChatApology, Fallback: true}
}

func (t *Tutor) recordAttemptFailure(sessionID string, attempt int, reason model.FallbackReason) {
	t.Events.Record(events.Event{
		SessionID: sessionID,
		Kind:      events.KindAttemptFailed,
		Reason:    string(reason),
		Attempt:   attempt,
		Provider:  t.Gen.Provider(),
	})
}

// generateOnce runs a single model call under the per-attempt timeout.
func (t *Tutor) generateOnce(ctx context.Context, req model.GenerationRequest) (*model.Reply, error) {
	if t.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.AttemptTimeout)
		defer cancel()
	}
	return t.Gen.Generate(ctx, req)
}

// wait blocks for d or until ctx is done, whichever comes first.
func (t *Tutor) wait(ctx context.Context, d time.Duration) {
	if t.Sleep != nil {
		t.Sleep(ctx, d)
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
