package model

import (
	"fmt"
	"time"
)

// Role identifies who produced a conversation turn.
type Role string

const (
	// RoleStudent marks turns written by the student.
	RoleStudent Role = "student"
	// RoleTutor marks turns written by the AI tutor.
	RoleTutor Role = "tutor"
)

// Label returns the Korean display label used in transcripts and UIs.
func (r Role) Label() string {
	if r == RoleStudent {
		return "학생"
	}
	return "선생님"
}

// Mode selects how a session treats student input.
type Mode string

const (
	// ModeEvaluate scores submitted writing against the rubric.
	ModeEvaluate Mode = "evaluate"
	// ModeChat holds a free-form conversation about writing.
	ModeChat Mode = "chat"
)

// Turn is a single conversation turn. Turns are immutable once created
// and ordered by their position in the session.
type Turn struct {
	// Role is who produced the turn.
	Role Role `json:"role"`
	// Text is the turn content.
	Text string `json:"text"`
	// Score is only set on tutor turns that deliver an evaluation.
	// The value is already clamped to [0, 100].
	Score *int `json:"score,omitempty"`
}

// StudentTurn builds a turn written by the student.
func StudentTurn(text string) Turn {
	return Turn{Role: RoleStudent, Text: text}
}

// TutorTurn builds a plain tutor turn (conversation reply).
func TutorTurn(text string) Turn {
	return Turn{Role: RoleTutor, Text: text}
}

// ScoredTutorTurn builds a tutor turn that delivers an evaluation.
func ScoredTutorTurn(text string, score int) Turn {
	return Turn{Role: RoleTutor, Text: text, Score: &score}
}

// FallbackReason names the degradation path an evaluation took.
// Empty means the result came from the model.
type FallbackReason string

const (
	// FallbackTooShort: the submission was under the minimum length,
	// so no model call was made.
	FallbackTooShort FallbackReason = "too_short"
	// FallbackUnparseable: the model reply was not valid JSON on the
	// final attempt.
	FallbackUnparseable FallbackReason = "unparseable"
	// FallbackMissingKey: the reply parsed but lacked score or feedback.
	FallbackMissingKey FallbackReason = "missing_key"
	// FallbackBadScore: the score value could not be converted to an integer.
	FallbackBadScore FallbackReason = "bad_score"
	// FallbackTransport: the model call itself failed on the final attempt.
	FallbackTransport FallbackReason = "transport"
	// FallbackExhausted: the retry loop ended without a terminal outcome.
	FallbackExhausted FallbackReason = "exhausted"
)

// EvaluationResult is the outcome of evaluating one piece of student writing.
// Evaluation is total: a result is always produced, with Fallback naming the
// degradation when the model could not be consulted or understood.
type EvaluationResult struct {
	// Score is the rubric total, clamped to [0, 100].
	Score int `json:"score"`
	// Feedback is the tutor's Korean feedback text.
	Feedback string `json:"feedback"`
	// Fallback names the degradation taken; empty for genuine model results.
	Fallback FallbackReason `json:"fallback,omitempty"`
	// Attempts is the number of model calls made (0 for the too-short guard).
	Attempts int `json:"attempts"`

	// Usage tracks token consumption across all attempts.
	Usage TokenUsage `json:"usage,omitempty"`

	// Model is the LLM model that produced this result.
	Model string `json:"model,omitempty"`
	// Provider is the LLM provider used (e.g., "gemini", "anthropic", "openai").
	Provider string `json:"provider,omitempty"`
	// EvaluatedAt is the timestamp when the evaluation finished.
	EvaluatedAt time.Time `json:"evaluated_at"`
	// DurationMs is the wall-clock time in milliseconds including waits.
	DurationMs int64 `json:"duration_ms"`
}

// GenerationRequest carries one prompt to the model client.
type GenerationRequest struct {
	// Prompt is the full prompt text.
	Prompt string
	// Temperature is the sampling temperature.
	Temperature float64
	// MaxOutputTokens bounds the reply length.
	MaxOutputTokens int64
}

// Reply is the raw model output for a single generation call.
type Reply struct {
	// Text is the reply text with no post-processing applied.
	Text string
	// Usage is reported by the provider when available.
	Usage TokenUsage
}

// TokenUsage tracks LLM token consumption for a single call or an
// accumulated evaluation.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`

	// CacheReadInputTokens is the number of input tokens read from the
	// provider's prompt cache (Anthropic cache_read_input_tokens,
	// OpenAI prompt_tokens_details.cached_tokens).
	CacheReadInputTokens int64 `json:"cache_read_input_tokens,omitempty"`
	// CacheCreationInputTokens is the number of input tokens used to
	// create a new cache entry (Anthropic only).
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens,omitempty"`
}

// Add accumulates usage from another call.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheReadInputTokens += other.CacheReadInputTokens
	u.CacheCreationInputTokens += other.CacheCreationInputTokens
}

// Default study settings, matching the selection the tutor starts with.
const (
	DefaultGrade       = "3-4학년군"
	DefaultSubject     = "국어"
	DefaultWritingType = "일기"
)

// Grades lists the selectable grade bands, lowest first.
func Grades() []string {
	return []string{"1-2학년군", "3-4학년군", "5-6학년군"}
}

// Subjects lists the selectable school subjects.
func Subjects() []string {
	return []string{"국어", "수학", "사회", "과학", "그 외"}
}

// WritingTypes lists the selectable kinds of writing.
func WritingTypes() []string {
	return []string{"편지글", "주장하는 글", "일기", "독후감", "설명하는 글"}
}

// FormatScoreLine renders the banded score line shown with an evaluation,
// e.g. "🎉 훌륭해요! 총점: 85점 / 100점". A zero score renders as the error
// band: the tutor only hands out zero when the submission never reached
// the model.
func FormatScoreLine(score int) string {
	switch {
	case score >= 80:
		return fmt.Sprintf("🎉 훌륭해요! 총점: %d점 / 100점", score)
	case score >= 60:
		return fmt.Sprintf("📝 좋아요! 총점: %d점 / 100점", score)
	case score >= 40:
		return fmt.Sprintf("📚 조금 더! 총점: %d점 / 100점", score)
	case score > 0:
		return fmt.Sprintf("💪 힘내요! 총점: %d점 / 100점", score)
	default:
		return "❌ 평가 중 오류가 발생했습니다"
	}
}
