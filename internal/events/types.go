package events

import "time"

// Kinds of activity recorded for a tutoring session.
const (
	// KindEvaluated marks a completed evaluation with a model-produced score.
	KindEvaluated = "evaluated"
	// KindFallback marks an evaluation that ended with a substitute score.
	KindFallback = "fallback"
	// KindAttemptFailed marks one failed model attempt inside an evaluation.
	KindAttemptFailed = "attempt_failed"
	// KindReply marks a conversational reply from the tutor.
	KindReply = "reply"
	// KindReplyFallback marks a conversational turn answered with the apology message.
	KindReplyFallback = "reply_fallback"
	// KindReset marks a session history reset.
	KindReset = "reset"
)

// Event is one activity record for a tutoring session. Events are
// produced by the tutor and session layers and read by the debug
// surfaces (TUI footer, GET /api/sessions/:id/events).
type Event struct {
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	Reason    string    `json:"reason,omitempty"`
	Attempt   int       `json:"attempt,omitempty"`
	Score     int       `json:"score,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	TS        time.Time `json:"ts"`
}

// IsFailure reports whether kind describes a degraded outcome.
func IsFailure(kind string) bool {
	switch kind {
	case KindFallback, KindAttemptFailed, KindReplyFallback:
		return true
	default:
		return false
	}
}
