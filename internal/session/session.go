// Package session keeps per-student tutoring sessions in memory.
//
// A session holds the study settings, the current mode, and the
// conversation history. Sessions live only for the process lifetime;
// there is no persistence. Idle sessions expire after a TTL so a
// long-running server does not accumulate abandoned histories.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/geulmoi/geulssaem/internal/model"
	"github.com/geulmoi/geulssaem/internal/tutor"
)

// Session is one student's tutoring session.
type Session struct {
	ID        string         `json:"id"`
	Settings  tutor.Settings `json:"settings"`
	Mode      model.Mode     `json:"mode"`
	Turns     []model.Turn   `json:"turns"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (s *Session) clone() *Session {
	out := *s
	out.Turns = cloneTurns(s.Turns)
	return &out
}

func cloneTurns(turns []model.Turn) []model.Turn {
	out := make([]model.Turn, len(turns))
	copy(out, turns)
	for i := range out {
		if out[i].Score != nil {
			v := *out[i].Score
			out[i].Score = &v
		}
	}
	return out
}

// Registry tracks live sessions by ID. Idle sessions (no mutation within
// the TTL) are purged lazily on access; ttl <= 0 disables expiry. All
// methods return copies, so callers never share memory with the registry.
type Registry struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*Session
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{ttl: ttl, sessions: make(map[string]*Session)}
}

// Create opens a new session. Empty settings fields fall back to the
// defaults; an empty mode starts in evaluation mode.
func (r *Registry) Create(settings tutor.Settings, mode model.Mode) *Session {
	if settings.Grade == "" {
		settings.Grade = model.DefaultGrade
	}
	if settings.Subject == "" {
		settings.Subject = model.DefaultSubject
	}
	if settings.WritingType == "" {
		settings.WritingType = model.DefaultWritingType
	}
	if mode == "" {
		mode = model.ModeEvaluate
	}

	now := time.Now().UTC()
	s := &Session{
		ID:        uuid.NewString(),
		Settings:  settings,
		Mode:      mode,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.purgeLocked(now)
	r.sessions[s.ID] = s
	return s.clone()
}

// Get returns a copy of the session, or false if it does not exist or
// has expired. Reading does not extend the session's life.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purgeLocked(time.Now().UTC())
	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	return s.clone(), true
}

// Append adds turns to the session history and returns the updated copy.
func (r *Registry) Append(id string, turns ...model.Turn) (*Session, bool) {
	return r.mutate(id, func(s *Session) {
		s.Turns = append(s.Turns, turns...)
	})
}

// SetMode switches the session between evaluation and chat.
func (r *Registry) SetMode(id string, mode model.Mode) (*Session, bool) {
	return r.mutate(id, func(s *Session) {
		s.Mode = mode
	})
}

// SetSettings replaces the session's study settings. The conversation
// history is kept: changing grade or subject mid-session is allowed and
// only affects prompts built afterwards.
func (r *Registry) SetSettings(id string, settings tutor.Settings) (*Session, bool) {
	return r.mutate(id, func(s *Session) {
		s.Settings = settings
	})
}

// Reset clears the conversation history but keeps the session alive with
// its settings and mode.
func (r *Registry) Reset(id string) (*Session, bool) {
	return r.mutate(id, func(s *Session) {
		s.Turns = nil
	})
}

// Remove deletes a session outright.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len reports how many live sessions the registry holds.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purgeLocked(time.Now().UTC())
	return len(r.sessions)
}

func (r *Registry) mutate(id string, fn func(*Session)) (*Session, bool) {
	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purgeLocked(now)
	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	fn(s)
	s.UpdatedAt = now
	return s.clone(), true
}

func (r *Registry) purgeLocked(now time.Time) {
	if r.ttl <= 0 {
		return
	}
	for id, s := range r.sessions {
		if now.Sub(s.UpdatedAt) > r.ttl {
			delete(r.sessions, id)
		}
	}
}
