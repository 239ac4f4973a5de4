package events

import (
	"sort"
	"sync"
	"time"
)

// maxPerSession caps how many events one session retains. Older
// entries are dropped first.
const maxPerSession = 64

// Store is an in-memory per-session activity log. Entries older than
// the TTL are purged lazily on read; ttl <= 0 disables expiry. Safe
// for concurrent use.
type Store struct {
	mu   sync.Mutex
	ttl  time.Duration
	data map[string][]Event
}

func NewStore(ttl time.Duration) *Store {
	return &Store{ttl: ttl, data: make(map[string][]Event)}
}

// Record appends e to its session's log. A zero TS is stamped with the
// current time. Nil stores ignore the call so callers can record
// unconditionally.
func (s *Store) Record(e Event) {
	if s == nil {
		return
	}
	if e.TS.IsZero() {
		e.TS = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	log := append(s.data[e.SessionID], e)
	if len(log) > maxPerSession {
		log = log[len(log)-maxPerSession:]
	}
	s.data[e.SessionID] = log
}

// Session returns a copy of one session's events, oldest first.
func (s *Store) Session(id string, now time.Time) []Event {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked(now)
	log := s.data[id]
	result := make([]Event, len(log))
	copy(result, log)
	return result
}

// Recent returns up to limit events across all sessions, oldest first.
// limit <= 0 means no limit.
func (s *Store) Recent(now time.Time, limit int) []Event {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked(now)
	var result []Event
	for _, log := range s.data {
		result = append(result, log...)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TS.Equal(result[j].TS) {
			return result[i].SessionID < result[j].SessionID
		}
		return result[i].TS.Before(result[j].TS)
	})
	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result
}

// Drop removes all events for a session.
func (s *Store) Drop(id string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
}

func (s *Store) purgeLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, log := range s.data {
		keep := log[:0]
		for _, e := range log {
			if now.Sub(e.TS) <= s.ttl {
				keep = append(keep, e)
			}
		}
		if len(keep) == 0 {
			delete(s.data, id)
			continue
		}
		s.data[id] = keep
	}
}
