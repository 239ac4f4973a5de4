package events

import (
	"fmt"
	"testing"
	"time"
)

func TestStore_RecordAndSession(t *testing.T) {
	now := time.Now().UTC()
	s := NewStore(5 * time.Minute)
	s.Record(Event{SessionID: "a", Kind: KindEvaluated, Score: 85, TS: now})
	s.Record(Event{SessionID: "a", Kind: KindReply, TS: now.Add(1 * time.Second)})
	s.Record(Event{SessionID: "b", Kind: KindReset, TS: now})

	got := s.Session("a", now.Add(1*time.Second))
	if len(got) != 2 {
		t.Fatalf("expected 2 events for session a, got %d", len(got))
	}
	if got[0].Kind != KindEvaluated || got[1].Kind != KindReply {
		t.Fatalf("expected oldest-first order, got %s then %s", got[0].Kind, got[1].Kind)
	}
	if got[0].Score != 85 {
		t.Fatalf("expected score 85, got %d", got[0].Score)
	}
}

func TestStore_RecordStampsZeroTimestamp(t *testing.T) {
	s := NewStore(0)
	s.Record(Event{SessionID: "a", Kind: KindReply})

	got := s.Session("a", time.Now().UTC())
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].TS.IsZero() {
		t.Fatalf("expected recorded event to carry a timestamp")
	}
}

func TestStore_RecentOrdersAcrossSessions(t *testing.T) {
	now := time.Now().UTC()
	s := NewStore(5 * time.Minute)
	s.Record(Event{SessionID: "b", Kind: KindReply, TS: now.Add(2 * time.Second)})
	s.Record(Event{SessionID: "a", Kind: KindEvaluated, TS: now})
	s.Record(Event{SessionID: "a", Kind: KindFallback, TS: now.Add(4 * time.Second)})

	got := s.Recent(now.Add(4*time.Second), 2)
	if len(got) != 2 {
		t.Fatalf("expected limit of 2 events, got %d", len(got))
	}
	if got[0].Kind != KindReply || got[1].Kind != KindFallback {
		t.Fatalf("expected the 2 newest events oldest-first, got %s then %s", got[0].Kind, got[1].Kind)
	}
}

func TestStore_ExpiresStaleEntries(t *testing.T) {
	now := time.Now().UTC()
	s := NewStore(2 * time.Minute)
	s.Record(Event{SessionID: "a", Kind: KindEvaluated, TS: now})

	got := s.Session("a", now.Add(3*time.Minute))
	if len(got) != 0 {
		t.Fatalf("expected 0 events after ttl expiry, got %d", len(got))
	}
}

func TestStore_CapsPerSessionLog(t *testing.T) {
	now := time.Now().UTC()
	s := NewStore(0)
	for i := 0; i < maxPerSession+10; i++ {
		s.Record(Event{SessionID: "a", Kind: KindReply, Reason: fmt.Sprintf("n%d", i), TS: now.Add(time.Duration(i) * time.Second)})
	}

	got := s.Session("a", now)
	if len(got) != maxPerSession {
		t.Fatalf("expected log capped at %d, got %d", maxPerSession, len(got))
	}
	if got[0].Reason != "n10" {
		t.Fatalf("expected oldest entries dropped, first is %s", got[0].Reason)
	}
}

func TestStore_Drop(t *testing.T) {
	now := time.Now().UTC()
	s := NewStore(0)
	s.Record(Event{SessionID: "a", Kind: KindReply, TS: now})
	s.Drop("a")

	if got := s.Session("a", now); len(got) != 0 {
		t.Fatalf("expected dropped session to be empty, got %d events", len(got))
	}
}

func TestStore_NilSafe(t *testing.T) {
	var s *Store
	s.Record(Event{SessionID: "a", Kind: KindReply})
	s.Drop("a")
	if got := s.Session("a", time.Now().UTC()); got != nil {
		t.Fatalf("expected nil snapshot from nil store, got %v", got)
	}
	if got := s.Recent(time.Now().UTC(), 5); got != nil {
		t.Fatalf("expected nil recent from nil store, got %v", got)
	}
}
