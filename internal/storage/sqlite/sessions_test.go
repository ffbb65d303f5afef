package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T, ttl time.Duration) *Sessions {
	t.Helper()
	ctx := context.Background()
	db, err := NewDB(ctx, filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSessions(db, ttl, 5, "廠牌")
}

func TestSessionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, time.Hour)

	if err := s.Append(ctx, "u1", "有沒有Toyota"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.MergeTopic(ctx, "u1", map[string]any{"廠牌": "Toyota"}, "有沒有Toyota"); err != nil {
		t.Fatalf("MergeTopic: %v", err)
	}

	sess, err := s.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sess.History) != 1 || sess.History[0] != "有沒有Toyota" {
		t.Errorf("history = %v", sess.History)
	}
	if sess.Topic["廠牌"] != "Toyota" {
		t.Errorf("topic = %v", sess.Topic)
	}
	if sess.Version == 0 {
		t.Error("version not stamped")
	}
}

func TestSessionsHistoryBound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, time.Hour)

	for _, msg := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		if err := s.Append(ctx, "u1", msg); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	sess, err := s.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sess.History) != 5 {
		t.Fatalf("history length = %d, want 5", len(sess.History))
	}
	if sess.History[0] != "c" || sess.History[4] != "g" {
		t.Errorf("history = %v", sess.History)
	}
}

func TestSessionsPivotReset(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, time.Hour)

	if err := s.Append(ctx, "u1", "Toyota的車"); err != nil {
		t.Fatal(err)
	}
	if err := s.MergeTopic(ctx, "u1", map[string]any{"廠牌": "Toyota", "顏色": "白"}, "Toyota的車"); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(ctx, "u1", "那BMW呢"); err != nil {
		t.Fatal(err)
	}
	if err := s.MergeTopic(ctx, "u1", map[string]any{"廠牌": "BMW"}, "那BMW呢"); err != nil {
		t.Fatal(err)
	}

	sess, err := s.Load(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(sess.History) != 1 || sess.History[0] != "那BMW呢" {
		t.Errorf("history not reseeded: %v", sess.History)
	}
	if sess.Topic["廠牌"] != "BMW" {
		t.Errorf("pivot = %v", sess.Topic["廠牌"])
	}
	if _, stale := sess.Topic["顏色"]; stale {
		t.Error("stale topic field survived pivot change")
	}
}

func TestSessionsExpiry(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 10*time.Millisecond)

	if err := s.Append(ctx, "u1", "hello"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(30 * time.Millisecond)

	sess, err := s.Load(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(sess.History) != 0 {
		t.Errorf("expired session kept history: %v", sess.History)
	}
}

func TestSessionsPauseResume(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, time.Hour)

	if err := s.Pause(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	sess, _ := s.Load(ctx, "u1")
	if !sess.ManualOverride {
		t.Error("expected manual override after pause")
	}

	if err := s.Resume(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	sess, _ = s.Load(ctx, "u1")
	if sess.ManualOverride {
		t.Error("expected override cleared after resume")
	}
}
