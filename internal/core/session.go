package core

import (
	"context"
	"time"
)

// Session is per-user conversational state. Stores hand out copies; only
// the SessionStore mutates the backing state, under per-user serialization.
type Session struct {
	UserID string
	// History holds the last N user utterances, oldest first.
	History []string
	// Topic accumulates filter values across turns until a pivot reset.
	Topic map[string]any
	// ManualOverride silences the engine while an operator handles the user.
	ManualOverride bool
	// Version increments on every mutation; a retry holding a stale
	// version must not clobber newer state.
	Version   uint64
	UpdatedAt time.Time
}

// SessionStore owns all cross-turn state. Every operation is atomic with
// respect to other operations on the same userID.
type SessionStore interface {
	// Load returns a copy of the session, creating an empty one if absent.
	Load(ctx context.Context, userID string) (Session, error)

	// Append records an utterance, evicting the oldest beyond capacity.
	Append(ctx context.Context, userID, utterance string) error

	// MergeTopic folds filters into the session topic. When the pivot
	// field changes value, history and topic are cleared and reseeded
	// with only the current utterance before the merge.
	MergeTopic(ctx context.Context, userID string, filters map[string]any, utterance string) error

	// Pause and Resume toggle ManualOverride.
	Pause(ctx context.Context, userID string) error
	Resume(ctx context.Context, userID string) error
}

// EqualScalar compares topic values that may have round-tripped through
// JSON, where every number comes back as float64. All stores use this
// for the pivot check so a numeric pivot resets identically everywhere.
func EqualScalar(a, b any) bool {
	if a == b {
		return true
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	return aok && bok && af == bf
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
