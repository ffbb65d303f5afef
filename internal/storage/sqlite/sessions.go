package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sandevgo/motorbot/internal/core"
)

// Sessions is the durable SessionStore backing. The same per-user mutex
// discipline as the in-memory store applies on top of the database so a
// retried older turn cannot clobber a newer one.
type Sessions struct {
	db       *sql.DB
	locks    sync.Map
	ttl      time.Duration
	capacity int
	pivot    string
}

func NewSessions(db *sql.DB, ttl time.Duration, capacity int, pivot string) *Sessions {
	return &Sessions{
		db:       db,
		ttl:      ttl,
		capacity: capacity,
		pivot:    pivot,
	}
}

func (s *Sessions) lock(userID string) func() {
	v, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *Sessions) load(ctx context.Context, userID string) (core.Session, error) {
	sess := core.Session{UserID: userID, Topic: make(map[string]any)}

	var historyJSON, topicJSON string
	var override int
	row := s.db.QueryRowContext(ctx,
		`SELECT history, topic, manual_override, version, updated_at FROM sessions WHERE user_id = ?`,
		userID)
	err := row.Scan(&historyJSON, &topicJSON, &override, &sess.Version, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return sess, nil
	}
	if err != nil {
		return sess, fmt.Errorf("failed to load session: %w", err)
	}

	// Rows older than the TTL count as evicted.
	if time.Since(sess.UpdatedAt) > s.ttl {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
		return core.Session{UserID: userID, Topic: make(map[string]any)}, nil
	}

	if err := json.Unmarshal([]byte(historyJSON), &sess.History); err != nil {
		return sess, fmt.Errorf("failed to decode history: %w", err)
	}
	if err := json.Unmarshal([]byte(topicJSON), &sess.Topic); err != nil {
		return sess, fmt.Errorf("failed to decode topic: %w", err)
	}
	sess.ManualOverride = override != 0
	return sess, nil
}

func (s *Sessions) save(ctx context.Context, sess core.Session) error {
	historyJSON, err := json.Marshal(sess.History)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	topicJSON, err := json.Marshal(sess.Topic)
	if err != nil {
		return fmt.Errorf("failed to encode topic: %w", err)
	}

	override := 0
	if sess.ManualOverride {
		override = 1
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (user_id, history, topic, manual_override, version, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		   history = excluded.history,
		   topic = excluded.topic,
		   manual_override = excluded.manual_override,
		   version = excluded.version,
		   updated_at = excluded.updated_at`,
		sess.UserID, string(historyJSON), string(topicJSON), override, sess.Version+1, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *Sessions) Load(ctx context.Context, userID string) (core.Session, error) {
	defer s.lock(userID)()
	return s.load(ctx, userID)
}

func (s *Sessions) Append(ctx context.Context, userID, utterance string) error {
	defer s.lock(userID)()
	sess, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	sess.History = append(sess.History, utterance)
	if over := len(sess.History) - s.capacity; over > 0 {
		sess.History = sess.History[over:]
	}
	return s.save(ctx, sess)
}

func (s *Sessions) MergeTopic(ctx context.Context, userID string, filters map[string]any, utterance string) error {
	defer s.lock(userID)()
	sess, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	if next, ok := filters[s.pivot]; ok {
		if prev, had := sess.Topic[s.pivot]; !had || !core.EqualScalar(prev, next) {
			sess.History = []string{utterance}
			sess.Topic = make(map[string]any)
		}
	}
	for k, v := range filters {
		sess.Topic[k] = v
	}
	return s.save(ctx, sess)
}

func (s *Sessions) Pause(ctx context.Context, userID string) error {
	return s.setOverride(ctx, userID, true)
}

func (s *Sessions) Resume(ctx context.Context, userID string) error {
	return s.setOverride(ctx, userID, false)
}

func (s *Sessions) setOverride(ctx context.Context, userID string, paused bool) error {
	defer s.lock(userID)()
	sess, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	sess.ManualOverride = paused
	return s.save(ctx, sess)
}
