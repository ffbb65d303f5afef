// Package memstore keeps sessions in process memory with TTL eviction.
// All operations for a given user are serialized behind a per-user mutex:
// two concurrent turns must not lose each other's history appends.
package memstore

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sandevgo/motorbot/internal/core"
)

const janitorInterval = 10 * time.Minute

type Sessions struct {
	cache    *gocache.Cache
	locks    sync.Map // userID -> *sync.Mutex
	capacity int
	pivot    string
}

// NewSessions creates a store evicting idle sessions after ttl. capacity
// bounds the per-session history; pivot names the field whose change
// resets the whole conversational context.
func NewSessions(ttl time.Duration, capacity int, pivot string) *Sessions {
	return &Sessions{
		cache:    gocache.New(ttl, janitorInterval),
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

// get returns the live session pointer; callers must hold the user lock.
func (s *Sessions) get(userID string) *core.Session {
	if v, found := s.cache.Get(userID); found {
		return v.(*core.Session)
	}
	sess := &core.Session{
		UserID: userID,
		Topic:  make(map[string]any),
	}
	s.cache.Set(userID, sess, gocache.DefaultExpiration)
	return sess
}

// touch refreshes the TTL and stamps the mutation.
func (s *Sessions) touch(userID string, sess *core.Session) {
	sess.Version++
	sess.UpdatedAt = time.Now()
	s.cache.Set(userID, sess, gocache.DefaultExpiration)
}

func (s *Sessions) Load(ctx context.Context, userID string) (core.Session, error) {
	defer s.lock(userID)()
	sess := s.get(userID)

	cp := *sess
	cp.History = append([]string(nil), sess.History...)
	cp.Topic = make(map[string]any, len(sess.Topic))
	for k, v := range sess.Topic {
		cp.Topic[k] = v
	}
	return cp, nil
}

func (s *Sessions) Append(ctx context.Context, userID, utterance string) error {
	defer s.lock(userID)()
	sess := s.get(userID)

	sess.History = append(sess.History, utterance)
	if over := len(sess.History) - s.capacity; over > 0 {
		sess.History = append([]string(nil), sess.History[over:]...)
	}
	s.touch(userID, sess)
	return nil
}

func (s *Sessions) MergeTopic(ctx context.Context, userID string, filters map[string]any, utterance string) error {
	defer s.lock(userID)()
	sess := s.get(userID)

	if next, ok := filters[s.pivot]; ok {
		if prev, had := sess.Topic[s.pivot]; !had || !core.EqualScalar(prev, next) {
			// Pivot changed: the accumulated context belongs to the old
			// topic. Reseed with only the current turn.
			sess.History = []string{utterance}
			sess.Topic = make(map[string]any)
		}
	}
	for k, v := range filters {
		sess.Topic[k] = v
	}
	s.touch(userID, sess)
	return nil
}

func (s *Sessions) Pause(ctx context.Context, userID string) error {
	defer s.lock(userID)()
	sess := s.get(userID)
	sess.ManualOverride = true
	s.touch(userID, sess)
	return nil
}

func (s *Sessions) Resume(ctx context.Context, userID string) error {
	defer s.lock(userID)()
	sess := s.get(userID)
	sess.ManualOverride = false
	s.touch(userID, sess)
	return nil
}
