package redis

import (
	"context"
	"sync"
	"time"

	"elsa-proficiency-test/internal/app"
	"elsa-proficiency-test/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of SessionRepository.
// Notes:
//   - Sessions stay in a local map so the in-process broadcast keeps working.
//   - Redis marks attempt liveness under attempt:session:{attemptID} with the
//     catalog ID as value, so other instances can see which attempts are open.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) GetOrCreate(attemptID string, catalog domain.Catalog) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[attemptID]; ok {
		// best-effort refresh of the liveness marker
		_ = s.client.Expire(context.Background(), s.key(attemptID), s.ttl).Err()
		return session
	}
	session := app.NewSession(attemptID, catalog)
	s.sessions[attemptID] = session
	_ = s.client.Set(context.Background(), s.key(attemptID), catalog.ID, s.ttl).Err()
	return session
}

func (s *SessionStore) Get(attemptID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[attemptID]
	return session, ok
}

func (s *SessionStore) DeleteIfIdle(attemptID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[attemptID]
	if !ok {
		return
	}
	if session.IsIdle() {
		delete(s.sessions, attemptID)
		_ = s.client.Del(context.Background(), s.key(attemptID)).Err()
	}
}

func (s *SessionStore) key(attemptID string) string {
	return "attempt:session:" + attemptID
}
