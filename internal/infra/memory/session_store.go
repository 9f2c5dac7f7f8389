package memory

import (
	"sync"

	"elsa-proficiency-test/internal/app"
	"elsa-proficiency-test/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) GetOrCreate(attemptID string, catalog domain.Catalog) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[attemptID]; ok {
		return session
	}
	session := app.NewSession(attemptID, catalog)
	s.sessions[attemptID] = session
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
	}
}
