package app

import (
	"context"
	"log"
	"time"

	"elsa-proficiency-test/internal/domain"
)

// SessionRepository abstracts where attempt sessions live (in-memory, Redis-marked, etc).
type SessionRepository interface {
	GetOrCreate(attemptID string, catalog domain.Catalog) *Session
	Get(attemptID string) (*Session, bool)
	DeleteIfIdle(attemptID string)
}

// CatalogRepository loads section catalogs (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context, catalogID string) (domain.Catalog, error)
}

// TestService hosts test attempts, one session per attempt.
type TestService struct {
	sessions SessionRepository
	catalogs CatalogRepository
}

func NewTestService(store SessionRepository, catalogs CatalogRepository) *TestService {
	return &TestService{sessions: store, catalogs: catalogs}
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id string, catalog domain.Catalog) *Session {
	return newSession(id, catalog)
}

// Open returns the session for attemptID, creating it from the catalog if needed.
func (s *TestService) Open(ctx context.Context, catalogID, attemptID string) (View, error) {
	catalog, err := s.catalogs.GetCatalog(ctx, catalogID)
	if err != nil {
		return View{}, err
	}
	session := s.sessions.GetOrCreate(attemptID, catalog)
	return session.View(), nil
}

// Dispatch applies one user action to an attempt.
func (s *TestService) Dispatch(_ context.Context, attemptID string, action Action) (View, error) {
	session, ok := s.sessions.Get(attemptID)
	if !ok {
		return View{}, domain.ErrSessionNotFound
	}
	return session.Apply(action)
}

// Subscribe returns a channel that receives view updates for an attempt.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *TestService) Subscribe(_ context.Context, attemptID string) (<-chan View, func(), error) {
	session, ok := s.sessions.Get(attemptID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Report returns the result export of a completed attempt.
func (s *TestService) Report(_ context.Context, attemptID string) (domain.Report, error) {
	session, ok := s.sessions.Get(attemptID)
	if !ok {
		return domain.Report{}, domain.ErrSessionNotFound
	}
	return session.Report()
}

// Leave drops the attempt once no client is watching it.
func (s *TestService) Leave(_ context.Context, attemptID string) {
	session, ok := s.sessions.Get(attemptID)
	if !ok {
		return
	}
	if session.IsIdle() {
		log.Printf("attempt %s closed in mode %s after %s", attemptID, session.Mode(), time.Since(session.CreatedAt()).Round(time.Second))
		s.sessions.DeleteIfIdle(attemptID)
	}
}
