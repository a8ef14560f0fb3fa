package storage

import (
	"sync"

	"github.com/dressi-app/dressi/internal/swipe"
)

// SessionStore holds the live swipe sessions of the local web service.
type SessionStore struct {
	sessions map[string]*swipe.Session
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*swipe.Session),
	}
}

func (s *SessionStore) Get(sessionID string) (*swipe.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

func (s *SessionStore) Set(sessionID string, session *swipe.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = session
}

func (s *SessionStore) GetAll() map[string]*swipe.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*swipe.Session, len(s.sessions))
	for k, v := range s.sessions {
		result[k] = v
	}
	return result
}

// Delete removes the session and closes it. It reports whether the session
// existed.
func (s *SessionStore) Delete(sessionID string) bool {
	s.mu.Lock()
	session, exists := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if exists {
		session.Close()
	}
	return exists
}

// Reap closes and forgets every session for which expired reports true, and
// returns how many it removed.
func (s *SessionStore) Reap(expired func(*swipe.Session) bool) int {
	s.mu.Lock()
	var reaped []*swipe.Session
	for id, session := range s.sessions {
		if expired(session) {
			reaped = append(reaped, session)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, session := range reaped {
		session.Close()
	}
	return len(reaped)
}

// CloseAll closes and forgets every session.
func (s *SessionStore) CloseAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*swipe.Session)
	s.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}
