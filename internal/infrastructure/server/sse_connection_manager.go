package server

import (
	"sort"
	"sync"

	"go.uber.org/multierr"
)

// sseConnectionManager tracks the open event streams.
type sseConnectionManager struct {
	mu       sync.RWMutex
	sessions map[string]*sseSession
}

func newSSEConnectionManager() *sseConnectionManager {
	return &sseConnectionManager{
		sessions: make(map[string]*sseSession),
	}
}

// AddSession adds a session to the connection manager.
func (m *sseConnectionManager) AddSession(session *sseSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID()] = session
}

// RemoveSession removes a session from the connection manager.
func (m *sseConnectionManager) RemoveSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// GetSession retrieves a session by its ID.
func (m *sseConnectionManager) GetSession(sessionID string) (*sseSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[sessionID]
	return session, ok
}

// Broadcast queues an event on every session and returns the combined failures.
func (m *sseConnectionManager) Broadcast(eventType, data string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs error
	for _, session := range m.sessions {
		errs = multierr.Append(errs, session.Send(eventType, data))
	}
	return errs
}

// CloseAll closes all active sessions.
func (m *sseConnectionManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, session := range m.sessions {
		session.Close()
	}
	m.sessions = make(map[string]*sseSession)
}

// Count returns the number of active sessions.
func (m *sseConnectionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IDs returns the ids of the active sessions, sorted.
func (m *sseConnectionManager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
