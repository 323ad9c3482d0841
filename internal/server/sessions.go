package server

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ironsheep/equip-scan-mcp/internal/equipment"
)

// ErrSessionNotFound is returned for an unknown or closed session id.
var ErrSessionNotFound = errors.New("session not found")

// sessionStore keeps the open editing sessions, keyed by their uuid string.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*equipment.Session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*equipment.Session)}
}

func (st *sessionStore) put(s *equipment.Session) {
	st.mu.Lock()
	st.sessions[s.ID.String()] = s
	st.mu.Unlock()
}

func (st *sessionStore) get(id string) (*equipment.Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// remove deletes a session and reports whether another open session still
// refers to the same screenshot.
func (st *sessionStore) remove(id string) (*equipment.Session, bool, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(st.sessions, id)

	for _, other := range st.sessions {
		if other.ImagePath == s.ImagePath {
			return s, true, nil
		}
	}
	return s, false, nil
}

func (st *sessionStore) len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
