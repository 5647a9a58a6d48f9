package memory

import (
	"sync"

	"github.com/searchbox/searchbox-cli/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore keeps the vault PIN for the lifetime of the process.
type SessionStore struct {
	mu  sync.RWMutex
	pin string
}

// NewSessionStore creates an empty session.
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// PIN returns the stored PIN, if any.
func (s *SessionStore) PIN() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pin, s.pin != ""
}

// SetPIN stores pin for the session.
func (s *SessionStore) SetPIN(pin string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pin = pin
}

// ClearPIN forgets the PIN.
func (s *SessionStore) ClearPIN() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pin = ""
}
