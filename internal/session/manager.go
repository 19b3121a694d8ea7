// internal/session/manager.go
package session

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

const DefaultID = "default"

var ErrSessionNotFound = errors.New("session not found")

// Manager hands out independent sessions. An empty id resolves to the
// default session created with the manager.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() (*Manager, error) {
	def, err := New(DefaultID)
	if err != nil {
		return nil, err
	}
	return &Manager{
		sessions: map[string]*Session{DefaultID: def},
	}, nil
}

func (m *Manager) Create() (*Session, error) {
	s, err := New(uuid.NewString())
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.Printf("Created session %s", s.ID)
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	if id == "" {
		id = DefaultID
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Close ends a session and drops its history. The default session cannot be
// closed; it lives as long as the manager.
func (m *Manager) Close(id string) error {
	if id == "" || id == DefaultID {
		return fmt.Errorf("cannot close the default session")
	}

	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	log.Printf("Closed session %s", id)
	return s.Close()
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for id, s := range m.sessions {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close session %s: %w", id, err))
		}
		delete(m.sessions, id)
	}
	return errors.Join(errs...)
}
