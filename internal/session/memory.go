package session

import (
	"context"
	"maps"
	"sync"
)

// Memory хранит сессии в памяти процесса. После перезапуска они теряются.
type Memory struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewMemory создаёт пустое хранилище.
func NewMemory() *Memory {
	return &Memory{sessions: make(map[int64]*Session)}
}

func (m *Memory) Get(_ context.Context, userID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		return New(userID), nil
	}
	return clone(s), nil
}

func (m *Memory) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.UserID] = clone(s)
	return nil
}

func (m *Memory) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
	return nil
}

func clone(s *Session) *Session {
	c := &Session{UserID: s.UserID, State: s.State, Data: make(map[string]string, len(s.Data))}
	maps.Copy(c.Data, s.Data)
	return c
}
