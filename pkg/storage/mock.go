package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/nvaneck/escape-engine/pkg/puzzle"
	"github.com/nvaneck/escape-engine/pkg/session"
)

// MockStorage is an in-memory Storage implementation for testing.
type MockStorage struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session.State
	graphs   map[string]*puzzle.Graph

	pingErr error
	saveErr error
	loadErr error
}

var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates an empty mock storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions: make(map[uuid.UUID]*session.State),
		graphs:   make(map[string]*puzzle.Graph),
	}
}

// SetPingError configures Ping to fail with the given error.
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingErr = err
}

// SetSaveError configures SaveSession to fail with the given error.
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// SetLoadError configures LoadSession to fail with the given error.
func (m *MockStorage) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

// AddGraph registers a puzzle graph under its name.
func (m *MockStorage) AddGraph(g *puzzle.Graph) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.graphs[g.Name] = g
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingErr
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveSession(ctx context.Context, s *session.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	cp, err := s.DeepCopy()
	if err != nil {
		return err
	}
	m.sessions[s.ID] = cp
	return nil
}

func (m *MockStorage) LoadSession(ctx context.Context, id uuid.UUID) (*session.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.DeepCopy()
}

func (m *MockStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockStorage) GetGraph(ctx context.Context, name string) (*puzzle.Graph, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.graphs[name]
	if !ok {
		return nil, ErrNotFound
	}
	return g, nil
}

func (m *MockStorage) ListGraphs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.graphs))
	for name := range m.graphs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
