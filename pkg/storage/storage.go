package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nvaneck/escape-engine/pkg/puzzle"
	"github.com/nvaneck/escape-engine/pkg/session"
)

// ErrNotFound is returned when a session or graph does not exist.
var ErrNotFound = errors.New("not found")

// Storage is the unified interface for session persistence (Redis) and
// static puzzle-graph loading (filesystem). Session writes are atomic:
// a crash mid-save never leaves a corrupt record visible.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Session state operations
	SaveSession(ctx context.Context, s *session.State) error
	LoadSession(ctx context.Context, id uuid.UUID) (*session.State, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// Puzzle graph operations (read-only)
	GetGraph(ctx context.Context, name string) (*puzzle.Graph, error)
	ListGraphs(ctx context.Context) ([]string, error)
}
