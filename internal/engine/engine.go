package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nvaneck/escape-engine/internal/services"
	"github.com/nvaneck/escape-engine/pkg/chat"
	"github.com/nvaneck/escape-engine/pkg/decision"
	"github.com/nvaneck/escape-engine/pkg/prompts"
	"github.com/nvaneck/escape-engine/pkg/puzzle"
	"github.com/nvaneck/escape-engine/pkg/session"
	"github.com/nvaneck/escape-engine/pkg/storage"
)

const (
	// PromptHistoryLimit bounds the conversation window sent to the oracle.
	PromptHistoryLimit = 12

	oracleTimeout = 30 * time.Second
)

// Engine processes turns: it builds the prompt, invokes the oracle,
// validates the decision, applies the state-transition rules and persists
// the result. Turns for one session are strictly serialized; sessions are
// independent of one another.
type Engine struct {
	storage storage.Storage
	oracle  services.OracleService
	logger  *slog.Logger

	// Per-session locks enforcing the single-writer rule.
	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex
}

// New creates a turn engine.
func New(st storage.Storage, oracle services.OracleService, logger *slog.Logger) *Engine {
	return &Engine{
		storage: st,
		oracle:  oracle,
		logger:  logger,
		locks:   make(map[uuid.UUID]*sync.Mutex),
	}
}

func (e *Engine) sessionLock(id uuid.UUID) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()
	mu, ok := e.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		e.locks[id] = mu
	}
	return mu
}

// releaseSessionLock drops the lock entry for an id that no longer has a
// stored session. Called while the entry's mutex is held; with no state
// left there is nothing for a concurrently created mutex to race on.
func (e *Engine) releaseSessionLock(id uuid.UUID) {
	e.locksMu.Lock()
	delete(e.locks, id)
	e.locksMu.Unlock()
}

// ProcessTurn runs one full turn for the session: load, guard, prompt,
// oracle, validate, apply, persist. Any failure before persistence leaves
// the stored state untouched; a persistence failure is surfaced as a
// *PersistenceError and the turn is not committed.
func (e *Engine) ProcessTurn(ctx context.Context, sessionID uuid.UUID, utterance string) (*chat.TurnResult, error) {
	mu := e.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	s, err := e.loadSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			// Covers records expired by the store's TTL.
			e.releaseSessionLock(sessionID)
		}
		return nil, err
	}

	// Terminal guard: no prompt is built and no oracle call is made.
	if s.SessionOver {
		return nil, ErrTerminalSession
	}

	g, err := e.loadGraph(ctx, s.GraphName)
	if err != nil {
		return nil, err
	}

	messages, err := prompts.New().
		WithSession(s).
		WithGraph(g).
		WithUtterance(utterance).
		WithHistoryLimit(PromptHistoryLimit).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	oracleCtx, cancel := context.WithTimeout(ctx, oracleTimeout)
	defer cancel()

	raw, err := e.oracle.Decide(oracleCtx, messages, decision.Schema(g.LocationIDs()))
	if err != nil {
		return nil, &OracleError{Err: err}
	}

	parser := decision.NewParser(g.LocationIDs(), e.logger)
	d, err := parser.Parse(raw)
	if err != nil {
		return nil, err
	}

	hidden := applyDecision(s, g, utterance, d)

	if err := e.storage.SaveSession(ctx, s); err != nil {
		return nil, &PersistenceError{Err: err}
	}

	e.logger.Debug("Turn applied",
		"session_id", s.ID,
		"location", s.CurrentLocation,
		"clue_index", s.CurrentClueIndex,
		"clues_completed", s.CluesCompleted,
		"session_over", s.SessionOver)

	return &chat.TurnResult{
		SessionID:         s.ID,
		AvatarReply:       d.AvatarReply,
		Moved:             d.Moved,
		MoveTarget:        d.MoveTarget,
		DiscoveryRevealed: d.DiscoveryRevealed,
		RiddleSolved:      d.RiddleSolved,
		GameOver:          s.SessionOver,
		CurrentLocation:   s.CurrentLocation,
		CluesCompleted:    s.CluesCompleted,
		TotalClues:        g.TotalClues(),
		HiddenArea:        hidden,
	}, nil
}

// ResetSession creates a fresh session for the named graph. When id is
// non-nil the existing record is replaced wholesale under that id.
func (e *Engine) ResetSession(ctx context.Context, id uuid.UUID, graphName string) (*session.State, error) {
	g, err := e.loadGraph(ctx, graphName)
	if err != nil {
		return nil, err
	}

	s := session.NewState(g)
	if id != uuid.Nil {
		mu := e.sessionLock(id)
		mu.Lock()
		defer mu.Unlock()
		s.ID = id
	}

	if err := e.storage.SaveSession(ctx, s); err != nil {
		return nil, &PersistenceError{Err: err}
	}
	return s, nil
}

// ClientView returns the redacted view of a session for external
// consumption. The snapshot is taken outside any in-flight turn.
func (e *Engine) ClientView(ctx context.Context, sessionID uuid.UUID) (*session.ClientView, error) {
	mu := e.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	s, err := e.loadSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			e.releaseSessionLock(sessionID)
		}
		return nil, err
	}
	g, err := e.loadGraph(ctx, s.GraphName)
	if err != nil {
		return nil, err
	}
	return session.ToClientView(s, g), nil
}

// DeleteSession removes a session record.
func (e *Engine) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	mu := e.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	if err := e.storage.DeleteSession(ctx, sessionID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			e.releaseSessionLock(sessionID)
			return ErrSessionNotFound
		}
		return err
	}
	e.releaseSessionLock(sessionID)
	return nil
}

func (e *Engine) loadSession(ctx context.Context, id uuid.UUID) (*session.State, error) {
	s, err := e.storage.LoadSession(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return s, nil
}

func (e *Engine) loadGraph(ctx context.Context, name string) (*puzzle.Graph, error) {
	g, err := e.storage.GetGraph(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrGraphNotFound
		}
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	return g, nil
}
