package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nvaneck/escape-engine/pkg/chat"
	"github.com/nvaneck/escape-engine/pkg/puzzle"
)

// State is the authoritative state of one game session. It has a single
// writer at a time (the in-flight turn) and is persisted after every turn.
type State struct {
	ID               uuid.UUID          `json:"id"`
	GraphName        string             `json:"graph_name"`       // Puzzle graph this session plays.
	CurrentLocation  string             `json:"current_location"` // Avatar's present location id.
	CurrentClueIndex int                `json:"current_clue_index"`
	VisitHistory     []string           `json:"visit_history"` // Insertion-ordered, no duplicates.
	CluesCompleted   int                `json:"clues_completed"`
	ConversationLog  []chat.ChatMessage `json:"conversation_log"`
	SessionOver      bool               `json:"session_over"` // Monotonic false -> true.
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// NewState derives the initial session state from a puzzle graph.
func NewState(g *puzzle.Graph) *State {
	return &State{
		ID:              uuid.New(),
		GraphName:       g.Name,
		CurrentLocation: g.StartLocation(),
		VisitHistory:    make([]string, 0),
		ConversationLog: make([]chat.ChatMessage, 0),
		CreatedAt:       time.Now().UTC(),
	}
}

// Visit records an arrival at a location, preserving first-visit order.
// Re-visits are not recorded again.
func (s *State) Visit(locationID string) {
	for _, v := range s.VisitHistory {
		if v == locationID {
			return
		}
	}
	s.VisitHistory = append(s.VisitHistory, locationID)
}

// HasVisited reports whether the avatar has ever been at the location.
func (s *State) HasVisited(locationID string) bool {
	for _, v := range s.VisitHistory {
		if v == locationID {
			return true
		}
	}
	return false
}

// CurrentNode returns the active chain node, or nil when the index has run
// past the end of the chain.
func (s *State) CurrentNode(g *puzzle.Graph) *puzzle.ClueNode {
	if s.CurrentClueIndex < 0 || s.CurrentClueIndex >= len(g.Chain) {
		return nil
	}
	return &g.Chain[s.CurrentClueIndex]
}

// DeepCopy returns an independent copy of the state via a JSON round trip.
func (s *State) DeepCopy() (*State, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state for copy: %w", err)
	}
	var cp State
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state copy: %w", err)
	}
	return &cp, nil
}

// HistoryWindow returns the most recent n conversation messages.
func (s *State) HistoryWindow(n int) []chat.ChatMessage {
	if n <= 0 || len(s.ConversationLog) <= n {
		return s.ConversationLog
	}
	return s.ConversationLog[len(s.ConversationLog)-n:]
}
