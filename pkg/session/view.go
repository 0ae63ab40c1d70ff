package session

import (
	"github.com/google/uuid"
	"github.com/nvaneck/escape-engine/pkg/chat"
	"github.com/nvaneck/escape-engine/pkg/puzzle"
	"github.com/nvaneck/escape-engine/pkg/textfilter"
)

// ClientView is the redacted session state safe for external consumption.
// It carries no riddle answers, no chain contents and no hidden-area text.
type ClientView struct {
	ID              uuid.UUID          `json:"id"`
	GraphName       string             `json:"graph_name"`
	CurrentLocation string             `json:"current_location"`
	Locations       []string           `json:"locations"`
	VisitHistory    []string           `json:"visit_history"`
	CluesCompleted  int                `json:"clues_completed"`
	TotalClues      int                `json:"total_clues"`
	GameOver        bool               `json:"game_over"`
	ConversationLog []chat.ChatMessage `json:"conversation_log"`
}

// ToClientView projects full session state onto the client-safe view. Pure
// and total: it never mutates its inputs and never fails on a well-formed
// state. Avatar turns have narrator-internal control text stripped.
func ToClientView(s *State, g *puzzle.Graph) *ClientView {
	log := make([]chat.ChatMessage, 0, len(s.ConversationLog))
	for _, msg := range s.ConversationLog {
		if msg.Role == chat.ChatRoleSystem {
			// Narrator instructions never leave the engine.
			continue
		}
		content := msg.Content
		if msg.Role == chat.ChatRoleAvatar {
			content = textfilter.StripControlText(content)
		}
		log = append(log, chat.ChatMessage{Role: msg.Role, Content: content})
	}

	visits := make([]string, len(s.VisitHistory))
	copy(visits, s.VisitHistory)

	return &ClientView{
		ID:              s.ID,
		GraphName:       s.GraphName,
		CurrentLocation: s.CurrentLocation,
		Locations:       g.LocationIDs(),
		VisitHistory:    visits,
		CluesCompleted:  s.CluesCompleted,
		TotalClues:      g.TotalClues(),
		GameOver:        s.SessionOver,
		ConversationLog: log,
	}
}
