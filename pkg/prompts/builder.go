package prompts

import (
	"fmt"
	"strings"

	"github.com/nvaneck/escape-engine/pkg/chat"
	"github.com/nvaneck/escape-engine/pkg/puzzle"
	"github.com/nvaneck/escape-engine/pkg/session"
)

// Node statuses as the oracle sees them.
const (
	StatusCompleted = "COMPLETED"
	StatusCurrent   = "CURRENT"
	StatusUpcoming  = "UPCOMING"
)

const defaultHistoryLimit = 12

// Builder constructs the oracle instruction document for one turn using a
// fluent interface. The document is rebuilt fresh every turn; session state
// changes each turn, so it is never cached or diffed.
type Builder struct {
	state        *session.State
	graph        *puzzle.Graph
	utterance    string
	historyLimit int
	messages     []chat.ChatMessage
}

// New creates a prompt builder with default settings.
func New() *Builder {
	return &Builder{
		historyLimit: defaultHistoryLimit,
		messages:     make([]chat.ChatMessage, 0),
	}
}

// WithSession sets the session state for this turn.
func (b *Builder) WithSession(s *session.State) *Builder {
	b.state = s
	return b
}

// WithGraph sets the puzzle graph.
func (b *Builder) WithGraph(g *puzzle.Graph) *Builder {
	b.graph = g
	return b
}

// WithUtterance sets the player's message for this turn.
func (b *Builder) WithUtterance(utterance string) *Builder {
	b.utterance = utterance
	return b
}

// WithHistoryLimit sets the conversation history window size.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// Build constructs the final message array for the oracle call.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if b.state == nil {
		return nil, fmt.Errorf("session state is required")
	}
	if b.graph == nil {
		return nil, fmt.Errorf("puzzle graph is required")
	}

	b.messages = make([]chat.ChatMessage, 0)

	b.addSystemPrompt()
	b.addHistory()
	b.addUtterance()
	b.addFinalPrompt()

	return b.messages, nil
}

// addSystemPrompt assembles the instruction document: persona and rules,
// the room, the annotated chain, and the current state snapshot.
func (b *Builder) addSystemPrompt() {
	var sb strings.Builder

	sb.WriteString(BaseSystemPrompt)

	if b.graph.Story != "" {
		sb.WriteString("\n\n### THE ROOM\n")
		sb.WriteString(b.graph.Story)
	}

	sb.WriteString("\n\n### VALID LOCATIONS\n")
	for _, loc := range b.graph.Locations {
		kind := "environmental"
		if loc.Interactable {
			kind = "interactable"
		}
		sb.WriteString(fmt.Sprintf("- %s (%s)", loc.ID, kind))
		if loc.Description != "" {
			sb.WriteString(": " + loc.Description)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n### CLUE CHAIN\n")
	for i := range b.graph.Chain {
		node := &b.graph.Chain[i]
		sb.WriteString(fmt.Sprintf("%d. [%s] at %s, premature text: %q\n",
			i+1, b.nodeStatus(i), node.LocationID, node.PrematureDiscovery))
	}

	if current := b.state.CurrentNode(b.graph); current != nil {
		sb.WriteString("\n### CURRENT CLUE\n")
		sb.WriteString(fmt.Sprintf("Location: %s\n", current.LocationID))
		sb.WriteString(fmt.Sprintf("Discovery: %s\n", current.Discovery))
		if current.Riddle != nil {
			sb.WriteString(fmt.Sprintf("Riddle: %s\n", *current.Riddle))
			sb.WriteString(fmt.Sprintf("Answer keyword: %s\n", *current.Answer))
		} else {
			sb.WriteString("This is the exit. There is no riddle; revealing its discovery ends the session.\n")
		}
	}

	sb.WriteString("\n### STATE\n")
	sb.WriteString(fmt.Sprintf("Current location: %s\n", b.state.CurrentLocation))
	sb.WriteString(fmt.Sprintf("Visited: %s\n", strings.Join(b.state.VisitHistory, ", ")))
	sb.WriteString(fmt.Sprintf("Clues completed: %d of %d\n", b.state.CluesCompleted, b.graph.TotalClues()))

	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: sb.String(),
	})
}

func (b *Builder) nodeStatus(index int) string {
	switch {
	case index < b.state.CurrentClueIndex:
		return StatusCompleted
	case index == b.state.CurrentClueIndex:
		return StatusCurrent
	default:
		return StatusUpcoming
	}
}

// addHistory adds the windowed conversation history.
func (b *Builder) addHistory() {
	b.messages = append(b.messages, b.state.HistoryWindow(b.historyLimit)...)
}

// addUtterance adds the player's message for this turn.
func (b *Builder) addUtterance() {
	if b.utterance == "" {
		return
	}
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleUser,
		Content: b.utterance,
	})
}

// addFinalPrompt appends the closing reminder.
func (b *Builder) addFinalPrompt() {
	final := UserPostPrompt
	if b.state.SessionOver {
		final = GameEndSystemPrompt
	}
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: final,
	})
}

// BuildMessages is a convenience function for the common case.
func BuildMessages(s *session.State, g *puzzle.Graph, utterance string, historyLimit int) ([]chat.ChatMessage, error) {
	return New().
		WithSession(s).
		WithGraph(g).
		WithUtterance(utterance).
		WithHistoryLimit(historyLimit).
		Build()
}
