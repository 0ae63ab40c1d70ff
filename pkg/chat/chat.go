package chat

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	ChatRoleUser   = "user"      // the player
	ChatRoleAvatar = "assistant" // the controlled character's spoken reply
	ChatRoleSystem = "system"    // narrator instructions
)

// ChatMessage is a single message in the conversation log. The role/content
// shape matches what chat-completion APIs expect, so the same slice is used
// for persistence and for oracle calls.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TurnRequest is one player utterance addressed to a session.
type TurnRequest struct {
	SessionID uuid.UUID `json:"session_id"`
	Utterance string    `json:"utterance"`
}

func (tr *TurnRequest) Validate() error {
	if tr.SessionID == uuid.Nil {
		return fmt.Errorf("session_id is required")
	}
	if strings.TrimSpace(tr.Utterance) == "" {
		return fmt.Errorf("utterance cannot be empty")
	}
	return nil
}

// TurnResult is the public outcome of one processed turn.
type TurnResult struct {
	SessionID         uuid.UUID `json:"session_id"`
	AvatarReply       string    `json:"avatar_reply"`
	Moved             bool      `json:"moved"`
	MoveTarget        *string   `json:"move_target,omitempty"`
	DiscoveryRevealed bool      `json:"discovery_revealed"`
	RiddleSolved      bool      `json:"riddle_solved"`
	GameOver          bool      `json:"game_over"`
	CurrentLocation   string    `json:"current_location"`
	CluesCompleted    int       `json:"clues_completed"`
	TotalClues        int       `json:"total_clues"`

	// HiddenArea is the description handed to the image generator when a
	// discovery happened this turn. Never persisted with the session.
	HiddenArea *string `json:"hidden_area,omitempty"`
}
