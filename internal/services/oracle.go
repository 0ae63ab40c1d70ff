package services

import (
	"context"

	"github.com/nvaneck/escape-engine/pkg/chat"
)

// OracleService is the narrow interface to the external narration oracle.
// It returns the raw reply text; the requested schema is advisory and all
// shape enforcement lives in pkg/decision.
type OracleService interface {
	// Decide requests one narrator decision for the assembled instruction
	// document and conversation history.
	Decide(ctx context.Context, messages []chat.ChatMessage, schema map[string]interface{}) (string, error)
}
