package services

import (
	"context"
	"sync"

	"github.com/nvaneck/escape-engine/pkg/chat"
)

// MockOracle is an OracleService for testing. Replies are served from a
// queue; when the queue is empty the last reply repeats.
type MockOracle struct {
	mu      sync.Mutex
	replies []string
	err     error

	// DecideCalls records every call for assertions.
	DecideCalls []DecideCall
}

type DecideCall struct {
	Messages []chat.ChatMessage
	Schema   map[string]interface{}
}

var _ OracleService = (*MockOracle)(nil)

// NewMockOracle creates a mock oracle with an optional initial reply queue.
func NewMockOracle(replies ...string) *MockOracle {
	return &MockOracle{replies: replies}
}

// QueueReply appends a raw reply to be returned by the next Decide call.
func (m *MockOracle) QueueReply(raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, raw)
}

// SetError makes Decide fail with the given error until cleared with nil.
func (m *MockOracle) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockOracle) Decide(ctx context.Context, messages []chat.ChatMessage, schema map[string]interface{}) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DecideCalls = append(m.DecideCalls, DecideCall{Messages: messages, Schema: schema})

	if m.err != nil {
		return "", m.err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if len(m.replies) == 0 {
		return `{"avatar_reply": "Okay... okay. Tell me what to do.", "moved": false, "move_target": null, "discovery_revealed": false, "riddle_solved": false}`, nil
	}

	reply := m.replies[0]
	if len(m.replies) > 1 {
		m.replies = m.replies[1:]
	}
	return reply, nil
}
