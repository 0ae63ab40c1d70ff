package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvaneck/escape-engine/pkg/chat"
	"github.com/nvaneck/escape-engine/pkg/puzzle"
	"github.com/nvaneck/escape-engine/pkg/session"
	"github.com/nvaneck/escape-engine/pkg/storage"
)

func strPtr(s string) *string { return &s }

func testGraph() *puzzle.Graph {
	return &puzzle.Graph{
		Name: "study",
		Chain: []puzzle.ClueNode{
			{
				ID:                 "clue_desk",
				LocationID:         "desk",
				Discovery:          "A folded note.",
				PrematureDiscovery: "Locked.",
				Riddle:             strPtr("riddle"),
				Answer:             strPtr("answer"),
			},
			{
				ID:                 "clue_door",
				LocationID:         "locked_door",
				Discovery:          "The deadbolt clicks open.",
				PrematureDiscovery: "It will not budge.",
			},
		},
		Locations: []puzzle.Location{
			{ID: "center"},
			{ID: "desk", Interactable: true},
			{ID: "locked_door", Interactable: true},
		},
	}
}

func setupStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis, string) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	dataDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "graphs"), 0o755))

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	rs := NewRedisStorage(mr.Addr(), dataDir, time.Hour, logger)
	t.Cleanup(func() { _ = rs.Close() })

	return rs, mr, dataDir
}

func writeGraphFile(t *testing.T, dataDir string, g *puzzle.Graph) {
	t.Helper()
	data, err := json.Marshal(g)
	require.NoError(t, err)
	path := filepath.Join(dataDir, "graphs", g.Name+".json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestRedisStorage_SessionRoundTrip(t *testing.T) {
	rs, _, _ := setupStorage(t)
	ctx := context.Background()

	s := session.NewState(testGraph())
	s.Visit("desk")
	s.ConversationLog = append(s.ConversationLog,
		chat.ChatMessage{Role: chat.ChatRoleUser, Content: "check the desk"},
		chat.ChatMessage{Role: chat.ChatRoleAvatar, Content: "Okay... I'm at the desk."},
	)

	require.NoError(t, rs.SaveSession(ctx, s))
	assert.False(t, s.UpdatedAt.IsZero())

	loaded, err := rs.LoadSession(ctx, s.ID)
	require.NoError(t, err)

	assert.Equal(t, s.ID, loaded.ID)
	assert.Equal(t, s.GraphName, loaded.GraphName)
	assert.Equal(t, []string{"desk"}, loaded.VisitHistory)
	assert.Len(t, loaded.ConversationLog, 2)
}

func TestRedisStorage_LoadSession_NotFound(t *testing.T) {
	rs, _, _ := setupStorage(t)

	_, err := rs.LoadSession(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestRedisStorage_DeleteSession(t *testing.T) {
	rs, _, _ := setupStorage(t)
	ctx := context.Background()

	s := session.NewState(testGraph())
	require.NoError(t, rs.SaveSession(ctx, s))
	require.NoError(t, rs.DeleteSession(ctx, s.ID))

	_, err := rs.LoadSession(ctx, s.ID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	assert.True(t, errors.Is(rs.DeleteSession(ctx, s.ID), storage.ErrNotFound))
}

func TestRedisStorage_SessionTTL(t *testing.T) {
	rs, mr, _ := setupStorage(t)
	ctx := context.Background()

	s := session.NewState(testGraph())
	require.NoError(t, rs.SaveSession(ctx, s))

	mr.FastForward(2 * time.Hour)

	_, err := rs.LoadSession(ctx, s.ID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestRedisStorage_GetGraph(t *testing.T) {
	rs, _, dataDir := setupStorage(t)
	ctx := context.Background()

	writeGraphFile(t, dataDir, testGraph())

	g, err := rs.GetGraph(ctx, "study")
	require.NoError(t, err)
	assert.Equal(t, "study", g.Name)
	assert.Len(t, g.Chain, 2)

	_, err = rs.GetGraph(ctx, "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestRedisStorage_GetGraph_Invalid(t *testing.T) {
	rs, _, dataDir := setupStorage(t)

	bad := testGraph()
	bad.Chain = nil
	writeGraphFile(t, dataDir, bad)

	_, err := rs.GetGraph(context.Background(), "study")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid")
}

func TestRedisStorage_ListGraphs(t *testing.T) {
	rs, _, dataDir := setupStorage(t)
	ctx := context.Background()

	names, err := rs.ListGraphs(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	writeGraphFile(t, dataDir, testGraph())
	second := testGraph()
	second.Name = "basement"
	writeGraphFile(t, dataDir, second)

	names, err = rs.ListGraphs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"basement", "study"}, names)
}

func TestRedisStorage_Ping(t *testing.T) {
	rs, mr, _ := setupStorage(t)

	require.NoError(t, rs.Ping(context.Background()))

	mr.Close()
	assert.Error(t, rs.Ping(context.Background()))
}
