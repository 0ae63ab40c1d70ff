package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvaneck/escape-engine/internal/engine"
	"github.com/nvaneck/escape-engine/internal/handlers"
	"github.com/nvaneck/escape-engine/internal/middleware"
	"github.com/nvaneck/escape-engine/internal/services"
	"github.com/nvaneck/escape-engine/internal/storage"
	"github.com/nvaneck/escape-engine/pkg/chat"
	"github.com/nvaneck/escape-engine/pkg/session"
)

// newTestServer wires the full API stack against an embedded Redis and a
// scripted oracle, using the shipped study graph from data/graphs.
func newTestServer(t *testing.T) (*httptest.Server, *services.MockOracle) {
	t.Helper()

	mr := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	store := storage.NewRedisStorage(mr.Addr(), "../data", time.Hour, logger)
	t.Cleanup(func() { _ = store.Close() })

	oracle := services.NewMockOracle()
	eng := engine.New(store, oracle, logger)

	mux := http.NewServeMux()
	mux.Handle("/v1/health", handlers.NewHealthHandler(store, logger))
	mux.Handle("/v1/turn", handlers.NewTurnHandler(eng, logger))
	sessionHandler := handlers.NewSessionHandler(eng, logger)
	mux.Handle("/v1/session", sessionHandler)
	mux.Handle("/v1/session/", sessionHandler)
	mux.Handle("/v1/graphs", handlers.NewGraphsHandler(store, logger))

	srv := httptest.NewServer(middleware.Logger(mux))
	t.Cleanup(srv.Close)
	return srv, oracle
}

func postJSON(t *testing.T, url string, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, data
}

func getJSON(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, data
}

func decision(reply string, moved bool, target string, discovered, solved bool) string {
	d := map[string]interface{}{
		"avatar_reply":       reply,
		"moved":              moved,
		"move_target":        nil,
		"discovery_revealed": discovered,
		"riddle_solved":      solved,
	}
	if target != "" {
		d["move_target"] = target
	}
	data, _ := json.Marshal(d)
	return string(data)
}

func takeTurn(t *testing.T, srv *httptest.Server, id uuid.UUID, utterance string) *chat.TurnResult {
	t.Helper()
	body := fmt.Sprintf(`{"session_id":%q,"utterance":%q}`, id, utterance)
	resp, data := postJSON(t, srv.URL+"/v1/turn", body)
	require.Equal(t, http.StatusOK, resp.StatusCode, "turn failed: %s", string(data))

	var result chat.TurnResult
	require.NoError(t, json.Unmarshal(data, &result))
	return &result
}

func TestFullEscape(t *testing.T) {
	srv, oracle := newTestServer(t)

	// The study graph ships with the repo.
	resp, data := getJSON(t, srv.URL+"/v1/graphs")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var graphList handlers.GraphListResponse
	require.NoError(t, json.Unmarshal(data, &graphList))
	require.Contains(t, graphList.Graphs, "study")

	resp, data = postJSON(t, srv.URL+"/v1/session", `{"graph":"study"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create failed: %s", string(data))
	var view session.ClientView
	require.NoError(t, json.Unmarshal(data, &view))
	require.NotEqual(t, uuid.Nil, view.ID)
	assert.Equal(t, "center", view.CurrentLocation)
	assert.Equal(t, 3, view.TotalClues)

	id := view.ID

	// One scripted decision per turn, in play order.
	for _, reply := range []string{
		decision("Okay. Moving to the desk now, flashlight shaking.", true, "desk", true, false),
		decision("A map! The drawer clicked open, there's a note and a little key.", false, "", false, true),
		decision("Pressing on the shelf that sticks out... it swung open!", true, "bookshelf", true, true),
		decision("Winding the clock... a cylinder popped out. Echo. It has to be echo.", true, "grandfather_clock", true, true),
		decision("The deadbolt just moved on its own. I'm pushing the door... I'm out!", true, "door", true, false),
	} {
		oracle.QueueReply(reply)
	}

	// Walk to the desk and solve the first riddle.
	result := takeTurn(t, srv, id, "go check the desk")
	assert.Equal(t, "desk", result.CurrentLocation)
	assert.True(t, result.DiscoveryRevealed)
	require.NotNil(t, result.HiddenArea)
	assert.Contains(t, *result.HiddenArea, "drawer")

	result = takeTurn(t, srv, id, "the answer is a map")
	assert.True(t, result.RiddleSolved)
	assert.Equal(t, 1, result.CluesCompleted)

	// Bookshelf leg.
	result = takeTurn(t, srv, id, "push the odd shelf and answer: footsteps")
	assert.Equal(t, 2, result.CluesCompleted)
	require.NotNil(t, result.HiddenArea)
	assert.Contains(t, *result.HiddenArea, "alcove")

	// Clock leg.
	result = takeTurn(t, srv, id, "wind the clock, the answer is echo")
	assert.Equal(t, 3, result.CluesCompleted)
	assert.False(t, result.GameOver)

	// The door opens and the session ends.
	result = takeTurn(t, srv, id, "go to the door")
	assert.True(t, result.GameOver)
	require.NotNil(t, result.HiddenArea)
	assert.Contains(t, *result.HiddenArea, "deadbolt")

	// Further turns are refused without consulting the oracle.
	body := fmt.Sprintf(`{"session_id":%q,"utterance":"hello?"}`, id)
	resp, data = postJSON(t, srv.URL+"/v1/turn", body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(data), "ended")

	// The client view never carries riddle answers.
	resp, data = getJSON(t, srv.URL+"/v1/session/"+id.String())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	lower := strings.ToLower(string(data))
	assert.NotContains(t, lower, `"answer"`)
	assert.NotContains(t, lower, "footsteps")
	var finalView session.ClientView
	require.NoError(t, json.Unmarshal(data, &finalView))
	assert.True(t, finalView.GameOver)
	assert.Equal(t, []string{"desk", "bookshelf", "grandfather_clock", "door"}, finalView.VisitHistory)
}

func TestPrematureArrivalAndRepair(t *testing.T) {
	srv, oracle := newTestServer(t)

	resp, data := postJSON(t, srv.URL+"/v1/session", `{"graph":"study"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var view session.ClientView
	require.NoError(t, json.Unmarshal(data, &view))
	id := view.ID

	for _, reply := range []string{
		decision("The deadbolt won't budge. The grille is just hissing at me.", true, "door", false, false),
		"```json\n{\"response\": \"Heading back to the desk.\", \"did_move\": true, \"destination\": \"desk\"}\n```",
		"I cannot help with that.",
	} {
		oracle.QueueReply(reply)
	}

	// Rushing the door ahead of the chain reveals nothing.
	result := takeTurn(t, srv, id, "run to the door and force it")
	assert.Equal(t, "door", result.CurrentLocation)
	assert.False(t, result.GameOver)
	assert.Nil(t, result.HiddenArea)

	// A sloppy oracle reply still lands after repair.
	result = takeTurn(t, srv, id, "go back to the desk")
	assert.True(t, result.Moved)
	assert.Equal(t, "desk", result.CurrentLocation)

	// An unusable reply fails the turn without corrupting the session.
	body := fmt.Sprintf(`{"session_id":%q,"utterance":"solve it"}`, id)
	resp, _ = postJSON(t, srv.URL+"/v1/turn", body)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	resp, data = getJSON(t, srv.URL+"/v1/session/"+id.String())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &view))
	assert.Equal(t, "desk", view.CurrentLocation)
	assert.Equal(t, 0, view.CluesCompleted)
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, data := postJSON(t, srv.URL+"/v1/session", `{"graph":"study"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var view session.ClientView
	require.NoError(t, json.Unmarshal(data, &view))
	id := view.ID

	// Health reflects the embedded Redis.
	resp, data = getJSON(t, srv.URL+"/v1/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"healthy"`)

	// Delete, then confirm the record is gone.
	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/v1/session/"+id.String(), nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = getJSON(t, srv.URL+"/v1/session/"+id.String())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
