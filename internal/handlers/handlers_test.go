package handlers

import (
	"log/slog"
	"os"

	"github.com/nvaneck/escape-engine/internal/engine"
	"github.com/nvaneck/escape-engine/internal/services"
	"github.com/nvaneck/escape-engine/pkg/puzzle"
	"github.com/nvaneck/escape-engine/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func strptr(s string) *string { return &s }

func testGraph() *puzzle.Graph {
	return &puzzle.Graph{
		Name:  "study",
		Story: "A locked study. Find the way out.",
		Locations: []puzzle.Location{
			{ID: "center", Name: "Center of the Room", Description: "An open rug."},
			{ID: "desk", Name: "Writing Desk", Description: "A cluttered desk.", Interactable: true},
			{ID: "door", Name: "Heavy Door", Description: "The only exit.", Interactable: true},
		},
		Chain: []puzzle.ClueNode{
			{
				ID:         "note",
				LocationID: "desk",
				Discovery:  "A folded note lies in the drawer.",
				Riddle:     strptr("What gets wetter the more it dries?"),
				Answer:     strptr("towel"),
				HiddenArea: "the drawer interior",
			},
			{
				ID:         "exit",
				LocationID: "door",
				Discovery:  "The deadbolt slides back.",
				HiddenArea: "the unlocked doorway",
			},
		},
	}
}

func testFixture() (*engine.Engine, *storage.MockStorage, *services.MockOracle) {
	st := storage.NewMockStorage()
	st.AddGraph(testGraph())
	oracle := services.NewMockOracle()
	eng := engine.New(st, oracle, testLogger())
	return eng, st, oracle
}
