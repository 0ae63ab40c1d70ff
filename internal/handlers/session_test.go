package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/nvaneck/escape-engine/pkg/session"
)

func TestSessionHandler_Create(t *testing.T) {
	eng, _, _ := testFixture()
	handler := NewSessionHandler(eng, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/session", strings.NewReader(`{"graph":"study"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d. Response body: %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", rr.Header().Get("Content-Type"))
	}

	var view session.ClientView
	if err := json.NewDecoder(rr.Body).Decode(&view); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if view.ID == uuid.Nil {
		t.Error("Expected non-nil session ID")
	}
	if view.GraphName != "study" {
		t.Errorf("Expected graph name study, got %s", view.GraphName)
	}
	if view.CurrentLocation != "center" {
		t.Errorf("Expected starting location center, got %s", view.CurrentLocation)
	}
}

func TestSessionHandler_CreateUnknownGraph(t *testing.T) {
	eng, _, _ := testFixture()
	handler := NewSessionHandler(eng, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/session", strings.NewReader(`{"graph":"attic"}`))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d. Response body: %s", rr.Code, rr.Body.String())
	}
}

func TestSessionHandler_CreateMissingGraph(t *testing.T) {
	eng, _, _ := testFixture()
	handler := NewSessionHandler(eng, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/session", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}

func TestSessionHandler_Get(t *testing.T) {
	eng, _, _ := testFixture()
	s, err := eng.ResetSession(context.Background(), uuid.Nil, "study")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	handler := NewSessionHandler(eng, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/session/"+s.ID.String(), nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Response body: %s", rr.Code, rr.Body.String())
	}

	var view session.ClientView
	if err := json.NewDecoder(rr.Body).Decode(&view); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if view.ID != s.ID {
		t.Errorf("Expected session ID %s, got %s", s.ID, view.ID)
	}
	if view.TotalClues != 1 {
		t.Errorf("Expected 1 total clue, got %d", view.TotalClues)
	}
}

func TestSessionHandler_GetNotFound(t *testing.T) {
	eng, _, _ := testFixture()
	handler := NewSessionHandler(eng, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/session/"+uuid.NewString(), nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}

func TestSessionHandler_GetInvalidID(t *testing.T) {
	eng, _, _ := testFixture()
	handler := NewSessionHandler(eng, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/session/not-a-uuid", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}

func TestSessionHandler_Reset(t *testing.T) {
	eng, st, _ := testFixture()
	s, err := eng.ResetSession(context.Background(), uuid.Nil, "study")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	// Dirty the state so the reset is observable.
	s.CurrentLocation = "desk"
	s.CluesCompleted = 1
	if err := st.SaveSession(context.Background(), s); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	handler := NewSessionHandler(eng, testLogger())
	req := httptest.NewRequest(http.MethodPut, "/v1/session/"+s.ID.String(), strings.NewReader(`{"graph":"study"}`))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d. Response body: %s", rr.Code, rr.Body.String())
	}

	var view session.ClientView
	if err := json.NewDecoder(rr.Body).Decode(&view); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if view.ID != s.ID {
		t.Errorf("Expected reset to keep session ID %s, got %s", s.ID, view.ID)
	}
	if view.CurrentLocation != "center" {
		t.Errorf("Expected reset to return to center, got %s", view.CurrentLocation)
	}
	if view.CluesCompleted != 0 {
		t.Errorf("Expected reset to clear clue progress, got %d", view.CluesCompleted)
	}
}

func TestSessionHandler_Delete(t *testing.T) {
	eng, _, _ := testFixture()
	s, err := eng.ResetSession(context.Background(), uuid.Nil, "study")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	handler := NewSessionHandler(eng, testLogger())

	req := httptest.NewRequest(http.MethodDelete, "/v1/session/"+s.ID.String(), nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rr.Code)
	}

	// A second delete finds nothing.
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/session/"+s.ID.String(), nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 on repeat delete, got %d", rr.Code)
	}
}

func TestSessionHandler_MethodNotAllowed(t *testing.T) {
	eng, _, _ := testFixture()
	handler := NewSessionHandler(eng, testLogger())

	req := httptest.NewRequest(http.MethodPatch, "/v1/session", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", rr.Code)
	}
}
