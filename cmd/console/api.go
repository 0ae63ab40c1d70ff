package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/nvaneck/escape-engine/pkg/chat"
	"github.com/nvaneck/escape-engine/pkg/session"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type GraphListResponse struct {
	Graphs []string `json:"graphs"`
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/v1/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func listGraphs(client *http.Client, baseURL string) ([]string, error) {
	resp, err := client.Get(baseURL + "/v1/graphs")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var list GraphListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, err
	}
	return list.Graphs, nil
}

func createSession(client *http.Client, baseURL string, graphName string) (*session.ClientView, error) {
	jsonData, err := json.Marshal(map[string]string{"graph": graphName})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/v1/session",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to create session: %s", errorResp.Error)
	}

	var view session.ClientView
	if err := json.Unmarshal(body, &view); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return &view, nil
}

func getSession(client *http.Client, baseURL string, sessionID uuid.UUID) (*session.ClientView, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/session/%s", baseURL, sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to get session: %s", errorResp.Error)
	}

	var view session.ClientView
	if err := json.Unmarshal(body, &view); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return &view, nil
}

func sendTurn(client *http.Client, baseURL string, sessionID uuid.UUID, utterance string) (*chat.TurnResult, error) {
	jsonData, err := json.Marshal(chat.TurnRequest{
		SessionID: sessionID,
		Utterance: utterance,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/v1/turn",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("turn request failed: %s", errorResp.Error)
	}

	var result chat.TurnResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse turn response: %w", err)
	}
	return &result, nil
}
