package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nvaneck/escape-engine/pkg/chat"
)

const (
	mistralBaseURL      = "https://api.mistral.ai/v1"
	DefaultMistralModel = "mistral-large-latest"

	DefaultMistralTemperature = 0.7
	DefaultMistralMaxTokens   = 1024

	msgNoResponse = "(no response)"
)

// MistralService implements OracleService for the Mistral chat API.
type MistralService struct {
	apiKey     string
	modelName  string
	httpClient *http.Client
}

var _ OracleService = (*MistralService)(nil)

type MistralResponseFormat struct {
	Type       string            `json:"type"`
	JSONSchema MistralJSONSchema `json:"json_schema"`
}

type MistralJSONSchema struct {
	Name   string                 `json:"name"`
	Strict bool                   `json:"strict"`
	Schema map[string]interface{} `json:"schema"`
}

// MistralChatRequest represents the request structure for Mistral chat completions
type MistralChatRequest struct {
	Model          string                 `json:"model"`
	Messages       []chat.ChatMessage     `json:"messages"`
	Temperature    float64                `json:"temperature,omitempty"`
	MaxTokens      int                    `json:"max_tokens,omitempty"`
	Stream         bool                   `json:"stream"`
	ResponseFormat *MistralResponseFormat `json:"response_format,omitempty"`
}

// MistralChatChoice is a single choice in the Mistral response
type MistralChatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

// MistralChatResponse represents the response structure for Mistral chat completions
type MistralChatResponse struct {
	ID      string              `json:"id"`
	Object  string              `json:"object"`
	Created int64               `json:"created"`
	Model   string              `json:"model"`
	Choices []MistralChatChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// NewMistralService creates a new Mistral oracle service
func NewMistralService(apiKey string, modelName string) *MistralService {
	if modelName == "" {
		modelName = DefaultMistralModel
	}
	return &MistralService{
		apiKey:    apiKey,
		modelName: modelName,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Decide requests one narrator decision from Mistral as structured JSON.
func (m *MistralService) Decide(ctx context.Context, messages []chat.ChatMessage, schema map[string]interface{}) (string, error) {
	mistralReq := MistralChatRequest{
		Model:       m.modelName,
		Messages:    messages,
		Temperature: DefaultMistralTemperature,
		MaxTokens:   DefaultMistralMaxTokens,
		Stream:      false,
	}
	if schema != nil {
		mistralReq.ResponseFormat = &MistralResponseFormat{
			Type: "json_schema",
			JSONSchema: MistralJSONSchema{
				Name:   "narrator_decision",
				Strict: true,
				Schema: schema,
			},
		}
	}

	reqBody, err := json.Marshal(mistralReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", mistralBaseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var mistralResp MistralChatResponse
	if err := json.Unmarshal(body, &mistralResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if mistralResp.Error != nil {
		return "", fmt.Errorf("API error: %s", mistralResp.Error.Message)
	}

	if len(mistralResp.Choices) == 0 {
		return msgNoResponse, nil
	}

	return mistralResp.Choices[0].Message.Content, nil
}
