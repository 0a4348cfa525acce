// Package llm provides an HTTP client for an OpenAI-compatible chat
// completions API, implementing the note analyzer port.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/novaera/caprail/internal/config"
	"github.com/novaera/caprail/internal/port/notes"
)

const systemPrompt = `You are an analyst. Extract from the delivery notes and return ONLY valid JSON with these exact keys:
- potential_ai_use_cases: array of strings
- technical_blockers: array of strings
- key_stakeholders: array of strings
No other text, only JSON.`

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates a chat completions client from analyzer config.
func NewClient(cfg config.Analyzer) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type analysisPayload struct {
	AIUseCases        []string `json:"potential_ai_use_cases"`
	TechnicalBlockers []string `json:"technical_blockers"`
	KeyStakeholders   []string `json:"key_stakeholders"`
}

// Analyze sends the notes to the model and parses the JSON reply.
func (c *Client) Analyze(ctx context.Context, text string) (notes.Analysis, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return notes.Analysis{}, fmt.Errorf("marshal chat request: %w", err)
	}

	data, err := c.doRequest(ctx, "/chat/completions", body)
	if err != nil {
		return notes.Analysis{}, err
	}

	var resp chatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return notes.Analysis{}, fmt.Errorf("unmarshal chat response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return notes.Analysis{}, fmt.Errorf("chat response has no choices")
	}

	var payload analysisPayload
	content := stripFences(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return notes.Analysis{}, fmt.Errorf("unmarshal analysis: %w", err)
	}
	return notes.Analysis{
		AIUseCases:        payload.AIUseCases,
		TechnicalBlockers: payload.TechnicalBlockers,
		KeyStakeholders:   payload.KeyStakeholders,
	}, nil
}

func (c *Client) doRequest(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("llm API error %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}

// stripFences removes a surrounding markdown code fence, with or without
// the json language tag, from a model reply.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	parts := strings.SplitN(s, "```", 3)
	if len(parts) < 2 {
		return s
	}
	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}
