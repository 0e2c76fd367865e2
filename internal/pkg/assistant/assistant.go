package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/env"
)

// Message is one conversation turn passed to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client produces assistant output for the metered features. The service
// behind it is an external collaborator; billing only consumes the outcome.
type Client interface {
	Chat(ctx context.Context, history []Message, message string) (string, error)
	Generate(ctx context.Context, prompt string) (string, error)
}

const chatSystemPrompt = "You are StreamPilot, an assistant for livestream creators. " +
	"You help with streaming setup, content creation, video production, and " +
	"multi-platform management. Be helpful, concise, and creative."

// HTTPClient talks to a messages-style LLM API configured via LLM_API_URL,
// LLM_API_KEY and LLM_MODEL.
type HTTPClient struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
}

// NewHTTPClient builds a client from the environment.
func NewHTTPClient() *HTTPClient {
	return &HTTPClient{
		endpoint: env.GetEnv("LLM_API_URL", "https://api.anthropic.com/v1/messages"),
		apiKey:   env.GetEnv("LLM_API_KEY", ""),
		model:    env.GetEnv("LLM_MODEL", "claude-sonnet-4-20250514"),
		http:     &http.Client{Timeout: 60 * time.Second},
	}
}

type apiRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

type apiResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// Chat sends the conversation plus the new user message and returns the
// assistant reply.
func (c *HTTPClient) Chat(ctx context.Context, history []Message, message string) (string, error) {
	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, Message{Role: "user", Content: message})

	return c.call(ctx, apiRequest{
		Model:     c.model,
		MaxTokens: 2048,
		System:    chatSystemPrompt,
		Messages:  messages,
	})
}

// Generate runs a single-prompt completion (content, SEO passes).
func (c *HTTPClient) Generate(ctx context.Context, prompt string) (string, error) {
	return c.call(ctx, apiRequest{
		Model:     c.model,
		MaxTokens: 4096,
		Messages:  []Message{{Role: "user", Content: prompt}},
	})
}

func (c *HTTPClient) call(ctx context.Context, reqBody apiRequest) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("LLM_API_KEY not configured")
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("assistant API returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Content) == 0 {
		return "", errors.New("assistant API returned empty content")
	}
	return parsed.Content[0].Text, nil
}
