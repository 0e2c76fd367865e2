package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("LLM_API_URL", server.URL)
	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("LLM_MODEL", "test-model")
	return NewHTTPClient()
}

func TestChatSendsHistoryAndParsesReply(t *testing.T) {
	var got apiRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.NotEmpty(t, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"text": "Try a cooking stream."}},
		})
	})

	history := []Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	}
	reply, err := client.Chat(context.Background(), history, "what should I stream?")
	require.NoError(t, err)
	assert.Equal(t, "Try a cooking stream.", reply)

	assert.Equal(t, "test-model", got.Model)
	assert.NotEmpty(t, got.System)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "what should I stream?", got.Messages[2].Content)
}

func TestGenerateOmitsSystemPrompt(t *testing.T) {
	var got apiRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"text": "# A title\nbody"}},
		})
	})

	out, err := client.Generate(context.Background(), "write a blog post")
	require.NoError(t, err)
	assert.Equal(t, "# A title\nbody", out)
	assert.Empty(t, got.System)
	require.Len(t, got.Messages, 1)
}

func TestCallErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusTooManyRequests)
	})
	_, err := client.Chat(context.Background(), nil, "hi")
	assert.ErrorContains(t, err, "429")

	client = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"content": []interface{}{}})
	})
	_, err = client.Generate(context.Background(), "hi")
	assert.ErrorContains(t, err, "empty content")

	t.Setenv("LLM_API_KEY", "")
	_, err = NewHTTPClient().Generate(context.Background(), "hi")
	assert.ErrorContains(t, err, "LLM_API_KEY")
}
