package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rthomason/storelens/internal/config"
	"github.com/rthomason/storelens/internal/errors"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	client, err := NewClient(config.LLMConfig{
		Provider: ProviderGroq,
		Model:    "llama-3.1-8b-instant",
		APIKey:   "test-key",
		BaseURL:  baseURL,
		Timeout:  "5s",
	})
	require.NoError(t, err)

	return client
}

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LLMConfig
	}{
		{"missing model", config.LLMConfig{Provider: ProviderGroq, APIKey: "k"}},
		{"missing api key", config.LLMConfig{Provider: ProviderOpenAI, Model: "gpt-4o"}},
		{"unknown provider", config.LLMConfig{Provider: "telepathy", Model: "m"}},
		{"bad timeout", config.LLMConfig{Provider: ProviderOllama, Model: "m", Timeout: "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestNewClientOllamaNeedsNoKey(t *testing.T) {
	client, err := NewClient(config.LLMConfig{Provider: ProviderOllama, Model: "llama3"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", client.baseURL)
}

func TestChatCompletionsSuccess(t *testing.T) {
	var captured chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		resp := chatResponse{
			Choices: []chatChoice{
				{Message: Message{Role: "assistant", Content: "  SELECT 1  "}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	text, err := client.Chat(context.Background(), []Message{
		{Role: RoleSystem, Content: "You generate SQL."},
		{Role: RoleUser, Content: "How many orders?"},
	}, Options{MaxTokens: 1024, Temperature: 0, Stop: []string{"```"}})

	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", text)
	assert.Equal(t, "llama-3.1-8b-instant", captured.Model)
	assert.Equal(t, []string{"```"}, captured.Stop)
	assert.False(t, captured.Stream)
	assert.Len(t, captured.Messages, 2)
}

func TestChatEmptyMessages(t *testing.T) {
	client := newTestClient(t, "http://localhost:0")

	_, err := client.Chat(context.Background(), nil, Options{})
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

func TestChatStatusClassification(t *testing.T) {
	tests := []struct {
		status  int
		wantMsg string
	}{
		{http.StatusUnauthorized, "invalid API key"},
		{http.StatusTooManyRequests, "rate limit"},
		{http.StatusNotFound, "not found"},
		{http.StatusInternalServerError, "backend error 500"},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte("boom"))
		}))

		client := newTestClient(t, server.URL)

		_, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, Options{})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeLLMBackend))
		assert.Contains(t, err.Error(), tt.wantMsg)

		server.Close()
	}
}

func TestChatConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	server.Close() // connection refused from here on

	client := newTestClient(t, server.URL)

	_, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, Options{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeLLMBackend))
}

func TestChatOllama(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)

		resp := ollamaResponse{Message: Message{Role: "assistant", Content: "SELECT 2"}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := NewClient(config.LLMConfig{
		Provider: ProviderOllama,
		Model:    "llama3",
		BaseURL:  server.URL,
	})
	require.NoError(t, err)

	text, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, Options{MaxTokens: 64})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 2", text)
}

func TestChatBackendErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse{
			Error: &chatError{Message: "model overloaded", Type: "server_error"},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}
