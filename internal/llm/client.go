package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rthomason/storelens/internal/config"
	"github.com/rthomason/storelens/internal/errors"
)

// Client implements the Service interface against an OpenAI-compatible chat
// endpoint (Groq, OpenAI) or a local Ollama instance.
type Client struct {
	provider   string
	model      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new chat client from the LLM configuration
func NewClient(cfg config.LLMConfig) (*Client, error) {
	provider := strings.ToLower(cfg.Provider)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		switch provider {
		case ProviderGroq:
			baseURL = "https://api.groq.com/openai/v1"
		case ProviderOpenAI:
			baseURL = "https://api.openai.com/v1"
		case ProviderOllama:
			baseURL = "http://localhost:11434"
		default:
			return nil, errors.Newf(errors.ErrTypeConfig, "unsupported provider: %s", cfg.Provider)
		}
	}

	if cfg.Model == "" {
		return nil, errors.New(errors.ErrTypeConfig, "model is required")
	}

	if (provider == ProviderGroq || provider == ProviderOpenAI) && cfg.APIKey == "" {
		return nil, errors.Newf(errors.ErrTypeConfig, "API key is required for %s provider", provider)
	}

	timeout := 60 * time.Second
	if cfg.Timeout != "" {
		parsed, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrTypeConfig, "invalid llm timeout: %s", cfg.Timeout)
		}

		timeout = parsed
	}

	return &Client{
		provider: provider,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Chat sends the messages to the configured backend and returns the completion text
func (c *Client) Chat(ctx context.Context, messages []Message, opts Options) (string, error) {
	if len(messages) == 0 {
		return "", errors.New(errors.ErrTypeValidation, "at least one message is required")
	}

	switch c.provider {
	case ProviderGroq, ProviderOpenAI:
		return c.chatCompletions(ctx, messages, opts)
	case ProviderOllama:
		return c.chatOllama(ctx, messages, opts)
	default:
		return "", errors.Newf(errors.ErrTypeConfig, "unsupported provider: %s", c.provider)
	}
}

// OpenAI-compatible API structures
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
	Stop        []string  `json:"stop,omitempty"`
	Stream      bool      `json:"stream"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *chatError   `json:"error,omitempty"`
}

type chatChoice struct {
	Message Message `json:"message"`
}

type chatError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// chatCompletions handles the OpenAI-compatible /chat/completions endpoint
func (c *Client) chatCompletions(ctx context.Context, messages []Message, opts Options) (string, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		Stop:        opts.Stop,
		Stream:      false,
	}

	respBody, err := c.post(ctx, "/chat/completions", reqBody)
	if err != nil {
		return "", err
	}

	var response chatResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", errors.Wrap(err, errors.ErrTypeLLMBackend, "failed to parse backend response")
	}

	if response.Error != nil {
		return "", errors.Newf(errors.ErrTypeLLMBackend, "backend error: %s", response.Error.Message)
	}

	if len(response.Choices) == 0 {
		return "", errors.New(errors.ErrTypeLLMBackend, "backend returned no choices")
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

// Ollama API structures
type ollamaRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Message Message `json:"message"`
	Error   string  `json:"error,omitempty"`
}

// chatOllama handles the Ollama native chat endpoint
func (c *Client) chatOllama(ctx context.Context, messages []Message, opts Options) (string, error) {
	options := map[string]any{
		"temperature": opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		options["num_predict"] = opts.MaxTokens
	}

	if len(opts.Stop) > 0 {
		options["stop"] = opts.Stop
	}

	reqBody := ollamaRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
		Options:  options,
	}

	respBody, err := c.post(ctx, "/api/chat", reqBody)
	if err != nil {
		return "", err
	}

	var response ollamaResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", errors.Wrap(err, errors.ErrTypeLLMBackend, "failed to parse backend response")
	}

	if response.Error != "" {
		return "", errors.Newf(errors.ErrTypeLLMBackend, "backend error: %s", response.Error)
	}

	return strings.TrimSpace(response.Message.Content), nil
}

// post makes an HTTP request to the backend and classifies failures
func (c *Client) post(ctx context.Context, endpoint string, reqBody interface{}) ([]byte, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeInternal, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeInternal, "failed to create request")
	}

	req.Header.Set("Content-Type", "application/json")

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeLLMBackend, "cannot reach generative backend")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeLLMBackend, "failed to read backend response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, c.model, body)
	}

	return body, nil
}

// classifyStatus maps backend HTTP status codes to structured errors
func classifyStatus(status int, model string, body []byte) error {
	switch status {
	case http.StatusUnauthorized:
		return errors.New(errors.ErrTypeLLMBackend, "invalid API key for generative backend")
	case http.StatusTooManyRequests:
		return errors.New(errors.ErrTypeLLMBackend, "generative backend rate limit exceeded")
	case http.StatusNotFound:
		return errors.Newf(errors.ErrTypeLLMBackend, "model %q not found on backend", model)
	default:
		detail := string(body)
		if len(detail) > 200 {
			detail = detail[:200]
		}

		return errors.Newf(errors.ErrTypeLLMBackend, "backend error %d: %s", status, detail)
	}
}
