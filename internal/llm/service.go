package llm

import (
	"context"
)

// Role tags for chat messages
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is a single role-tagged message in a chat exchange
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options controls a single chat completion call
type Options struct {
	MaxTokens   int
	Temperature float64
	Stop        []string
}

// Service defines the interface for the generative text backend.
// Implementations return the completion text or a backend error; callers are
// expected to convert errors into fallback decisions rather than surfacing
// them to the end user.
type Service interface {
	Chat(ctx context.Context, messages []Message, opts Options) (string, error)
}

// Provider constants for the supported backends
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)
