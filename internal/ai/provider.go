// Package ai wraps the external AI providers behind a gateway with bounded
// retry and a circuit breaker. OCR vision calls, RAG chat completions and
// embeddings all go through here; nothing else in the codebase talks to a
// model API directly.
package ai

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by providers that do not implement a capability.
var ErrUnsupported = errors.New("operation not supported by provider")

// Provider abstracts a hosted model API.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Vision(ctx context.Context, req VisionRequest) (*ChatResponse, error)
	Embed(ctx context.Context, model string, input []string) ([][]float32, error)
	Name() string
}

// Gateway routes calls to a primary provider with fallback for chat.
type Gateway interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Vision(ctx context.Context, req VisionRequest) (*ChatResponse, error)
	Embed(ctx context.Context, input []string) ([][]float32, error)
}

type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type ChatResponse struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	Content      string `json:"content"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	LatencyMs    int64  `json:"latency_ms"`
}

// VisionRequest carries one document image as a data URI plus the
// extraction instructions.
type VisionRequest struct {
	Model        string `json:"model"`
	System       string `json:"system"`
	Prompt       string `json:"prompt"`
	ImageDataURI string `json:"image_data_uri"`
	MaxTokens    int    `json:"max_tokens,omitempty"`
}
