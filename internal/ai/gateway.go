package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brainsait/docuscan/internal/config"
)

const (
	breakerThreshold = 5
	breakerCooldown  = 30 * time.Second
)

type gateway struct {
	primary        Provider
	fallback       Provider
	embeddingModel string
	maxRetries     int
	breaker        *breaker
}

// NewGateway wires providers from config. OpenAI is the primary; when an
// Anthropic key is present it serves as the chat fallback.
func NewGateway(cfg config.AIConfig) Gateway {
	g := &gateway{
		primary:        NewOpenAIProvider(cfg.OpenAIKey),
		embeddingModel: cfg.EmbeddingModel,
		maxRetries:     cfg.MaxRetries,
		breaker:        newBreaker(breakerThreshold, breakerCooldown),
	}
	if cfg.AnthropicKey != "" {
		g.fallback = NewAnthropicProvider(cfg.AnthropicKey)
	}
	return g
}

func (g *gateway) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	resp, err := withRetry(ctx, g, func() (*ChatResponse, error) {
		return g.primary.Chat(ctx, req)
	})
	if err != nil && g.fallback != nil {
		slog.Warn("primary provider failed, trying fallback",
			"primary", g.primary.Name(),
			"fallback", g.fallback.Name(),
			"error", err,
		)
		return g.fallback.Chat(ctx, req)
	}
	return resp, err
}

func (g *gateway) Vision(ctx context.Context, req VisionRequest) (*ChatResponse, error) {
	return withRetry(ctx, g, func() (*ChatResponse, error) {
		return g.primary.Vision(ctx, req)
	})
}

func (g *gateway) Embed(ctx context.Context, input []string) ([][]float32, error) {
	return withRetry(ctx, g, func() ([][]float32, error) {
		return g.primary.Embed(ctx, g.embeddingModel, input)
	})
}

// withRetry runs fn with exponential backoff through the shared breaker.
func withRetry[T any](ctx context.Context, g *gateway, fn func() (T, error)) (T, error) {
	var zero T
	if !g.breaker.allow() {
		return zero, ErrCircuitOpen
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
			}
			slog.Debug("retrying AI call", "provider", g.primary.Name(), "attempt", attempt)
		}

		result, err := fn()
		if err == nil {
			g.breaker.success()
			return result, nil
		}
		lastErr = err
		g.breaker.failure()
	}
	return zero, fmt.Errorf("all retries exhausted for %s: %w", g.primary.Name(), lastErr)
}
