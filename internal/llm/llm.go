package llm

import (
	"context"
	"errors"
)

// Completer abstracts text-completion providers: one prompt in, one text reply out.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest captures the inputs of a single completion call.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

var (
	// ErrNotConfigured is returned when no provider credential was supplied.
	ErrNotConfigured = errors.New("llm provider not configured")
	// ErrProvider marks errors reported by the provider itself (HTTP status, error objects, empty replies).
	ErrProvider = errors.New("llm provider error")
	// ErrCircuitOpen is returned when the breaker rejects a call without reaching the provider.
	ErrCircuitOpen = errors.New("llm circuit open")
)

// PlaceholderClient stands in for a provider when no credential is configured.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotConfigured
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, req CompletionRequest) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return f(ctx, req)
}
