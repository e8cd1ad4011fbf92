package recommend

import (
	"context"
	"fmt"
	"time"

	"classify-backend/internal/llm"
	"classify-backend/internal/shared/metrics"
	"classify-backend/internal/shared/telemetry"
)

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
)

// Options tunes the completion call.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// DefaultOptions returns the sampling settings used when none are configured.
func DefaultOptions() Options {
	return Options{Temperature: DefaultTemperature, MaxTokens: DefaultMaxTokens}
}

// Result is the outcome of one generation. Degraded results carry the fallback list.
type Result struct {
	Recommendations []Recommendation
	Degraded        bool
	Reason          string
	Cause           error
	PromptHash      string
}

// Generator turns a profile snapshot into recommendations with one completion call.
// It holds no per-call state and is safe for concurrent use.
type Generator struct {
	llm         llm.Completer
	temperature float64
	maxTokens   int
	render      func(Input) (string, error)
	now         func() time.Time
}

// NewGenerator constructs a Generator. A nil completer behaves as an unconfigured provider.
func NewGenerator(completer llm.Completer, opts Options) *Generator {
	if completer == nil {
		completer = llm.PlaceholderClient{}
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	return &Generator{
		llm:         completer,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		render:      RenderPrompt,
		now:         time.Now,
	}
}

// Generate returns recommendations for the input.
// Completion and reply-decode failures yield the fallback with Degraded set; they are never returned as errors.
// The only error returned is a prompt rendering failure.
func (g *Generator) Generate(ctx context.Context, in Input) (Result, error) {
	prompt, err := g.render(in)
	if err != nil {
		return Result{}, fmt.Errorf("render prompt: %w", err)
	}
	hash := HashPrompt(prompt)

	start := g.now()
	raw, err := g.llm.Complete(ctx, llm.CompletionRequest{
		System:      SystemInstruction,
		Prompt:      prompt,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return g.degrade(ctx, hash, start, completionReason(err), err), nil
	}

	recs, err := decodeReply(raw)
	if err != nil {
		return g.degrade(ctx, hash, start, decodeReason(err), err), nil
	}

	elapsed := g.now().Sub(start)
	metrics.ObserveGeneration("", elapsed)
	telemetry.Info("recommend.generated", map[string]any{
		"request_id":  telemetry.RequestIDFromContext(ctx),
		"prompt_hash": hash,
		"count":       len(recs),
		"duration_ms": elapsed.Milliseconds(),
	})
	return Result{Recommendations: recs, PromptHash: hash}, nil
}

func (g *Generator) degrade(ctx context.Context, hash string, start time.Time, reason string, cause error) Result {
	elapsed := g.now().Sub(start)
	metrics.ObserveGeneration(reason, elapsed)
	telemetry.Warn("recommend.degraded", map[string]any{
		"request_id":  telemetry.RequestIDFromContext(ctx),
		"prompt_hash": hash,
		"reason":      reason,
		"err":         cause,
		"duration_ms": elapsed.Milliseconds(),
	})
	return Result{
		Recommendations: Fallback(),
		Degraded:        true,
		Reason:          reason,
		Cause:           cause,
		PromptHash:      hash,
	}
}
