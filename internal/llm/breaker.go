package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"classify-backend/internal/shared/metrics"
	"classify-backend/internal/shared/telemetry"
)

// BreakerSettings configures a Breaker.
type BreakerSettings struct {
	Name string
	// Failures is the consecutive failure count that opens the circuit.
	Failures uint32
	// Cooldown is how long the circuit stays open before a trial call is let through.
	Cooldown time.Duration
}

// Breaker wraps a Completer with a circuit breaker. Calls fail fast with ErrCircuitOpen while open.
type Breaker struct {
	next Completer
	cb   *gobreaker.CircuitBreaker[string]
	name string
}

// NewBreaker wraps next. A zero Failures setting returns next unwrapped.
func NewBreaker(next Completer, settings BreakerSettings) Completer {
	if next == nil || settings.Failures == 0 {
		return next
	}
	name := settings.Name
	if name == "" {
		name = "llm"
	}
	cooldown := settings.Cooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	failures := settings.Failures

	metrics.SetBreakerState(name, float64(gobreaker.StateClosed))
	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// A caller hanging up says nothing about provider health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			telemetry.Warn("llm.breaker_state", map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			metrics.SetBreakerState(name, float64(to))
		},
	})
	return &Breaker{next: next, cb: cb, name: name}
}

// Complete forwards to the wrapped Completer unless the circuit is open.
func (b *Breaker) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	out, err := b.cb.Execute(func() (string, error) {
		return b.next.Complete(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %s: %v", ErrCircuitOpen, b.name, err)
	}
	return out, err
}

// State reports the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
