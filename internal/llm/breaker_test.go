package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	next := CompleterFunc(func(ctx context.Context, req CompletionRequest) (string, error) {
		calls++
		return "", boom
	})

	c := NewBreaker(next, BreakerSettings{Name: "test-open", Failures: 2, Cooldown: time.Minute})
	for i := 0; i < 2; i++ {
		if _, err := c.Complete(context.Background(), CompletionRequest{}); !errors.Is(err, boom) {
			t.Fatalf("call %d: expected boom, got %v", i, err)
		}
	}

	_, err := c.Complete(context.Background(), CompletionRequest{})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected open breaker to skip the provider, got %d calls", calls)
	}
	if state := c.(*Breaker).State(); state != gobreaker.StateOpen {
		t.Fatalf("expected open state, got %s", state)
	}
}

func TestBreakerIgnoresCanceledCalls(t *testing.T) {
	next := CompleterFunc(func(ctx context.Context, req CompletionRequest) (string, error) {
		return "", context.Canceled
	})
	c := NewBreaker(next, BreakerSettings{Name: "test-cancel", Failures: 1, Cooldown: time.Minute})
	for i := 0; i < 3; i++ {
		if _, err := c.Complete(context.Background(), CompletionRequest{}); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	}
}

func TestBreakerPassesThroughReplies(t *testing.T) {
	next := CompleterFunc(func(ctx context.Context, req CompletionRequest) (string, error) {
		return "reply:" + req.Prompt, nil
	})
	c := NewBreaker(next, BreakerSettings{Name: "test-ok", Failures: 1})
	out, err := c.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "reply:hi" {
		t.Fatalf("unexpected reply %q", out)
	}
}

func TestNewBreakerDisabled(t *testing.T) {
	next := PlaceholderClient{}
	if c := NewBreaker(next, BreakerSettings{}); c != Completer(next) {
		t.Fatalf("expected zero failures to return the wrapped completer")
	}
}

func TestPlaceholderClientNotConfigured(t *testing.T) {
	_, err := PlaceholderClient{}.Complete(context.Background(), CompletionRequest{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
