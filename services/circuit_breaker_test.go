package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCircuitBreaker_PassesThroughSuccess(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)

	result, err := registry.Execute(context.Background(), "test-provider", func() (any, error) {
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %v, want 'ok'", result)
	}
}

func TestCircuitBreaker_TripsAfterRepeatedFailures(t *testing.T) {
	registry := NewCircuitBreakerRegistry(CircuitBreakerConfig{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
	})

	failure := errors.New("upstream down")
	for i := 0; i < 5; i++ {
		registry.Execute(context.Background(), "flaky", func() (any, error) {
			return nil, failure
		})
	}

	// Breaker should now be open and reject without invoking the function
	called := false
	_, err := registry.Execute(context.Background(), "flaky", func() (any, error) {
		called = true
		return nil, nil
	})

	if err == nil {
		t.Fatal("expected circuit-open error")
	}
	if !strings.Contains(err.Error(), "circuit breaker open") {
		t.Errorf("unexpected error: %v", err)
	}
	if called {
		t.Error("function should not run while the breaker is open")
	}

	status := registry.Status()["flaky"]
	if status.State != "open" {
		t.Errorf("breaker state = %q, want 'open'", status.State)
	}
}

func TestCircuitBreaker_ContextCancelledBeforeCall(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := registry.Execute(ctx, "test-provider", func() (any, error) {
		called = true
		return nil, nil
	})

	if err == nil {
		t.Fatal("expected context error")
	}
	if called {
		t.Error("function should not run with a cancelled context")
	}
}

func TestWithCircuitBreaker_TypedResult(t *testing.T) {
	SetGlobalRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))

	got, err := WithCircuitBreaker(context.Background(), "typed", func() (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("WithCircuitBreaker() error = %v", err)
	}
	if got != 42 {
		t.Errorf("got = %d, want 42", got)
	}
}
