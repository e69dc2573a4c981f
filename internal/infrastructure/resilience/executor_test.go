package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

type recordingObserver struct {
	mu      sync.Mutex
	retries map[string]int
	states  []string
}

func (o *recordingObserver) ObserveRetry(op string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.retries == nil {
		o.retries = map[string]int{}
	}
	o.retries[op]++
}

func (o *recordingObserver) ObserveBreakerState(op, state string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.states = append(o.states, op+":"+state)
}

func fastConfig(attempts int) Config {
	return Config{
		RetryMaxAttempts:    attempts,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	}
}

func TestExecuteRetriesTemporaryFailure(t *testing.T) {
	observer := &recordingObserver{}
	exec := NewExecutor(fastConfig(3), WithObserver(observer))

	attempts := 0
	errTemp := errors.New("temporary")
	err := exec.Execute(context.Background(), "qdrant.search", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTemp
		}
		return nil
	}, func(err error) ErrorClassification {
		return ErrorClassification{Retryable: errors.Is(err, errTemp), RecordFailure: true}
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if observer.retries["qdrant.search"] != 2 {
		t.Fatalf("expected 2 observed retries, got %v", observer.retries)
	}
}

func TestExecuteDoesNotRetryPermanentFailure(t *testing.T) {
	exec := NewExecutor(fastConfig(3))

	attempts := 0
	errPermanent := errors.New("permanent")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errPermanent
	}, func(error) ErrorClassification {
		return ErrorClassification{}
	})
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestExecuteStopsOnCanceledContext(t *testing.T) {
	exec := NewExecutor(fastConfig(5))
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := exec.Execute(ctx, "op", func(context.Context) error {
		attempts++
		cancel()
		return errors.New("flaky")
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	})
	if err == nil || attempts != 1 {
		t.Fatalf("expected single attempt with error, got attempts=%d err=%v", attempts, err)
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	observer := &recordingObserver{}
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		RetryInitialBackoff:     time.Millisecond,
		RetryMaxBackoff:         time.Millisecond,
		RetryMultiplier:         2,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
	}, WithObserver(observer))

	errTemp := errors.New("temporary")
	classifier := func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}

	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "ollama.embed", func(context.Context) error {
			return errTemp
		}, classifier)
		if !errors.Is(err, errTemp) {
			t.Fatalf("expected temporary error on iteration %d, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "ollama.embed", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, classifier)
	if !errors.Is(err, gobreaker.ErrOpenState) || !IsCircuitOpen(err) {
		t.Fatalf("expected open state error, got %v", err)
	}
	if len(observer.states) != 1 || observer.states[0] != "ollama.embed:open" {
		t.Fatalf("expected open transition to be observed, got %v", observer.states)
	}
}

func TestNormalizeFillsDefaults(t *testing.T) {
	cfg := Config{RetryInitialBackoff: 5 * time.Second}.normalize()
	if cfg.RetryMaxAttempts != 3 || cfg.RetryMaxBackoff != 5*time.Second || cfg.BreakerHalfOpenMaxCalls != 2 {
		t.Fatalf("unexpected normalized config: %+v", cfg)
	}
	if got := cfg.nextBackoff(4 * time.Second); got != 5*time.Second {
		t.Fatalf("expected backoff capped at 5s, got %v", got)
	}
}
