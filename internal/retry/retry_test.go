package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type transientErr struct{ retryable bool }

func (e *transientErr) Error() string     { return "serialization failure" }
func (e *transientErr) IsRetryable() bool { return e.retryable }

func fastConfig(attempts int) *Config {
	return &Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxAttempts != 3 {
		t.Errorf("expected MaxAttempts=3, got %d", cfg.MaxAttempts)
	}
	if cfg.InitialDelay != 50*time.Millisecond {
		t.Errorf("expected InitialDelay=50ms, got %v", cfg.InitialDelay)
	}
	if cfg.MaxDelay != time.Second {
		t.Errorf("expected MaxDelay=1s, got %v", cfg.MaxDelay)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("syntax error"), false},
		{"retryable", &transientErr{retryable: true}, true},
		{"declares not retryable", &transientErr{retryable: false}, false},
		{"wrapped retryable", fmt.Errorf("failed to create entity: %w", &transientErr{retryable: true}), true},
		{"joined", errors.Join(errors.New("other"), &transientErr{retryable: true}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDo_Success(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	calls := 0
	var retried []int
	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		retried = append(retried, attempt)
	}

	err := Do(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return &transientErr{retryable: true}
		}
		return nil
	})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if len(retried) != 2 || retried[0] != 1 || retried[1] != 2 {
		t.Errorf("unexpected OnRetry attempts %v", retried)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	want := &transientErr{retryable: true}
	err := Do(context.Background(), fastConfig(4), func() error {
		calls++
		return want
	})
	if err != want {
		t.Errorf("expected last error to be returned unchanged, got %v", err)
	}
	if calls != 4 {
		t.Errorf("expected 4 calls, got %d", calls)
	}
}

func TestDo_PermanentErrorNotRetried(t *testing.T) {
	calls := 0
	permanent := errors.New("entity name is required")
	err := Do(context.Background(), fastConfig(5), func() error {
		calls++
		return permanent
	})
	if err != permanent {
		t.Errorf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_ZeroAttemptsCallsOnce(t *testing.T) {
	calls := 0
	_ = Do(context.Background(), &Config{}, func() error {
		calls++
		return &transientErr{retryable: true}
	})
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &Config{MaxAttempts: 5, InitialDelay: time.Hour, Multiplier: 2}
	cfg.OnRetry = func(int, error, time.Duration) { cancel() }

	calls := 0
	err := Do(ctx, cfg, func() error {
		calls++
		return &transientErr{retryable: true}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	id, err := DoWithResult(context.Background(), fastConfig(3), func() (int64, error) {
		calls++
		if calls == 1 {
			return 0, &transientErr{retryable: true}
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 42 {
		t.Errorf("expected 42, got %d", id)
	}
}

func TestNextDelay(t *testing.T) {
	cfg := &Config{Multiplier: 2, MaxDelay: 300 * time.Millisecond}
	delay := 100 * time.Millisecond
	delay = nextDelay(delay, cfg)
	if delay != 200*time.Millisecond {
		t.Errorf("expected 200ms, got %v", delay)
	}
	delay = nextDelay(delay, cfg)
	if delay != 300*time.Millisecond {
		t.Errorf("expected delay capped at 300ms, got %v", delay)
	}
}

func TestApplyJitter(t *testing.T) {
	base := 100 * time.Millisecond
	if got := applyJitter(base, 0); got != base {
		t.Errorf("expected no jitter, got %v", got)
	}
	for i := 0; i < 50; i++ {
		got := applyJitter(base, 0.1)
		if got < 90*time.Millisecond || got > 110*time.Millisecond {
			t.Errorf("jittered delay %v out of range", got)
		}
	}
}
