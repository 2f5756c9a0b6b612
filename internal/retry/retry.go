package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// Config defines retry behavior with exponential backoff
type Config struct {
	MaxAttempts  int // total calls including the first; values below 1 mean 1
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	JitterFactor float64 // 0.0-1.0

	// OnRetry, when set, is called before each wait with the failed attempt
	// number (starting at 1), its error and the delay about to be slept.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultConfig returns defaults for short database transactions:
// 3 attempts, 50ms initial delay doubling up to 1s, 10% jitter.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:  3,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// Retryable is implemented by errors that declare whether repeating the
// failed operation may succeed.
type Retryable interface {
	IsRetryable() bool
}

// IsRetryable reports whether any error in err's chain declares itself
// retryable.
func IsRetryable(err error) bool {
	var r Retryable
	if errors.As(err, &r) {
		return r.IsRetryable()
	}
	return false
}

// Do calls fn until it succeeds, returns a non-retryable error, or the
// attempts are exhausted. The last error is returned unchanged. Context
// cancellation during a wait returns ctx.Err().
func Do(ctx context.Context, cfg *Config, fn func() error) error {
	_, err := DoWithResult(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult is Do for functions returning a value.
func DoWithResult[T any](ctx context.Context, cfg *Config, fn func() (T, error)) (T, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	attempts := max(cfg.MaxAttempts, 1)
	delay := cfg.InitialDelay

	var result T
	var err error
	for attempt := 1; ; attempt++ {
		result, err = fn()
		if err == nil || !IsRetryable(err) || attempt >= attempts {
			return result, err
		}

		wait := applyJitter(delay, cfg.JitterFactor)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return result, ctx.Err()
		}

		delay = nextDelay(delay, cfg)
	}
}

func nextDelay(delay time.Duration, cfg *Config) time.Duration {
	multiplier := cfg.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	next := time.Duration(float64(delay) * multiplier)
	if cfg.MaxDelay > 0 && next > cfg.MaxDelay {
		next = cfg.MaxDelay
	}
	return next
}

// applyJitter spreads delay by +/- delay*jitterFactor
func applyJitter(delay time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 || delay <= 0 {
		return delay
	}
	jitter := float64(delay) * jitterFactor * (rand.Float64()*2 - 1)
	return time.Duration(float64(delay) + jitter)
}
