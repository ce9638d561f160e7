// Package retry implements synchronous and asynchronous retry-with-backoff
// execution, consolidating what used to be duplicated between a top-level
// package and util/retry into one home.
package retry

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	sparkerrors "github.com/ezex-io/spark/errors"
)

// SyncTask is the shape of a retryable unit of work.
type SyncTask func() error

// BackoffStrategy defines how to calculate the wait duration between retries.
type BackoffStrategy func(attempt int) time.Duration

// Config holds common retry configuration.
type Config struct {
	// MaxAttempts is the maximum number of retry attempts (including the
	// initial attempt). Default: 3.
	MaxAttempts int

	// BackoffStrategy defines how to calculate wait time between retries.
	// If nil, uses ExponentialBackoff with default parameters.
	BackoffStrategy BackoffStrategy

	// OnRetry is called before each retry attempt.
	OnRetry func(attempt int, lastErr error, nextWait time.Duration)

	// Timeout is the maximum total time allowed for all retry attempts.
	// If zero, no timeout is applied.
	Timeout time.Duration
}

// SyncOptions is an option for ExecuteSync.
type SyncOptions func(*Config)

// NewRetryConfig returns a default Config.
func NewRetryConfig() *Config {
	return &Config{
		MaxAttempts:     3,
		BackoffStrategy: ExponentialBackoff(100*time.Millisecond, 1.5, 30*time.Second),
	}
}

// WithMaxAttempts sets the maximum number of attempts.
func WithMaxAttempts(attempts int) SyncOptions {
	return func(rc *Config) {
		if attempts > 0 {
			rc.MaxAttempts = attempts
		}
	}
}

// WithBackoffStrategy sets a custom backoff strategy.
func WithBackoffStrategy(strategy BackoffStrategy) SyncOptions {
	return func(rc *Config) {
		if strategy != nil {
			rc.BackoffStrategy = strategy
		}
	}
}

// WithOnRetry sets the retry callback.
func WithOnRetry(onRetry func(attempt int, lastErr error, nextWait time.Duration)) SyncOptions {
	return func(rc *Config) {
		rc.OnRetry = onRetry
	}
}

// WithTimeout sets the total timeout for retry operations.
func WithTimeout(timeout time.Duration) SyncOptions {
	return func(rc *Config) {
		if timeout > 0 {
			rc.Timeout = timeout
		}
	}
}

var (
	randSource = rand.NewSource(time.Now().UnixNano())
	randMutex  sync.Mutex
)

// ExponentialBackoff returns an exponential backoff strategy with jitter.
// initialDelay is the initial wait duration, multiplier is the exponential
// multiplier (typically 1.5 or 2.0), maxDelay caps the wait.
func ExponentialBackoff(initialDelay time.Duration, multiplier float64, maxDelay time.Duration) BackoffStrategy {
	return func(attempt int) time.Duration {
		if attempt == 0 {
			return 0
		}

		delay := time.Duration(float64(initialDelay) * math.Pow(multiplier, float64(attempt-1)))
		if delay > maxDelay {
			delay = maxDelay
		}

		randMutex.Lock()
		jitter := time.Duration(randSource.Int63() % int64(delay))
		randMutex.Unlock()

		return delay/2 + jitter/2
	}
}

// LinearBackoff returns a linear backoff strategy: increment added between
// each retry.
func LinearBackoff(increment time.Duration) BackoffStrategy {
	return func(attempt int) time.Duration {
		if attempt == 0 {
			return 0
		}

		return time.Duration(attempt) * increment
	}
}

// FixedBackoff returns a fixed backoff strategy.
func FixedBackoff(duration time.Duration) BackoffStrategy {
	return func(attempt int) time.Duration {
		if attempt == 0 {
			return 0
		}

		return duration
	}
}

// NoBackoff returns immediately without waiting.
func NoBackoff() BackoffStrategy {
	return func(int) time.Duration { return 0 }
}

// ExecuteSync executes fn synchronously with retry logic, respecting
// context cancellation and Config.Timeout.
func ExecuteSync(ctx context.Context, fn SyncTask, opts ...SyncOptions) error {
	config := NewRetryConfig()
	for _, opt := range opts {
		opt(config)
	}

	return retryLoop(ctx, fn, config, nil)
}

// ExecuteSyncWithPredicate executes fn, retrying only while shouldRetry(err)
// holds. A nil shouldRetry falls back to RetryableError.
func ExecuteSyncWithPredicate(ctx context.Context, fn SyncTask, shouldRetry IsRetryable, opts ...SyncOptions) error {
	if shouldRetry == nil {
		shouldRetry = RetryableError
	}

	config := NewRetryConfig()
	for _, opt := range opts {
		opt(config)
	}

	return retryLoop(ctx, fn, config, shouldRetry)
}

// IsRetryable decides whether an error should trigger a retry.
type IsRetryable func(error) bool

// RetryableError checks generic Go conventions (Temporary()/Timeout()
// marker interfaces) for transience.
func RetryableError(err error) bool {
	if err == nil {
		return false
	}

	if temp, ok := err.(interface{ Temporary() bool }); ok {
		return temp.Temporary()
	}

	if timeout, ok := err.(interface{ Timeout() bool }); ok {
		return timeout.Timeout()
	}

	return false
}

// RetryableSparkError checks whether err is a *sparkerrors.Error carrying
// category Retryable, the taxonomy this module's own transport/kernel
// layers produce (transport.CategorizeError, kernel's backpressure
// ReadyState). Pass this as the predicate to ExecuteSyncWithPredicate
// when retrying operations that surface spark errors rather than plain
// Go network errors.
func RetryableSparkError(err error) bool {
	sparkErr, ok := err.(*sparkerrors.Error)
	if !ok {
		return false
	}

	return sparkErr.Category() == sparkerrors.Retryable
}

func retryLoop(ctx context.Context, fn SyncTask, config *Config, shouldRetry IsRetryable) error {
	retryCtx := ctx

	if config.Timeout > 0 {
		var cancel context.CancelFunc

		retryCtx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	var lastErr error

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		select {
		case <-retryCtx.Done():
			return retryCtx.Err()
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if shouldRetry != nil && !shouldRetry(err) {
			return err
		}

		if attempt == config.MaxAttempts-1 {
			return lastErr
		}

		waitDuration := config.BackoffStrategy(attempt)

		if config.OnRetry != nil {
			nextWait := config.BackoffStrategy(attempt + 1)
			config.OnRetry(attempt+1, lastErr, nextWait)
		}

		select {
		case <-time.After(waitDuration):
		case <-retryCtx.Done():
			return retryCtx.Err()
		}
	}

	return lastErr
}
