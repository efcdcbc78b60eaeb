package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/Norconex/commons-lang-sub007/logger"
)

// Defaults applied by New when the corresponding Config field is unset.
const (
	DefaultMaxRetries = 10
	DefaultMaxCauses  = 10
)

// Config configures a Retrier. The zero value retries up to
// DefaultMaxRetries times with no delay between attempts.
type Config struct {
	// MaxRetries is how many times a failed operation is retried, so the
	// operation runs at most 1+MaxRetries times. Zero means a single
	// attempt; negative values are treated as the default.
	MaxRetries int
	// Delay is the base wait between attempts.
	Delay time.Duration
	// BackoffFactor multiplies the delay after each failed attempt.
	// Values <= 1 keep the delay fixed.
	BackoffFactor float64
	// MaxDelay caps the delay between attempts. Zero means no cap.
	MaxDelay time.Duration
	// Jitter randomizes each delay by up to the given fraction (0 to 1).
	Jitter float64
	// MaxCauses is how many of the most recent failures are retained for
	// the terminal error. Values <= 0 mean DefaultMaxCauses.
	MaxCauses int
	// RetryIf decides whether a failure may be retried. When it returns
	// false retrying stops immediately. Nil retries every failure.
	RetryIf func(error) bool
	// OnRetry is called before each retry sleep with the upcoming attempt
	// number (2 for the first retry) and the failure that caused it.
	OnRetry func(attempt int, err error)
}

// DefaultConfig returns the stock configuration: up to DefaultMaxRetries
// retries, no delay, every failure retried, DefaultMaxCauses retained.
func DefaultConfig() Config {
	return Config{
		MaxRetries: DefaultMaxRetries,
		MaxCauses:  DefaultMaxCauses,
	}
}

// Retrier runs operations with retry semantics. Create one with New and
// share it freely; a Retrier is immutable and safe for concurrent use.
type Retrier struct {
	cfg Config
	log *logger.Logger
}

// New creates a Retrier from cfg, normalizing out-of-range fields.
func New(cfg Config) *Retrier {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.MaxCauses <= 0 {
		cfg.MaxCauses = DefaultMaxCauses
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	return &Retrier{
		cfg: cfg,
		log: logger.WithComponent("resilience"),
	}
}

// Do runs fn through the retrier until it succeeds, the error filter
// rejects a failure, the retry budget runs out, or the context is
// canceled. On success the operation's value is returned; otherwise the
// error is an *Error.
func Do[T any](ctx context.Context, r *Retrier, fn func() (T, error)) (T, error) {
	var zero T
	cfg := r.cfg
	window := &causeWindow{max: cfg.MaxCauses}
	maxAttempts := 1 + cfg.MaxRetries

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			window.add(err)
			return zero, r.terminal("canceled", attempt-1, err, window)
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		// Every failure joins the window, even ones the filter or the
		// budget turns terminal.
		window.add(err)

		if cfg.RetryIf != nil && !cfg.RetryIf(err) {
			return zero, r.terminal("non-retryable failure", attempt, err, window)
		}
		if attempt == maxAttempts {
			return zero, r.terminal("retries exhausted", attempt, err, window)
		}

		r.log.Debug("operation failed, retrying", logger.Fields(
			logger.FieldAttempt, attempt,
			logger.FieldMaxRetries, cfg.MaxRetries,
			logger.FieldError, err.Error(),
		))
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, err)
		}

		if wait := delayFor(attempt, cfg); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				window.add(ctx.Err())
				return zero, r.terminal("canceled", attempt, ctx.Err(), window)
			case <-timer.C:
			}
		}
	}

	// Unreachable; the loop always returns.
	return zero, nil
}

// Execute runs an error-only operation through the retrier.
func (r *Retrier) Execute(ctx context.Context, fn func() error) error {
	_, err := Do(ctx, r, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

func (r *Retrier) terminal(message string, attempts int, cause error, window *causeWindow) *Error {
	r.log.Error("giving up on operation", logger.Fields(
		logger.FieldAttempt, attempts,
		logger.FieldMaxRetries, r.cfg.MaxRetries,
		logger.FieldError, cause.Error(),
		logger.FieldStatus, message,
	))
	return &Error{
		Message:  message,
		Attempts: attempts,
		Cause:    cause,
		causes:   window.causes,
	}
}

// delayFor computes the sleep before the next attempt. The base delay grows
// by BackoffFactor per completed attempt, is capped at MaxDelay and then
// randomized by Jitter.
func delayFor(attempt int, cfg Config) time.Duration {
	if cfg.Delay <= 0 {
		return 0
	}
	d := float64(cfg.Delay)
	if cfg.BackoffFactor > 1 {
		d *= math.Pow(cfg.BackoffFactor, float64(attempt-1))
	}
	if cfg.MaxDelay > 0 && d > float64(cfg.MaxDelay) {
		d = float64(cfg.MaxDelay)
	}
	if cfg.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * cfg.Jitter
	}
	if d < 0 {
		return 0
	}
	return time.Duration(d)
}
