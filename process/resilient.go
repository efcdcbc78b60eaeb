package process

import (
	"context"
	"fmt"
	"time"

	"github.com/Norconex/commons-lang-sub007/errors"
	"github.com/Norconex/commons-lang-sub007/event"
	"github.com/Norconex/commons-lang-sub007/logger"
	"github.com/Norconex/commons-lang-sub007/observability"
	"github.com/Norconex/commons-lang-sub007/resilience"
)

// RunnerConfig configures a retrying Runner.
type RunnerConfig struct {
	// Retry configures the retry behavior around each execution.
	Retry resilience.Config
	// RetryOnNonZeroExit promotes non-zero exit codes to retryable
	// failures. When false only spawn and supervision errors are retried.
	RetryOnNonZeroExit bool
	// Metrics receives command and retry measurements. May be nil.
	Metrics *observability.CommandMetrics
	// Events is notified when every attempt has been exhausted. May be nil.
	Events *event.Manager
}

// Runner executes commands with retry semantics. A failing execution is
// retried per the retry configuration; non-zero exit codes count as
// failures only when RetryOnNonZeroExit is set. Create one with NewRunner
// and reuse it; a Runner is safe for concurrent use.
type Runner struct {
	cfg     RunnerConfig
	retrier *resilience.Retrier
	log     *logger.Logger
}

// NewRunner creates a Runner from cfg. When no retry filter is configured
// the Runner retries only errors marked retryable, so configuration and
// state-conflict failures propagate after a single attempt.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Retry.RetryIf == nil {
		cfg.Retry.RetryIf = errors.IsRetryable
	}
	return &Runner{
		cfg:     cfg,
		retrier: resilience.New(cfg.Retry),
		log:     logger.WithComponent("process"),
	}
}

// Run executes the command through the retry loop until an attempt
// succeeds or the retrier gives up. When retrying is exhausted the error
// is a retry-exhausted application error wrapping *resilience.Error.
func (r *Runner) Run(ctx context.Context, spec Spec) (*Result, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanCommandRun)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrBinary, spec.Binary)

	if r.cfg.Metrics != nil {
		r.cfg.Metrics.RecordCommandStart(ctx)
	}
	start := time.Now()

	attempt := 0
	result, err := resilience.Do(ctx, r.retrier, func() (*Result, error) {
		attempt++
		if attempt > 1 && r.cfg.Metrics != nil {
			r.cfg.Metrics.RecordRetry(ctx, spec.Binary, attempt)
		}
		res, runErr := Run(ctx, spec)
		if runErr != nil {
			return nil, runErr
		}
		if r.cfg.RetryOnNonZeroExit && res.ExitCode != 0 {
			return nil, errors.Execution(
				fmt.Sprintf("command returned exit code %d", res.ExitCode), nil).
				WithDetail("exit_code", res.ExitCode)
		}
		return res, nil
	})

	if r.cfg.Metrics != nil {
		exitCode := -1
		if result != nil {
			exitCode = result.ExitCode
		}
		r.cfg.Metrics.RecordCommandEnd(ctx, spec.Binary, exitCode, time.Since(start))
	}

	if err == nil {
		observability.SetSpanAttribute(ctx, observability.AttrExitCode, result.ExitCode)
		observability.SetSpanAttribute(ctx, observability.AttrAttempt, attempt)
		return result, nil
	}

	observability.SetSpanError(ctx, err)
	if r.cfg.Metrics != nil {
		r.cfg.Metrics.RecordError(ctx, string(errors.ErrCodeRetryExhausted), "process")
	}
	if r.cfg.Events != nil {
		r.cfg.Events.Fire(event.Event{
			Name:    event.RetryExhausted,
			Source:  r,
			Err:     err,
			Message: spec.Binary,
		})
	}
	r.log.WithError(err).Error("command failed after all retry attempts", logger.Fields(
		logger.FieldCommand, spec.Binary,
		logger.FieldAttempt, attempt,
	))
	return nil, errors.New(errors.ErrCodeRetryExhausted,
		"command failed after all retry attempts").WithCause(err)
}
