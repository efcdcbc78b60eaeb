package process_test

import (
	"context"
	goerrors "errors"
	"testing"

	"github.com/Norconex/commons-lang-sub007/errors"
	"github.com/Norconex/commons-lang-sub007/event"
	"github.com/Norconex/commons-lang-sub007/process"
	"github.com/Norconex/commons-lang-sub007/resilience"
)

func TestRunnerSucceedsAfterTransientFailure(t *testing.T) {
	skipOnWindows(t)
	runner := process.NewRunner(process.RunnerConfig{
		Retry:              resilience.Config{MaxRetries: 3},
		RetryOnNonZeroExit: true,
	})

	// Fails on the first run, succeeds once the marker file exists.
	result, err := runner.Run(context.Background(), process.Spec{
		Binary: "sh",
		Args:   []string{"-c", "if [ -f marker ]; then exit 0; else touch marker; exit 1; fi"},
		Dir:    t.TempDir(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", result.ExitCode)
	}
}

func TestRunnerExhaustsRetries(t *testing.T) {
	skipOnWindows(t)
	events := event.NewManager()
	var fired []event.Event
	events.AddListener(event.ListenerFunc(func(ev event.Event) {
		fired = append(fired, ev)
	}))

	runner := process.NewRunner(process.RunnerConfig{
		Retry:              resilience.Config{MaxRetries: 2},
		RetryOnNonZeroExit: true,
		Events:             events,
	})
	_, err := runner.Run(context.Background(), process.Spec{
		Binary: "sh",
		Args:   []string{"-c", "exit 1"},
	})
	if !errors.IsCode(err, errors.ErrCodeRetryExhausted) {
		t.Fatalf("expected retry-exhausted error, got %v", err)
	}

	var rerr *resilience.Error
	if !goerrors.As(err, &rerr) {
		t.Fatalf("expected *resilience.Error in chain, got %v", err)
	}
	if rerr.Attempts != 3 {
		t.Fatalf("expected 3 attempts (1 + 2 retries), got %d", rerr.Attempts)
	}

	if len(fired) != 1 || fired[0].Name != event.RetryExhausted {
		t.Fatalf("expected one RETRY_EXHAUSTED event, got %v", fired)
	}
}

func TestRunnerNonZeroExitNotRetriedByDefault(t *testing.T) {
	skipOnWindows(t)
	runner := process.NewRunner(process.RunnerConfig{
		Retry: resilience.Config{MaxRetries: 5},
	})
	result, err := runner.Run(context.Background(), process.Spec{
		Binary: "sh",
		Args:   []string{"-c", "exit 1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 1 {
		t.Fatalf("expected exit code 1 passed through, got %d", result.ExitCode)
	}
}

func TestRunnerConfigurationErrorNotRetriedByDefault(t *testing.T) {
	runner := process.NewRunner(process.RunnerConfig{
		Retry: resilience.Config{MaxRetries: 3},
	})
	_, err := runner.Run(context.Background(), process.Spec{
		Binary: `echo "unterminated`,
	})
	if !errors.IsCode(err, errors.ErrCodeRetryExhausted) {
		t.Fatalf("expected terminal error, got %v", err)
	}
	var rerr *resilience.Error
	if !goerrors.As(err, &rerr) {
		t.Fatalf("expected *resilience.Error in chain, got %v", err)
	}
	if rerr.Attempts != 1 {
		t.Fatalf("expected configuration error to fail after one attempt, got %d", rerr.Attempts)
	}
	if !errors.IsCode(rerr.Cause, errors.ErrCodeConfiguration) {
		t.Fatalf("expected configuration cause, got %v", rerr.Cause)
	}
}

func TestRunnerFilterStopsRetrying(t *testing.T) {
	runner := process.NewRunner(process.RunnerConfig{
		Retry: resilience.Config{
			MaxRetries: 5,
			RetryIf: func(err error) bool {
				return !errors.IsCode(err, errors.ErrCodeConfiguration)
			},
		},
	})
	_, err := runner.Run(context.Background(), process.Spec{
		Binary: `echo "unterminated`,
	})
	if !errors.IsCode(err, errors.ErrCodeRetryExhausted) {
		t.Fatalf("expected terminal error, got %v", err)
	}
	var rerr *resilience.Error
	if !goerrors.As(err, &rerr) {
		t.Fatalf("expected *resilience.Error in chain, got %v", err)
	}
	if rerr.Attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", rerr.Attempts)
	}
	if !errors.IsCode(rerr.Cause, errors.ErrCodeConfiguration) {
		t.Fatalf("expected configuration cause, got %v", rerr.Cause)
	}
}
