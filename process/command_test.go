package process_test

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Norconex/commons-lang-sub007/errors"
	"github.com/Norconex/commons-lang-sub007/process"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test shells out to POSIX tools")
	}
}

// lineRecorder collects listener notifications. Being a pointer type it is
// comparable, so it can also be removed again.
type lineRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *lineRecorder) OnLine(stream process.Stream, line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

func (r *lineRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

func TestExecuteEcho(t *testing.T) {
	skipOnWindows(t)
	cmd := process.NewSystemCommand("echo", "hello")
	out := &lineRecorder{}
	cmd.AddOutputListener(out)

	code, err := cmd.Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if lines := out.all(); len(lines) != 1 || lines[0] != "hello" {
		t.Fatalf("expected ['hello'], got %v", lines)
	}
}

func TestExecuteTokenizesSingleToken(t *testing.T) {
	skipOnWindows(t)
	cmd := process.NewSystemCommand(`sh -c "echo one two"`)
	out := &lineRecorder{}
	cmd.AddOutputListener(out)

	code, err := cmd.Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if lines := out.all(); len(lines) != 1 || lines[0] != "one two" {
		t.Fatalf("expected ['one two'], got %v", lines)
	}
}

func TestExecuteUnterminatedQuote(t *testing.T) {
	cmd := process.NewSystemCommand(`echo "oops`)
	_, err := cmd.Execute(context.Background())
	if !errors.IsCode(err, errors.ErrCodeConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestExecuteEmptyCommand(t *testing.T) {
	cmd := process.NewSystemCommand()
	_, err := cmd.Execute(context.Background())
	if !errors.IsCode(err, errors.ErrCodeConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestExecuteNonZeroExitIsNotAnError(t *testing.T) {
	skipOnWindows(t)
	cmd := process.NewSystemCommand("sh", "-c", "exit 7")
	code, err := cmd.Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 7 {
		t.Fatalf("expected exit code 7, got %d", code)
	}
}

func TestExecuteWithInput(t *testing.T) {
	skipOnWindows(t)
	cmd := process.NewSystemCommand("cat")
	out := &lineRecorder{}
	cmd.AddOutputListener(out)

	code, err := cmd.ExecuteWithInput(context.Background(), strings.NewReader("line one\nline two\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if lines := out.all(); len(lines) != 2 || lines[0] != "line one" || lines[1] != "line two" {
		t.Fatalf("expected input echoed back, got %v", lines)
	}
}

func TestErrorListenerReceivesStderr(t *testing.T) {
	skipOnWindows(t)
	cmd := process.NewSystemCommand("sh", "-c", "echo oops >&2")
	var stream process.Stream
	errRec := &lineRecorder{}
	cmd.AddErrorListener(process.LineListenerFunc(func(s process.Stream, line string) {
		stream = s
		errRec.OnLine(s, line)
	}))

	if _, err := cmd.Execute(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lines := errRec.all(); len(lines) != 1 || lines[0] != "oops" {
		t.Fatalf("expected ['oops'] on stderr, got %v", lines)
	}
	if stream != process.Stderr {
		t.Fatalf("expected stream %q, got %q", process.Stderr, stream)
	}
}

func TestConcurrentExecuteRejected(t *testing.T) {
	skipOnWindows(t)
	cmd := process.NewSystemCommand("sleep", "5")
	if err := cmd.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() {
		_ = cmd.Abort()
	}()

	if !cmd.IsRunning() {
		t.Fatal("expected command to be running")
	}
	_, err := cmd.Execute(context.Background())
	if !errors.IsCode(err, errors.ErrCodeStateConflict) {
		t.Fatalf("expected state-conflict error, got %v", err)
	}
}

func TestAbortAllowsReexecution(t *testing.T) {
	skipOnWindows(t)
	cmd := process.NewSystemCommand("sleep", "5")
	if err := cmd.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cmd.Abort(); err != nil {
		t.Fatalf("unexpected abort error: %v", err)
	}
	waitUntilIdle(t, cmd)

	quick := process.NewSystemCommand("echo", "again")
	code, err := quick.Execute(context.Background())
	if err != nil || code != 0 {
		t.Fatalf("expected clean re-execution, got code=%d err=%v", code, err)
	}
}

func waitUntilIdle(t *testing.T, cmd *process.SystemCommand) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for cmd.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("command did not stop in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestListenersNotifiedNewestFirst(t *testing.T) {
	skipOnWindows(t)
	cmd := process.NewSystemCommand("echo", "hi")
	var mu sync.Mutex
	var order []string
	cmd.AddOutputListener(process.LineListenerFunc(func(_ process.Stream, _ string) {
		mu.Lock()
		order = append(order, "first-added")
		mu.Unlock()
	}))
	cmd.AddOutputListener(process.LineListenerFunc(func(_ process.Stream, _ string) {
		mu.Lock()
		order = append(order, "second-added")
		mu.Unlock()
	}))

	if _, err := cmd.Execute(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "second-added" || order[1] != "first-added" {
		t.Fatalf("expected newest-first notification, got %v", order)
	}
}

func TestRemoveListener(t *testing.T) {
	skipOnWindows(t)
	cmd := process.NewSystemCommand("echo", "hi")
	rec := &lineRecorder{}
	cmd.AddOutputListener(rec)
	cmd.RemoveOutputListener(rec)

	if _, err := cmd.Execute(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lines := rec.all(); len(lines) != 0 {
		t.Fatalf("removed listener should receive nothing, got %v", lines)
	}
}

func TestExecuteInterrupted(t *testing.T) {
	skipOnWindows(t)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	cmd := process.NewSystemCommand("sleep", "10")
	_, err := cmd.Execute(ctx)
	if !errors.IsCode(err, errors.ErrCodeInterrupted) {
		t.Fatalf("expected interrupted error, got %v", err)
	}
}

func TestPanickingListenerKeepsDraining(t *testing.T) {
	skipOnWindows(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// More output than the OS pipe buffer holds, so the child stalls and
	// is never reaped unless the consumer keeps draining past the panic.
	cmd := process.NewSystemCommand("sh", "-c", "seq 1 50000")
	count := 0
	cmd.AddOutputListener(process.LineListenerFunc(func(_ process.Stream, _ string) {
		count++
	}))
	panicked := false
	cmd.AddOutputListener(process.LineListenerFunc(func(_ process.Stream, _ string) {
		if !panicked {
			panicked = true
			panic("listener blew up")
		}
	}))

	code, err := cmd.Execute(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if count != 50000 {
		t.Fatalf("expected 50000 lines despite panicking listener, got %d", count)
	}
}

func TestLargeOutputDrainsWithoutDeadlock(t *testing.T) {
	skipOnWindows(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Well past the OS pipe buffer size.
	cmd := process.NewSystemCommand("sh", "-c", "seq 1 50000")
	count := 0
	cmd.AddOutputListener(process.LineListenerFunc(func(_ process.Stream, _ string) {
		count++
	}))

	code, err := cmd.Execute(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if count != 50000 {
		t.Fatalf("expected 50000 lines, got %d", count)
	}
}
