package process_test

import (
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/Norconex/commons-lang-sub007/process"
)

func TestWatchExitCode(t *testing.T) {
	skipOnWindows(t)
	code, err := process.Watch(exec.Command("sh", "-c", "exit 3"), nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 3 {
		t.Fatalf("expected exit code 3, got %d", code)
	}
}

func TestWatchStreamsTagged(t *testing.T) {
	skipOnWindows(t)
	out := &lineRecorder{}
	errs := &lineRecorder{}
	var outStream, errStream process.Stream
	outListener := process.LineListenerFunc(func(s process.Stream, line string) {
		outStream = s
		out.OnLine(s, line)
	})
	errListener := process.LineListenerFunc(func(s process.Stream, line string) {
		errStream = s
		errs.OnLine(s, line)
	})

	cmd := exec.Command("sh", "-c", "echo to-out; echo to-err >&2")
	code, err := process.Watch(cmd, nil,
		[]process.LineListener{outListener},
		[]process.LineListener{errListener})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if lines := out.all(); len(lines) != 1 || lines[0] != "to-out" {
		t.Fatalf("expected ['to-out'], got %v", lines)
	}
	if lines := errs.all(); len(lines) != 1 || lines[0] != "to-err" {
		t.Fatalf("expected ['to-err'], got %v", lines)
	}
	if outStream != process.Stdout || errStream != process.Stderr {
		t.Fatalf("expected STDOUT/STDERR tags, got %q/%q", outStream, errStream)
	}
}

func TestWatchFeedsStdin(t *testing.T) {
	skipOnWindows(t)
	out := &lineRecorder{}
	code, err := process.Watch(exec.Command("cat"),
		strings.NewReader("fed line\n"),
		[]process.LineListener{out}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if lines := out.all(); len(lines) != 1 || lines[0] != "fed line" {
		t.Fatalf("expected ['fed line'], got %v", lines)
	}
}

func TestWatchStartFailure(t *testing.T) {
	_, err := process.Watch(exec.Command("definitely-not-a-binary-anywhere"), nil, nil, nil)
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestKillAfterExitIsNoOp(t *testing.T) {
	skipOnWindows(t)
	w, err := process.WatchAsync(exec.Command("sh", "-c", "exit 0"), nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := w.Wait(); err != nil {
		t.Fatalf("unexpected wait error: %v", err)
	}
	if err := w.Kill(); err != nil {
		t.Fatalf("expected kill after exit to be a no-op, got %v", err)
	}
}

func TestWatchAsyncKill(t *testing.T) {
	skipOnWindows(t)
	w, err := process.WatchAsync(exec.Command("sleep", "10"), nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.Running() {
		t.Fatal("expected process to be running")
	}
	if err := w.Kill(); err != nil {
		t.Fatalf("unexpected kill error: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		code, waitErr := w.Wait()
		if waitErr != nil {
			t.Errorf("unexpected wait error: %v", waitErr)
		}
		if code != -1 {
			t.Errorf("expected exit code -1 for killed process, got %d", code)
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("killed process did not resolve")
	}
	if w.Running() {
		t.Fatal("expected process to have stopped")
	}
}
