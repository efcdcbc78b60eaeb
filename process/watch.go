package process

import (
	goerrors "errors"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/Norconex/commons-lang-sub007/errors"
	"github.com/Norconex/commons-lang-sub007/logger"
)

// Watched is a handle to a process under supervision. It is returned by
// WatchAsync and resolves once the process has exited and both output
// streams are fully drained.
type Watched struct {
	cmd      *exec.Cmd
	done     chan struct{}
	feederCh chan struct{}
	exitCode int
	err      error

	consumers sync.WaitGroup
	log       *logger.Logger
}

// Watch starts cmd, streams its stdout and stderr to the given listeners,
// optionally feeds input to stdin, and blocks until the process exits.
// It returns the exit code. A non-zero exit is not an error; the error is
// non-nil only when the process could not be started or waited on.
func Watch(cmd *exec.Cmd, input io.Reader, outListeners, errListeners []LineListener) (int, error) {
	w, err := WatchAsync(cmd, input, outListeners, errListeners)
	if err != nil {
		return -1, err
	}
	return w.Wait()
}

// WatchAsync is Watch without the blocking wait. The returned handle can be
// used to wait for, poll, or kill the process.
func WatchAsync(cmd *exec.Cmd, input io.Reader, outListeners, errListeners []LineListener) (*Watched, error) {
	log := logger.WithComponent("process")

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Execution("opening stdout pipe", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.Execution("opening stderr pipe", err)
	}
	var stdin io.WriteCloser
	if input != nil {
		stdin, err = cmd.StdinPipe()
		if err != nil {
			return nil, errors.Execution("opening stdin pipe", err)
		}
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Execution("starting process", err)
	}

	w := &Watched{
		cmd:  cmd,
		done: make(chan struct{}),
		log:  log,
	}
	w.consumers.Add(2)
	go consumeStream(stdout, Stdout, outListeners, &w.consumers, log)
	go consumeStream(stderr, Stderr, errListeners, &w.consumers, log)

	if stdin != nil {
		w.feederCh = make(chan struct{})
		go func() {
			defer close(w.feederCh)
			defer stdin.Close()
			if _, err := io.Copy(stdin, input); err != nil {
				log.Error("feeding process input", logger.Fields(
					logger.FieldError, err.Error(),
				))
			}
		}()
	}

	go w.supervise()
	return w, nil
}

// supervise joins the feeder and both consumers, then reaps the process.
// The pipes must be fully drained before Wait is called on the command.
func (w *Watched) supervise() {
	defer close(w.done)
	if w.feederCh != nil {
		<-w.feederCh
	}
	w.consumers.Wait()

	err := w.cmd.Wait()
	if err == nil {
		w.exitCode = 0
		return
	}
	var exitErr *exec.ExitError
	if goerrors.As(err, &exitErr) {
		// Non-zero exit, or -1 when the process was killed.
		w.exitCode = exitErr.ExitCode()
		return
	}
	w.exitCode = -1
	w.err = errors.Execution("waiting on process", err)
}

// Wait blocks until the process has exited and its streams are drained,
// then returns the exit code. It may be called any number of times.
func (w *Watched) Wait() (int, error) {
	<-w.done
	return w.exitCode, w.err
}

// Running reports whether the process is still alive.
func (w *Watched) Running() bool {
	select {
	case <-w.done:
		return false
	default:
		return true
	}
}

// Kill force-terminates the process. The exit code observed by Wait will
// be -1. Killing a process that already exited is a no-op.
func (w *Watched) Kill() error {
	if w.cmd.Process == nil {
		return nil
	}
	select {
	case <-w.done:
		return nil
	default:
	}
	if err := w.cmd.Process.Kill(); err != nil && !goerrors.Is(err, os.ErrProcessDone) {
		return errors.Execution("killing process", err)
	}
	return nil
}
