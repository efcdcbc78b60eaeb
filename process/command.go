package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Norconex/commons-lang-sub007/errors"
	"github.com/Norconex/commons-lang-sub007/event"
	"github.com/Norconex/commons-lang-sub007/logger"
)

// stderrExcerptLines is how many trailing stderr lines are kept for the
// failure log entry.
const stderrExcerptLines = 50

// SystemCommand executes an external command and supervises it. A command
// holds an ordered token list, an optional working directory and optional
// extra environment variables. Output and error listeners may be registered
// and removed at any time, including while an execution is in flight.
//
// A SystemCommand runs at most one process at a time: calling Execute or
// Start while a previous execution is still running fails fast with a
// state-conflict error.
type SystemCommand struct {
	tokens []string
	dir    string
	env    map[string]string

	listenerMu   sync.RWMutex
	outListeners []LineListener
	errListeners []LineListener

	mu      sync.Mutex
	current *Watched

	events *event.Manager
	log    *logger.Logger
}

// NewSystemCommand creates a command from its tokens. When a single token
// is given it is treated as a full command line and tokenized at execution
// time, honoring single and double quotes.
func NewSystemCommand(tokens ...string) *SystemCommand {
	return &SystemCommand{
		tokens: tokens,
		log:    logger.WithComponent("process"),
	}
}

// SetDir sets the working directory for the process. Empty means the
// current directory.
func (c *SystemCommand) SetDir(dir string) { c.dir = dir }

// SetEnv sets extra environment variables merged over the parent
// environment. Nil means inherit the parent environment unchanged.
func (c *SystemCommand) SetEnv(env map[string]string) { c.env = env }

// SetEventManager attaches an event manager notified of command failures.
func (c *SystemCommand) SetEventManager(m *event.Manager) { c.events = m }

// CommandLine returns the command as a single display-ready line, quoting
// tokens that contain whitespace.
func (c *SystemCommand) CommandLine() string {
	return CommandLine(c.tokens)
}

// AddOutputListener registers a listener for stdout lines. Listeners added
// last are notified first.
func (c *SystemCommand) AddOutputListener(l LineListener) {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()
	c.outListeners = append([]LineListener{l}, c.outListeners...)
}

// RemoveOutputListener removes a previously registered stdout listener.
// Listeners are matched by interface equality, so a listener must be a
// comparable type (not a bare LineListenerFunc) to be removable.
func (c *SystemCommand) RemoveOutputListener(l LineListener) {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()
	c.outListeners = removeListener(c.outListeners, l)
}

// AddErrorListener registers a listener for stderr lines. Listeners added
// last are notified first.
func (c *SystemCommand) AddErrorListener(l LineListener) {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()
	c.errListeners = append([]LineListener{l}, c.errListeners...)
}

// RemoveErrorListener removes a previously registered stderr listener.
func (c *SystemCommand) RemoveErrorListener(l LineListener) {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()
	c.errListeners = removeListener(c.errListeners, l)
}

func removeListener(listeners []LineListener, l LineListener) []LineListener {
	for i, existing := range listeners {
		if existing == l {
			return append(listeners[:i:i], listeners[i+1:]...)
		}
	}
	return listeners
}

// IsRunning reports whether an execution is currently in flight.
func (c *SystemCommand) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && c.current.Running()
}

// Abort force-kills the running process, if any.
func (c *SystemCommand) Abort() error {
	c.mu.Lock()
	w := c.current
	c.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Kill()
}

// Execute runs the command and blocks until it exits, returning the exit
// code. A non-zero exit is logged at error severity but is not an error;
// the returned error is non-nil only for configuration problems, a failure
// to spawn, a concurrent execution, or an interruption.
func (c *SystemCommand) Execute(ctx context.Context) (int, error) {
	return c.ExecuteWithInput(ctx, nil)
}

// ExecuteWithInput is Execute with the given reader copied to the process
// standard input, which is closed once the reader is exhausted.
func (c *SystemCommand) ExecuteWithInput(ctx context.Context, input io.Reader) (int, error) {
	w, err := c.start(ctx, input)
	if err != nil {
		return -1, err
	}
	code, err := w.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return code, errors.Interrupted("command interrupted", ctxErr)
	}
	return code, err
}

// Start launches the command in the background. Completion, including the
// non-zero exit log entry, is handled by the supervising goroutine; use
// IsRunning and Abort to manage the process.
func (c *SystemCommand) Start(ctx context.Context) error {
	_, err := c.start(ctx, nil)
	return err
}

func (c *SystemCommand) start(ctx context.Context, input io.Reader) (*Watched, error) {
	cmd, cmdline, err := c.buildCmd(ctx)
	if err != nil {
		return nil, err
	}

	execID := uuid.NewString()
	stderrTail := newTailBuffer(stderrExcerptLines)

	outDispatch := LineListenerFunc(func(s Stream, line string) {
		c.notifyOutput(s, line)
	})
	errDispatch := LineListenerFunc(func(s Stream, line string) {
		stderrTail.add(line)
		c.notifyError(s, line)
	})

	c.mu.Lock()
	if c.current != nil && c.current.Running() {
		c.mu.Unlock()
		return nil, errors.StateConflict(
			"command is already running: " + cmdline)
	}
	w, err := WatchAsync(cmd, input, []LineListener{outDispatch}, []LineListener{errDispatch})
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.current = w
	c.mu.Unlock()

	c.log.Debug("command started", logger.Fields(
		logger.FieldExecutionID, execID,
		logger.FieldCommand, cmdline,
	))

	go func() {
		code, waitErr := w.Wait()
		c.mu.Lock()
		if c.current == w {
			c.current = nil
		}
		c.mu.Unlock()
		c.logExit(execID, cmdline, code, waitErr, stderrTail)
	}()

	return w, nil
}

func (c *SystemCommand) logExit(execID, cmdline string, code int, waitErr error, stderrTail *tailBuffer) {
	switch {
	case waitErr != nil:
		c.log.WithError(waitErr).Error("command failed", logger.Fields(
			logger.FieldExecutionID, execID,
			logger.FieldCommand, cmdline,
		))
	case code != 0:
		c.log.Error("command returned non-zero exit code", logger.Fields(
			logger.FieldExecutionID, execID,
			logger.FieldCommand, cmdline,
			logger.FieldExitCode, code,
			"stderr", stderrTail.String(),
		))
	default:
		c.log.Debug("command completed", logger.Fields(
			logger.FieldExecutionID, execID,
			logger.FieldCommand, cmdline,
			logger.FieldExitCode, code,
		))
	}
	if c.events != nil && (waitErr != nil || code != 0) {
		c.events.Fire(event.Event{
			Name:    event.CommandFailed,
			Source:  c,
			Err:     waitErr,
			Message: fmt.Sprintf("%s (exit code %d)", cmdline, code),
		})
	}
}

func (c *SystemCommand) buildCmd(ctx context.Context) (*exec.Cmd, string, error) {
	tokens := c.tokens
	if len(tokens) == 1 {
		var err error
		tokens, err = Tokenize(tokens[0])
		if err != nil {
			return nil, "", err
		}
	}
	if len(tokens) == 0 {
		return nil, "", errors.Configuration("no command to execute")
	}
	tokens = wrapForInterpreter(runtime.GOOS, tokens)
	cmdline := CommandLine(tokens)

	cmd := exec.CommandContext(ctx, tokens[0], tokens[1:]...) //nolint:gosec // executing caller-supplied commands is the purpose of this package
	cmd.Dir = c.dir
	cmd.Env = mergeEnv(c.env)
	return cmd, cmdline, nil
}

// mergeEnv merges extra variables over the parent environment. A nil map
// inherits the parent environment unchanged.
func mergeEnv(extra map[string]string) []string {
	if len(extra) == 0 {
		return nil
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := os.Environ()
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}

func (c *SystemCommand) notifyOutput(s Stream, line string) {
	c.listenerMu.RLock()
	listeners := append([]LineListener(nil), c.outListeners...)
	c.listenerMu.RUnlock()
	for _, l := range listeners {
		l.OnLine(s, line)
	}
}

func (c *SystemCommand) notifyError(s Stream, line string) {
	c.listenerMu.RLock()
	listeners := append([]LineListener(nil), c.errListeners...)
	c.listenerMu.RUnlock()
	for _, l := range listeners {
		l.OnLine(s, line)
	}
}

// tailBuffer keeps the most recent n lines.
type tailBuffer struct {
	mu    sync.Mutex
	max   int
	lines []string
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (b *tailBuffer) add(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
	if len(b.lines) > b.max {
		b.lines = b.lines[len(b.lines)-b.max:]
	}
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.lines, "\n")
}
