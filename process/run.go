package process

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/Norconex/commons-lang-sub007/errors"
)

// Spec configures a one-shot command execution.
type Spec struct {
	// Binary is the executable path or name (resolved via PATH). It may
	// also be a full command line when Args is empty.
	Binary string
	// Args are the command-line arguments.
	Args []string
	// Dir is the working directory. If empty, uses the current directory.
	Dir string
	// Env is extra environment variables merged over the parent
	// environment. Nil inherits the parent environment unchanged.
	Env map[string]string
	// Stdin provides input to the process. May be nil.
	Stdin io.Reader
}

// Run executes a command and waits for it to complete, capturing stdout and
// stderr into the Result. Cancel the context to abort the process. A
// non-zero exit code is not an error.
func Run(ctx context.Context, spec Spec) (*Result, error) {
	if spec.Binary == "" {
		return nil, errors.Configuration("no command to execute")
	}

	cmd := NewSystemCommand(append([]string{spec.Binary}, spec.Args...)...)
	cmd.SetDir(spec.Dir)
	cmd.SetEnv(spec.Env)

	var stdout, stderr bytes.Buffer
	cmd.AddOutputListener(LineListenerFunc(func(_ Stream, line string) {
		stdout.WriteString(line)
		stdout.WriteByte('\n')
	}))
	cmd.AddErrorListener(LineListenerFunc(func(_ Stream, line string) {
		stderr.WriteString(line)
		stderr.WriteByte('\n')
	}))

	start := time.Now()
	code, err := cmd.ExecuteWithInput(ctx, spec.Stdin)
	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: code,
		Duration: time.Since(start),
	}
	if err != nil {
		return result, err
	}
	return result, nil
}
