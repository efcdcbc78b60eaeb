package process

import "time"

// Result is the outcome of a completed command: the captured output
// streams, the exit status, and the wall-clock duration.
type Result struct {
	// Stdout holds the stdout lines in arrival order, newline-terminated.
	Stdout []byte
	// Stderr holds the stderr lines in arrival order, newline-terminated.
	Stderr []byte
	// ExitCode is the status the process exited with, or -1 when it was
	// killed before exiting on its own.
	ExitCode int
	// Duration covers spawn through full output drain.
	Duration time.Duration
}
