package resilience

import "fmt"

// Error is returned when a retried operation gives up, either because the
// error filter rejected a failure or because the retry budget ran out. Its
// Cause is the most recent failure; Causes lists the retained failure
// window from oldest to newest.
type Error struct {
	// Message describes why retrying stopped.
	Message string
	// Attempts is how many times the operation was invoked.
	Attempts int
	// Cause is the most recent failure.
	Cause error

	causes []error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s after %d attempt(s): %v", e.Message, e.Attempts, e.Cause)
	}
	return fmt.Sprintf("%s after %d attempt(s)", e.Message, e.Attempts)
}

// Unwrap returns the most recent failure.
func (e *Error) Unwrap() error { return e.Cause }

// Causes returns the retained failure window, oldest first. When more
// failures occurred than the window holds, only the most recent ones
// remain.
func (e *Error) Causes() []error {
	return append([]error(nil), e.causes...)
}

// causeWindow retains the most recent failures, evicting the oldest once
// full.
type causeWindow struct {
	max    int
	causes []error
}

func (w *causeWindow) add(err error) {
	w.causes = append(w.causes, err)
	if len(w.causes) > w.max {
		w.causes = w.causes[len(w.causes)-w.max:]
	}
}
