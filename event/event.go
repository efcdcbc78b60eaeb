// Package event is a small synchronous notification bus. Components fire
// events at a Manager; registered listeners receive them in registration
// order. A panicking listener is logged and skipped so one bad listener
// cannot silence the others.
package event

// Well-known event names.
const (
	// CommandFailed is fired when an external command could not run or
	// returned a non-zero exit code.
	CommandFailed = "COMMAND_FAILED"
	// RetryExhausted is fired when a retried operation gave up after its
	// last allowed attempt.
	RetryExhausted = "RETRY_EXHAUSTED"
)

// Event is a notification about something that happened.
type Event struct {
	// Name identifies the kind of event.
	Name string
	// Source is the component that fired the event.
	Source any
	// Err is the error behind the event, if any.
	Err error
	// Message is a human-readable description.
	Message string
}

// Listener receives fired events.
type Listener interface {
	OnEvent(ev Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(ev Event)

// OnEvent calls f(ev).
func (f ListenerFunc) OnEvent(ev Event) { f(ev) }
