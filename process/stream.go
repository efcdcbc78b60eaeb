package process

import (
	"bufio"
	"io"
	"sync"

	"github.com/Norconex/commons-lang-sub007/logger"
)

// Stream identifies which output stream of a process a line came from.
type Stream string

const (
	// Stdout is the standard output stream.
	Stdout Stream = "STDOUT"
	// Stderr is the standard error stream.
	Stderr Stream = "STDERR"
)

// LineListener receives output lines from a running process. Listeners are
// invoked from the stream consumer goroutines and must be safe for
// concurrent use if shared across commands.
type LineListener interface {
	OnLine(stream Stream, line string)
}

// LineListenerFunc adapts a function to the LineListener interface.
type LineListenerFunc func(stream Stream, line string)

// OnLine calls f(stream, line).
func (f LineListenerFunc) OnLine(stream Stream, line string) { f(stream, line) }

// maxLineSize bounds the scanner buffer for a single output line.
const maxLineSize = 1024 * 1024

// consumeStream drains r line-by-line and forwards each line to every
// listener, tagged with the stream it came from. It runs until EOF. Read
// errors and listener panics are logged and swallowed; the pipe keeps
// being drained either way so the child is never blocked on a full
// buffer by a misbehaving listener.
func consumeStream(r io.Reader, stream Stream, listeners []LineListener, wg *sync.WaitGroup, log *logger.Logger) {
	defer wg.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		for _, l := range listeners {
			notifyLine(l, stream, line, log)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Error("reading process output", logger.Fields(
			logger.FieldStream, string(stream),
			logger.FieldError, err.Error(),
		))
	}
}

// notifyLine delivers one line to one listener, isolating its panic so the
// remaining listeners and the scan loop are unaffected.
func notifyLine(l LineListener, stream Stream, line string, log *logger.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("stream listener panicked", logger.Fields(
				logger.FieldStream, string(stream),
				"panic", rec,
			))
		}
	}()
	l.OnLine(stream, line)
}
