// Package process executes external OS commands and supervises their
// lifecycle. SystemCommand models a command as an ordered token list with
// optional working directory and environment, streams stdout and stderr
// line-by-line to registered listeners, and enforces a single execution at a
// time. Watch and WatchAsync supervise an already-built exec.Cmd, and Run is
// the one-shot convenience that captures output into a Result.
package process
