// Package resilience retries failing operations. A Retrier is built once
// from an immutable Config and can be shared; Do runs an operation through
// it, sleeping between attempts with optional exponential backoff and
// jitter. When the retrier gives up it returns an *Error carrying the
// attempt count and a bounded window of the most recent failure causes.
package resilience
