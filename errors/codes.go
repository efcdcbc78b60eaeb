package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Configuration errors (never retryable)
const (
	// ErrCodeConfiguration indicates invalid library or command configuration,
	// such as an empty command or an unterminated quote in a command line.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodeValidation indicates a value failed struct validation.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
)

// Caller-misuse errors (never retryable)
const (
	// ErrCodeStateConflict indicates an operation was invoked in an illegal
	// state, such as executing a command that is already running.
	ErrCodeStateConflict ErrorCode = "STATE_CONFLICT"
)

// Execution errors
const (
	// ErrCodeExecution indicates a subprocess could not be spawned, supervised
	// or reaped.
	ErrCodeExecution ErrorCode = "EXECUTION_ERROR"
	// ErrCodeInterrupted indicates an operation was cancelled while waiting on
	// a subprocess or between retry attempts.
	ErrCodeInterrupted ErrorCode = "INTERRUPTED"
	// ErrCodeRetryExhausted indicates a retried operation failed on every
	// permitted attempt or was rejected by the error filter.
	ErrCodeRetryExhausted ErrorCode = "RETRY_EXHAUSTED"
)

// Encryption errors
const (
	// ErrCodeEncryption indicates a key could not be resolved or a payload
	// could not be encrypted or decrypted.
	ErrCodeEncryption ErrorCode = "ENCRYPTION_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeExecution: true,
}

// IsRetryableCode reports whether failures carrying the code are worth
// re-attempting.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
