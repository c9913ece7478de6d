package tactician

import (
	"errors"
	"strings"
)

// Sentinel errors for engine operations.
var (
	// ErrUnavailable indicates the engine cannot start (binary missing,
	// not executable, or exited during the handshake).
	ErrUnavailable = errors.New("tactician: engine unavailable")

	// ErrBusy indicates a protocol misuse: the session was asked to do
	// something only an idle session can do while a search was in
	// flight. Recoverable — retry after the current analyze settles.
	ErrBusy = errors.New("tactician: session busy")

	// ErrTimeout indicates the engine produced no response within the
	// configured bound.
	ErrTimeout = errors.New("tactician: engine response timeout")

	// ErrEngineCrashed indicates the engine subprocess died while a
	// search was in flight. The session attempts one automatic restart;
	// see ErrSessionBroken for the unrecoverable case.
	ErrEngineCrashed = errors.New("tactician: engine crashed")

	// ErrSessionBroken indicates crash recovery failed. The session is
	// terminal; callers must create a new one.
	ErrSessionBroken = errors.New("tactician: session broken")

	// ErrTerminated indicates the session was closed by the caller.
	ErrTerminated = errors.New("tactician: session terminated")
)

// CrashError reports an engine subprocess that died unexpectedly.
// It wraps ErrEngineCrashed (or a more specific cause) so consumers can
// errors.Is against the sentinels, and carries the last captured stderr
// lines to aid diagnosis.
type CrashError struct {
	// Stderr holds the tail of the subprocess stderr output, oldest first.
	Stderr []string

	// Err is the underlying cause, always chaining to ErrEngineCrashed.
	Err error
}

func (e *CrashError) Error() string {
	if len(e.Stderr) == 0 {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + strings.Join(e.Stderr, " | ")
}

func (e *CrashError) Unwrap() error { return e.Err }

// CrashStderr extracts the captured stderr tail from an error chain
// containing *CrashError. Returns (nil, false) otherwise.
func CrashStderr(err error) ([]string, bool) {
	var ce *CrashError
	if errors.As(err, &ce) {
		return ce.Stderr, true
	}
	return nil, false
}
