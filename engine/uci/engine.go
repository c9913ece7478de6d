package uci

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/dlevan/tactician"
)

// Engine launches UCI subprocess sessions for one engine binary.
// An Engine is immutable after construction and may start any number of
// independent sessions, each owning its own subprocess.
type Engine struct {
	path string
	opts Options
}

// Compile-time interface satisfaction check.
var _ tactician.Engine = (*Engine)(nil)

// New creates a UCI engine for the binary at path.
// Use Option functions to customize engine settings and timeouts.
func New(path string, opts ...Option) *Engine {
	return &Engine{
		path: path,
		opts: resolveOptions(opts...),
	}
}

// Validate checks that the engine binary exists and is executable,
// without starting it.
func (e *Engine) Validate() error {
	if e.path == "" {
		return fmt.Errorf("%w: empty binary path", tactician.ErrUnavailable)
	}
	if _, err := exec.LookPath(e.path); err != nil {
		return fmt.Errorf("%w: %s: %w", tactician.ErrUnavailable, e.path, err)
	}
	return nil
}

// Start launches the subprocess, runs the UCI handshake, and returns an
// idle session holding the standard starting position. The context
// bounds startup only; close the session to release the subprocess.
func (e *Engine) Start(ctx context.Context) (tactician.Session, error) {
	resolved, err := exec.LookPath(e.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", tactician.ErrUnavailable, e.path, err)
	}
	proc, err := launch(ctx, resolved, e.opts)
	if err != nil {
		return nil, err
	}
	return newSession(proc, resolved, e.opts), nil
}
