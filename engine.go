package tactician

import (
	"context"
	"time"

	"github.com/notnil/chess"
)

// Engine starts and validates analysis sessions.
//
// Implementations include the UCI subprocess engine (engine/uci) and the
// scripted in-memory double (enginetest). Use Validate to check that the
// engine's prerequisites are met before calling Start.
type Engine interface {
	// Start launches the engine and performs its handshake, returning a
	// Session ready for SetPosition/Analyze. The context bounds startup
	// only; session lifetime is controlled via Session.Close.
	Start(ctx context.Context) (Session, error)

	// Validate checks that the engine is available without starting it.
	// For subprocess engines, this verifies the binary exists and is
	// executable.
	Validate() error
}

// Session is a single logical conversation with one engine.
//
// A session holds exactly one current position and allows at most one
// in-flight analyze call; SetPosition and Analyze return ErrBusy while a
// search is thinking. Sessions are not safe for concurrent use by
// multiple goroutines except for Cancel and Close, which may interrupt
// a Thinking session from another goroutine.
type Session interface {
	// Position returns the session's current position.
	Position() *chess.Position

	// SetPosition makes pos the session's current position.
	// Allowed only while idle; returns ErrBusy during a search.
	SetPosition(ctx context.Context, pos *chess.Position) error

	// Analyze starts a search over the current position and returns a
	// finite stream of events in engine emission order. The stream ends
	// after exactly one EventBestMove, or early if the engine dies —
	// check Err after the channel closes to tell the two apart.
	// Evaluations at deeper depth supersede shallower ones for the same
	// MultiPV index; treat the latest Info per index as authoritative.
	Analyze(ctx context.Context, limits Limits) (<-chan Event, error)

	// Cancel stops an in-flight search. The analyze stream still
	// terminates with the engine's closing EventBestMove; if none
	// arrives within the configured grace period, the session is forced
	// idle and Cancel returns ErrTimeout. Calling Cancel while idle
	// is a no-op.
	Cancel(ctx context.Context) error

	// Err returns the terminal error of the most recent analyze stream
	// after its channel closed: nil for a normal BestMove finish, a
	// *CrashError if the engine died mid-search, ErrSessionBroken once
	// recovery has failed.
	Err() error

	// Close releases the session and its engine process. Idempotent.
	Close(ctx context.Context) error
}

// Limits bounds one analyze call. At least one of Depth or MoveTime
// must be set; when both are, the engine stops at whichever comes first.
type Limits struct {
	// Depth is the target search depth in plies.
	Depth int

	// MoveTime is the wall-clock search budget.
	MoveTime time.Duration

	// MultiPV is the number of candidate lines to report, minimum 1.
	// Zero means 1.
	MultiPV int
}

// Lines returns the effective MultiPV value, treating zero as 1.
func (l Limits) Lines() int {
	if l.MultiPV < 1 {
		return 1
	}
	return l.MultiPV
}
