package enginetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/notnil/chess"

	"github.com/dlevan/tactician"
)

// stopGrace bounds how long an interrupted replay holds the stream open
// for the closing bestmove before giving up on the consumer.
const stopGrace = 100 * time.Millisecond

// Script is the canned output of one analyze call.
type Script struct {
	// Events are replayed in order. A terminating EventBestMove ends
	// the stream; events after it are ignored.
	Events []tactician.Event

	// Err, when set, simulates an engine failure: the stream closes
	// after Events without a best move and the session reports Err
	// until the next analyze call.
	Err error
}

// InfoEvent wraps an Info in an event, the way a transport would emit
// it.
func InfoEvent(i tactician.Info) tactician.Event {
	return tactician.Event{Type: tactician.EventInfo, Info: &i}
}

// BestMoveEvent builds the terminating event of a search. The UCI
// "(none)" placeholder maps to an empty move, matching the codec.
func BestMoveEvent(move, ponder string) tactician.Event {
	if move == "(none)" {
		move = ""
	}
	return tactician.Event{Type: tactician.EventBestMove, Move: move, Ponder: ponder}
}

// Scripted is an in-memory [tactician.Engine] that replays canned
// scripts instead of talking to a process. Each Start returns an
// independent session with its own copy of the scripts; each analyze
// call consumes the next script, and the last script is reused once the
// slice runs out.
//
// Sessions honor the full session contract: busy rejection while a
// search runs, bounded cancellation, terminal errors surfaced via Err,
// and permanent shutdown on Close. That makes Scripted suitable both
// for consumer tests and as the reference subject for
// [RunSessionTests].
type Scripted struct {
	Scripts []Script

	// StartErr, when set, fails Validate and Start with this error.
	StartErr error
}

var _ tactician.Engine = (*Scripted)(nil)

func (e *Scripted) Validate() error { return e.StartErr }

func (e *Scripted) Start(ctx context.Context) (tactician.Session, error) {
	if e.StartErr != nil {
		return nil, e.StartErr
	}
	return &scriptedSession{
		scripts: append([]Script(nil), e.Scripts...),
		pos:     tactician.StartingPosition(),
	}, nil
}

type scriptedState int

const (
	scriptedIdle scriptedState = iota
	scriptedThinking
	scriptedClosed
)

type scriptedSession struct {
	mu      sync.Mutex
	scripts []Script
	call    int
	st      scriptedState
	pos     *chess.Position
	termErr error

	stop func()        // interrupts the running replay, safe to call twice
	done chan struct{} // closed when the running replay finishes

	closeOnce sync.Once
}

var _ tactician.Session = (*scriptedSession)(nil)

func (s *scriptedSession) Position() *chess.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

func (s *scriptedSession) SetPosition(ctx context.Context, pos *chess.Position) error {
	if pos == nil {
		return fmt.Errorf("enginetest: nil position")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireIdle(); err != nil {
		return err
	}
	s.pos = pos
	return nil
}

func (s *scriptedSession) Analyze(ctx context.Context, limits tactician.Limits) (<-chan tactician.Event, error) {
	if limits.Depth <= 0 && limits.MoveTime <= 0 {
		return nil, fmt.Errorf("enginetest: analyze requires a depth or time bound")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireIdle(); err != nil {
		return nil, err
	}

	script := s.take()
	cancel := make(chan struct{})
	var once sync.Once
	s.stop = func() { once.Do(func() { close(cancel) }) }
	s.done = make(chan struct{})
	s.st = scriptedThinking
	s.termErr = nil

	// Unbuffered on purpose: the session stays thinking until the
	// caller consumes the stream, so busy semantics are deterministic
	// under test.
	out := make(chan tactician.Event)
	go s.replay(ctx, script, limits, out, cancel, s.done)
	return out, nil
}

func (s *scriptedSession) Cancel(ctx context.Context) error {
	s.mu.Lock()
	if s.st != scriptedThinking {
		s.mu.Unlock()
		return nil
	}
	stop, done := s.stop, s.done
	s.mu.Unlock()

	stop()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *scriptedSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.termErr
}

func (s *scriptedSession) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		thinking := s.st == scriptedThinking
		stop, done := s.stop, s.done
		s.st = scriptedClosed
		s.mu.Unlock()

		if thinking {
			stop()
			<-done
		}
	})
	return nil
}

func (s *scriptedSession) requireIdle() error {
	switch s.st {
	case scriptedThinking:
		return tactician.ErrBusy
	case scriptedClosed:
		return tactician.ErrTerminated
	}
	return nil
}

// take pops the next script, holding the last one once exhausted.
// Callers hold s.mu.
func (s *scriptedSession) take() Script {
	if len(s.scripts) == 0 {
		return Script{Events: []tactician.Event{BestMoveEvent("(none)", "")}}
	}
	i := s.call
	if i >= len(s.scripts) {
		i = len(s.scripts) - 1
	}
	s.call++
	return s.scripts[i]
}

// replay delivers the script's events and settles the terminal state.
// Infos beyond the requested line count are withheld, matching an
// engine configured with that MultiPV.
func (s *scriptedSession) replay(ctx context.Context, script Script, limits tactician.Limits, out chan tactician.Event, cancel <-chan struct{}, done chan struct{}) {
	lastMove := "(none)"
	for _, ev := range script.Events {
		if ev.Type == tactician.EventInfo && ev.Info != nil && ev.Info.MultiPV > limits.Lines() {
			continue
		}
		select {
		case out <- ev:
		case <-cancel:
			s.interrupt(out, done, lastMove)
			return
		case <-ctx.Done():
			s.interrupt(out, done, lastMove)
			return
		}
		if ev.Type == tactician.EventBestMove {
			s.finish(out, done, nil)
			return
		}
		if ev.Type == tactician.EventInfo && ev.Info != nil && len(ev.Info.PV) > 0 && ev.Info.MultiPV <= 1 {
			lastMove = ev.Info.PV[0]
		}
	}
	if script.Err != nil {
		s.finish(out, done, script.Err)
		return
	}
	s.finish(out, done, fmt.Errorf("enginetest: script ended without a best move: %w", tactician.ErrEngineCrashed))
}

// interrupt answers a stop the way an engine does, with a prompt best
// move for the deepest line seen so far. The canceller is usually still
// inside Cancel when this runs, so the replay settles first and offers
// the bestmove afterwards, once the caller is back to draining.
func (s *scriptedSession) interrupt(out chan tactician.Event, done chan struct{}, move string) {
	s.mu.Lock()
	s.termErr = nil
	if s.st == scriptedThinking {
		s.st = scriptedIdle
	}
	s.mu.Unlock()
	close(done)

	select {
	case out <- BestMoveEvent(move, ""):
	case <-time.After(stopGrace):
	}
	close(out)
}

func (s *scriptedSession) finish(out chan tactician.Event, done chan struct{}, cause error) {
	s.mu.Lock()
	s.termErr = cause
	if s.st == scriptedThinking {
		s.st = scriptedIdle
	}
	s.mu.Unlock()
	close(out)
	close(done)
}
