package uci

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/notnil/chess"
	"github.com/rs/zerolog"

	"github.com/dlevan/tactician"
)

// state is the session lifecycle position.
//
//	Idle -> Thinking -> Idle      normal analyze completion
//	Thinking -> Idle              crash + successful automatic restart
//	Thinking -> Broken            crash + failed restart (terminal)
//	any -> Closed                 caller released the session (terminal)
type state int

const (
	stateIdle state = iota
	stateThinking
	stateBroken
	stateClosed
)

// session implements tactician.Session over one UCI subprocess.
type session struct {
	path string
	opts Options
	log  zerolog.Logger

	mu      sync.Mutex
	st      state
	pos     *chess.Position
	proc    *process
	lastPV  int           // MultiPV value last sent; 0 = never sent
	termErr error         // terminal error of the most recent stream
	done    chan struct{} // closed when the current stream settles

	// intr is closed by Cancel to abandon the current search. It is the
	// only signal that can reach a pump blocked delivering to a stream
	// the caller stopped draining.
	intr     chan struct{}
	intrOnce *sync.Once

	// quit unblocks a pump stuck delivering events after Close.
	quit     chan struct{}
	stopping atomic.Bool

	closeOnce sync.Once
	closeErr  error
}

var _ tactician.Session = (*session)(nil)

func newSession(proc *process, path string, opts Options) *session {
	return &session{
		path: path,
		opts: opts,
		log:  opts.Logger,
		pos:  tactician.StartingPosition(),
		proc: proc,
		quit: make(chan struct{}),
	}
}

// Position returns the session's current position.
func (s *session) Position() *chess.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// SetPosition makes pos current. Allowed only while idle. The full
// position is also re-sent immediately before every search, so engine
// state can never drift from the session's.
func (s *session) SetPosition(_ context.Context, pos *chess.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireIdle(); err != nil {
		return err
	}
	if pos == nil {
		return fmt.Errorf("uci: nil position")
	}
	s.pos = pos
	return nil
}

// Analyze starts a search over the current position.
func (s *session) Analyze(ctx context.Context, limits tactician.Limits) (<-chan tactician.Event, error) {
	if limits.Depth <= 0 && limits.MoveTime <= 0 {
		return nil, fmt.Errorf("uci: analyze requires a depth or movetime limit")
	}

	s.mu.Lock()
	if err := s.requireIdle(); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	// An engine that died while the session sat idle is restarted here
	// rather than failing the first call that notices.
	if !s.proc.alive() {
		if err := s.relaunchLocked(); err != nil {
			s.mu.Unlock()
			return nil, err
		}
	}

	proc := s.proc
	pv := limits.Lines()
	var sendErr error
	if pv != s.lastPV {
		sendErr = proc.send(EncodeSetOption("MultiPV", pv))
		s.lastPV = pv
	}
	if sendErr == nil {
		sendErr = proc.send(EncodeSetPosition(s.pos))
	}
	if sendErr == nil {
		sendErr = proc.send(EncodeGo(limits))
	}
	if sendErr != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %w", tactician.ErrEngineCrashed, sendErr)
	}

	out := make(chan tactician.Event, s.opts.OutputBuffer)
	done := make(chan struct{})
	intr := make(chan struct{})
	s.st = stateThinking
	s.termErr = nil
	s.done = done
	s.intr = intr
	s.intrOnce = new(sync.Once)
	s.mu.Unlock()

	go s.pump(ctx, proc, out, done, intr)
	return out, nil
}

// Cancel stops an in-flight search. A drained stream still ends with
// the engine's closing bestmove; a stream the caller abandoned settles
// anyway. An engine that ignores the stop command past the grace period
// is killed, which triggers the crash-recovery path and forces the
// session out of Thinking.
func (s *session) Cancel(ctx context.Context) error {
	s.mu.Lock()
	if s.st != stateThinking {
		s.mu.Unlock()
		return nil
	}
	proc := s.proc
	done := s.done
	intr := s.intr
	once := s.intrOnce
	s.mu.Unlock()

	// Wake a pump parked on an undrained stream before asking the
	// engine to stop; a blocked channel send cannot be woken by a kill.
	once.Do(func() { close(intr) })
	_ = proc.send("stop") // Best-effort: the search may just have ended.

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.opts.GracePeriod):
	}

	proc.kill()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return tactician.ErrTimeout
}

// Err returns the terminal error of the most recent analyze stream.
func (s *session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.termErr
}

// Close releases the session and its engine process. Idempotent.
func (s *session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.stopping.Store(true)
		close(s.quit)

		s.mu.Lock()
		proc := s.proc
		done := s.done
		thinking := s.st == stateThinking
		s.st = stateClosed
		s.mu.Unlock()

		s.closeErr = proc.terminate(ctx)
		if thinking && done != nil {
			<-done
		}
	})
	return s.closeErr
}

// requireIdle maps non-idle states onto the error taxonomy.
// Callers must hold s.mu.
func (s *session) requireIdle() error {
	switch s.st {
	case stateIdle:
		return nil
	case stateThinking:
		return tactician.ErrBusy
	case stateBroken:
		return tactician.ErrSessionBroken
	default:
		return tactician.ErrTerminated
	}
}

// relaunchLocked replaces a dead subprocess while the session is idle.
// Callers must hold s.mu.
func (s *session) relaunchLocked() error {
	s.log.Warn().Str("binary", s.path).Msg("engine dead while idle, relaunching")
	np, err := launch(context.Background(), s.path, s.opts)
	if err != nil {
		s.st = stateBroken
		return fmt.Errorf("%w: %w", tactician.ErrSessionBroken, err)
	}
	s.proc = np
	s.lastPV = 0
	return nil
}

// pump reads engine output for one analyze call, forwarding parsed
// events until the closing bestmove.
func (s *session) pump(ctx context.Context, proc *process, out chan tactician.Event, done chan struct{}, intr chan struct{}) {
	actx := ctx
	if s.opts.AnalyzeTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, s.opts.AnalyzeTimeout)
		defer cancel()
	}

	for {
		line, err := proc.readLine(actx, 0)
		if err != nil {
			if errors.Is(err, errProcExited) {
				s.finishCrash(proc, out, done)
			} else {
				cause := err
				if actx.Err() != nil && ctx.Err() == nil {
					cause = tactician.ErrTimeout // analyze wall-clock bound, not the caller
				}
				s.finishInterrupt(proc, out, done, cause)
			}
			return
		}

		ev, derr := DecodeLine(line)
		if errors.Is(derr, ErrSkipLine) {
			continue
		}
		if ev.Type == tactician.EventUnrecognized {
			// Parse warnings are logged and passed through, never raised.
			s.log.Warn().Str("line", line).Msg("unrecognized engine output")
		}

		if ev.Type == tactician.EventBestMove {
			// The search is already over, so an interrupt here only
			// means the caller may have stopped draining. Offer the
			// closing bestmove for the grace period, then settle.
			var cause error
			select {
			case out <- ev:
			case <-intr:
				select {
				case out <- ev:
				case <-time.After(s.opts.GracePeriod):
				case <-s.quit:
				}
			case <-actx.Done():
				cause = actx.Err()
				if ctx.Err() == nil {
					cause = tactician.ErrTimeout
				}
			case <-s.quit:
				cause = tactician.ErrTerminated
			}
			s.finish(out, done, cause)
			return
		}

		select {
		case out <- ev:
		case <-intr:
			s.finishInterrupt(proc, out, done, nil)
			return
		case <-actx.Done():
			cause := actx.Err()
			if ctx.Err() == nil {
				cause = tactician.ErrTimeout
			}
			s.finishInterrupt(proc, out, done, cause)
			return
		case <-s.quit:
			s.finish(out, done, tactician.ErrTerminated)
			return
		}
	}
}

// finish settles the stream: records the terminal error, returns the
// session to idle unless a terminal state took over, and closes the
// stream.
func (s *session) finish(out chan tactician.Event, done chan struct{}, err error) {
	s.mu.Lock()
	s.termErr = err
	if s.st == stateThinking {
		s.st = stateIdle
	}
	s.mu.Unlock()
	close(out)
	close(done)
}

// finishInterrupt winds down a search cut short (Cancel, context
// cancelled, or analyze timeout hit): it asks the engine to stop, drains
// quietly for the grace period, and escalates to a kill if the engine
// does not comply. The closing bestmove is still offered to the stream,
// without blocking, so a caller that resumes draining sees the same
// shape as a completed search while an abandoned stream settles at once.
func (s *session) finishInterrupt(proc *process, out chan tactician.Event, done chan struct{}, cause error) {
	_ = proc.send("stop")

	deadline := time.Now().Add(s.opts.GracePeriod)
	for {
		line, err := proc.readLine(context.Background(), time.Until(deadline))
		if err != nil {
			if errors.Is(err, errProcExited) {
				s.finishCrash(proc, out, done)
				return
			}
			// Grace expired: the engine ignored stop. Kill it and let
			// the crash path restore an idle session.
			proc.kill()
			s.finishCrash(proc, out, done)
			return
		}
		if ev, derr := DecodeLine(line); derr == nil && ev.Type == tactician.EventBestMove {
			select {
			case out <- ev:
			default:
			}
			s.finish(out, done, cause)
			return
		}
	}
}

// finishCrash handles an engine that died mid-search: it surfaces a
// CrashError on the stream, then attempts exactly one automatic restart,
// re-applying the last known position. The session returns to idle only
// after a successful relaunch; otherwise it is broken for good.
func (s *session) finishCrash(proc *process, out chan tactician.Event, done chan struct{}) {
	proc.kill() // stdout is gone; make sure the process is too
	cerr := proc.crashError()

	if s.stopping.Load() {
		s.finish(out, done, tactician.ErrTerminated)
		return
	}

	s.log.Error().Err(cerr).Strs("stderr", cerr.Stderr).Msg("engine crashed mid-search")

	s.mu.Lock()
	pos := s.pos
	s.mu.Unlock()

	np, err := launch(context.Background(), s.path, s.opts)
	if err == nil {
		if serr := np.send(EncodeSetPosition(pos)); serr == nil {
			err = np.ready(context.Background())
		} else {
			err = serr
		}
		if err != nil {
			_ = np.terminate(context.Background())
		}
	}

	s.mu.Lock()
	s.termErr = cerr
	if s.st == stateThinking { // Close may have raced us
		if err != nil {
			s.log.Error().Err(err).Msg("engine restart failed, session broken")
			s.st = stateBroken
		} else {
			s.log.Info().Str("binary", s.path).Msg("engine restarted after crash")
			s.proc = np
			s.lastPV = 0
			s.st = stateIdle
		}
	} else if err == nil {
		// Session moved to a terminal state while we relaunched.
		defer func() { _ = np.terminate(context.Background()) }()
	}
	s.mu.Unlock()
	close(out)
	close(done)
}
