package enginetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dlevan/tactician"
)

// suiteLimits is a search bound every conforming session must accept.
var suiteLimits = tactician.Limits{Depth: 6, MultiPV: 1}

// RunSessionTests runs the behavioral compliance suite for a
// [tactician.Session] implementation. The factory is called once per
// subtest and must return a fresh, started session whose backing engine
// completes a depth-bounded search in a few seconds; the suite closes
// every session it opens.
func RunSessionTests(t *testing.T, factory func(t *testing.T) tactician.Session) {
	t.Helper()

	t.Run("AnalyzeTerminates", func(t *testing.T) { runAnalyzeTerminates(t, factory) })
	t.Run("BusyWhileThinking", func(t *testing.T) { runBusyWhileThinking(t, factory) })
	t.Run("CancelBounded", func(t *testing.T) { runCancelBounded(t, factory) })
	t.Run("ReusableAfterSearch", func(t *testing.T) { runReusableAfterSearch(t, factory) })
	t.Run("ClosedIsTerminal", func(t *testing.T) { runClosedIsTerminal(t, factory) })
	t.Run("RejectsUnboundedSearch", func(t *testing.T) { runRejectsUnbounded(t, factory) })
}

// runAnalyzeTerminates checks the core stream contract: exactly one
// best-move event, delivered last, with the channel closed after it,
// and per-line depths that never decrease.
func runAnalyzeTerminates(t *testing.T, factory func(t *testing.T) tactician.Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s := factory(t)
	defer s.Close(context.Background())

	events, err := s.Analyze(ctx, suiteLimits)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	depths := map[int]int{}
	bestMoves := 0
	for ev := range events {
		switch ev.Type {
		case tactician.EventBestMove:
			bestMoves++
			if ev.Move == "" {
				t.Error("best-move event with empty move")
			}
		case tactician.EventInfo:
			if ev.Info == nil {
				t.Fatal("info event with nil Info")
			}
			line := ev.Info.MultiPV
			if line == 0 {
				line = 1
			}
			if ev.Info.Depth < depths[line] {
				t.Errorf("line %d depth went backwards: %d after %d", line, ev.Info.Depth, depths[line])
			}
			depths[line] = ev.Info.Depth
		}
		if bestMoves > 0 {
			break
		}
	}
	if bestMoves != 1 {
		t.Fatalf("got %d best-move events, want exactly 1", bestMoves)
	}
	if _, ok := <-events; ok {
		t.Error("stream not closed after best move")
	}
	if err := s.Err(); err != nil {
		t.Errorf("Err after clean search: %v", err)
	}
}

// runBusyWhileThinking checks that a running search blocks new work
// with ErrBusy.
func runBusyWhileThinking(t *testing.T, factory func(t *testing.T) tactician.Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s := factory(t)
	defer s.Close(context.Background())

	events, err := s.Analyze(ctx, suiteLimits)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	// A fast engine may already have finished the first search, in
	// which case the probe legitimately succeeds; anything other than
	// success or ErrBusy is a contract violation.
	if events2, err := s.Analyze(ctx, suiteLimits); err == nil {
		drain(events2)
	} else if !errors.Is(err, tactician.ErrBusy) {
		t.Errorf("second Analyze: got %v, want ErrBusy or success", err)
	}
	if err := s.SetPosition(ctx, tactician.StartingPosition()); err != nil && !errors.Is(err, tactician.ErrBusy) {
		t.Errorf("SetPosition during search: got %v, want ErrBusy or success", err)
	}

	drain(events)
}

// runCancelBounded checks that Cancel returns promptly and still closes
// the stream.
func runCancelBounded(t *testing.T, factory func(t *testing.T) tactician.Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s := factory(t)
	defer s.Close(context.Background())

	events, err := s.Analyze(ctx, suiteLimits)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if err := s.Cancel(ctx); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	select {
	case <-drained(events):
	case <-time.After(10 * time.Second):
		t.Fatal("stream not closed after Cancel")
	}
}

// runReusableAfterSearch checks that a session serves a second search
// after the first completes.
func runReusableAfterSearch(t *testing.T, factory func(t *testing.T) tactician.Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	s := factory(t)
	defer s.Close(context.Background())

	for i := 0; i < 2; i++ {
		rep, err := tactician.Collect(ctx, s, suiteLimits)
		if err != nil {
			t.Fatalf("search %d: %v", i+1, err)
		}
		if rep.BestMove == "" {
			t.Fatalf("search %d: empty best move", i+1)
		}
	}
}

// runClosedIsTerminal checks that Close is idempotent and everything
// after it fails with ErrTerminated.
func runClosedIsTerminal(t *testing.T, factory func(t *testing.T) tactician.Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s := factory(t)
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Errorf("second Close: %v", err)
	}

	if _, err := s.Analyze(ctx, suiteLimits); !errors.Is(err, tactician.ErrTerminated) {
		t.Errorf("Analyze after Close: got %v, want ErrTerminated", err)
	}
	if err := s.SetPosition(ctx, tactician.StartingPosition()); !errors.Is(err, tactician.ErrTerminated) {
		t.Errorf("SetPosition after Close: got %v, want ErrTerminated", err)
	}
}

// runRejectsUnbounded checks that a search with no depth or time bound
// is refused up front.
func runRejectsUnbounded(t *testing.T, factory func(t *testing.T) tactician.Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s := factory(t)
	defer s.Close(context.Background())

	if _, err := s.Analyze(ctx, tactician.Limits{}); err == nil {
		t.Error("Analyze with zero limits: got nil error")
	}
}

func drain(events <-chan tactician.Event) {
	for range events {
	}
}

// drained closes the returned channel once events is exhausted.
func drained(events <-chan tactician.Event) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		drain(events)
		close(done)
	}()
	return done
}
