package enginetest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dlevan/tactician"
	"github.com/dlevan/tactician/enginetest"
)

func okScript(move string, depth int) enginetest.Script {
	return enginetest.Script{Events: []tactician.Event{
		enginetest.InfoEvent(tactician.Info{Depth: depth, MultiPV: 1, Score: tactician.Cp(20), PV: []string{move}}),
		enginetest.BestMoveEvent(move, ""),
	}}
}

func start(t *testing.T, eng *enginetest.Scripted) tactician.Session {
	t.Helper()
	s, err := eng.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func TestScripted_ConsumesScriptsInOrder(t *testing.T) {
	eng := &enginetest.Scripted{Scripts: []enginetest.Script{
		okScript("e2e4", 8),
		okScript("d2d4", 8),
	}}
	s := start(t, eng)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for i, want := range []string{"e2e4", "d2d4", "d2d4"} { // last script repeats
		rep, err := tactician.Collect(ctx, s, tactician.Limits{Depth: 8})
		if err != nil {
			t.Fatalf("search %d: %v", i, err)
		}
		if rep.BestMove != want {
			t.Errorf("search %d: BestMove = %q, want %q", i, rep.BestMove, want)
		}
	}
}

func TestScripted_MultiPVTrimmedToLimits(t *testing.T) {
	eng := &enginetest.Scripted{Scripts: []enginetest.Script{{Events: []tactician.Event{
		enginetest.InfoEvent(tactician.Info{Depth: 8, MultiPV: 1, Score: tactician.Cp(30), PV: []string{"e2e4"}}),
		enginetest.InfoEvent(tactician.Info{Depth: 8, MultiPV: 2, Score: tactician.Cp(20), PV: []string{"d2d4"}}),
		enginetest.InfoEvent(tactician.Info{Depth: 8, MultiPV: 3, Score: tactician.Cp(10), PV: []string{"g1f3"}}),
		enginetest.BestMoveEvent("e2e4", ""),
	}}}}
	s := start(t, eng)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rep, err := tactician.Collect(ctx, s, tactician.Limits{Depth: 8, MultiPV: 2})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(rep.Lines) != 2 {
		t.Errorf("got %d lines, want 2 (third withheld)", len(rep.Lines))
	}
}

func TestScripted_FailureScript(t *testing.T) {
	boom := errors.New("engine fell over")
	eng := &enginetest.Scripted{Scripts: []enginetest.Script{
		{
			Events: []tactician.Event{
				enginetest.InfoEvent(tactician.Info{Depth: 3, Score: tactician.Cp(10), PV: []string{"e2e4"}}),
			},
			Err: boom,
		},
		okScript("e2e4", 8),
	}}
	s := start(t, eng)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := tactician.Collect(ctx, s, tactician.Limits{Depth: 8}); !errors.Is(err, boom) {
		t.Fatalf("Collect: got %v, want the scripted failure", err)
	}
	if err := s.Err(); !errors.Is(err, boom) {
		t.Errorf("Err: got %v, want the scripted failure", err)
	}

	// The next search recovers, like a session that restarted its
	// engine.
	rep, err := tactician.Collect(ctx, s, tactician.Limits{Depth: 8})
	if err != nil {
		t.Fatalf("Collect after failure: %v", err)
	}
	if rep.BestMove != "e2e4" {
		t.Errorf("BestMove = %q, want e2e4", rep.BestMove)
	}
}

// A cancelled replay still closes the stream with a bestmove for the
// deepest line seen, the way a stopped engine does.
func TestScripted_CancelDeliversBestMove(t *testing.T) {
	eng := &enginetest.Scripted{Scripts: []enginetest.Script{{Events: []tactician.Event{
		enginetest.InfoEvent(tactician.Info{Depth: 4, MultiPV: 1, Score: tactician.Cp(12), PV: []string{"d2d4"}}),
		enginetest.InfoEvent(tactician.Info{Depth: 8, MultiPV: 1, Score: tactician.Cp(30), PV: []string{"e2e4"}}),
		enginetest.BestMoveEvent("e2e4", ""),
	}}}}
	s := start(t, eng)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	events, err := s.Analyze(ctx, tactician.Limits{Depth: 8})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	<-events // first info; the replay now blocks on the second

	if err := s.Cancel(ctx); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	var best string
	for ev := range events {
		if ev.Type == tactician.EventBestMove {
			best = ev.Move
		}
	}
	if best != "d2d4" {
		t.Errorf("closing bestmove = %q, want the deepest delivered line d2d4", best)
	}
	if err := s.Err(); err != nil {
		t.Errorf("Err after cancel: %v", err)
	}
}

func TestScripted_StartErr(t *testing.T) {
	boom := errors.New("no binary")
	eng := &enginetest.Scripted{StartErr: boom}
	if err := eng.Validate(); !errors.Is(err, boom) {
		t.Errorf("Validate: got %v, want the start error", err)
	}
	if _, err := eng.Start(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Start: got %v, want the start error", err)
	}
}

func TestScriptedCompliance(t *testing.T) {
	enginetest.RunSessionTests(t, func(t *testing.T) tactician.Session {
		t.Helper()
		return start(t, &enginetest.Scripted{Scripts: []enginetest.Script{okScript("e2e4", 8)}})
	})
}
