package tactic_test

import (
	"context"
	"testing"
	"time"

	"github.com/dlevan/tactician"
	"github.com/dlevan/tactician/enginetest"
	"github.com/dlevan/tactician/tactic"
)

func probeLimits() tactician.Limits {
	return tactician.Limits{Depth: 10, MultiPV: 2}
}

func TestProbe_WalksPrincipalLine(t *testing.T) {
	eng := &enginetest.Scripted{Scripts: []enginetest.Script{
		{Events: []tactician.Event{
			enginetest.InfoEvent(info(10, 1, tactician.Cp(31), "e2e4", "e7e5")),
			enginetest.BestMoveEvent("e2e4", "e7e5"),
		}},
		{Events: []tactician.Event{
			enginetest.InfoEvent(info(10, 1, tactician.Cp(-28), "e7e5", "g1f3")),
			enginetest.BestMoveEvent("e7e5", ""),
		}},
		{Events: []tactician.Event{
			enginetest.InfoEvent(info(10, 1, tactician.Cp(30), "g1f3", "b8c6")),
			enginetest.BestMoveEvent("g1f3", ""),
		}},
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := eng.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close(ctx)

	plies, err := tactic.Probe(ctx, s, tactician.StartingPosition(), probeLimits(), 2)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if len(plies) != 3 {
		t.Fatalf("got %d reports, want 3", len(plies))
	}
	for i, want := range []string{"e2e4", "e7e5", "g1f3"} {
		if plies[i].BestMove != want {
			t.Errorf("plies[%d].BestMove = %q, want %q", i, plies[i].BestMove, want)
		}
	}

	// The session is left on the last analyzed node.
	want, err := tactician.ApplyUCI(tactician.StartingPosition(), "e2e4", "e7e5")
	if err != nil {
		t.Fatalf("ApplyUCI: %v", err)
	}
	if got := s.Position().String(); got != want.String() {
		t.Errorf("session position = %q, want %q", got, want.String())
	}
}

func TestProbe_StopsAtMate(t *testing.T) {
	// After 1.Rg7 Kb8 2.Rh8# the position is terminal; the walk must
	// stop without asking the engine to analyze a mated position.
	root := tactician.MustParseFEN("k7/8/8/8/8/8/6R1/6KR w - - 0 1")
	eng := &enginetest.Scripted{Scripts: []enginetest.Script{
		{Events: []tactician.Event{
			enginetest.InfoEvent(info(12, 1, tactician.MateIn(2), "g2g7", "a8b8", "h1h8")),
			enginetest.BestMoveEvent("g2g7", ""),
		}},
		{Events: []tactician.Event{
			enginetest.InfoEvent(info(12, 1, tactician.MateIn(-1), "a8b8", "h1h8")),
			enginetest.BestMoveEvent("a8b8", ""),
		}},
		{Events: []tactician.Event{
			enginetest.InfoEvent(info(12, 1, tactician.MateIn(1), "h1h8")),
			enginetest.BestMoveEvent("h1h8", ""),
		}},
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := eng.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close(ctx)

	plies, err := tactic.Probe(ctx, s, root, probeLimits(), 10)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if len(plies) != 3 {
		t.Fatalf("got %d reports, want 3 (walk must stop at mate)", len(plies))
	}

	cands := tactic.Find(root, plies, tactic.Config{})
	if len(cands) != 1 || cands[0].Kind != tactic.KindMate {
		t.Fatalf("Find over probed chain = %+v, want one mate", cands)
	}
}

func TestProbe_NoMoveEndsWalk(t *testing.T) {
	eng := &enginetest.Scripted{Scripts: []enginetest.Script{
		{Events: []tactician.Event{
			enginetest.InfoEvent(tactician.Info{Depth: 10, Score: tactician.Cp(0)}),
			enginetest.BestMoveEvent("(none)", ""),
		}},
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := eng.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close(ctx)

	plies, err := tactic.Probe(ctx, s, tactician.StartingPosition(), probeLimits(), 10)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if len(plies) != 1 {
		t.Errorf("got %d reports, want 1", len(plies))
	}
}
