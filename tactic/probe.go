package tactic

import (
	"context"
	"fmt"

	"github.com/notnil/chess"

	"github.com/dlevan/tactician"
)

// DefaultMaxPlies bounds how far Probe follows the principal line when
// the caller does not say.
const DefaultMaxPlies = 16

// Probe analyzes root and then walks the engine's principal line,
// re-analyzing after each move, until the position is terminal, the
// engine reports no move, or maxPlies positions past the root have been
// analyzed (non-positive maxPlies means DefaultMaxPlies). The returned
// slice is shaped for [Find]: element k holds the analysis of the
// position after the first k principal moves.
//
// The session's position is left at the last analyzed node. Analysis
// errors abort the walk; the reports gathered so far are returned
// alongside the error so partial chains remain usable.
func Probe(ctx context.Context, s tactician.Session, root *chess.Position, limits tactician.Limits, maxPlies int) ([]tactician.Report, error) {
	if root == nil {
		return nil, fmt.Errorf("tactic: probe of nil position")
	}
	if maxPlies <= 0 {
		maxPlies = DefaultMaxPlies
	}

	pos := root
	var plies []tactician.Report
	for len(plies) <= maxPlies {
		if pos.Status() != chess.NoMethod {
			break
		}
		if err := s.SetPosition(ctx, pos); err != nil {
			return plies, err
		}
		rep, err := tactician.Collect(ctx, s, limits)
		if err != nil {
			return plies, err
		}
		plies = append(plies, *rep)

		move := rep.BestMove
		if move == "" {
			if best, ok := rep.Best(); ok && len(best.PV) > 0 {
				move = best.PV[0]
			}
		}
		if move == "" {
			break
		}
		next, err := tactician.ApplyUCI(pos, move)
		if err != nil {
			return plies, fmt.Errorf("tactic: engine move %q from %s: %w", move, pos.String(), err)
		}
		pos = next
	}
	return plies, nil
}
