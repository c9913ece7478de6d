// Package tactic classifies engine analysis into forcing tactical lines.
//
// The extractor is pure: it consumes MultiPV evaluations gathered along
// a line of play ([Find]) and reports candidate forcing sequences
// ordered by the evaluation swing they produce. [Probe] drives a live
// [tactician.Session] along the engine's principal line to gather that
// input.
package tactic

import (
	"sort"

	"github.com/notnil/chess"

	"github.com/dlevan/tactician"
)

// Kind classifies what a tactical line achieves.
type Kind int

const (
	// KindMaterial is a line winning decisive material with no named
	// motif behind it.
	KindMaterial Kind = iota

	// KindMate is a forced checkmate.
	KindMate

	// KindFork is a line opening with a move that attacks two or more
	// profitable targets at once.
	KindFork

	// KindAbsolutePin is a line opening with a move that pins a
	// defender piece against its king.
	KindAbsolutePin

	// KindRelativePin is a line opening with a move that pins a
	// defender piece against a more valuable piece.
	KindRelativePin
)

func (k Kind) String() string {
	switch k {
	case KindMate:
		return "mate"
	case KindFork:
		return "fork"
	case KindAbsolutePin:
		return "absolute pin"
	case KindRelativePin:
		return "relative pin"
	}
	return "material"
}

// Config holds the extraction thresholds. The zero value selects the
// documented defaults.
type Config struct {
	// SwingThreshold is the minimum centipawn gain over the forced
	// sequence for a line to qualify as a tactic. Default 300 —
	// roughly a minor piece, enough to indicate material or mating
	// gain. Forced mates always qualify.
	SwingThreshold int

	// ForcedMargin is the minimum gap in centipawns between the best
	// and second-best reply for the defender's move to count as
	// forced. Default 150. A defender with a single legal move is
	// forced regardless.
	ForcedMargin int

	// MinDepth is the minimum search depth a candidate line must have
	// been evaluated at. Default 8.
	MinDepth int
}

func (c Config) withDefaults() Config {
	if c.SwingThreshold <= 0 {
		c.SwingThreshold = 300
	}
	if c.ForcedMargin <= 0 {
		c.ForcedMargin = 150
	}
	if c.MinDepth <= 0 {
		c.MinDepth = 8
	}
	return c
}

// Candidate is one forcing line found from the root position. It is a
// derived value scoped to the extraction call that produced it; swings
// are only comparable between candidates of the same call.
type Candidate struct {
	// Line is the move sequence in UCI notation, starting with the
	// attacker's move from the root position.
	Line []string

	// Swing is the centipawn gain the sequence produces, measured from
	// the position after the first move to the position after the full
	// forced sequence. Mate lines carry MateValue so they order above
	// any material gain.
	Swing int

	// Score is the engine's root evaluation of the line.
	Score tactician.Score

	// Depth is the search depth the root evaluation was reported at.
	Depth int

	// Kind classifies the line.
	Kind Kind
}

// Find inspects evaluations gathered along a line of play and returns
// the forcing tactical candidates from root, ordered by descending
// swing; ties break toward shorter lines, then lexically by first move.
//
// plies[0] must be the MultiPV analysis of root; plies[k] the analysis
// of the position after the first k moves of the engine's principal
// line (plies[k].Best().PV[0] being the move leading to plies[k+1]),
// exactly what [Probe] produces. Candidate lines that leave the
// analyzed path are assessed only as far as the data allows: a defender
// ply with no aligned analysis and more than one legal move cannot be
// shown forced, and the line is cut there.
func Find(root *chess.Position, plies []tactician.Report, cfg Config) []Candidate {
	cfg = cfg.withDefaults()
	if root == nil || len(plies) == 0 {
		return nil
	}

	var out []Candidate
	for _, info := range plies[0].Lines {
		if c, ok := evaluate(root, plies, info, cfg); ok {
			out = append(out, c)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Swing != out[j].Swing {
			return out[i].Swing > out[j].Swing
		}
		if len(out[i].Line) != len(out[j].Line) {
			return len(out[i].Line) < len(out[j].Line)
		}
		return out[i].Line[0] < out[j].Line[0]
	})
	return out
}

// evaluate judges one candidate principal variation.
func evaluate(root *chess.Position, plies []tactician.Report, info tactician.Info, cfg Config) (Candidate, bool) {
	if info.Depth < cfg.MinDepth || len(info.PV) == 0 {
		return Candidate{}, false
	}
	attacker := root.Turn()

	// Apply the PV, collecting the position at every ply. A move the
	// root position cannot legally reach means corrupt input; drop the
	// candidate rather than guessing.
	positions := make([]*chess.Position, 1, len(info.PV)+1)
	positions[0] = root
	for _, mv := range info.PV {
		next, err := tactician.ApplyUCI(positions[len(positions)-1], mv)
		if err != nil {
			return Candidate{}, false
		}
		positions = append(positions, next)
		if next.Status() != chess.NoMethod {
			break // checkmate or stalemate ends the line
		}
	}
	line := info.PV[:len(positions)-1]

	// aligned is the number of leading PV moves that coincide with the
	// analyzed path; plies[j] describes positions[j] only for j within
	// that prefix.
	aligned := 0
	for i := 0; i < len(line) && i < len(plies); i++ {
		best, ok := plies[i].Best()
		if !ok || len(best.PV) == 0 || best.PV[0] != line[i] {
			break
		}
		aligned++
	}

	// Cut the line at the first defender ply that cannot be shown
	// forced.
	n := len(line)
	for j := 1; j < n; j++ {
		if positions[j].Turn() == attacker {
			continue
		}
		if !forcedAt(positions[j], plies, j, aligned, line, cfg) {
			n = j
			break
		}
	}
	if n == 0 {
		return Candidate{}, false
	}
	line = line[:n]
	final := positions[n]
	truncated := n < len(info.PV)

	v1 := povCentipawns(info.Score, true)
	if n >= 1 && aligned >= 1 && len(plies) > 1 {
		if best, ok := plies[1].Best(); ok {
			v1 = povCentipawns(best.Score, positions[1].Turn() == attacker)
		}
	}

	vN, isMate := finalValue(final, plies, n, aligned, info, attacker, truncated)

	c := Candidate{
		Line:  line,
		Score: info.Score,
		Depth: info.Depth,
		Kind:  KindMaterial,
	}
	if isMate {
		c.Kind = KindMate
		c.Swing = tactician.MateValue
		return c, true
	}
	c.Swing = vN - v1
	if c.Swing < cfg.SwingThreshold {
		return Candidate{}, false
	}
	c.Kind = classify(positions[0], positions[1], line[0])
	return c, true
}

// forcedAt reports whether the defender's reply at ply j is practically
// unavoidable: either it is the only legal move, or aligned analysis of
// that position shows the played reply best by at least ForcedMargin.
// With neither — fewer than two reported lines, or no aligned data —
// forcedness cannot be assessed and the answer is no.
func forcedAt(pos *chess.Position, plies []tactician.Report, j, aligned int, line []string, cfg Config) bool {
	if len(pos.ValidMoves()) == 1 {
		return true
	}
	if j > aligned || j >= len(plies) {
		return false
	}
	rep := plies[j]
	best, ok := rep.Line(1)
	if !ok || len(best.PV) == 0 || best.PV[0] != line[j] {
		return false
	}
	second, ok := rep.Line(2)
	if !ok {
		return false
	}
	return best.Score.Centipawns()-second.Score.Centipawns() >= cfg.ForcedMargin
}

// finalValue computes the attacker-perspective value of the line's end,
// and whether the line delivers (or forces) mate for the attacker.
// Terminal nodes score at the conventional extremes: checkmate at
// ±MateValue, stalemate at zero.
func finalValue(final *chess.Position, plies []tactician.Report, n, aligned int, info tactician.Info, attacker chess.Color, truncated bool) (int, bool) {
	switch final.Status() {
	case chess.Checkmate:
		if final.Turn() != attacker {
			return tactician.MateValue, true
		}
		return -tactician.MateValue, false
	case chess.Stalemate:
		return 0, false
	}

	if n <= aligned && n < len(plies) {
		if best, ok := plies[n].Best(); ok {
			moverIsAttacker := final.Turn() == attacker
			v := povCentipawns(best.Score, moverIsAttacker)
			mate := best.Score.IsMate() && (best.Score.Mate > 0) == moverIsAttacker
			return v, mate
		}
	}

	// No data for the line's end; fall back to the root-reported value
	// of the whole variation.
	v := povCentipawns(info.Score, true)
	mate := !truncated && info.Score.Mate > 0
	return v, mate
}

// povCentipawns collapses a score onto the attacker's perspective.
func povCentipawns(s tactician.Score, moverIsAttacker bool) int {
	v := s.Centipawns()
	if !moverIsAttacker {
		return -v
	}
	return v
}
