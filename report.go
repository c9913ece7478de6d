package tactician

// Report is the settled result of one analyze call: the deepest Info
// observed per MultiPV index plus the engine's closing best move.
type Report struct {
	// Lines holds one Info per MultiPV index, best-first: Lines[0] is
	// the engine's top choice. An index the engine never reported holds
	// an absent marker with a negative MultiPV; Line treats it as
	// missing.
	Lines []Info

	// BestMove is the move the engine settled on, UCI notation.
	// Empty when the search ended without a bestmove line.
	BestMove string

	// Ponder is the engine's expected reply, when reported.
	Ponder string
}

// Best returns the top candidate line, if any was reported.
func (r *Report) Best() (Info, bool) {
	return r.Line(1)
}

// Line returns the Info for the given 1-based MultiPV index. Indexes
// the engine skipped report as absent.
func (r *Report) Line(n int) (Info, bool) {
	if n < 1 || n > len(r.Lines) {
		return Info{}, false
	}
	if r.Lines[n-1].MultiPV < 0 {
		return Info{}, false
	}
	return r.Lines[n-1], true
}

// Absorb folds one Info into the report, keeping the deeper of the
// stored and incoming evaluations for its MultiPV index. Infos with a
// MultiPV index of zero are treated as index 1. A gap below the highest
// reported index is held as absent markers, never as synthetic lines.
func (r *Report) Absorb(info Info) {
	idx := info.MultiPV
	if idx < 1 {
		idx = 1
	}
	for len(r.Lines) < idx {
		r.Lines = append(r.Lines, Info{MultiPV: -1})
	}
	if prev := r.Lines[idx-1]; prev.MultiPV < 0 || prev.Depth <= info.Depth {
		r.Lines[idx-1] = info
	}
}
