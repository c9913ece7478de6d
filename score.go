package tactician

import "strconv"

// MateValue is the centipawn magnitude assigned to a delivered checkmate.
// A forced mate in N plies maps to MateValue-N, so shorter mates compare
// higher than longer ones and any mate compares higher than any material
// evaluation.
const MateValue = 100000

// Score is an engine evaluation of a position, from the perspective of
// the side to move: positive favors the mover, negative the opponent.
//
// A Score is either a centipawn value or a forced-mate marker, never
// both. The zero value is a dead-even centipawn score.
type Score struct {
	// CP is the evaluation in centipawns. Meaningful only when Mate == 0.
	CP int

	// Mate is the number of full moves until forced checkmate.
	// Positive: the side to move mates. Negative: the side to move is
	// mated. Zero means no forced mate was reported.
	Mate int
}

// Cp returns a centipawn Score.
func Cp(cp int) Score { return Score{CP: cp} }

// MateIn returns a forced-mate Score. n must be nonzero.
func MateIn(n int) Score { return Score{Mate: n} }

// IsMate reports whether s is a forced-mate marker.
func (s Score) IsMate() bool { return s.Mate != 0 }

// Centipawns collapses s onto the centipawn scale, mapping mate markers
// to ±(MateValue - plies) so scores remain totally ordered. Mate
// distances are reported in full moves; two plies per move.
func (s Score) Centipawns() int {
	if s.Mate > 0 {
		return MateValue - 2*s.Mate
	}
	if s.Mate < 0 {
		return -(MateValue + 2*s.Mate)
	}
	return s.CP
}

// Negate flips s to the opponent's perspective.
func (s Score) Negate() Score {
	if s.Mate != 0 {
		return Score{Mate: -s.Mate}
	}
	return Score{CP: -s.CP}
}

// String renders s the way chess GUIs do: "+1.25", "-0.50", "#3", "#-5".
func (s Score) String() string {
	if s.Mate != 0 {
		return "#" + strconv.Itoa(s.Mate)
	}
	cp := s.CP
	sign := "+"
	if cp < 0 {
		sign = "-"
		cp = -cp
	}
	whole := strconv.Itoa(cp / 100)
	frac := cp % 100
	if frac < 10 {
		return sign + whole + ".0" + strconv.Itoa(frac)
	}
	return sign + whole + "." + strconv.Itoa(frac)
}
