package tactic

import "github.com/dlevan/tactician"

// Tactic is a playback cursor over a candidate line, for drilling the
// sequence move by move. The attacker's moves are the ones to find; the
// defender's replies advance automatically.
type Tactic struct {
	// Line is the full move sequence in UCI notation.
	Line []string

	// Score is the engine's root evaluation of the line.
	Score tactician.Score

	// Kind classifies the line.
	Kind Kind

	index int
}

// New wraps a candidate in a fresh cursor positioned before the first
// move.
func New(c Candidate) *Tactic {
	return &Tactic{Line: c.Line, Score: c.Score, Kind: c.Kind}
}

// NextMove returns the move expected at the cursor and advances past
// it. The second return is false once the line is exhausted.
func (t *Tactic) NextMove() (string, bool) {
	if t.index >= len(t.Line) {
		return "", false
	}
	mv := t.Line[t.index]
	t.index++
	return mv, true
}

// HintMove returns the move expected at the cursor without advancing.
func (t *Tactic) HintMove() (string, bool) {
	if t.index >= len(t.Line) {
		return "", false
	}
	return t.Line[t.index], true
}

// MovesLeft counts the attacker moves still to be played, counting from
// the cursor. Defender replies in between do not count.
func (t *Tactic) MovesLeft() int {
	rest := len(t.Line) - t.index
	if rest <= 0 {
		return 0
	}
	return (rest + 1) / 2
}

// Done reports whether the whole line has been played out.
func (t *Tactic) Done() bool { return t.index >= len(t.Line) }

// Undo steps the cursor back one full move pair, or to the start when
// fewer than two plies have been played.
func (t *Tactic) Undo() {
	t.index -= 2
	if t.index < 0 {
		t.index = 0
	}
}
