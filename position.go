package tactician

import (
	"fmt"

	"github.com/notnil/chess"
)

// ParseFEN parses a FEN string into a fully-specified legal position.
func ParseFEN(fen string) (*chess.Position, error) {
	pos := &chess.Position{}
	if err := pos.UnmarshalText([]byte(fen)); err != nil {
		return nil, fmt.Errorf("tactician: parse fen %q: %w", fen, err)
	}
	return pos, nil
}

// MustParseFEN is ParseFEN for known-good positions; it panics on error.
// Intended for tests and package-level variables.
func MustParseFEN(fen string) *chess.Position {
	pos, err := ParseFEN(fen)
	if err != nil {
		panic(err)
	}
	return pos
}

// StartingPosition returns the standard chess starting position.
func StartingPosition() *chess.Position {
	return chess.NewGame().Position()
}

// ApplyUCI plays a sequence of UCI coordinate moves ("e2e4", "e7e8q")
// from pos and returns the resulting position. Each move must be legal
// in the position it is applied to.
func ApplyUCI(pos *chess.Position, moves ...string) (*chess.Position, error) {
	for _, mv := range moves {
		m, err := chess.UCINotation{}.Decode(pos, mv)
		if err != nil {
			return nil, fmt.Errorf("tactician: move %q: %w", mv, err)
		}
		pos = pos.Update(m)
	}
	return pos, nil
}
