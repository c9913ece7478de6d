package tactic

import "github.com/notnil/chess"

// pieceValue is the conventional material scale in centipawns, with the
// king priced high enough to dominate every exchange comparison.
var pieceValue = map[chess.PieceType]int{
	chess.Pawn:   100,
	chess.Knight: 300,
	chess.Bishop: 300,
	chess.Rook:   500,
	chess.Queen:  900,
	chess.King:   20000,
}

// board is an occupancy map, as returned by chess.Board.SquareMap.
type board map[chess.Square]chess.Piece

// classify names the motif a candidate's opening move creates, judged
// from the position it leaves behind. Geometry that was already on the
// board before the move does not count, so a piece sitting in an old
// pin never re-labels a line.
func classify(before, after *chess.Position, move string) Kind {
	mv, err := chess.UCINotation{}.Decode(before, move)
	if err != nil {
		return KindMaterial
	}
	if len(forkTargets(after, mv.S2())) > 0 {
		return KindFork
	}
	if len(relativePins(before, after)) > 0 {
		return KindRelativePin
	}
	if len(absolutePins(before, after)) > 0 {
		return KindAbsolutePin
	}
	return KindMaterial
}

// forkTargets returns the squares the piece that just landed on forkSq
// attacks profitably: the defender king, pieces worth more than the
// forker, and undefended pieces. A forker standing en prise, or one
// with fewer than two such targets, is no fork; a lone king target
// counts only when no defender reply both answers the check and covers
// every remaining threat.
func forkTargets(pos *chess.Position, forkSq chess.Square) []chess.Square {
	b := board(pos.Board().SquareMap())
	defender := pos.Turn()
	forker, ok := b[forkSq]
	if !ok || forker.Color() == defender {
		return nil
	}
	if len(attackersOf(b, defender, forkSq)) > 0 {
		return nil
	}

	var attacked []chess.Square
	for _, sq := range attacksFrom(b, forkSq) {
		if p, ok := b[sq]; ok && p.Color() == defender {
			attacked = append(attacked, sq)
		}
	}
	if len(attacked) < 2 {
		return nil
	}

	var forked []chess.Square
	kingForked := false
	for _, sq := range attacked {
		target := b[sq]
		if target.Type() == chess.King {
			kingForked = true
			forked = append(forked, sq)
			continue
		}
		if pieceValue[target.Type()] > pieceValue[forker.Type()] {
			forked = append(forked, sq)
		} else if len(attackersOf(b, defender, sq)) == 0 {
			forked = append(forked, sq)
		}
	}
	if len(forked) < 2 {
		if !kingForked || !kingForkHolds(pos, forkSq, attacked) {
			return nil
		}
	}
	return forked
}

// kingForkHolds settles a fork whose only sure target is the king: it
// holds when every defender reply leaves at least one attacked piece
// hanging or attacked by something cheaper, and none captures the
// forker.
func kingForkHolds(pos *chess.Position, forkSq chess.Square, attacked []chess.Square) bool {
	for _, reply := range pos.ValidMoves() {
		if reply.S2() == forkSq {
			return false
		}
		next := pos.Update(reply)
		nb := board(next.Board().SquareMap())
		side := next.Turn() // the forker, back on the move

		good := false
		for _, sq := range attacked {
			if sq == reply.S1() {
				sq = reply.S2()
			}
			target, ok := nb[sq]
			if !ok || target.Color() == side {
				continue
			}
			atk := attackersOf(nb, side, sq)
			if len(atk) == 0 {
				continue
			}
			if len(attackersOf(nb, target.Color(), sq)) == 0 {
				good = true
				break
			}
			for _, a := range atk {
				if pieceValue[nb[a].Type()] < pieceValue[target.Type()] {
					good = true
					break
				}
			}
			if good {
				break
			}
		}
		if !good {
			return false
		}
	}
	return true
}

// absolutePins lists the defender pieces the last move newly pinned to
// their king, skipping pins the defender can break by capturing the
// pinning piece with the king or with something cheaper.
func absolutePins(before, after *chess.Position) []chess.Square {
	defender := after.Turn()
	ab := board(after.Board().SquareMap())
	bb := board(before.Board().SquareMap())
	king, ok := squareOf(ab, defender, chess.King)
	if !ok {
		return nil
	}
	prevKing, ok := squareOf(bb, defender, chess.King)
	if !ok {
		prevKing = king
	}

	var pins []chess.Square
	for sq, p := range ab {
		if p.Color() != defender || p.Type() == chess.King || p.Type() == chess.Pawn {
			continue
		}
		sniper, ok := pinnedBy(ab, defender, sq, king)
		if !ok {
			continue
		}
		if _, was := pinnedBy(bb, defender, sq, prevKing); was {
			continue
		}
		if breakable(after, ab, sniper) {
			continue
		}
		pins = append(pins, sq)
	}
	return pins
}

// relativePins lists defender pieces the last move newly pinned against
// a piece worth at least as much. Pins the defender can shrug off are
// skipped: a defended target pinned by an equal or pricier slider, or a
// pinning piece that can be captured cheaply.
func relativePins(before, after *chess.Position) []chess.Square {
	defender := after.Turn()
	ab := board(after.Board().SquareMap())
	bb := board(before.Board().SquareMap())

	var pieces []chess.Square
	for sq, p := range ab {
		if p.Color() == defender && p.Type() != chess.King && p.Type() != chess.Pawn {
			pieces = append(pieces, sq)
		}
	}

	var pins []chess.Square
	for _, valued := range pieces {
		for _, pinSq := range pieces {
			if pinSq == valued || pieceValue[ab[pinSq].Type()] > pieceValue[ab[valued].Type()] {
				continue
			}
			sniper, ok := pinnedBy(ab, defender, pinSq, valued)
			if !ok {
				continue
			}
			if _, was := pinnedBy(bb, defender, pinSq, valued); was {
				continue
			}
			if len(attackersOf(ab, defender, valued)) > 0 && pieceValue[ab[sniper].Type()] >= pieceValue[ab[valued].Type()] {
				continue
			}
			if breakable(after, ab, sniper) {
				continue
			}
			pins = append(pins, pinSq)
		}
	}
	return pins
}

// pinnedBy returns the enemy slider skewering pinned against anchor:
// pinned must be the only piece between the two on a shared rank, file,
// or diagonal, with a slider at the far end able to move along that
// ray.
func pinnedBy(b board, defender chess.Color, pinned, anchor chess.Square) (chess.Square, bool) {
	fd := int(pinned.File()) - int(anchor.File())
	rd := int(pinned.Rank()) - int(anchor.Rank())
	if fd == 0 && rd == 0 {
		return 0, false
	}
	if fd != 0 && rd != 0 && abs(fd) != abs(rd) {
		return 0, false
	}
	df, dr := sign(fd), sign(rd)
	orth := fd == 0 || rd == 0

	sq, ok := step(anchor, df, dr)
	for ok && sq != pinned {
		if _, occ := b[sq]; occ {
			return 0, false
		}
		sq, ok = step(sq, df, dr)
	}
	if !ok {
		return 0, false
	}
	for {
		sq, ok = step(sq, df, dr)
		if !ok {
			return 0, false
		}
		p, occ := b[sq]
		if !occ {
			continue
		}
		if p.Color() == defender {
			return 0, false
		}
		switch p.Type() {
		case chess.Queen:
			return sq, true
		case chess.Rook:
			if orth {
				return sq, true
			}
		case chess.Bishop:
			if !orth {
				return sq, true
			}
		}
		return 0, false
	}
}

// breakable reports whether the side to move can capture the pinning
// piece with its king or with something cheaper than it.
func breakable(pos *chess.Position, b board, sniper chess.Square) bool {
	sp := b[sniper]
	for _, mv := range pos.ValidMoves() {
		if mv.S2() != sniper {
			continue
		}
		taker := b[mv.S1()]
		if taker.Type() == chess.King || pieceValue[taker.Type()] < pieceValue[sp.Type()] {
			return true
		}
	}
	return false
}

var (
	knightSteps = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	orthoDirs   = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagDirs    = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// attacksFrom lists the squares the piece on sq attacks, with sliding
// rays stopping at (and including) the first occupied square.
func attacksFrom(b board, sq chess.Square) []chess.Square {
	p, ok := b[sq]
	if !ok {
		return nil
	}
	var out []chess.Square
	leap := func(steps [8][2]int) {
		for _, d := range steps {
			if t, ok := step(sq, d[0], d[1]); ok {
				out = append(out, t)
			}
		}
	}
	slide := func(dirs [4][2]int) {
		for _, d := range dirs {
			t, ok := step(sq, d[0], d[1])
			for ok {
				out = append(out, t)
				if _, occ := b[t]; occ {
					break
				}
				t, ok = step(t, d[0], d[1])
			}
		}
	}
	switch p.Type() {
	case chess.Pawn:
		dr := 1
		if p.Color() == chess.Black {
			dr = -1
		}
		for _, df := range [2]int{-1, 1} {
			if t, ok := step(sq, df, dr); ok {
				out = append(out, t)
			}
		}
	case chess.Knight:
		leap(knightSteps)
	case chess.King:
		leap(kingSteps)
	case chess.Bishop:
		slide(diagDirs)
	case chess.Rook:
		slide(orthoDirs)
	case chess.Queen:
		slide(orthoDirs)
		slide(diagDirs)
	}
	return out
}

// attackersOf lists the squares of color's pieces attacking target.
func attackersOf(b board, color chess.Color, target chess.Square) []chess.Square {
	var out []chess.Square
	for sq, p := range b {
		if p.Color() != color || sq == target {
			continue
		}
		for _, t := range attacksFrom(b, sq) {
			if t == target {
				out = append(out, sq)
				break
			}
		}
	}
	return out
}

func squareOf(b board, color chess.Color, pt chess.PieceType) (chess.Square, bool) {
	for sq, p := range b {
		if p.Color() == color && p.Type() == pt {
			return sq, true
		}
	}
	return 0, false
}

func step(sq chess.Square, df, dr int) (chess.Square, bool) {
	f := int(sq.File()) + df
	r := int(sq.Rank()) + dr
	if f < 0 || f > 7 || r < 0 || r > 7 {
		return 0, false
	}
	return chess.NewSquare(chess.File(f), chess.Rank(r)), true
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
