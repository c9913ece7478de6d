package uci

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/notnil/chess"

	"github.com/dlevan/tactician"
)

// ErrSkipLine signals that a line carries no protocol content (blank or
// whitespace-only) and should be dropped without producing an event.
var ErrSkipLine = errors.New("uci: skip line")

// startposFEN is the FEN of the standard starting position; the codec
// emits the shorter "position startpos" form for it.
const startposFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// EncodeSetPosition emits the command that makes the engine's internal
// board match pos exactly. Always the full position string, never an
// incremental move list, so engine and session state cannot drift.
func EncodeSetPosition(pos *chess.Position) string {
	fen := pos.String()
	if fen == startposFEN {
		return "position startpos"
	}
	return "position fen " + fen
}

// DecodePositionCommand is the inverse of EncodeSetPosition: it parses a
// "position" command line back into the position it denotes, including
// the optional trailing "moves" list. Used by the round-trip tests and
// by scripted engine doubles.
func DecodePositionCommand(line string) (*chess.Position, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "position" {
		return nil, fmt.Errorf("uci: not a position command: %q", line)
	}
	args := fields[1:]

	movesIdx := -1
	for i, f := range args {
		if f == "moves" {
			movesIdx = i
			break
		}
	}

	var fen string
	switch args[0] {
	case "startpos":
		fen = startposFEN
	case "fen":
		end := len(args)
		if movesIdx >= 0 {
			end = movesIdx
		}
		fen = strings.Join(args[1:end], " ")
	default:
		return nil, fmt.Errorf("uci: unknown position form: %q", args[0])
	}

	pos, err := tactician.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	if movesIdx >= 0 && movesIdx+1 < len(args) {
		pos, err = tactician.ApplyUCI(pos, args[movesIdx+1:]...)
		if err != nil {
			return nil, err
		}
	}
	return pos, nil
}

// EncodeGo emits the search command for the given limits. MultiPV is a
// persistent engine option, not a go argument; sessions send it via
// EncodeSetOption before the search.
func EncodeGo(limits tactician.Limits) string {
	var b strings.Builder
	b.WriteString("go")
	if limits.Depth > 0 {
		b.WriteString(" depth ")
		b.WriteString(strconv.Itoa(limits.Depth))
	}
	if limits.MoveTime > 0 {
		b.WriteString(" movetime ")
		b.WriteString(strconv.FormatInt(limits.MoveTime.Milliseconds(), 10))
	}
	if limits.Depth <= 0 && limits.MoveTime <= 0 {
		// Unbounded searches hang headless hosts; sessions validate
		// limits before encoding, so this is a defensive floor.
		b.WriteString(" depth 1")
	}
	return b.String()
}

// EncodeSetOption emits a "setoption" command.
func EncodeSetOption(name string, value any) string {
	return fmt.Sprintf("setoption name %s value %v", name, value)
}

// DecodeLine parses one line of engine output into an event.
//
// Decoding is a pure function of the line text and is tolerant: unknown
// tokens within an info line are skipped, and a structurally malformed
// line yields an EventUnrecognized rather than an error. Only blank
// lines produce ErrSkipLine.
func DecodeLine(line string) (tactician.Event, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return tactician.Event{}, ErrSkipLine
	}

	fields := strings.Fields(trimmed)
	switch fields[0] {
	case "info":
		return decodeInfo(trimmed, fields[1:]), nil
	case "bestmove":
		return decodeBestMove(trimmed, fields[1:]), nil
	}
	return unrecognized(trimmed), nil
}

func unrecognized(raw string) tactician.Event {
	return tactician.Event{Type: tactician.EventUnrecognized, Raw: raw}
}

// decodeInfo walks the token stream of an "info" line. Tokens it does
// not know are skipped; an info line without a score (engine banter like
// "info string ...") is unrecognized rather than a partial Info.
func decodeInfo(raw string, fields []string) tactician.Event {
	var info tactician.Info
	scored := false

	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			if v, ok := intAt(fields, i+1); ok {
				info.Depth = v
				i++
			}
		case "seldepth":
			if v, ok := intAt(fields, i+1); ok {
				info.SelDepth = v
				i++
			}
		case "multipv":
			if v, ok := intAt(fields, i+1); ok {
				info.MultiPV = v
				i++
			}
		case "score":
			if v, kind, ok := scoreAt(fields, i+1); ok {
				switch kind {
				case "cp":
					info.Score = tactician.Cp(v)
				case "mate":
					info.Score = tactician.MateIn(v)
				}
				scored = true
				i += 2
			}
		case "nodes":
			if v, ok := int64At(fields, i+1); ok {
				info.Nodes = v
				i++
			}
		case "nps":
			if v, ok := int64At(fields, i+1); ok {
				info.NPS = v
				i++
			}
		case "time":
			if v, ok := int64At(fields, i+1); ok {
				info.TimeMS = v
				i++
			}
		case "pv":
			// pv consumes the remainder of the line.
			info.PV = append([]string(nil), fields[i+1:]...)
			i = len(fields)
		}
	}

	if !scored {
		return unrecognized(raw)
	}
	return tactician.Event{Type: tactician.EventInfo, Info: &info, Raw: raw}
}

// decodeBestMove parses "bestmove <move> [ponder <move>]".
// Engines report "bestmove (none)" for terminal positions; that maps to
// an empty Move.
func decodeBestMove(raw string, fields []string) tactician.Event {
	if len(fields) == 0 {
		return unrecognized(raw)
	}
	ev := tactician.Event{Type: tactician.EventBestMove, Raw: raw}
	if fields[0] != "(none)" {
		ev.Move = fields[0]
	}
	if len(fields) >= 3 && fields[1] == "ponder" {
		ev.Ponder = fields[2]
	}
	return ev
}

func intAt(fields []string, i int) (int, bool) {
	if i >= len(fields) {
		return 0, false
	}
	v, err := strconv.Atoi(fields[i])
	if err != nil {
		return 0, false
	}
	return v, true
}

func int64At(fields []string, i int) (int64, bool) {
	if i >= len(fields) {
		return 0, false
	}
	v, err := strconv.ParseInt(fields[i], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// scoreAt parses the "cp N" or "mate N" pair following a score token.
func scoreAt(fields []string, i int) (int, string, bool) {
	if i+1 >= len(fields) {
		return 0, "", false
	}
	kind := fields[i]
	if kind != "cp" && kind != "mate" {
		return 0, "", false
	}
	v, err := strconv.Atoi(fields[i+1])
	if err != nil {
		return 0, "", false
	}
	return v, kind, true
}
