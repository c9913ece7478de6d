package tactician

// EventType identifies the kind of event parsed from engine output.
type EventType string

const (
	// EventInfo is a depth/score update for one candidate line.
	EventInfo EventType = "info"

	// EventBestMove is the move the engine settled on. Exactly one
	// EventBestMove terminates every analyze stream.
	EventBestMove EventType = "bestmove"

	// EventUnrecognized is a line the codec could not interpret.
	// Unrecognized lines are passed through for diagnosis, never
	// raised as errors.
	EventUnrecognized EventType = "unrecognized"
)

// Event is one parsed line of engine output.
type Event struct {
	// Type identifies the kind of event.
	Type EventType

	// Info holds the parsed evaluation (for EventInfo).
	Info *Info

	// Move is the selected move in UCI notation (for EventBestMove).
	Move string

	// Ponder is the engine's expected reply, when reported
	// (for EventBestMove).
	Ponder string

	// Raw is the original unparsed output line.
	Raw string
}

// Info is a scored candidate line reported by the engine during search.
//
// Within one analyze call, Infos for the same MultiPV index arrive at
// non-decreasing depth; the deepest one is authoritative. Depth and
// score are only comparable within the same search.
type Info struct {
	// Depth is the search depth in plies.
	Depth int

	// SelDepth is the selective search depth, when reported.
	SelDepth int

	// MultiPV is the 1-based candidate line index. Lines are ordered
	// best-first: MultiPV 1 is the engine's top choice.
	MultiPV int

	// Score is the evaluation from the side to move's perspective.
	Score Score

	// Nodes is the number of nodes searched, when reported.
	Nodes int64

	// NPS is nodes per second, when reported.
	NPS int64

	// TimeMS is the search time in milliseconds, when reported.
	TimeMS int64

	// PV is the principal variation in UCI notation, best-predicted
	// play for both sides from the current position.
	PV []string
}
