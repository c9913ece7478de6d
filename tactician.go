// Package tactician provides composable interfaces for driving external
// chess analysis engines and extracting tactical lines from their output.
//
// tactician abstracts over UCI-speaking engine subprocesses (Stockfish and
// friends) with a uniform [Engine]/[Session] model: an Engine launches and
// validates engine processes, a Session holds one position at a time and
// streams scored evaluations for it.
//
// # Core Types
//
//   - [Engine] — starts and validates engine sessions
//   - [Session] — a single conversation with one engine process
//   - [Event] — one parsed line of engine output
//   - [Info] — a scored candidate line at a search depth
//   - [Score] — centipawn or forced-mate evaluation
//   - [Report] — the settled result of one analyze call
//
// # Vocabulary
//
// The root package defines the shared vocabulary for all transports.
// Concrete transports translate it into their wire format: engine/uci
// speaks the UCI text protocol over a subprocess, enginetest provides a
// scripted in-memory double for tests.
//
// Positions and moves reuse github.com/notnil/chess: a position is a
// *chess.Position, a move is its UCI coordinate string ("e2e4"), which
// is only meaningful relative to the position it was reported for.
//
// # Quick Start
//
//	eng := uci.New("/usr/bin/stockfish", uci.WithThreads(4))
//	sess, err := eng.Start(ctx)
//	if err != nil { log.Fatal(err) }
//	defer sess.Close(ctx)
//
//	sess.SetPosition(ctx, tactician.StartingPosition())
//	report, err := tactician.Collect(ctx, sess, tactician.Limits{Depth: 12, MultiPV: 3})
package tactician
