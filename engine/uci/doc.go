// Package uci drives a UCI-speaking chess engine subprocess as a
// [tactician.Engine].
//
// The package splits the integration into three layers:
//
//   - the process supervisor owns the subprocess lifecycle: launch,
//     handshake, liveness, graceful quit with a bounded grace period,
//     and restart after a crash;
//   - the codec translates between positions/limits and the engine's
//     line-oriented text protocol ([EncodeSetPosition], [EncodeGo],
//     [DecodeLine]) — decoding is pure and tolerant of unknown tokens;
//   - the session is the caller-facing state machine: one current
//     position, at most one in-flight search, events streamed in engine
//     emission order.
//
// [New] builds an Engine for a binary path; [Engine.Start] returns a
// [tactician.Session]. If the subprocess dies mid-search the session
// surfaces a [tactician.CrashError] on that stream, restarts the engine
// once with the same configuration and position, and only then returns
// to idle; a failed restart leaves the session permanently broken.
//
// # Consumer Obligations
//
// Callers must either drain each analyze stream to completion or cancel
// the search, and must close the session to release the subprocess.
// Failing to do so leaks the engine process.
package uci
