// Package enginetest provides test doubles and a compliance suite for
// tactician implementations.
//
// [Scripted] is an in-memory engine that replays canned analysis
// scripts, for testing consumers without a real binary.
// [RunSessionTests] checks any [tactician.Session] implementation
// against the session behavioral contract.
package enginetest
