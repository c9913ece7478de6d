// Package filter provides composable channel middleware for filtering
// analysis event streams. Consumers wrap the channel returned by
// Session.Analyze with these functions to select the event granularity
// they need.
package filter

import (
	"context"

	"github.com/dlevan/tactician"
)

// ByType returns a channel that only passes events of the given types.
// Spawns a goroutine that exits when ctx is cancelled or ch is closed.
// The returned channel is closed when the goroutine exits.
func ByType(ctx context.Context, ch <-chan tactician.Event, types ...tactician.EventType) <-chan tactician.Event {
	allowed := make(map[tactician.EventType]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}
	return pipe(ctx, ch, func(ev tactician.Event) bool {
		_, ok := allowed[ev.Type]
		return ok
	})
}

// InfoOnly returns a channel that passes only evaluation updates,
// dropping the terminating best move and anything unrecognized. Spawns
// a goroutine that exits when ctx is cancelled or ch is closed.
func InfoOnly(ctx context.Context, ch <-chan tactician.Event) <-chan tactician.Event {
	return pipe(ctx, ch, func(ev tactician.Event) bool {
		return ev.Type == tactician.EventInfo && ev.Info != nil
	})
}

// Line returns a channel that passes the best move plus only the
// evaluation updates for the n-th MultiPV line (1-based; engines omit
// the index in single-line mode, so n == 1 also accepts an absent
// index). Spawns a goroutine that exits when ctx is cancelled or ch is
// closed.
func Line(ctx context.Context, ch <-chan tactician.Event, n int) <-chan tactician.Event {
	return pipe(ctx, ch, func(ev tactician.Event) bool {
		if ev.Type != tactician.EventInfo {
			return ev.Type == tactician.EventBestMove
		}
		if ev.Info == nil {
			return false
		}
		line := ev.Info.MultiPV
		if line == 0 {
			line = 1
		}
		return line == n
	})
}

// MinDepth returns a channel that passes the best move plus only
// evaluation updates at or beyond depth d, suppressing the shallow
// early iterations. Spawns a goroutine that exits when ctx is cancelled
// or ch is closed.
func MinDepth(ctx context.Context, ch <-chan tactician.Event, d int) <-chan tactician.Event {
	return pipe(ctx, ch, func(ev tactician.Event) bool {
		if ev.Type != tactician.EventInfo {
			return ev.Type == tactician.EventBestMove
		}
		return ev.Info != nil && ev.Info.Depth >= d
	})
}

// pipe spawns a goroutine that reads from ch, passes events matching
// the predicate to the returned channel, and closes it when ch closes
// or ctx is cancelled. Callers must either drain the returned channel
// or cancel ctx to avoid goroutine leaks. Events accepted by the
// predicate may be silently dropped if ctx is cancelled mid-send.
func pipe(ctx context.Context, ch <-chan tactician.Event, accept func(tactician.Event) bool) <-chan tactician.Event {
	out := make(chan tactician.Event)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if accept(ev) && !trySend(ctx, out, ev) {
					return
				}
			}
		}
	}()
	return out
}

// trySend sends ev on out, returning true on success.
// Returns false if ctx is cancelled before the send completes.
func trySend(ctx context.Context, out chan<- tactician.Event, ev tactician.Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
