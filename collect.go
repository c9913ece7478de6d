package tactician

import "context"

// Collect runs one analyze call to completion and folds its event stream
// into a Report, keeping the deepest Info per MultiPV index. It returns
// when the stream's EventBestMove arrives or the channel closes.
//
// If the channel closes without a best move (engine crash, session
// closed), Collect returns the session's terminal error from Err.
// Context cancellation stops collection and forwards the cancellation
// to the session via Cancel.
func Collect(ctx context.Context, s Session, limits Limits) (*Report, error) {
	return CollectFunc(ctx, s, limits, nil)
}

// CollectFunc is Collect with a per-event observer. handler is called
// for every event in emission order, including the terminating
// EventBestMove; a non-nil handler error cancels the search and is
// returned. A nil handler is allowed.
func CollectFunc(ctx context.Context, s Session, limits Limits, handler func(Event) error) (*Report, error) {
	events, err := s.Analyze(ctx, limits)
	if err != nil {
		return nil, err
	}

	var report Report
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				if err := s.Err(); err != nil {
					return nil, err
				}
				return &report, nil
			}
			if handler != nil {
				if err := handler(ev); err != nil {
					_ = s.Cancel(ctx) // Best-effort: search may already be over.
					return nil, err
				}
			}
			switch ev.Type {
			case EventInfo:
				report.Absorb(*ev.Info)
			case EventBestMove:
				report.BestMove = ev.Move
				report.Ponder = ev.Ponder
				return &report, nil
			}

		case <-ctx.Done():
			_ = s.Cancel(context.WithoutCancel(ctx))
			return nil, ctx.Err()
		}
	}
}
