// Package pool runs batches of analysis jobs across a fixed set of
// engine sessions. Each worker owns one session for the lifetime of the
// batch, so a pool of N workers holds exactly N engine processes.
package pool

import (
	"context"
	"errors"
	"fmt"

	"github.com/notnil/chess"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dlevan/tactician"
)

// Job is one position to analyze.
type Job struct {
	// ID identifies the job in its Result. Opaque to the pool.
	ID string

	// Pos is the position to analyze. A nil Pos fails the job.
	Pos *chess.Position

	// Limits bound the search.
	Limits tactician.Limits
}

// Result pairs a job's outcome with its ID. Exactly one of Report and
// Err is meaningful.
type Result struct {
	ID     string
	Report *tactician.Report
	Err    error
}

// Config tunes a batch run. The zero value runs two workers with
// logging disabled.
type Config struct {
	// Workers is the number of concurrent sessions. Non-positive
	// selects 2.
	Workers int

	// Logger receives per-job progress at debug level and failures at
	// warn level.
	Logger zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 2
	}
	return c
}

// Run analyzes every job and sends one Result per job on the returned
// channel, in completion order. The channel closes when all jobs are
// done or the batch aborts.
//
// Per-job analysis failures are reported in the job's Result and do not
// stop the batch; the batch aborts only when a session cannot be
// started at all or ctx is cancelled, and Wait on the returned group
// surfaces that error. Callers must drain the channel.
func Run(ctx context.Context, eng tactician.Engine, cfg Config, jobs []Job) (<-chan Result, *errgroup.Group) {
	cfg = cfg.withDefaults()
	log := cfg.Logger

	feed := make(chan Job)
	out := make(chan Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Workers; i++ {
		worker := i
		g.Go(func() error {
			s, err := eng.Start(ctx)
			if err != nil {
				return fmt.Errorf("pool: worker %d: %w", worker, err)
			}
			defer func() { s.Close(context.WithoutCancel(ctx)) }()

			for job := range feed {
				res := Result{ID: job.ID}
				res.Report, res.Err = analyze(ctx, s, job)
				if res.Err != nil {
					log.Warn().Int("worker", worker).Str("job", job.ID).Err(res.Err).Msg("job failed")
				} else {
					log.Debug().Int("worker", worker).Str("job", job.ID).Str("bestmove", res.Report.BestMove).Msg("job done")
				}
				select {
				case out <- res:
				case <-ctx.Done():
					return ctx.Err()
				}
				if errors.Is(res.Err, tactician.ErrSessionBroken) {
					// Sessions recover from engine crashes on their
					// own; broken is terminal, so replace the session
					// to keep the worker alive.
					s.Close(context.WithoutCancel(ctx))
					s, err = eng.Start(ctx)
					if err != nil {
						return fmt.Errorf("pool: worker %d restart: %w", worker, err)
					}
				}
			}
			return nil
		})
	}

	go func() {
		defer close(feed)
		for _, job := range jobs {
			select {
			case feed <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		g.Wait()
		close(out)
	}()

	return out, g
}

func analyze(ctx context.Context, s tactician.Session, job Job) (*tactician.Report, error) {
	if job.Pos == nil {
		return nil, fmt.Errorf("pool: job %q has no position", job.ID)
	}
	if err := s.SetPosition(ctx, job.Pos); err != nil {
		return nil, err
	}
	return tactician.Collect(ctx, s, job.Limits)
}
