package uci

import (
	"time"

	"github.com/rs/zerolog"
)

// Default engine configuration values.
const (
	defaultLaunchTimeout  = 10 * time.Second
	defaultReadyTimeout   = 5 * time.Second
	defaultGracePeriod    = 2 * time.Second
	defaultAnalyzeTimeout = 5 * time.Minute
	defaultOutputBuffer   = 64
	defaultScannerBuffer  = 1 << 20 // 1 MB
	defaultStderrTail     = 16
)

// Options holds resolved construction-time configuration for a UCI engine.
// Use New with Option functions to customize these values.
type Options struct {
	// HashMB is the engine transposition table budget in megabytes.
	// Zero leaves the engine's default untouched.
	HashMB int

	// Threads is the engine's search parallelism.
	// Zero leaves the engine's default untouched.
	Threads int

	// SkillLevel caps engine strength (0–20 for Stockfish).
	// Negative means uncapped.
	SkillLevel int

	// LaunchTimeout bounds process start plus the uci/uciok handshake.
	LaunchTimeout time.Duration

	// ReadyTimeout bounds each isready/readyok exchange.
	ReadyTimeout time.Duration

	// GracePeriod is how long to wait for the engine to react to a
	// stop or quit command before force-killing the process.
	GracePeriod time.Duration

	// AnalyzeTimeout is the overall wall-clock bound on one analyze
	// call. Zero means no bound beyond the caller's context.
	AnalyzeTimeout time.Duration

	// OutputBuffer is the channel buffer size for analyze event streams.
	OutputBuffer int

	// ScannerBuffer is the maximum line size in bytes for the stdout scanner.
	ScannerBuffer int

	// StderrTail is how many trailing stderr lines to retain for
	// crash diagnostics.
	StderrTail int

	// Logger receives lifecycle events and parse warnings.
	Logger zerolog.Logger
}

// Option configures an Engine at construction time.
type Option func(*Options)

// WithHash sets the engine hash table size in megabytes.
// Values <= 0 are ignored.
func WithHash(mb int) Option {
	return func(o *Options) {
		if mb > 0 {
			o.HashMB = mb
		}
	}
}

// WithThreads sets the engine's search thread count.
// Values <= 0 are ignored.
func WithThreads(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Threads = n
		}
	}
}

// WithSkillLevel caps engine strength. Stockfish accepts 0–20.
// Negative values are ignored.
func WithSkillLevel(level int) Option {
	return func(o *Options) {
		if level >= 0 {
			o.SkillLevel = level
		}
	}
}

// WithLaunchTimeout bounds process start plus the initial handshake.
// Values <= 0 are ignored.
func WithLaunchTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.LaunchTimeout = d
		}
	}
}

// WithReadyTimeout bounds each isready/readyok exchange.
// Values <= 0 are ignored.
func WithReadyTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.ReadyTimeout = d
		}
	}
}

// WithGracePeriod sets how long stop and quit are given before SIGKILL.
// Values <= 0 are ignored.
func WithGracePeriod(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.GracePeriod = d
		}
	}
}

// WithAnalyzeTimeout sets the overall wall-clock bound per analyze call.
// Values <= 0 are ignored; use a context deadline for unbounded searches.
func WithAnalyzeTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.AnalyzeTimeout = d
		}
	}
}

// WithOutputBuffer sets the event channel buffer size.
// Values <= 0 are ignored.
func WithOutputBuffer(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.OutputBuffer = size
		}
	}
}

// WithScannerBuffer sets the maximum stdout line size in bytes.
// Values <= 0 are ignored.
func WithScannerBuffer(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.ScannerBuffer = size
		}
	}
}

// WithStderrTail sets how many trailing stderr lines are retained.
// Values <= 0 are ignored.
func WithStderrTail(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.StderrTail = n
		}
	}
}

// WithLogger routes lifecycle events and parse warnings to l.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

func resolveOptions(opts ...Option) Options {
	o := Options{
		SkillLevel:     -1,
		LaunchTimeout:  defaultLaunchTimeout,
		ReadyTimeout:   defaultReadyTimeout,
		GracePeriod:    defaultGracePeriod,
		AnalyzeTimeout: defaultAnalyzeTimeout,
		OutputBuffer:   defaultOutputBuffer,
		ScannerBuffer:  defaultScannerBuffer,
		StderrTail:     defaultStderrTail,
		Logger:         zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
