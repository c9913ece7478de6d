package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dlevan/tactician"
	"github.com/dlevan/tactician/engine/internal/tail"
)

// errProcExited signals that the subprocess closed its stdout.
// Callers translate it into a crash or a clean-shutdown outcome
// depending on whether the exit was requested.
var errProcExited = errors.New("uci: engine process exited")

// process owns one engine subprocess: its pipes, its stderr tail, and
// its lifecycle. Exactly one goroutine may consume lines at a time; the
// session state machine enforces that.
type process struct {
	path string
	opts Options
	log  zerolog.Logger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *tail.Ring

	// lines carries stdout line by line; closed on EOF.
	lines chan string

	// exited is closed once the subprocess has been reaped.
	exited  chan struct{}
	waitErr error // valid after exited is closed

	writeMu sync.Mutex
}

// launch starts the engine binary, wires its pipes, and performs the
// UCI handshake: uci/uciok, configuration options, isready/readyok.
// Any failure on this path returns an error wrapping
// tactician.ErrUnavailable with captured stderr appended.
func launch(ctx context.Context, path string, opts Options) (*process, error) {
	cmd := exec.Command(path)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("uci: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("uci: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("uci: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", tactician.ErrUnavailable, path, err)
	}

	p := &process{
		path:   path,
		opts:   opts,
		log:    opts.Logger,
		cmd:    cmd,
		stdin:  stdin,
		stderr: tail.NewRing(opts.StderrTail),
		lines:  make(chan string, opts.OutputBuffer),
		exited: make(chan struct{}),
	}

	var pumps sync.WaitGroup
	pumps.Add(2)
	go p.readPump(&pumps, stdout)
	go p.stderrPump(&pumps, stderr)
	go p.reap(&pumps)

	p.log.Debug().Str("binary", path).Int("pid", cmd.Process.Pid).Msg("engine started")

	if err := p.handshake(ctx); err != nil {
		_ = p.terminate(context.WithoutCancel(ctx))
		return nil, err
	}
	return p, nil
}

// handshake drives the engine to a ready state under LaunchTimeout.
func (p *process) handshake(ctx context.Context) error {
	if err := p.send("uci"); err != nil {
		return p.unavailable(err)
	}
	if err := p.awaitToken(ctx, "uciok", p.opts.LaunchTimeout); err != nil {
		return p.unavailable(err)
	}
	for _, line := range p.configLines() {
		if err := p.send(line); err != nil {
			return p.unavailable(err)
		}
	}
	if err := p.ready(ctx); err != nil {
		return p.unavailable(err)
	}
	return nil
}

// configLines renders the resolved options as setoption commands.
func (p *process) configLines() []string {
	var lines []string
	if p.opts.HashMB > 0 {
		lines = append(lines, EncodeSetOption("Hash", p.opts.HashMB))
	}
	if p.opts.Threads > 0 {
		lines = append(lines, EncodeSetOption("Threads", p.opts.Threads))
	}
	if p.opts.SkillLevel >= 0 {
		lines = append(lines, EncodeSetOption("Skill Level", p.opts.SkillLevel))
	}
	return lines
}

// ready performs one isready/readyok exchange.
func (p *process) ready(ctx context.Context) error {
	if err := p.send("isready"); err != nil {
		return err
	}
	return p.awaitToken(ctx, "readyok", p.opts.ReadyTimeout)
}

func (p *process) unavailable(err error) error {
	lines := p.stderr.Lines()
	if len(lines) > 0 {
		return fmt.Errorf("%w: %s: %w (stderr: %s)",
			tactician.ErrUnavailable, p.path, err, strings.Join(lines, " | "))
	}
	return fmt.Errorf("%w: %s: %w", tactician.ErrUnavailable, p.path, err)
}

// send writes one command line to the engine.
func (p *process) send(line string) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	p.log.Debug().Str("cmd", line).Msg("uci send")
	if _, err := io.WriteString(p.stdin, line+"\n"); err != nil {
		return fmt.Errorf("uci: write %q: %w", line, err)
	}
	return nil
}

// readLine returns the next stdout line. It fails with errProcExited
// once the engine closes stdout, tactician.ErrTimeout when timeout
// elapses first, or the context error on cancellation. timeout <= 0
// means no bound beyond ctx.
func (p *process) readLine(ctx context.Context, timeout time.Duration) (string, error) {
	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}
	select {
	case line, ok := <-p.lines:
		if !ok {
			return "", errProcExited
		}
		return line, nil
	case <-timer:
		return "", tactician.ErrTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// awaitToken discards lines until one equals token.
func (p *process) awaitToken(ctx context.Context, token string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("waiting for %q: %w", token, tactician.ErrTimeout)
		}
		line, err := p.readLine(ctx, remaining)
		if err != nil {
			if errors.Is(err, tactician.ErrTimeout) {
				return fmt.Errorf("waiting for %q: %w", token, err)
			}
			return err
		}
		if strings.TrimSpace(line) == token {
			return nil
		}
	}
}

// alive reports whether the subprocess is still running. Non-blocking.
func (p *process) alive() bool {
	select {
	case <-p.exited:
		return false
	default:
		return true
	}
}

// terminate shuts the subprocess down: a graceful quit command, a
// bounded wait, then SIGKILL. The process handle is released on every
// exit path.
func (p *process) terminate(ctx context.Context) error {
	_ = p.send("quit") // Best-effort: pipe may already be broken.
	_ = p.stdin.Close()

	// Keep the stdout pump from blocking on a full channel while the
	// engine flushes its last output.
	go func() {
		for range p.lines {
		}
	}()

	select {
	case <-p.exited:
	case <-time.After(p.opts.GracePeriod):
		p.kill()
		<-p.exited
	case <-ctx.Done():
		p.kill()
		<-p.exited
	}
	p.log.Debug().Str("binary", p.path).Msg("engine stopped")
	return nil
}

// kill force-terminates the subprocess, tolerating an already-dead one.
func (p *process) kill() {
	err := p.cmd.Process.Kill()
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.log.Warn().Err(err).Msg("kill engine")
	}
}

// crashError builds the terminal error for an unexpected engine death,
// carrying the stderr tail for diagnosis.
func (p *process) crashError() *tactician.CrashError {
	err := tactician.ErrEngineCrashed
	<-p.exited
	if p.waitErr != nil {
		err = fmt.Errorf("%w: %v", tactician.ErrEngineCrashed, p.waitErr)
	}
	return &tactician.CrashError{Stderr: p.stderr.Lines(), Err: err}
}

// readPump scans stdout into the lines channel until EOF.
func (p *process) readPump(pumps *sync.WaitGroup, stdout io.Reader) {
	defer pumps.Done()
	defer close(p.lines)

	scanner := bufio.NewScanner(stdout)
	initCap := min(4096, p.opts.ScannerBuffer)
	scanner.Buffer(make([]byte, 0, initCap), p.opts.ScannerBuffer)
	for scanner.Scan() {
		p.lines <- scanner.Text()
	}
	if err := scanner.Err(); err != nil {
		p.log.Warn().Err(err).Msg("stdout scanner")
	}
}

// stderrPump retains the tail of stderr for crash diagnostics.
func (p *process) stderrPump(pumps *sync.WaitGroup, stderr io.Reader) {
	defer pumps.Done()
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		p.stderr.Add(scanner.Text())
	}
}

// reap waits for both pumps to drain, then collects the exit status.
// Ordering matters: cmd.Wait closes the pipes, so it must not run while
// the pumps are still reading.
func (p *process) reap(pumps *sync.WaitGroup) {
	pumps.Wait()
	p.waitErr = p.cmd.Wait()
	close(p.exited)
}
