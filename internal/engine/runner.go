package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"mediaforge/internal/logging"
)

const stderrTailLines = 20

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error
}

// Option configures the runner.
type Option func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// WithLogger attaches a logger for sampled progress output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runner invokes ffmpeg.
type Runner struct {
	binary  string
	timeout time.Duration
	exec    Executor
	logger  *slog.Logger
}

// New constructs a runner for the ffmpeg binary. A zero timeout disables the
// per-job deadline.
func New(binary string, timeout time.Duration, opts ...Option) (*Runner, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	r := &Runner{
		binary:  binary,
		timeout: timeout,
		exec:    commandExecutor{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "engine")
	return r, nil
}

// Job is one conversion.
type Job struct {
	Input  string
	Output string
	// Args is the builder output: "-i <input> ... <output>".
	Args []string
	// Expected output running time, after speed changes; zero leaves
	// progress indeterminate.
	Duration time.Duration
}

// Error carries the ffmpeg failure together with the last stderr lines.
type Error struct {
	Err    error
	Stderr []string
}

func (e *Error) Error() string {
	if len(e.Stderr) == 0 {
		return fmt.Sprintf("ffmpeg: %v", e.Err)
	}
	return fmt.Sprintf("ffmpeg: %v: %s", e.Err, e.Stderr[len(e.Stderr)-1])
}

func (e *Error) Unwrap() error { return e.Err }

// CommandLine returns the full argument list the runner passes to ffmpeg.
func (r *Runner) CommandLine(job Job) []string {
	args := make([]string, 0, len(job.Args)+4)
	args = append(args, "-y", "-progress", "pipe:1", "-nostats")
	return append(args, job.Args...)
}

// Binary returns the ffmpeg executable the runner invokes.
func (r *Runner) Binary() string { return r.binary }

// Run executes the job, forwarding progress snapshots to onProgress.
func (r *Runner) Run(ctx context.Context, job Job, onProgress func(Progress)) error {
	if len(job.Args) == 0 {
		return errors.New("empty ffmpeg argument list")
	}
	if job.Output == "" {
		job.Output = job.Args[len(job.Args)-1]
	}

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	logger := logging.WithContext(ctx, r.logger)
	sampler := logging.NewProgressSampler(10)
	parser := newProgressParser(job.Input, job.Duration)
	tail := newLineTail(stderrTailLines)

	onStdout := func(line string) {
		snapshot, ok := parser.feed(line)
		if !ok {
			return
		}
		if onProgress != nil {
			onProgress(snapshot)
		}
		if sampler.ShouldLog(snapshot.Percent, job.Input) {
			logger.Debug("conversion progress",
				logging.Float64("percent", snapshot.Percent),
				logging.Duration("out_time", snapshot.OutTime),
				logging.String("speed", snapshot.Speed),
			)
		}
	}

	err := r.exec.Run(runCtx, r.binary, r.CommandLine(job), onStdout, tail.add)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", r.timeout, err)
		}
		return &Error{Err: err, Stderr: tail.lines()}
	}

	info, statErr := os.Stat(job.Output)
	if statErr != nil {
		return &Error{Err: fmt.Errorf("output missing: %w", statErr), Stderr: tail.lines()}
	}
	if info.Size() == 0 {
		return &Error{Err: fmt.Errorf("output %s is empty", job.Output), Stderr: tail.lines()}
	}
	return nil
}

// lineTail keeps the last n lines written to it.
type lineTail struct {
	mu    sync.Mutex
	n     int
	items []string
}

func newLineTail(n int) *lineTail { return &lineTail{n: n} }

func (t *lineTail) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, line)
	if len(t.items) > t.n {
		t.items = t.items[len(t.items)-t.n:]
	}
}

func (t *lineTail) lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.items...)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if forward != nil {
				forward(scanner.Text())
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout, onStdout)
	go scan(stderr, onStderr)
	wg.Wait()

	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
