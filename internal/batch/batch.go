package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"mediaforge/internal/engine"
	"mediaforge/internal/history"
	"mediaforge/internal/logging"
	"mediaforge/internal/media/ffprobe"
	"mediaforge/internal/profile"
)

// Profiles resolves stored profiles.
type Profiles interface {
	Get(category profile.Category, name string) (profile.Profile, error)
}

// Runner executes one engine job.
type Runner interface {
	Run(ctx context.Context, job engine.Job, onProgress func(engine.Progress)) error
}

// Journal records conversion outcomes.
type Journal interface {
	Record(ctx context.Context, entry history.Entry) (int64, error)
}

// Option configures a Converter.
type Option func(*Converter)

// WithProber enables category detection and progress percentages.
func WithProber(prober ffprobe.Prober) Option {
	return func(c *Converter) { c.prober = prober }
}

// WithJournal records every outcome.
func WithJournal(journal Journal) Option {
	return func(c *Converter) { c.journal = journal }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithProgressOutput renders a progress bar per file to w.
func WithProgressOutput(w io.Writer) Option {
	return func(c *Converter) { c.progressOut = w }
}

// Converter plans and runs batches.
type Converter struct {
	profiles    Profiles
	runner      Runner
	prober      ffprobe.Prober
	journal     Journal
	logger      *slog.Logger
	progressOut io.Writer
	now         func() time.Time
}

// New constructs a Converter.
func New(profiles Profiles, runner Runner, opts ...Option) *Converter {
	c := &Converter{
		profiles: profiles,
		runner:   runner,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "batch")
	return c
}

// Result is the outcome of one item.
type Result struct {
	Item    Item
	Status  history.Status
	Err     error
	Elapsed time.Duration
}

// Summary aggregates a run.
type Summary struct {
	RunID   string
	Results []Result
	Elapsed time.Duration
}

// Count returns the number of results with status.
func (s Summary) Count(status history.Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// Failed reports whether any item failed.
func (s Summary) Failed() bool { return s.Count(history.StatusFailed) > 0 }

// Convert plans and runs req.
func (c *Converter) Convert(ctx context.Context, req Request) (Summary, error) {
	plan, err := c.Plan(ctx, req)
	if err != nil {
		return Summary{}, err
	}
	return c.Run(ctx, plan)
}

// Run executes a plan. Per-item failures are reported in the summary; the
// returned error is non-nil only when ctx is cancelled.
func (c *Converter) Run(ctx context.Context, plan *Plan) (Summary, error) {
	if c.runner == nil {
		return Summary{}, errors.New("batch runner not configured")
	}
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, c.logger)
	started := c.now()

	logger.Info("batch started",
		logging.String(logging.FieldProfile, plan.Profile),
		logging.Int("items", len(plan.Items)),
		logging.Int("pending", plan.Pending()),
	)

	summary := Summary{RunID: runID, Results: make([]Result, 0, len(plan.Items))}
	for i, item := range plan.Items {
		if ctx.Err() != nil {
			for _, rest := range plan.Items[i:] {
				result := Result{Item: rest, Status: history.StatusCancelled, Err: ctx.Err()}
				c.record(context.WithoutCancel(ctx), result, c.now())
				summary.Results = append(summary.Results, result)
			}
			break
		}
		result := c.runItem(ctx, i+1, len(plan.Items), item)
		summary.Results = append(summary.Results, result)
	}
	summary.Elapsed = c.now().Sub(started)

	logger.Info("batch finished",
		logging.Int("succeeded", summary.Count(history.StatusSucceeded)),
		logging.Int("failed", summary.Count(history.StatusFailed)),
		logging.Int("skipped", summary.Count(history.StatusSkipped)),
		logging.Int("cancelled", summary.Count(history.StatusCancelled)),
		logging.Duration("elapsed", summary.Elapsed),
	)
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (c *Converter) runItem(ctx context.Context, index, total int, item Item) Result {
	ctx = logging.WithInput(ctx, item.Input)
	logger := logging.WithContext(ctx, c.logger).With(
		logging.String(logging.FieldCategory, string(item.Category)),
		logging.String(logging.FieldProfile, item.Profile),
	)
	started := c.now()

	if item.Action == ActionSkip {
		logger.Info("conversion skipped",
			logging.String("output", item.Output),
			logging.String("reason", item.Reason),
		)
		result := Result{Item: item, Status: history.StatusSkipped}
		c.record(ctx, result, started)
		return result
	}

	err := os.MkdirAll(filepath.Dir(item.Output), 0o755)
	if err == nil {
		bar := newProgressBar(c.progressOut, fmt.Sprintf("[%d/%d] %s", index, total, filepath.Base(item.Input)), item.Duration)
		err = c.runner.Run(ctx, engine.Job{
			Input:    item.Input,
			Output:   item.Output,
			Args:     item.Args,
			Duration: item.Duration,
		}, bar.update)
		bar.finish(err == nil)
	} else {
		err = fmt.Errorf("create output directory: %w", err)
	}

	result := Result{Item: item, Elapsed: c.now().Sub(started)}
	switch {
	case err == nil:
		result.Status = history.StatusSucceeded
		logger.Info("conversion finished",
			logging.String("output", item.Output),
			logging.Duration("elapsed", result.Elapsed),
		)
	case ctx.Err() != nil:
		result.Status = history.StatusCancelled
		result.Err = ctx.Err()
		logger.Info("conversion cancelled")
		ctx = context.WithoutCancel(ctx)
	default:
		result.Status = history.StatusFailed
		result.Err = err
		logging.WarnWithContext(logger, "conversion failed", "conversion_failed",
			logging.String("output", item.Output),
			logging.Error(err),
			logging.String(logging.FieldImpact, "file was not converted; batch continues"),
			logging.String(logging.FieldErrorHint, "run with --log-level debug to see the ffmpeg command"),
		)
	}
	c.record(ctx, result, started)
	return result
}

func (c *Converter) record(ctx context.Context, result Result, started time.Time) {
	if c.journal == nil {
		return
	}
	runID, _ := logging.RunIDFromContext(ctx)
	entry := history.Entry{
		RunID:      runID,
		Input:      result.Item.Input,
		Output:     result.Item.Output,
		Category:   string(result.Item.Category),
		Profile:    result.Item.Profile,
		Status:     result.Status,
		StartedAt:  started,
		FinishedAt: c.now(),
	}
	if result.Status == history.StatusSkipped {
		entry.Output = ""
		entry.Error = result.Item.Reason
	}
	if result.Err != nil {
		entry.Error = result.Err.Error()
	}
	if _, err := c.journal.Record(ctx, entry); err != nil {
		logging.WarnWithContext(c.logger, "history entry not recorded", "history_write_failed",
			logging.String(logging.FieldInput, result.Item.Input),
			logging.Error(err),
			logging.String(logging.FieldImpact, "conversion history is incomplete"),
		)
	}
}
