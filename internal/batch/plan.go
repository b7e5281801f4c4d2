package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"mediaforge/internal/command"
	"mediaforge/internal/config"
	"mediaforge/internal/fileutil"
	"mediaforge/internal/logging"
	"mediaforge/internal/profile"
	"mediaforge/internal/selection"
)

// ErrOutputExists is returned by Plan under the fail policy when an output
// path is already taken.
var ErrOutputExists = errors.New("output already exists")

// ErrNoInputs reports an empty request.
var ErrNoInputs = errors.New("no input files")

// Action is what a run does with a planned item.
type Action string

const (
	ActionConvert   Action = "convert"
	ActionOverwrite Action = "overwrite"
	ActionSkip      Action = "skip"
)

// Request describes one batch.
type Request struct {
	// Category of the profile. Empty resolves per file: the category holding
	// the profile name, or the probed media type when both do.
	Category   profile.Category
	Profile    string
	Files      []string
	OutputDir  string
	OnExisting string
}

// Item is one planned conversion.
type Item struct {
	Input    string
	Output   string
	Category profile.Category
	Profile  string
	Action   Action
	Args     []string
	Duration time.Duration
	// Reason explains a skip.
	Reason string
}

// Plan is the ordered set of items for a run.
type Plan struct {
	Profile string
	Items   []Item
}

// Pending counts the items that will invoke the engine.
func (p *Plan) Pending() int {
	n := 0
	for _, item := range p.Items {
		if item.Action != ActionSkip {
			n++
		}
	}
	return n
}

// Plan resolves outputs and arguments for every input without touching the
// engine.
func (c *Converter) Plan(ctx context.Context, req Request) (*Plan, error) {
	if len(req.Files) == 0 {
		return nil, ErrNoInputs
	}
	if strings.TrimSpace(req.Profile) == "" {
		return nil, errors.New("profile name required")
	}
	if req.OutputDir == "" {
		return nil, errors.New("output directory required")
	}
	policy := req.OnExisting
	if policy == "" {
		policy = config.OnExistingRename
	}
	switch policy {
	case config.OnExistingRename, config.OnExistingSkip, config.OnExistingOverwrite, config.OnExistingFail:
	default:
		return nil, fmt.Errorf("unknown collision policy %q", policy)
	}
	if req.Category != "" {
		category, err := profile.ParseCategory(string(req.Category))
		if err != nil {
			return nil, err
		}
		req.Category = category
		if _, err := c.profiles.Get(req.Category, req.Profile); err != nil {
			return nil, err
		}
	}

	plan := &Plan{Profile: req.Profile}
	reserved := make(map[string]struct{}, len(req.Files))
	for _, input := range req.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item, err := c.planItem(ctx, req, policy, input, reserved)
		if err != nil {
			return nil, err
		}
		if item.Action != ActionSkip {
			reserved[item.Output] = struct{}{}
		}
		plan.Items = append(plan.Items, item)
	}
	return plan, nil
}

func (c *Converter) planItem(ctx context.Context, req Request, policy, input string, reserved map[string]struct{}) (Item, error) {
	abs, err := filepath.Abs(input)
	if err != nil {
		return Item{}, fmt.Errorf("resolve %s: %w", input, err)
	}
	item := Item{Input: abs, Profile: req.Profile, Action: ActionConvert}

	probedVideo, probedKnown, duration := c.inspect(ctx, abs)

	category, err := c.resolveCategory(req, abs, probedVideo, probedKnown)
	if err != nil {
		return Item{}, err
	}
	item.Category = category

	p, err := c.profiles.Get(category, req.Profile)
	if err != nil {
		return Item{}, err
	}
	item.Duration = outputDuration(duration, p.Speed(category))
	outDir, err := config.ExpandPath(req.OutputDir)
	if err != nil {
		return Item{}, fmt.Errorf("resolve output directory: %w", err)
	}
	target := fileutil.OutputPath(outDir, abs, command.OutputExtension(p))

	claimed := func(path string) bool {
		_, ok := reserved[path]
		return ok
	}
	taken := target == abs || claimed(target)
	if !taken {
		if taken, err = fileutil.Exists(target); err != nil {
			return Item{}, err
		}
	}
	if taken {
		switch {
		case target == abs || claimed(target):
			// Never write over the input or an output claimed earlier in the plan.
			target, err = fileutil.UniqueOutputPath(target, claimed)
		case policy == config.OnExistingSkip:
			item.Action = ActionSkip
			item.Reason = "output exists"
		case policy == config.OnExistingFail:
			return Item{}, fmt.Errorf("%w: %s", ErrOutputExists, target)
		case policy == config.OnExistingOverwrite:
			item.Action = ActionOverwrite
		default:
			target, err = fileutil.UniqueOutputPath(target, claimed)
		}
		if err != nil {
			return Item{}, err
		}
	}
	item.Output = target

	if item.Action == ActionSkip {
		return item, nil
	}
	args, err := command.Args(category, p, abs, target)
	if err != nil {
		return Item{}, fmt.Errorf("build arguments for %s: %w", filepath.Base(abs), err)
	}
	item.Args = args
	return item, nil
}

// outputDuration is the running time ffmpeg reports as out_time once the
// speed filters have rescaled the source.
func outputDuration(source time.Duration, speed profile.Setting) time.Duration {
	factor, err := command.ParseSpeed(speed)
	if source <= 0 || err != nil {
		return source
	}
	return time.Duration(float64(source) / factor)
}

// inspect probes input when a prober is configured. Probe failures leave the
// media type unknown and progress indeterminate.
func (c *Converter) inspect(ctx context.Context, input string) (hasVideo, known bool, duration time.Duration) {
	if c.prober == nil {
		return false, false, 0
	}
	probed, err := c.prober.Inspect(ctx, input)
	if err != nil {
		c.logger.Debug("probe failed; continuing without metadata",
			logging.String(logging.FieldInput, input),
			logging.Error(err),
		)
		return false, false, 0
	}
	seconds := probed.MediaDuration()
	return probed.HasVideo(), true, time.Duration(seconds * float64(time.Second))
}

func (c *Converter) resolveCategory(req Request, input string, hasVideo, known bool) (profile.Category, error) {
	if req.Category != "" {
		return req.Category, nil
	}
	var holders []profile.Category
	for _, category := range profile.Categories() {
		if _, err := c.profiles.Get(category, req.Profile); err == nil {
			holders = append(holders, category)
		}
	}
	switch len(holders) {
	case 0:
		return "", fmt.Errorf("%w: %s", profile.ErrNotFound, req.Profile)
	case 1:
		return holders[0], nil
	}
	if known {
		if hasVideo {
			return profile.CategoryVideo, nil
		}
		return profile.CategoryAudio, nil
	}
	if category, ok := selection.CategoryFor(input); ok {
		return category, nil
	}
	return "", fmt.Errorf("cannot determine category for %s; pass one explicitly", filepath.Base(input))
}
