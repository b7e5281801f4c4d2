package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mediaforge/internal/batch"
	"mediaforge/internal/config"
	"mediaforge/internal/engine"
	"mediaforge/internal/history"
	"mediaforge/internal/preflight"
	"mediaforge/internal/profile"
)

// batchFlags are shared by plan and convert.
type batchFlags struct {
	profile    string
	category   string
	outputDir  string
	onExisting string
	noProbe    bool
}

func (f *batchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.profile, "profile", "p", "", "Profile name (required)")
	cmd.Flags().StringVar(&f.category, "category", "", "Profile category (video or audio); detected per file when omitted")
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", "", "Output directory (defaults to paths.output_dir)")
	cmd.Flags().StringVar(&f.onExisting, "on-existing", "", "Collision policy: rename, skip, overwrite or fail")
	cmd.Flags().BoolVar(&f.noProbe, "no-probe", false, "Skip ffprobe (no category detection or progress percentages)")
	_ = cmd.MarkFlagRequired("profile")
}

// request resolves the batch inputs. Files come from args, or from the
// selection when args is empty; fromSelection reports which.
func (f *batchFlags) request(ctx *commandContext, args []string) (batch.Request, bool, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return batch.Request{}, false, err
	}
	req := batch.Request{
		Profile:    strings.TrimSpace(f.profile),
		OutputDir:  cfg.Paths.OutputDir,
		OnExisting: cfg.Convert.OnExisting,
		Files:      args,
	}
	if f.category != "" {
		category, err := profile.ParseCategory(f.category)
		if err != nil {
			return batch.Request{}, false, err
		}
		req.Category = category
	}
	if f.outputDir != "" {
		req.OutputDir = f.outputDir
	}
	if f.onExisting != "" {
		req.OnExisting = strings.ToLower(strings.TrimSpace(f.onExisting))
	}
	fromSelection := false
	if len(req.Files) == 0 {
		sel, err := ctx.openSelection()
		if err != nil {
			return batch.Request{}, false, err
		}
		req.Files = sel.Files()
		fromSelection = true
	}
	if len(req.Files) == 0 {
		return batch.Request{}, false, errors.New("no files selected; pass files or add them with `mediaforge select add`")
	}
	return req, fromSelection, nil
}

func (f *batchFlags) converter(ctx *commandContext, extra ...batch.Option) (*batch.Converter, *engine.Runner, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	store, err := ctx.openProfiles()
	if err != nil {
		return nil, nil, err
	}
	runner, err := engine.New(cfg.FFmpegBinary(), cfg.EngineTimeout(), engine.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	opts := []batch.Option{batch.WithLogger(logger)}
	if !f.noProbe {
		opts = append(opts, batch.WithProber(ctx.prober()))
	}
	opts = append(opts, extra...)
	return batch.New(store, runner, opts...), runner, nil
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var flags batchFlags

	cmd := &cobra.Command{
		Use:   "convert [file...]",
		Short: "Convert files with a profile",
		Long: "Convert the given files, or the current selection when no files are\n" +
			"given, with one stored profile. Failures are reported per file and do\n" +
			"not stop the batch.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			req, fromSelection, err := flags.request(ctx, args)
			if err != nil {
				return err
			}
			if err := checkReadiness(cfg, req.OutputDir); err != nil {
				return err
			}

			var opts []batch.Option
			if f, ok := cmd.ErrOrStderr().(*os.File); ok && isTerminal(f) {
				opts = append(opts, batch.WithProgressOutput(f))
			}

			var summary batch.Summary
			var runErr error
			err = ctx.withHistory(func(journal *history.Store) error {
				conv, _, err := flags.converter(ctx, append(opts, batch.WithJournal(journal))...)
				if err != nil {
					return err
				}
				summary, runErr = conv.Convert(cmd.Context(), req)
				return nil
			})
			if err != nil {
				return err
			}
			if runErr != nil && len(summary.Results) == 0 {
				return runErr
			}

			printSummary(cmd, summary)

			if runErr == nil && fromSelection && cfg.Convert.ClearSelection {
				sel, err := ctx.openSelection()
				if err != nil {
					return err
				}
				if err := sel.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Selection cleared")
			}
			if runErr != nil {
				return runErr
			}
			if failed := summary.Count(history.StatusFailed); failed > 0 {
				return fmt.Errorf("%d of %d conversion(s) failed", failed, len(summary.Results))
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// checkReadiness runs the preflight checks against the batch's output
// directory and fails when any required check does not pass.
func checkReadiness(cfg *config.Config, outputDir string) error {
	dir, err := config.ExpandPath(outputDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	target := *cfg
	target.Paths.OutputDir = dir
	if failed := preflight.Failed(preflight.RunAll(&target)); len(failed) > 0 {
		parts := make([]string, 0, len(failed))
		for _, f := range failed {
			parts = append(parts, fmt.Sprintf("%s: %s", f.Name, f.Detail))
		}
		return fmt.Errorf("preflight failed: %s", strings.Join(parts, "; "))
	}
	return nil
}

func printSummary(cmd *cobra.Command, summary batch.Summary) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(summary.Results))
	for _, r := range summary.Results {
		detail := ""
		switch {
		case r.Err != nil:
			detail = r.Err.Error()
		case r.Item.Reason != "":
			detail = r.Item.Reason
		}
		rows = append(rows, []string{
			string(r.Status),
			filepath.Base(r.Item.Input),
			r.Item.Output,
			r.Elapsed.Round(100 * time.Millisecond).String(),
			detail,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Status", "Input", "Output", "Elapsed", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))
	fmt.Fprintf(out, "Run %s: %d succeeded, %d failed, %d skipped, %d cancelled in %s\n",
		summary.RunID,
		summary.Count(history.StatusSucceeded),
		summary.Count(history.StatusFailed),
		summary.Count(history.StatusSkipped),
		summary.Count(history.StatusCancelled),
		summary.Elapsed.Round(time.Second),
	)
}
