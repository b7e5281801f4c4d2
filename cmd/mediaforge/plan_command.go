package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediaforge/internal/batch"
	"mediaforge/internal/engine"
)

type plannedCommand struct {
	Input    string   `json:"input"`
	Output   string   `json:"output"`
	Category string   `json:"category"`
	Action   string   `json:"action"`
	Reason   string   `json:"reason,omitempty"`
	Command  []string `json:"command,omitempty"`
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var flags batchFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "plan [file...]",
		Short: "Show the ffmpeg commands a conversion would run",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, _, err := flags.request(ctx, args)
			if err != nil {
				return err
			}
			conv, runner, err := flags.converter(ctx)
			if err != nil {
				return err
			}
			plan, err := conv.Plan(cmd.Context(), req)
			if err != nil {
				return err
			}

			planned := make([]plannedCommand, 0, len(plan.Items))
			for _, item := range plan.Items {
				entry := plannedCommand{
					Input:    item.Input,
					Output:   item.Output,
					Category: string(item.Category),
					Action:   string(item.Action),
					Reason:   item.Reason,
				}
				if item.Action != batch.ActionSkip {
					entry.Command = append([]string{runner.Binary()}, runner.CommandLine(engine.Job{Input: item.Input, Output: item.Output, Args: item.Args})...)
				}
				planned = append(planned, entry)
			}
			if jsonOutput {
				return writeJSON(cmd, planned)
			}

			out := cmd.OutOrStdout()
			for _, entry := range planned {
				fmt.Fprintf(out, "%s -> %s [%s]\n", entry.Input, entry.Output, entry.Action)
				if entry.Reason != "" {
					fmt.Fprintf(out, "  %s\n", entry.Reason)
				}
				if len(entry.Command) > 0 {
					fmt.Fprintf(out, "  %s\n", shellJoin(entry.Command))
				}
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// shellJoin quotes arguments containing shell metacharacters for display.
func shellJoin(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		if arg == "" || strings.ContainsAny(arg, " \t\n'\"\\$`*?[]{}()<>|&;#~") {
			quoted[i] = "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
			continue
		}
		quoted[i] = arg
	}
	return strings.Join(quoted, " ")
}
