package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mediaforge/internal/history"
	"mediaforge/internal/preflight"
	"mediaforge/internal/profile"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration, dependency and library status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config: %s\n", ctx.configSource())
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			var lines []string

			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			lines = append(lines, dependencyLines(preflight.CheckSystemDeps(cfg), colorize)...)

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Directories", colorize)...)
			for _, result := range preflight.CheckDirectories(cfg) {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Library", colorize)...)
			store, err := ctx.openProfiles()
			if err != nil {
				lines = append(lines, renderStatusLine("Profiles", statusError, err.Error(), colorize))
			} else {
				counts := store.Count()
				parts := make([]string, 0, len(counts))
				for _, c := range profile.Categories() {
					parts = append(parts, fmt.Sprintf("%d %s", counts[c], c))
				}
				lines = append(lines, renderStatusLine("Profiles", statusInfo, strings.Join(parts, ", "), colorize))
			}
			sel, err := ctx.openSelection()
			if err != nil {
				lines = append(lines, renderStatusLine("Selection", statusError, err.Error(), colorize))
			} else {
				lines = append(lines, renderStatusLine("Selection", statusInfo, strconv.Itoa(sel.Len())+" file(s)", colorize))
			}
			err = ctx.withHistory(func(h *history.Store) error {
				stats, err := h.Stats(cmd.Context())
				if err != nil {
					return err
				}
				parts := make([]string, 0, len(stats))
				for _, status := range history.Statuses() {
					if stats[status] > 0 {
						parts = append(parts, fmt.Sprintf("%d %s", stats[status], status))
					}
				}
				message := "empty"
				if len(parts) > 0 {
					message = strings.Join(parts, ", ")
				}
				lines = append(lines, renderStatusLine("History", statusInfo, message, colorize))
				return nil
			})
			if err != nil {
				lines = append(lines, renderStatusLine("History", statusWarn, err.Error(), colorize))
			}

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}
}

