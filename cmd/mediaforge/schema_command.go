package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newSchemaCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "schema [key]",
		Short: "Show the option lists profiles are validated against",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openProfiles()
			if err != nil {
				return err
			}
			sch := store.Schema()
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				options, ok := sch.Options(args[0])
				if !ok {
					return fmt.Errorf("unknown schema key %q", args[0])
				}
				if jsonOutput {
					return writeJSON(cmd, options)
				}
				for _, option := range options {
					fmt.Fprintln(out, option)
				}
				return nil
			}

			if jsonOutput {
				return writeJSON(cmd, sch)
			}
			keys := sch.Keys()
			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				options, _ := sch.Options(key)
				rows = append(rows, []string{key, strconv.Itoa(len(options)), previewOptions(options, 6)})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Key", "Options", "Values"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func previewOptions(options []string, limit int) string {
	if len(options) <= limit {
		return strings.Join(options, ", ")
	}
	return strings.Join(options[:limit], ", ") + fmt.Sprintf(", ... (+%d)", len(options)-limit)
}
