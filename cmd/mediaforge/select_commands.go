package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"mediaforge/internal/selection"
)

func newSelectCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Manage the list of files queued for conversion",
	}
	cmd.AddCommand(newSelectAddCommand(ctx))
	cmd.AddCommand(newSelectDirCommand(ctx))
	cmd.AddCommand(newSelectListCommand(ctx))
	cmd.AddCommand(newSelectRemoveCommand(ctx))
	cmd.AddCommand(newSelectClearCommand(ctx))
	return cmd
}

func newSelectAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>...",
		Short: "Add media files to the selection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openSelection()
			if err != nil {
				return err
			}
			added, err := store.Add(args...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d file(s); %d selected\n", added, store.Len())
			return nil
		},
	}
}

func newSelectDirCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dir <directory>",
		Short: "Add every supported media file below a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openSelection()
			if err != nil {
				return err
			}
			added, err := store.AddDir(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if added == 0 {
				fmt.Fprintln(out, "No new supported media files found")
				return nil
			}
			fmt.Fprintf(out, "Added %d file(s); %d selected\n", added, store.Len())
			return nil
		},
	}
}

func newSelectListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the selected files",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openSelection()
			if err != nil {
				return err
			}
			files := store.Files()
			if jsonOutput {
				return writeJSON(cmd, files)
			}
			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, "No files selected")
				return nil
			}
			rows := make([][]string, 0, len(files))
			for i, f := range files {
				category := "?"
				if c, ok := selection.CategoryFor(f); ok {
					category = displayTitle(string(c))
				}
				rows = append(rows, []string{fmt.Sprintf("%d", i+1), category, filepath.Base(f), filepath.Dir(f)})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Type", "File", "Directory"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newSelectRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <file>...",
		Aliases: []string{"rm"},
		Short:   "Remove files from the selection",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openSelection()
			if err != nil {
				return err
			}
			removed, err := store.Remove(args...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d file(s); %d selected\n", removed, store.Len())
			return nil
		},
	}
}

func newSelectClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openSelection()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Selection cleared")
			return nil
		},
	}
}
