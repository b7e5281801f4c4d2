package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediaforge/internal/inference"
	"mediaforge/internal/profile"
	"mediaforge/internal/schema"
)

func newProfilesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profiles",
		Aliases: []string{"profile"},
		Short:   "Manage conversion profiles",
	}
	cmd.AddCommand(newProfilesListCommand(ctx))
	cmd.AddCommand(newProfilesShowCommand(ctx))
	cmd.AddCommand(newProfilesCreateCommand(ctx))
	cmd.AddCommand(newProfilesImportCommand(ctx))
	cmd.AddCommand(newProfilesExportCommand(ctx))
	cmd.AddCommand(newProfilesRemoveCommand(ctx))
	cmd.AddCommand(newProfilesRenameCommand(ctx))
	cmd.AddCommand(newProfilesEditCommand(ctx))
	cmd.AddCommand(newProfilesOptionsCommand(ctx))
	cmd.AddCommand(newProfilesParamsCommand())
	cmd.AddCommand(newProfilesInferCommand(ctx))
	return cmd
}

func newProfilesListCommand(ctx *commandContext) *cobra.Command {
	var categoryFlag string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			var category profile.Category
			if categoryFlag != "" {
				parsed, err := profile.ParseCategory(categoryFlag)
				if err != nil {
					return err
				}
				category = parsed
			}
			store, err := ctx.openProfiles()
			if err != nil {
				return err
			}
			listing := store.List(category)

			if jsonOutput {
				out := make(map[string][]string, len(listing))
				for c, names := range listing {
					out[string(c)] = names
				}
				return writeJSON(cmd, out)
			}

			rows := make([][]string, 0)
			for _, c := range profile.Categories() {
				names, ok := listing[c]
				if !ok {
					continue
				}
				for _, name := range names {
					p, err := store.Get(c, name)
					if err != nil {
						return err
					}
					rows = append(rows, profileSummaryRow(c, name, p))
				}
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No profiles stored")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Category", "Name", "Container", "Speed", "Video", "Audio"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&categoryFlag, "category", "", "Only list one category (video or audio)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func profileSummaryRow(category profile.Category, name string, p profile.Profile) []string {
	videoCodec := "-"
	if p.Video != nil {
		videoCodec = p.Video.Codec.String()
	}
	audioCodec := "-"
	if p.Audio != nil {
		audioCodec = p.Audio.Codec.String()
	}
	return []string{
		displayTitle(string(category)),
		name,
		p.Container,
		p.Speed(category).String(),
		videoCodec,
		audioCodec,
	}
}

func profileParamRows(p profile.Profile) [][]string {
	rows := make([][]string, 0)
	if p.Video != nil {
		for _, param := range p.Video.Params() {
			rows = append(rows, []string{"video." + param.Name, param.Value.String()})
		}
	}
	if p.Audio != nil {
		for _, param := range p.Audio.Params() {
			rows = append(rows, []string{"audio." + param.Name, param.Value.String()})
		}
	}
	return rows
}

func newProfilesShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <category> <name>",
		Short: "Show one profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := profile.ParseCategory(args[0])
			if err != nil {
				return err
			}
			store, err := ctx.openProfiles()
			if err != nil {
				return err
			}
			if jsonOutput {
				return store.Export(category, args[1], cmd.OutOrStdout())
			}
			p, err := store.Get(category, args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s profile %q (container %s)\n", displayTitle(string(category)), args[1], p.Container)
			fmt.Fprintln(out, renderTable([]string{"Parameter", "Value"}, profileParamRows(p), nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the stored JSON document")
	return cmd
}

func newProfilesCreateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create <category> <name> [section.param=value ...]",
		Short: "Create a profile from the category template",
		Long: "Create a profile starting from the category template. Each trailing\n" +
			"argument overrides one parameter, for example video.crf=20 or audio.bitrate=256k.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := profile.ParseCategory(args[0])
			if err != nil {
				return err
			}
			p := profile.Template(category)
			for _, assignment := range args[2:] {
				path, value, ok := strings.Cut(assignment, "=")
				if !ok {
					return fmt.Errorf("invalid assignment %q (expected section.param=value)", assignment)
				}
				if path == "container" {
					p.Container = strings.TrimSpace(value)
					continue
				}
				section, param, err := profile.SplitParameterPath(path)
				if err != nil {
					return err
				}
				if err := p.Assign(section, param, profile.Setting(strings.TrimSpace(value))); err != nil {
					return err
				}
			}
			store, err := ctx.openProfiles()
			if err != nil {
				return err
			}
			if _, err := store.Get(category, args[1]); err == nil {
				return fmt.Errorf("profile %s/%s already exists", category, args[1])
			}
			if err := store.Add(category, args[1], p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s profile %q\n", category, args[1])
			return nil
		},
	}
}

func newProfilesImportCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "import <category> <name> <file>",
		Short: "Import a profile from a JSON file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := profile.ParseCategory(args[0])
			if err != nil {
				return err
			}
			p, err := profile.ImportFile(args[2])
			if err != nil {
				return err
			}
			store, err := ctx.openProfiles()
			if err != nil {
				return err
			}
			if _, err := store.Get(category, args[1]); err == nil && !force {
				return fmt.Errorf("profile %s/%s already exists (use --force to replace it)", category, args[1])
			}
			if err := store.Add(category, args[1], p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s profile %q from %s\n", category, args[1], args[2])
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing profile of the same name")
	return cmd
}

func newProfilesExportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export <category> <name>",
		Short: "Export a profile as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := profile.ParseCategory(args[0])
			if err != nil {
				return err
			}
			store, err := ctx.openProfiles()
			if err != nil {
				return err
			}
			if outputPath == "" {
				return store.Export(category, args[1], cmd.OutOrStdout())
			}
			if err := store.ExportFile(category, args[1], outputPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s profile %q to %s\n", category, args[1], outputPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func newProfilesRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <category> <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a profile",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := profile.ParseCategory(args[0])
			if err != nil {
				return err
			}
			store, err := ctx.openProfiles()
			if err != nil {
				return err
			}
			if err := store.Remove(category, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s profile %q\n", category, args[1])
			return nil
		},
	}
}

func newProfilesRenameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <category> <old> <new>",
		Short: "Rename a profile",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := profile.ParseCategory(args[0])
			if err != nil {
				return err
			}
			store, err := ctx.openProfiles()
			if err != nil {
				return err
			}
			if _, err := store.Get(category, args[2]); err == nil && args[1] != args[2] {
				return fmt.Errorf("profile %s/%s already exists", category, args[2])
			}
			if err := store.Rename(category, args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s profile %q to %q\n", category, args[1], args[2])
			return nil
		},
	}
}

func newProfilesEditCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <category> <name> <section.param> <value>",
		Short: "Change one profile parameter",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := profile.ParseCategory(args[0])
			if err != nil {
				return err
			}
			store, err := ctx.openProfiles()
			if err != nil {
				return err
			}
			if err := store.EditParameter(category, args[1], args[2], args[3]); err != nil {
				var verr *profile.ValidationError
				if errors.As(err, &verr) {
					if options, optErr := store.ParameterOptions(args[2]); optErr == nil && len(options) > 0 {
						return fmt.Errorf("%w (allowed: %s)", err, strings.Join(options, ", "))
					}
				}
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Set %s = %s on %s profile %q\n", args[2], args[3], category, args[1])
			if _, param, _ := profile.SplitParameterPath(args[2]); category == profile.CategoryVideo &&
				(param == "speed_control" || param == "audio_speed") {
				fmt.Fprintln(out, "Audio and video speed kept in sync")
			}
			return nil
		},
	}
}

func newProfilesOptionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "options <section.param>",
		Short: "List the allowed values for a parameter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openProfiles()
			if err != nil {
				return err
			}
			options, err := store.ParameterOptions(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(options) == 0 {
				fmt.Fprintf(out, "%s accepts any value\n", args[0])
				return nil
			}
			for _, option := range options {
				fmt.Fprintln(out, option)
			}
			return nil
		},
	}
}

func newProfilesParamsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "params <category>",
		Short:       "List the editable parameters of a category",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := profile.ParseCategory(args[0])
			if err != nil {
				return err
			}
			editable := profile.EditableParameters(category)
			out := cmd.OutOrStdout()
			for _, section := range []string{schema.SectionVideo, schema.SectionAudio} {
				params, ok := editable[section]
				if !ok {
					continue
				}
				fmt.Fprintf(out, "%s:\n", displayTitle(section))
				for _, param := range params {
					fmt.Fprintf(out, "  %s.%s\n", section, param)
				}
			}
			return nil
		},
	}
}

func newProfilesInferCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "infer <reference-file> <name>",
		Short: "Create a profile matching a reference media file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openProfiles()
			if err != nil {
				return err
			}
			category, p, err := inference.CreateFromFile(cmd.Context(), ctx.prober(), store, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s profile %q (container %s, speed %s)\n",
				category, args[1], p.Container, p.Speed(category))
			return nil
		},
	}
}
