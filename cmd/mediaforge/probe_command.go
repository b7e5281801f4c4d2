package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mediaforge/internal/inference"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var asProfile bool

	cmd := &cobra.Command{
		Use:   "probe <file>",
		Short: "Inspect a media file with ffprobe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			probed, err := ctx.prober().Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			mirrored := inference.Mirror(probed)
			if jsonOutput {
				if asProfile {
					return writeJSON(cmd, mirrored)
				}
				return writeJSON(cmd, probed)
			}

			out := cmd.OutOrStdout()
			if asProfile {
				fmt.Fprintf(out, "Profile mirroring %s (container %s)\n", args[0], mirrored.Container)
				fmt.Fprintln(out, renderTable([]string{"Parameter", "Value"}, profileParamRows(mirrored), nil))
				return nil
			}

			duration := time.Duration(probed.DurationSeconds() * float64(time.Second)).Round(time.Second)
			fmt.Fprintf(out, "File:      %s\n", args[0])
			fmt.Fprintf(out, "Format:    %s\n", probed.Format.FormatLongName)
			fmt.Fprintf(out, "Duration:  %s\n", duration)
			fmt.Fprintf(out, "Size:      %s\n", humanize.Bytes(uint64(max(probed.SizeBytes(), 0))))
			fmt.Fprintf(out, "Bitrate:   %s\n", formatBitRate(probed.BitRate()))

			rows := make([][]string, 0, len(probed.Streams))
			for _, stream := range probed.Streams {
				detail := ""
				switch stream.CodecType {
				case "video":
					detail = fmt.Sprintf("%s %s fps %s", stream.Resolution(), strconv.FormatFloat(stream.FrameRate(), 'f', 2, 64), stream.PixFmt)
				case "audio":
					detail = fmt.Sprintf("%s Hz, %d ch", stream.SampleRate, stream.Channels)
				}
				rows = append(rows, []string{
					strconv.Itoa(stream.Index),
					stream.CodecType,
					stream.CodecName,
					formatBitRate(stream.StreamBitRate()),
					detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Type", "Codec", "Bitrate", "Detail"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&asProfile, "as-profile", false, "Describe the file as a profile reproducing its parameters")
	return cmd
}

func formatBitRate(bitsPerSecond int64) string {
	if bitsPerSecond <= 0 {
		return "-"
	}
	return humanize.SIWithDigits(float64(bitsPerSecond), 1, "b/s")
}
