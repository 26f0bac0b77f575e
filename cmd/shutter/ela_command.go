package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"shutter/internal/codec"
	"shutter/internal/ela"
)

func newELACommand(ctx *commandContext) *cobra.Command {
	var quality int
	var threshold float64
	var blockSize int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "ela <file>",
		Short: "Error-level analysis: flag regions that respond oddly to recompression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			opts := ela.Options{
				Quality:   cfg.ELA.Quality,
				Threshold: cfg.ELA.Threshold,
				BlockSize: cfg.ELA.BlockSize,
			}
			if cmd.Flags().Changed("quality") {
				opts.Quality = quality
			}
			if cmd.Flags().Changed("threshold") {
				opts.Threshold = threshold
			}
			if cmd.Flags().Changed("block-size") {
				opts.BlockSize = blockSize
			}

			buf, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			img, err := codec.Decode(buf)
			if err != nil {
				return err
			}

			result, err := ela.Compare(img, opts)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Image: %s (%dx%d)\n", args[0], result.Width, result.Height)
			fmt.Fprintf(out, "Re-encode quality: %d, block threshold: %.1f\n", result.Quality, result.Threshold)
			fmt.Fprintf(out, "Overall score: %.1f/100\n", result.OverallScore)
			fmt.Fprintf(out, "Verdict: %s\n", result.Verdict)

			if len(result.Suspicious) == 0 {
				fmt.Fprintln(out, "No suspicious blocks")
				return nil
			}

			rows := make([][]string, 0, len(result.Suspicious))
			for _, block := range result.Suspicious {
				rows = append(rows, []string{
					fmt.Sprintf("%d,%d", block.X, block.Y),
					fmt.Sprintf("%dx%d", block.Width, block.Height),
					fmt.Sprintf("%.1f", block.MeanDiff),
					strconv.Itoa(block.Confidence),
				})
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable(
				[]string{"Block", "Size", "Mean Diff", "Confidence"}, rows, 2, 3))
			return nil
		},
	}

	cmd.Flags().IntVar(&quality, "quality", ela.DefaultQuality, "JPEG re-encode quality (10-100)")
	cmd.Flags().Float64Var(&threshold, "threshold", ela.DefaultThreshold, "Suspicious-block threshold (0-255)")
	cmd.Flags().IntVar(&blockSize, "block-size", ela.DefaultBlockSize, "Square block edge in pixels")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the full result as JSON")
	return cmd
}
