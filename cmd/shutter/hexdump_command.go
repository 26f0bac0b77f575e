package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shutter/internal/hexview"
)

func newHexdumpCommand(ctx *commandContext) *cobra.Command {
	var offset int
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "hexdump <file>",
		Short: "Render a byte range as offset/hex/ASCII rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = cfg.Forensics.HexDumpLimit
			}
			if offset < 0 {
				return fmt.Errorf("offset must be non-negative, got %d", offset)
			}

			buf, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			if offset >= len(buf) && len(buf) > 0 {
				return fmt.Errorf("offset %d past end of %d-byte file", offset, len(buf))
			}

			rows := hexview.Render(buf[min(offset, len(buf)):], offset, limit)
			if jsonOut {
				return writeJSON(cmd, rows)
			}

			out := cmd.OutOrStdout()
			for _, row := range rows {
				fmt.Fprintf(out, "%s  %s  %s\n", row.Offset, row.Hex, row.ASCII)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "Byte offset to start rendering from")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum bytes to render (0 uses the configured default)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit rows as JSON")
	return cmd
}
