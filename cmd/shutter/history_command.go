package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"shutter/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the analysis history database",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))
	return historyCmd
}

func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("history is disabled; enable [history] in the configuration")
	}
	store, err := history.Open(cfg.Paths.HistoryDir)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var file string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded analyses, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				var entries []history.Entry
				var err error
				if file != "" {
					entries, err = store.ForFile(cmd.Context(), file)
				} else {
					entries, err = store.List(cmd.Context(), limit)
				}
				if err != nil {
					return err
				}

				if jsonOut {
					return writeJSON(cmd, entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No recorded analyses")
					return nil
				}

				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						entry.CreatedAt.Local().Format(time.DateTime),
						entry.Filename,
						entry.Format,
						entry.Camera,
						strconv.Itoa(entry.FieldCount),
						fmt.Sprintf("%.2f", entry.Entropy),
						entry.MaxSeverity,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"When", "File", "Format", "Camera", "Fields", "Entropy", "Severity"},
					rows, 4, 5))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to list (0 for all)")
	cmd.Flags().StringVar(&file, "file", "", "List only analyses of this filename")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit entries as JSON")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded analyses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				count, err := store.Count(cmd.Context())
				if err != nil {
					return err
				}
				if err := store.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d recorded analyses\n", count)
				return nil
			})
		},
	}
}
