package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"shutter/internal/analyzer"
	"shutter/internal/batch"
	"shutter/internal/consolidate"
	"shutter/internal/history"
	"shutter/internal/logging"
	"shutter/internal/report"
)

// imageExtensions are the files a directory argument expands to.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".bmp":  {},
	".tif":  {},
	".tiff": {},
	".webp": {},
	".heic": {},
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var csvPath string

	cmd := &cobra.Command{
		Use:   "batch <file-or-directory>...",
		Short: "Analyze a set of files and summarize cameras, GPS, and dates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := collectFiles(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no image files found in %s", strings.Join(args, ", "))
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			a, err := ctx.newAnalyzer()
			if err != nil {
				return err
			}

			var reports sync.Map
			runner := batch.NewRunner(func(runCtx context.Context, path string) (consolidate.View, error) {
				rep, analyzeErr := a.AnalyzeFile(runCtx, path)
				if analyzeErr != nil {
					return consolidate.View{}, analyzeErr
				}
				reports.Store(path, rep)
				return rep.Consolidated, nil
			}, ctx.batchWorkers(), ctx.ensureLogger())

			if !jsonOut && isatty.IsTerminal(os.Stderr.Fd()) {
				bar := progressbar.NewOptions(len(paths),
					progressbar.OptionSetDescription("analyzing"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionClearOnFinish(),
				)
				runner.Progress = func(done, total int) {
					_ = bar.Set(done)
				}
			}

			outcomes, runID := runner.Run(cmd.Context(), paths)
			summary := batch.Summarize(outcomes, cfg.Batch.DateField)

			if cfg.History.Enabled {
				if err := recordBatchHistory(cmd, cfg.Paths.HistoryDir, runID, &reports); err != nil {
					ctx.ensureLogger().Warn("failed to record batch history", logging.Error(err))
				}
			}

			if csvPath != "" {
				if err := writeBatchCSV(csvPath, outcomes); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote CSV report to %s\n", csvPath)
			}

			if jsonOut {
				return writeJSON(cmd, struct {
					RunID   string        `json:"runId"`
					Summary batch.Summary `json:"summary"`
				}{RunID: runID, Summary: summary})
			}

			renderBatchSummary(cmd, runID, summary, outcomes)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the batch summary as JSON")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write a per-file CSV report to this path")
	return cmd
}

// collectFiles expands directory arguments to their image files, one level
// deep, and passes explicit file arguments through untouched.
func collectFiles(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("inspect %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", arg, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if _, ok := imageExtensions[ext]; ok {
				paths = append(paths, filepath.Join(arg, entry.Name()))
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func writeBatchCSV(path string, outcomes []batch.FileOutcome) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer file.Close()

	if err := report.WriteCSV(file, report.BatchRows(outcomes)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func renderBatchSummary(cmd *cobra.Command, runID string, summary batch.Summary, outcomes []batch.FileOutcome) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Run %s: %d files, %d analyzed, %d failed\n",
		runID, summary.TotalFiles, summary.Succeeded, summary.Failed)
	fmt.Fprintf(out, "Files with GPS position: %d\n", summary.WithGPS)
	if summary.EarliestDate != "" {
		fmt.Fprintf(out, "Date span (%s): %s .. %s\n",
			summary.DateField, summary.EarliestDate, summary.LatestDate)
	}

	if rows := summary.CameraRows(); len(rows) > 0 {
		tableRows := make([][]string, 0, len(rows))
		for _, row := range rows {
			tableRows = append(tableRows, []string{row.Name, strconv.Itoa(row.Count)})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable([]string{"Camera", "Files"}, tableRows, 1))
	}

	for _, outcome := range outcomes {
		if outcome.Failed() {
			fmt.Fprintf(out, "Failed: %s: %v\n", outcome.Path, outcome.Err)
		}
	}
}

// recordBatchHistory writes one history row per successfully analyzed file,
// all tagged with the batch run ID.
func recordBatchHistory(cmd *cobra.Command, historyDir, runID string, reports *sync.Map) error {
	store, err := history.Open(historyDir)
	if err != nil {
		return err
	}
	defer store.Close()

	var recordErr error
	reports.Range(func(_, value any) bool {
		rep, ok := value.(analyzer.Report)
		if !ok {
			return true
		}
		if _, err := store.Record(cmd.Context(), history.FromReport(rep, runID)); err != nil {
			recordErr = err
			return false
		}
		return true
	})
	return recordErr
}
