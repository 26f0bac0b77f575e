package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shutter/internal/analysiscache"
	"shutter/internal/analyzer"
	"shutter/internal/history"
	"shutter/internal/logging"
	"shutter/internal/report"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var forensicOut bool
	var noCache bool

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze one image file: metadata, signatures, entropy, patterns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := runAnalysis(ctx, cmd, args[0], noCache)
			if err != nil {
				return err
			}

			switch {
			case forensicOut:
				return writeJSON(cmd, report.NewForensic(rep))
			case jsonOut:
				return writeJSON(cmd, report.NewMetadata(rep))
			default:
				renderAnalysis(cmd, rep)
				return nil
			}
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the consolidated metadata report as JSON")
	cmd.Flags().BoolVar(&forensicOut, "forensic", false, "Emit the forensic report as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the analysis cache")
	return cmd
}

// runAnalysis performs one cached analysis and records it in history when
// the history store is enabled.
func runAnalysis(ctx *commandContext, cmd *cobra.Command, path string, noCache bool) (analyzer.Report, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return analyzer.Report{}, err
	}
	a, err := ctx.newAnalyzer()
	if err != nil {
		return analyzer.Report{}, err
	}

	var cache *analysiscache.Cache
	var key string
	if !noCache {
		cache, err = ctx.openCache()
		if err != nil {
			return analyzer.Report{}, err
		}
		if stat, statErr := os.Stat(path); statErr == nil {
			key = analysiscache.Key(stat.Name(), stat.Size(), stat.ModTime())
			if cached, found := cache.Lookup(key); found {
				return cached, nil
			}
		}
	}

	rep, err := a.AnalyzeFile(cmd.Context(), path)
	if err != nil {
		return analyzer.Report{}, err
	}

	if cache != nil && key != "" {
		if storeErr := cache.Store(key, rep); storeErr != nil {
			ctx.ensureLogger().Warn("failed to cache analysis", logging.Error(storeErr))
		}
	}

	if cfg.History.Enabled {
		store, openErr := history.Open(cfg.Paths.HistoryDir)
		if openErr != nil {
			ctx.ensureLogger().Warn("history store unavailable", logging.Error(openErr))
			return rep, nil
		}
		defer store.Close()
		if _, recErr := store.Record(cmd.Context(), history.FromReport(rep, "")); recErr != nil {
			ctx.ensureLogger().Warn("failed to record history", logging.Error(recErr))
		}
	}

	return rep, nil
}

func renderAnalysis(cmd *cobra.Command, rep analyzer.Report) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "File: %s (%d bytes)\n", rep.File.Name, rep.File.Size)
	fmt.Fprintf(out, "Format: %s (confidence %d)\n", rep.Signature.Type, rep.Signature.Confidence)
	fmt.Fprintf(out, "Entropy: %.3f bits/byte (%d high-entropy chunks)\n",
		rep.Entropy.Overall, rep.Entropy.HighChunks)

	if len(rep.Digests) > 0 {
		algorithms := make([]string, 0, len(rep.Digests))
		for algorithm := range rep.Digests {
			algorithms = append(algorithms, algorithm)
		}
		sort.Strings(algorithms)
		for _, algorithm := range algorithms {
			fmt.Fprintf(out, "%s: %s\n", strings.ToUpper(algorithm), rep.Digests[algorithm])
		}
	}

	if len(rep.Embedded) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Embedded objects:")
		for _, hit := range rep.Embedded {
			fmt.Fprintf(out, "  %s at offset %d\n", hit.Type, hit.Offset)
		}
	}

	if len(rep.Patterns) > 0 {
		rows := make([][]string, 0, len(rep.Patterns))
		for _, finding := range rep.Patterns {
			rows = append(rows, []string{
				finding.PatternID,
				string(finding.Severity),
				strconv.Itoa(len(finding.Offsets)),
				formatOffsets(finding.Offsets, 6),
			})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable(
			[]string{"Pattern", "Severity", "Hits", "Offsets"}, rows, 2))
	}

	if len(rep.Consolidated.Fields) > 0 {
		rows := make([][]string, 0, len(rep.Consolidated.Fields))
		for _, field := range rep.Consolidated.Fields {
			rows = append(rows, []string{
				field.Name,
				field.Value.AsString(),
				strings.Join(field.Sources, ", "),
				strconv.Itoa(field.Confidence),
				strconv.Itoa(len(field.Conflicts)),
			})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable(
			[]string{"Field", "Value", "Sources", "Confidence", "Conflicts"}, rows, 3, 4))
	}

	if len(rep.Consolidated.Failed) > 0 {
		names := make([]string, 0, len(rep.Consolidated.Failed))
		for name := range rep.Consolidated.Failed {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintln(out)
		for _, name := range names {
			fmt.Fprintf(out, "Strategy %s failed: %s\n", name, rep.Consolidated.Failed[name])
		}
	}
}

func formatOffsets(offsets []int, limit int) string {
	parts := make([]string, 0, limit+1)
	for i, offset := range offsets {
		if i == limit {
			parts = append(parts, fmt.Sprintf("+%d more", len(offsets)-limit))
			break
		}
		parts = append(parts, strconv.Itoa(offset))
	}
	return strings.Join(parts, " ")
}
