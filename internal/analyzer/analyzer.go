// Package analyzer orchestrates a full analysis pass over one file: the
// forensic scans run over the immutable byte buffer while every registered
// extraction strategy runs concurrently, and the strategy outcomes are
// consolidated into a single metadata view.
package analyzer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"shutter/internal/consolidate"
	"shutter/internal/digest"
	"shutter/internal/entropy"
	"shutter/internal/logging"
	"shutter/internal/metadata"
	"shutter/internal/patterns"
	"shutter/internal/sigscan"
)

// Options tunes a single Analyzer. Zero values fall back to the package
// defaults of each sub-analysis.
type Options struct {
	// Extractors in priority order; nil means metadata.DefaultExtractors().
	Extractors []metadata.Extractor
	Entropy    entropy.Options
	Patterns   patterns.Options
	// ScanWindow bounds the embedded-object scan; 0 means the sigscan
	// default.
	ScanWindow int
	// Digests lists the hash algorithms to report; nil means none.
	Digests []string
	Logger  *slog.Logger
}

type Analyzer struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options) *Analyzer {
	if opts.Extractors == nil {
		opts.Extractors = metadata.DefaultExtractors()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Analyzer{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "analyzer"),
	}
}

// FileInfo is display and cache-key metadata about the analyzed file. It
// never influences the analysis itself.
type FileInfo struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// Source is one strategy's outcome as surfaced in the report: fields plus
// self-reported coverage, or the failure reason.
type Source struct {
	StrategyID string                    `json:"strategyId"`
	Fields     map[string]metadata.Value `json:"fields,omitempty"`
	Coverage   int                       `json:"coverage"`
	Error      string                    `json:"error,omitempty"`
}

// Report is the complete per-file analysis result. It is built once per
// invocation and never mutated afterwards.
type Report struct {
	ID           string                   `json:"id"`
	File         FileInfo                 `json:"file"`
	Signature    sigscan.Match            `json:"signature"`
	Entropy      entropy.Report           `json:"entropy"`
	Patterns     []patterns.Finding       `json:"patterns,omitempty"`
	Embedded     []sigscan.EmbeddedObject `json:"embedded,omitempty"`
	Digests      map[string]string        `json:"digests,omitempty"`
	Sources      []Source                 `json:"sources"`
	Consolidated consolidate.View         `json:"consolidated"`
	Elapsed      time.Duration            `json:"-"`
}

// Analyze runs the forensic scans and all strategies over buf. Strategy
// failures are recorded in the report, never propagated; the only errors
// returned are digest misconfiguration and context cancellation.
func (a *Analyzer) Analyze(ctx context.Context, info FileInfo, buf []byte) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	started := time.Now()
	report := Report{
		ID:   uuid.NewString(),
		File: info,
	}
	logger := a.logger.With(
		logging.String(logging.FieldAnalysisID, report.ID),
		logging.String(logging.FieldFile, info.Name))
	logger.Info("analysis starting", logging.Int64("size", int64(len(buf))))

	report.Signature = sigscan.Detect(buf)
	report.Entropy = entropy.Analyze(buf, a.opts.Entropy)
	report.Patterns = patterns.Scan(buf, a.opts.Patterns)
	report.Embedded = sigscan.ScanEmbedded(buf, a.opts.ScanWindow)

	if len(a.opts.Digests) > 0 {
		digests, err := digest.SumAll(buf, a.opts.Digests)
		if err != nil {
			return Report{}, err
		}
		report.Digests = digests
	}

	outcomes := a.runStrategies(ctx, logger, buf)
	report.Sources = sourcesFromOutcomes(outcomes)
	report.Consolidated = consolidate.Merge(outcomes)

	report.Elapsed = time.Since(started)
	logger.Info("analysis finished",
		logging.String("format", report.Signature.Type),
		logging.Int("fields", len(report.Consolidated.Fields)),
		logging.Duration(logging.FieldDuration, report.Elapsed))
	return report, nil
}

// runStrategies issues every extractor on its own goroutine over the shared
// read-only buffer and joins them all, failures included, preserving the
// registration order in the returned slice.
func (a *Analyzer) runStrategies(ctx context.Context, logger *slog.Logger, buf []byte) []consolidate.Outcome {
	outcomes := make([]consolidate.Outcome, len(a.opts.Extractors))

	var wg sync.WaitGroup
	for i, extractor := range a.opts.Extractors {
		wg.Add(1)
		go func(i int, extractor metadata.Extractor) {
			defer wg.Done()
			result, err := extractor.Parse(ctx, buf)
			outcomes[i] = consolidate.Outcome{
				StrategyID: extractor.ID(),
				Result:     result,
				Err:        err,
			}
			if err != nil {
				logger.Debug("strategy failed",
					logging.String(logging.FieldStrategy, extractor.ID()),
					logging.Error(err))
			}
		}(i, extractor)
	}
	wg.Wait()

	return outcomes
}

func sourcesFromOutcomes(outcomes []consolidate.Outcome) []Source {
	sources := make([]Source, 0, len(outcomes))
	for _, outcome := range outcomes {
		source := Source{StrategyID: outcome.StrategyID}
		if outcome.Failed() {
			source.Error = outcome.Err.Error()
		} else {
			source.Fields = outcome.Result.Fields
			source.Coverage = outcome.Result.Coverage
		}
		sources = append(sources, source)
	}
	return sources
}
