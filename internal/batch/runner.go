package batch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"shutter/internal/consolidate"
	"shutter/internal/logging"
)

// DefaultWorkers bounds concurrent file analyses when the caller does not.
const DefaultWorkers = 4

// AnalyzeFunc analyzes one file and returns its consolidated view. The
// runner treats each call as isolated: an error marks that file failed and
// nothing else.
type AnalyzeFunc func(ctx context.Context, path string) (consolidate.View, error)

// Runner fans a file list out over a bounded worker set. Completion order
// is unspecified; the returned outcomes follow the input order.
type Runner struct {
	Workers  int
	Analyze  AnalyzeFunc
	Progress func(done, total int)

	logger *slog.Logger
}

func NewRunner(analyze AnalyzeFunc, workers int, logger *slog.Logger) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		Workers: workers,
		Analyze: analyze,
		logger:  logging.NewComponentLogger(logger, "batch"),
	}
}

// Run analyzes every path and returns one outcome per input, preserving
// input order. The run ID ties the outcomes to log lines and history rows.
func (r *Runner) Run(ctx context.Context, paths []string) ([]FileOutcome, string) {
	runID := uuid.NewString()
	total := len(paths)
	outcomes := make([]FileOutcome, total)

	r.logger.Info("batch run starting",
		logging.String(logging.FieldRunID, runID),
		logging.Int("files", total),
		logging.Int("workers", r.Workers))

	sem := make(chan struct{}, r.Workers)
	var wg sync.WaitGroup
	var done atomic.Int64

	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			outcome := FileOutcome{Path: path}
			if err := ctx.Err(); err != nil {
				outcome.Err = err
			} else {
				outcome.View, outcome.Err = r.Analyze(ctx, path)
			}
			outcomes[i] = outcome

			if outcome.Err != nil {
				r.logger.Warn("file analysis failed",
					logging.String(logging.FieldRunID, runID),
					logging.String(logging.FieldFile, path),
					logging.Error(outcome.Err))
			}
			if r.Progress != nil {
				r.Progress(int(done.Add(1)), total)
			}
		}(i, path)
	}
	wg.Wait()

	r.logger.Info("batch run finished",
		logging.String(logging.FieldRunID, runID),
		logging.Int("files", total))
	return outcomes, runID
}
