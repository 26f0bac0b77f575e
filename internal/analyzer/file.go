package analyzer

import (
	"context"
	"fmt"
	"os"
)

// AnalyzeFile reads path from disk and analyzes its contents. The file's
// name, size, and modification time flow into the report for display and
// cache-key derivation only.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (Report, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return Report{}, fmt.Errorf("stat %s: %w", path, err)
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("read %s: %w", path, err)
	}
	return a.Analyze(ctx, FileInfo{
		Name:    stat.Name(),
		Size:    stat.Size(),
		ModTime: stat.ModTime(),
	}, buf)
}
