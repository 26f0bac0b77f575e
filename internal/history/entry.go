package history

import (
	"shutter/internal/analyzer"
	"shutter/internal/patterns"
	"shutter/internal/report"
)

// FromReport condenses a full analysis report into the row the history
// store keeps.
func FromReport(r analyzer.Report, runID string) Entry {
	return Entry{
		AnalysisID:       r.ID,
		RunID:            runID,
		Filename:         r.File.Name,
		Size:             r.File.Size,
		Format:           r.Signature.Type,
		Camera:           report.CameraLabel(r.Consolidated),
		FieldCount:       len(r.Consolidated.Fields),
		FailedStrategies: len(r.Consolidated.Failed),
		Entropy:          r.Entropy.Overall,
		MaxSeverity:      string(patterns.MaxSeverity(r.Patterns)),
	}
}
