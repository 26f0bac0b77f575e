// Package report shapes analysis results into the exported payloads:
// consolidated-metadata JSON, forensic-report JSON, and the fixed-column
// CSV used for spreadsheet review of batch runs.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"shutter/internal/analyzer"
	"shutter/internal/batch"
	"shutter/internal/consolidate"
)

var titler = cases.Title(language.English)

// Metadata is the consolidated-metadata JSON export:
// per-strategy sources, the merged view, and a small analysis summary.
type Metadata struct {
	Sources      []analyzer.Source `json:"sources"`
	Consolidated consolidate.View  `json:"consolidated"`
	Analysis     Analysis          `json:"analysis"`
}

type Analysis struct {
	ID         string `json:"id"`
	File       string `json:"file"`
	Size       int64  `json:"size"`
	Format     string `json:"format"`
	Fields     int    `json:"fields"`
	Strategies int    `json:"strategies"`
	Failed     int    `json:"failed"`
}

// NewMetadata builds the consolidated-metadata payload from a report.
func NewMetadata(r analyzer.Report) Metadata {
	return Metadata{
		Sources:      r.Sources,
		Consolidated: r.Consolidated,
		Analysis: Analysis{
			ID:         r.ID,
			File:       r.File.Name,
			Size:       r.File.Size,
			Format:     r.Signature.Type,
			Fields:     len(r.Consolidated.Fields),
			Strategies: len(r.Sources),
			Failed:     len(r.Consolidated.Failed),
		},
	}
}

// WriteJSON encodes v as indented JSON, matching the CLI's output style.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Forensic is the forensic-report JSON export: the raw-byte analyses
// without the metadata view.
type Forensic struct {
	ID        string `json:"id"`
	File      string `json:"file"`
	Size      int64  `json:"size"`
	Signature any    `json:"signature"`
	Entropy   any    `json:"entropy"`
	Patterns  any    `json:"patterns"`
	Embedded  any    `json:"embedded"`
	Digests   any    `json:"digests,omitempty"`
}

func NewForensic(r analyzer.Report) Forensic {
	return Forensic{
		ID:        r.ID,
		File:      r.File.Name,
		Size:      r.File.Size,
		Signature: r.Signature,
		Entropy:   r.Entropy,
		Patterns:  r.Patterns,
		Embedded:  r.Embedded,
		Digests:   r.Digests,
	}
}

// csvHeader is the fixed column contract consumed by downstream tooling.
// Order and spelling must not change.
var csvHeader = []string{
	"Filename", "Size", "Status", "Camera",
	"GPS Lat", "GPS Lng", "Date Taken",
	"ISO", "Aperture", "Shutter Speed",
}

// WriteCSV exports one row per batch outcome with the fixed column set.
func WriteCSV(w io.Writer, outcomes []BatchRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	for _, row := range outcomes {
		if err := cw.Write(row.record()); err != nil {
			return fmt.Errorf("csv row %s: %w", row.Filename, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// BatchRow is one file's CSV line.
type BatchRow struct {
	Filename string
	Size     int64
	Err      error
	View     consolidate.View
}

func (r BatchRow) record() []string {
	if r.Err != nil {
		return []string{r.Filename, fmt.Sprint(r.Size), "Error", "", "", "", "", "", "", ""}
	}
	return []string{
		r.Filename,
		fmt.Sprint(r.Size),
		"OK",
		CameraLabel(r.View),
		r.View.StringValue("GPSLatitude"),
		r.View.StringValue("GPSLongitude"),
		r.View.StringValue("DateTimeOriginal"),
		r.View.StringValue("ISOSpeedRatings"),
		r.View.StringValue("FNumber"),
		r.View.StringValue("ExposureTime"),
	}
}

// BatchRows adapts batch outcomes for WriteCSV. Size comes from the
// consolidated FileSize field when the raw scanner reported it.
func BatchRows(outcomes []batch.FileOutcome) []BatchRow {
	rows := make([]BatchRow, 0, len(outcomes))
	for _, outcome := range outcomes {
		row := BatchRow{Filename: outcome.Path, Err: outcome.Err, View: outcome.View}
		if size, ok := outcome.View.Field("FileSize"); ok {
			if f, okNum := size.Value.Float(); okNum {
				row.Size = int64(f)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// CameraLabel renders the "{Make} {Model}" display label, title-cased for
// vendors that shout in all caps, with "Unknown" when neither is present.
func CameraLabel(view consolidate.View) string {
	maker := view.StringValue("Make")
	model := view.StringValue("Model")
	switch {
	case maker == "" && model == "":
		return "Unknown"
	case maker == "":
		return model
	case model == "":
		return titler.String(maker)
	// Vendors often repeat the make inside the model string.
	case strings.HasPrefix(model, maker), strings.HasPrefix(model, titler.String(maker)):
		return model
	default:
		return titler.String(maker) + " " + model
	}
}
