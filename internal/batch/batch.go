// Package batch runs the analyzer across a file set and aggregates the
// per-file outcomes into a summary: camera frequency, GPS presence, and
// the date span of the set.
package batch

import (
	"sort"
	"strings"

	"shutter/internal/consolidate"
)

// DefaultDateField is the consolidated field the date span is computed from.
const DefaultDateField = "DateTimeOriginal"

// FileOutcome is one file's result: either a consolidated metadata view or
// the error that stopped its analysis. A failed file never aborts siblings.
type FileOutcome struct {
	Path string           `json:"path"`
	View consolidate.View `json:"view"`
	Err  error            `json:"-"`
}

func (o FileOutcome) Failed() bool { return o.Err != nil }

// Summary aggregates a batch run.
type Summary struct {
	TotalFiles int `json:"totalFiles"`
	Succeeded  int `json:"succeeded"`
	Failed     int `json:"failed"`
	// WithGPS counts files whose consolidated view carries a GPS position.
	WithGPS int `json:"withGPS"`
	// Cameras maps "{Make} {Model}" to occurrence count. Files with neither
	// field land in the "Unknown" bucket.
	Cameras map[string]int `json:"cameras"`
	// EarliestDate and LatestDate are the lexical min/max of the date field
	// across successful files. Date strings are compared as-is, so mixed
	// formats (ISO vs EXIF colon-dates) order by their text, not the
	// calendar. Empty when no file reported the field.
	EarliestDate string `json:"earliestDate,omitempty"`
	LatestDate   string `json:"latestDate,omitempty"`
	DateField    string `json:"dateField"`
}

// Summarize builds the batch summary from per-file outcomes. dateField
// selects the consolidated field used for the date span; empty means
// DefaultDateField.
func Summarize(outcomes []FileOutcome, dateField string) Summary {
	if dateField == "" {
		dateField = DefaultDateField
	}
	summary := Summary{
		TotalFiles: len(outcomes),
		Cameras:    make(map[string]int),
		DateField:  dateField,
	}

	for _, outcome := range outcomes {
		if outcome.Failed() {
			summary.Failed++
			continue
		}
		summary.Succeeded++

		if hasGPS(outcome.View) {
			summary.WithGPS++
		}
		summary.Cameras[cameraLabel(outcome.View)]++

		date := outcome.View.StringValue(dateField)
		if date == "" {
			continue
		}
		if summary.EarliestDate == "" || date < summary.EarliestDate {
			summary.EarliestDate = date
		}
		if summary.LatestDate == "" || date > summary.LatestDate {
			summary.LatestDate = date
		}
	}

	return summary
}

// CameraRows returns the frequency table sorted by count descending, ties
// broken by name, for stable display.
func (s Summary) CameraRows() []CameraRow {
	rows := make([]CameraRow, 0, len(s.Cameras))
	for name, count := range s.Cameras {
		rows = append(rows, CameraRow{Name: name, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

type CameraRow struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func cameraLabel(view consolidate.View) string {
	maker := strings.TrimSpace(view.StringValue("Make"))
	model := strings.TrimSpace(view.StringValue("Model"))
	switch {
	case maker == "" && model == "":
		return "Unknown"
	case maker == "":
		return model
	case model == "":
		return maker
	// Vendors often repeat the make inside the model string.
	case strings.HasPrefix(model, maker):
		return model
	default:
		return maker + " " + model
	}
}

func hasGPS(view consolidate.View) bool {
	_, lat := view.Field("GPSLatitude")
	_, lng := view.Field("GPSLongitude")
	return lat && lng
}
