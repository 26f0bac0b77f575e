package batch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"shutter/internal/consolidate"
	"shutter/internal/metadata"
)

func viewWith(fields map[string]metadata.Value) consolidate.View {
	return consolidate.Merge([]consolidate.Outcome{{
		StrategyID: "exif",
		Result:     metadata.Result{StrategyID: "exif", Fields: fields},
	}})
}

func cameraView(make, model string) consolidate.View {
	return viewWith(map[string]metadata.Value{
		"Make":  metadata.String(make),
		"Model": metadata.String(model),
	})
}

func TestSummarizeCameraFrequency(t *testing.T) {
	outcomes := []FileOutcome{
		{Path: "a.jpg", View: cameraView("Canon", "EOS R5")},
		{Path: "b.jpg", View: cameraView("Canon", "EOS R5")},
		{Path: "c.jpg", View: cameraView("Nikon", "Z9")},
	}

	summary := Summarize(outcomes, "")
	want := map[string]int{"Canon EOS R5": 2, "Nikon Z9": 1}
	if len(summary.Cameras) != len(want) {
		t.Fatalf("cameras: got %v, want %v", summary.Cameras, want)
	}
	for name, count := range want {
		if summary.Cameras[name] != count {
			t.Errorf("camera %q: got %d, want %d", name, summary.Cameras[name], count)
		}
	}
}

func TestSummarizeMakeRepeatedInModel(t *testing.T) {
	outcomes := []FileOutcome{
		{Path: "a.jpg", View: cameraView("Canon", "Canon EOS R5")},
	}
	summary := Summarize(outcomes, "")
	if summary.Cameras["Canon EOS R5"] != 1 {
		t.Errorf("cameras: got %v, want Canon EOS R5 once", summary.Cameras)
	}
}

func TestSummarizeUnknownBucket(t *testing.T) {
	outcomes := []FileOutcome{
		{Path: "a.jpg", View: viewWith(map[string]metadata.Value{"ImageWidth": metadata.Number(640)})},
	}
	summary := Summarize(outcomes, "")
	if summary.Cameras["Unknown"] != 1 {
		t.Errorf("cameras: got %v, want Unknown once", summary.Cameras)
	}
}

func TestSummarizeCountsAndGPS(t *testing.T) {
	withGPS := viewWith(map[string]metadata.Value{
		"GPSLatitude":  metadata.Number(48.85),
		"GPSLongitude": metadata.Number(2.35),
	})
	outcomes := []FileOutcome{
		{Path: "a.jpg", View: withGPS},
		{Path: "b.jpg", View: cameraView("Nikon", "Z9")},
		{Path: "c.jpg", Err: errors.New("decode failed")},
	}

	summary := Summarize(outcomes, "")
	if summary.TotalFiles != 3 || summary.Succeeded != 2 || summary.Failed != 1 {
		t.Errorf("counts: got total=%d ok=%d failed=%d", summary.TotalFiles, summary.Succeeded, summary.Failed)
	}
	if summary.WithGPS != 1 {
		t.Errorf("withGPS: got %d, want 1", summary.WithGPS)
	}
}

func TestSummarizeDateSpanIsLexical(t *testing.T) {
	dated := func(s string) FileOutcome {
		return FileOutcome{View: viewWith(map[string]metadata.Value{
			"DateTimeOriginal": metadata.String(s),
		})}
	}
	outcomes := []FileOutcome{
		dated("2023:04:01 10:30:00"),
		dated("2022-11-05T08:00:00"),
		dated("2024:01:15 09:00:00"),
	}

	summary := Summarize(outcomes, "")
	// String ordering: "2022-…" < "2023:…" < "2024:…" happens to agree
	// here, but only because the years differ in the leading characters.
	if summary.EarliestDate != "2022-11-05T08:00:00" {
		t.Errorf("earliest: got %q", summary.EarliestDate)
	}
	if summary.LatestDate != "2024:01:15 09:00:00" {
		t.Errorf("latest: got %q", summary.LatestDate)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil, "")
	if summary.TotalFiles != 0 || summary.EarliestDate != "" || summary.LatestDate != "" {
		t.Errorf("empty batch: got %+v", summary)
	}
}

func TestCameraRowsOrdering(t *testing.T) {
	summary := Summary{Cameras: map[string]int{
		"Nikon Z9":     1,
		"Canon EOS R5": 3,
		"Apple iPhone": 1,
	}}
	rows := summary.CameraRows()
	got := make([]string, len(rows))
	for i, row := range rows {
		got[i] = row.Name
	}
	want := "Canon EOS R5,Apple iPhone,Nikon Z9"
	if strings.Join(got, ",") != want {
		t.Errorf("row order: got %v", got)
	}
}

func TestRunnerPreservesInputOrder(t *testing.T) {
	paths := []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"}
	analyze := func(ctx context.Context, path string) (consolidate.View, error) {
		if path == "b.jpg" {
			return consolidate.View{}, errors.New("corrupt")
		}
		return cameraView("Canon", "EOS R5"), nil
	}

	runner := NewRunner(analyze, 2, nil)
	outcomes, runID := runner.Run(context.Background(), paths)

	if runID == "" {
		t.Error("run ID missing")
	}
	if len(outcomes) != len(paths) {
		t.Fatalf("outcome count: got %d", len(outcomes))
	}
	for i, outcome := range outcomes {
		if outcome.Path != paths[i] {
			t.Errorf("position %d: got %q, want %q", i, outcome.Path, paths[i])
		}
	}
	if !outcomes[1].Failed() {
		t.Error("b.jpg should have failed")
	}
	if outcomes[0].Failed() || outcomes[2].Failed() || outcomes[3].Failed() {
		t.Error("one failure must not poison siblings")
	}
}

func TestRunnerProgressReachesTotal(t *testing.T) {
	var mu sync.Mutex
	var last int

	runner := NewRunner(func(ctx context.Context, path string) (consolidate.View, error) {
		return consolidate.View{}, nil
	}, 3, nil)
	runner.Progress = func(done, total int) {
		mu.Lock()
		if done > last {
			last = done
		}
		mu.Unlock()
	}

	runner.Run(context.Background(), []string{"1", "2", "3", "4", "5"})
	if last != 5 {
		t.Errorf("final progress: got %d, want 5", last)
	}
}

func TestRunnerCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(func(ctx context.Context, path string) (consolidate.View, error) {
		t.Error("analyze should not run after cancellation")
		return consolidate.View{}, nil
	}, 1, nil)

	outcomes, _ := runner.Run(ctx, []string{"a.jpg"})
	if !outcomes[0].Failed() {
		t.Error("cancelled run should mark files failed")
	}
}
