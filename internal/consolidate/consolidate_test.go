package consolidate

import (
	"encoding/json"
	"errors"
	"testing"

	"shutter/internal/metadata"
)

func outcome(id string, fields map[string]metadata.Value) Outcome {
	return Outcome{
		StrategyID: id,
		Result:     metadata.Result{StrategyID: id, Fields: fields},
	}
}

func TestMergeAgreementScoresFullConfidence(t *testing.T) {
	view := Merge([]Outcome{
		outcome("exif", map[string]metadata.Value{"Make": metadata.String("Canon")}),
		outcome("segments", map[string]metadata.Value{"Make": metadata.String("Canon")}),
		outcome("xmp", map[string]metadata.Value{"Make": metadata.String("Canon")}),
	})

	field, ok := view.Field("Make")
	if !ok {
		t.Fatal("Make missing")
	}
	if field.Confidence != 100 {
		t.Errorf("confidence: got %d, want 100", field.Confidence)
	}
	if len(field.Conflicts) != 0 {
		t.Errorf("conflicts: got %+v, want none", field.Conflicts)
	}
	if len(field.Sources) != 3 {
		t.Errorf("sources: got %v", field.Sources)
	}
}

func TestMergeTwoWayDisagreementIsFifty(t *testing.T) {
	view := Merge([]Outcome{
		outcome("exif", map[string]metadata.Value{"Model": metadata.String("EOS R5")}),
		outcome("xmp", map[string]metadata.Value{"Model": metadata.String("Canon EOS R5")}),
	})

	field, _ := view.Field("Model")
	if field.Confidence != 50 {
		t.Errorf("confidence: got %d, want 50", field.Confidence)
	}
	if len(field.Conflicts) != 1 || field.Conflicts[0].Source != "xmp" {
		t.Errorf("conflicts: got %+v", field.Conflicts)
	}
}

func TestMergeFirstRegisteredSourceWins(t *testing.T) {
	view := Merge([]Outcome{
		outcome("exif", map[string]metadata.Value{"ISOSpeedRatings": metadata.Number(100)}),
		outcome("rawscan", map[string]metadata.Value{"ISOSpeedRatings": metadata.Number(200)}),
	})

	field, _ := view.Field("ISOSpeedRatings")
	if !field.Value.Equal(metadata.Number(100)) {
		t.Errorf("chosen value: got %s, want first source's 100", field.Value.Canonical())
	}
}

func TestMergeThreeDistinctValues(t *testing.T) {
	view := Merge([]Outcome{
		outcome("a", map[string]metadata.Value{"F": metadata.String("1")}),
		outcome("b", map[string]metadata.Value{"F": metadata.String("2")}),
		outcome("c", map[string]metadata.Value{"F": metadata.String("3")}),
	})

	field, _ := view.Field("F")
	// k=3, u=3: round(100*1/3) = 33.
	if field.Confidence != 33 {
		t.Errorf("confidence: got %d, want 33", field.Confidence)
	}
	if len(field.Conflicts) != 2 {
		t.Errorf("conflicts: got %d, want 2", len(field.Conflicts))
	}
}

func TestMergeFailedStrategyExcluded(t *testing.T) {
	view := Merge([]Outcome{
		{StrategyID: "exif", Err: errors.New("exif decode: short read")},
		outcome("segments", map[string]metadata.Value{"Container": metadata.String("JPEG")}),
	})

	if len(view.Succeeded) != 1 || view.Succeeded[0] != "segments" {
		t.Errorf("succeeded: got %v", view.Succeeded)
	}
	if view.Failed["exif"] == "" {
		t.Error("failed strategy not accounted for")
	}
	field, ok := view.Field("Container")
	if !ok {
		t.Fatal("surviving strategy's field missing")
	}
	if len(field.Sources) != 1 || field.Sources[0] != "segments" {
		t.Errorf("sources: got %v", field.Sources)
	}
}

func TestMergeAllFailedYieldsEmptyView(t *testing.T) {
	view := Merge([]Outcome{
		{StrategyID: "exif", Err: errors.New("boom")},
		{StrategyID: "xmp", Err: errors.New("no packet")},
	})
	if len(view.Fields) != 0 {
		t.Errorf("fields: got %d, want 0", len(view.Fields))
	}
	if len(view.Failed) != 2 {
		t.Errorf("failed: got %d entries, want 2", len(view.Failed))
	}
}

func TestMergeNoOutcomes(t *testing.T) {
	view := Merge(nil)
	if len(view.Fields) != 0 || len(view.Succeeded) != 0 {
		t.Errorf("empty input: got %+v", view)
	}
}

func TestMergeIdempotent(t *testing.T) {
	outcomes := []Outcome{
		outcome("exif", map[string]metadata.Value{
			"Make":  metadata.String("Canon"),
			"Model": metadata.String("EOS R5"),
			"ISO":   metadata.Number(400),
		}),
		outcome("segments", map[string]metadata.Value{
			"Make":       metadata.String("Canon"),
			"ImageWidth": metadata.Number(8192),
		}),
		outcome("xmp", map[string]metadata.Value{
			"Model": metadata.String("Canon EOS R5"),
		}),
	}

	first, err := json.Marshal(Merge(outcomes))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(Merge(outcomes))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(first) != string(second) {
		t.Error("consolidation is not byte-identical across runs")
	}
}

func TestMergeCoverageDoesNotAffectOutcome(t *testing.T) {
	lowCoverage := []Outcome{
		{StrategyID: "a", Result: metadata.Result{StrategyID: "a", Coverage: 1,
			Fields: map[string]metadata.Value{"X": metadata.String("v")}}},
		{StrategyID: "b", Result: metadata.Result{StrategyID: "b", Coverage: 100,
			Fields: map[string]metadata.Value{"X": metadata.String("w")}}},
	}

	field, _ := Merge(lowCoverage).Field("X")
	// Priority order, not coverage, decides: a's value wins despite 1%.
	if !field.Value.Equal(metadata.String("v")) {
		t.Errorf("chosen value: got %s, want priority source's", field.Value.Canonical())
	}
}
