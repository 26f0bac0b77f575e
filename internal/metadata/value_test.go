package metadata

import (
	"encoding/json"
	"testing"
)

func TestCanonicalScalars(t *testing.T) {
	cases := []struct {
		value Value
		want  string
	}{
		{Null(), "null"},
		{String("Canon"), `"Canon"`},
		{Number(400), "400"},
		{Number(2.8), "2.8"},
		{Bool(true), "true"},
	}
	for _, tc := range cases {
		if got := tc.value.Canonical(); got != tc.want {
			t.Errorf("Canonical: got %q, want %q", got, tc.want)
		}
	}
}

func TestCanonicalMapIsKeyOrderStable(t *testing.T) {
	a := Map(map[string]Value{"lat": Number(51.5), "lng": Number(-0.1)})
	b := Map(map[string]Value{"lng": Number(-0.1), "lat": Number(51.5)})
	if a.Canonical() != b.Canonical() {
		t.Errorf("map canonical depends on insertion order: %q vs %q", a.Canonical(), b.Canonical())
	}
	want := `{"lat":51.5,"lng":-0.1}`
	if a.Canonical() != want {
		t.Errorf("map canonical: got %q, want %q", a.Canonical(), want)
	}
}

func TestEqualUsesDeepEquality(t *testing.T) {
	if !String("x").Equal(String("x")) {
		t.Error("identical strings not equal")
	}
	if String("400").Equal(Number(400)) {
		t.Error("string and number with same text must differ")
	}
	nested1 := Map(map[string]Value{"a": Map(map[string]Value{"b": Bool(false)})})
	nested2 := Map(map[string]Value{"a": Map(map[string]Value{"b": Bool(false)})})
	if !nested1.Equal(nested2) {
		t.Error("deep-equal nested maps not equal")
	}
}

func TestValueJSONRoundTrip(t *testing.T) {
	original := Map(map[string]Value{
		"make":  String("Nikon"),
		"iso":   Number(64),
		"flash": Bool(false),
		"gps":   Null(),
	})

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Value
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !original.Equal(decoded) {
		t.Errorf("round trip changed value: %s vs %s", original.Canonical(), decoded.Canonical())
	}
}

func TestAsString(t *testing.T) {
	if got := Number(1.5).AsString(); got != "1.5" {
		t.Errorf("number AsString: got %q, want %q", got, "1.5")
	}
	if got := Bool(true).AsString(); got != "true" {
		t.Errorf("bool AsString: got %q, want %q", got, "true")
	}
	if got := Null().AsString(); got != "" {
		t.Errorf("null AsString: got %q, want empty", got)
	}
}
