package consolidate

import (
	"math"
	"sort"

	"shutter/internal/metadata"
)

// Outcome is one strategy's run: either a result or an error. Ordering of
// the outcome slice is the strategy-priority order.
type Outcome struct {
	StrategyID string
	Result     metadata.Result
	Err        error
}

// Failed reports whether the strategy errored and is excluded from
// consolidation.
func (o Outcome) Failed() bool { return o.Err != nil }

// Conflict records a source whose value diverged from the chosen one.
type Conflict struct {
	Source string         `json:"source"`
	Value  metadata.Value `json:"value"`
}

// Field is one consolidated metadata field.
type Field struct {
	Name string `json:"name"`
	// Value is the value of the first-priority source that reported the
	// field.
	Value metadata.Value `json:"value"`
	// Sources lists every contributing strategy in priority order.
	Sources []string `json:"sources"`
	// Confidence is 0-100; see the package doc for the formula.
	Confidence int `json:"confidence"`
	// Conflicts holds every later source whose value differs from Value.
	// Empty exactly when all reporting sources agree.
	Conflicts []Conflict `json:"conflicts,omitempty"`
}

// View is the consolidated result: fields in sorted name order plus the
// outcome bookkeeping reports need. No outcome is ever dropped silently.
type View struct {
	Fields []Field `json:"fields"`
	// Succeeded and Failed account for every strategy outcome.
	Succeeded []string          `json:"succeeded"`
	Failed    map[string]string `json:"failed,omitempty"`
}

// Merge consolidates the outcomes. It is deterministic and idempotent:
// the same outcomes always produce an identical view.
func Merge(outcomes []Outcome) View {
	view := View{}

	type sourced struct {
		source string
		value  metadata.Value
	}
	byField := make(map[string][]sourced)

	for _, outcome := range outcomes {
		if outcome.Failed() {
			if view.Failed == nil {
				view.Failed = make(map[string]string)
			}
			view.Failed[outcome.StrategyID] = outcome.Err.Error()
			continue
		}
		view.Succeeded = append(view.Succeeded, outcome.StrategyID)

		// Collect this strategy's fields in sorted order so the per-field
		// source lists are reproducible.
		names := make([]string, 0, len(outcome.Result.Fields))
		for name := range outcome.Result.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			byField[name] = append(byField[name], sourced{
				source: outcome.StrategyID,
				value:  outcome.Result.Fields[name],
			})
		}
	}

	names := make([]string, 0, len(byField))
	for name := range byField {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entries := byField[name]
		chosen := entries[0].value
		chosenCanonical := chosen.Canonical()

		field := Field{
			Name:  name,
			Value: chosen,
		}

		distinct := map[string]struct{}{chosenCanonical: {}}
		for _, entry := range entries {
			field.Sources = append(field.Sources, entry.source)
		}
		for _, entry := range entries[1:] {
			canonical := entry.value.Canonical()
			distinct[canonical] = struct{}{}
			if canonical != chosenCanonical {
				field.Conflicts = append(field.Conflicts, Conflict{
					Source: entry.source,
					Value:  entry.value,
				})
			}
		}

		field.Confidence = confidence(len(entries), len(distinct))
		view.Fields = append(view.Fields, field)
	}

	return view
}

// confidence implements round(100·(k−u+1)/k) for k contributing sources
// with u distinct values.
func confidence(k, u int) int {
	if k <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(k-u+1) / float64(k)))
}

// Field returns the consolidated field by name.
func (v View) Field(name string) (Field, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// StringValue is a convenience for report code: the chosen value of a field
// as display text, or empty when absent.
func (v View) StringValue(name string) string {
	f, ok := v.Field(name)
	if !ok {
		return ""
	}
	return f.Value.AsString()
}
