package metadata

import "context"

// Result is one strategy's extraction output. Immutable after creation.
type Result struct {
	StrategyID string `json:"strategy_id"`
	// Fields maps case-sensitive field names to values. Names are not
	// namespaced; collisions across strategies are expected.
	Fields map[string]Value `json:"fields"`
	// Coverage is the strategy's self-reported coverage estimate, 0-100.
	// It is informational only and never affects consolidation.
	Coverage int `json:"coverage"`
}

// Extractor is the pluggable metadata extraction strategy contract. The
// engine is agnostic to how many or which implementations are registered.
type Extractor interface {
	// ID identifies the strategy; it doubles as the source label in
	// consolidated output.
	ID() string
	// Parse extracts a flat field map from the raw file bytes. A failed
	// parse returns an error; the caller records it and excludes the
	// strategy from consolidation.
	Parse(ctx context.Context, buf []byte) (Result, error)
}

// DefaultExtractors returns the shipped strategies in their fixed priority
// order. This order is the consolidation tie-break: the full EXIF parser
// outranks the manual scanners.
func DefaultExtractors() []Extractor {
	return []Extractor{
		NewEXIFExtractor(),
		NewSegmentExtractor(),
		NewRawScanExtractor(),
		NewXMPExtractor(),
	}
}
