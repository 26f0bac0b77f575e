// Package metadata defines the pluggable extraction-strategy contract and
// the strategies shipped with shutter.
//
// Each strategy independently parses the raw file bytes into a flat
// field-name to value map plus a self-reported coverage estimate. Field
// names collide across strategies on purpose; reconciling them is the
// consolidation engine's job, not the strategies'. Strategies never panic
// upward: a failed parse is an error result the caller records and excludes.
//
// Registered strategy order is the consolidation priority order and is
// fixed: exif, segments, rawscan, xmp.
package metadata
