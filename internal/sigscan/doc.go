// Package sigscan identifies file formats from magic-byte signatures and
// locates signatures embedded past the start of a buffer.
//
// Detection compares the buffer head against an ordered table of known
// prefixes; the first match wins and unmatched input yields an "Unknown"
// result rather than an error, so callers can always render a verdict.
// The embedded scan slides every known signature over a bounded window and
// reports hits at nonzero offsets only — offset 0 is the container's own
// header, not an embedded object.
package sigscan
