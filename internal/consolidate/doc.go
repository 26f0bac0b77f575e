// Package consolidate merges the field maps of several extraction
// strategies into one authoritative view with per-field confidence and
// conflict tracking.
//
// Strategy registration order is the priority order: the chosen value for
// a field is always the one reported by the first-registered strategy that
// supplied it, and later divergent values are recorded as conflicts rather
// than discarded. Confidence is round(100·(k−u+1)/k) where k is the number
// of strategies reporting the field and u the number of distinct values
// among them — full agreement scores 100, total disagreement trends toward
// 100/k. The formula is a documented design choice, not a statistical law.
//
// Failed strategies contribute nothing; consolidation of zero successful
// strategies yields an empty map, never an error.
package consolidate
