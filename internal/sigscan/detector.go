package sigscan

import "bytes"

// Match is the outcome of header detection.
type Match struct {
	Type       string `json:"type"`
	Confidence int    `json:"confidence"`
}

// EmbeddedObject is a known signature found past the start of the buffer.
type EmbeddedObject struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
}

// unknown is returned whenever no table entry applies. Detection never fails.
var unknown = Match{Type: "Unknown", Confidence: 0}

// Detect returns the best-matching header signature for buf. The table is
// ordered and the first full match wins; empty or too-short buffers yield
// the Unknown match.
func Detect(buf []byte) Match {
	for _, s := range signatures {
		if matchAt(buf, 0, s) {
			return Match{Type: s.Type, Confidence: s.Confidence}
		}
	}
	return unknown
}

// DefaultScanWindow bounds ScanEmbedded when the caller passes window <= 0.
const DefaultScanWindow = 10000

// ScanEmbedded slides every known signature across the first window bytes of
// buf and reports each match at offset > 0. Signatures anchored away from
// offset 0 (such as ISO-BMFF brands) and prefixes shorter than four bytes are
// skipped: the former cannot be located by a plain slide, the latter
// false-positive too readily to be evidence.
func ScanEmbedded(buf []byte, window int) []EmbeddedObject {
	if window <= 0 {
		window = DefaultScanWindow
	}
	if window > len(buf) {
		window = len(buf)
	}

	var hits []EmbeddedObject
	for offset := 1; offset < window; offset++ {
		for _, s := range signatures {
			first := s.Parts[0]
			if first.Offset != 0 || len(first.Bytes) < 4 {
				continue
			}
			if matchAt(buf, offset, s) {
				hits = append(hits, EmbeddedObject{Type: s.Type, Offset: offset})
				break
			}
		}
	}
	return hits
}

func matchAt(buf []byte, base int, s Signature) bool {
	for _, part := range s.Parts {
		start := base + part.Offset
		end := start + len(part.Bytes)
		if start < 0 || end > len(buf) {
			return false
		}
		if !bytes.Equal(buf[start:end], part.Bytes) {
			return false
		}
	}
	return true
}
