// Package patterns scans the hex-encoded byte stream for a fixed catalogue
// of suspicious byte patterns: long filler runs and file signatures that
// have no business appearing inside an image.
package patterns

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// Severity buckets a pattern's forensic weight.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Finding is every occurrence of one catalogue pattern in a buffer.
type Finding struct {
	PatternID   string   `json:"pattern_id"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Offsets     []int    `json:"offsets"`
}

// Options sets the minimum run lengths. Zero values fall back to the
// defaults of 20 zero bytes and 10 FF bytes.
type Options struct {
	ZeroRunMin int
	FFRunMin   int
}

const (
	defaultZeroRunMin = 20
	defaultFFRunMin   = 10
)

type catalogueEntry struct {
	id          string
	description string
	severity    Severity
	expr        *regexp.Regexp
}

// signatureEntries are position-independent signatures searched anywhere in
// the stream. Filler runs are assembled per-call since their minimum lengths
// are configurable policy.
var signatureEntries = []catalogueEntry{
	{"zip_signature", "embedded ZIP archive signature", SeverityHigh, regexp.MustCompile(`504B0304`)},
	{"pdf_signature", "embedded PDF document signature", SeverityHigh, regexp.MustCompile(`25504446`)},
	{"ole_signature", "embedded OLE compound document signature", SeverityHigh, regexp.MustCompile(`D0CF11E0A1B11AE1`)},
	{"pe_signature", "embedded Windows executable (MZ) signature", SeverityCritical, regexp.MustCompile(`4D5A9000`)},
	{"elf_signature", "embedded ELF executable signature", SeverityCritical, regexp.MustCompile(`7F454C46`)},
}

// Scan runs the full catalogue over buf and returns one finding per pattern
// that occurred, every occurrence offset included. Pure and stateless; an
// empty buffer yields no findings.
func Scan(buf []byte, opts Options) []Finding {
	if len(buf) == 0 {
		return nil
	}

	zeroMin := opts.ZeroRunMin
	if zeroMin <= 0 {
		zeroMin = defaultZeroRunMin
	}
	ffMin := opts.FFRunMin
	if ffMin <= 0 {
		ffMin = defaultFFRunMin
	}

	stream := strings.ToUpper(hex.EncodeToString(buf))

	entries := []catalogueEntry{
		{
			"zero_run",
			fmt.Sprintf("run of %d or more zero bytes", zeroMin),
			SeverityMedium,
			regexp.MustCompile(fmt.Sprintf(`(?:00){%d,}`, zeroMin)),
		},
		{
			"ff_run",
			fmt.Sprintf("run of %d or more 0xFF bytes", ffMin),
			SeverityMedium,
			regexp.MustCompile(fmt.Sprintf(`(?:FF){%d,}`, ffMin)),
		},
	}
	entries = append(entries, signatureEntries...)

	var findings []Finding
	for _, entry := range entries {
		offsets := matchOffsets(stream, entry.expr, runMinFor(entry.id, zeroMin, ffMin))
		if len(offsets) == 0 {
			continue
		}
		findings = append(findings, Finding{
			PatternID:   entry.id,
			Description: entry.description,
			Severity:    entry.severity,
			Offsets:     offsets,
		})
	}
	return findings
}

func runMinFor(id string, zeroMin, ffMin int) int {
	switch id {
	case "zero_run":
		return zeroMin
	case "ff_run":
		return ffMin
	default:
		return 0
	}
}

// matchOffsets converts hex-stream match indexes to byte offsets. A match
// starting at an odd index straddles a byte boundary; it is realigned to the
// next byte and, for run patterns, re-checked against the minimum length.
func matchOffsets(stream string, expr *regexp.Regexp, runMin int) []int {
	var offsets []int
	for _, loc := range expr.FindAllStringIndex(stream, -1) {
		start, end := loc[0], loc[1]
		if start%2 == 1 {
			if runMin == 0 {
				// Signature matches must sit on a byte boundary.
				continue
			}
			start++
			// Realignment shifts the run by a nibble, so its last byte can
			// stick out one digit past the regex match. Re-walk the
			// even-aligned pairs before re-checking the minimum.
			pair := stream[start : start+2]
			end = start
			for end+2 <= len(stream) && stream[end:end+2] == pair {
				end += 2
			}
			if (end-start)/2 < runMin {
				continue
			}
		}
		offsets = append(offsets, start/2)
	}
	return offsets
}

// MaxSeverity returns the highest severity present across findings, or
// SeverityLow when there are none.
func MaxSeverity(findings []Finding) Severity {
	rank := map[Severity]int{SeverityLow: 0, SeverityMedium: 1, SeverityHigh: 2, SeverityCritical: 3}
	max := SeverityLow
	for _, f := range findings {
		if rank[f.Severity] > rank[max] {
			max = f.Severity
		}
	}
	return max
}
