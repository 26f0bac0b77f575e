// Package entropy computes Shannon entropy over byte-value frequency, both
// for whole buffers and per fixed-size chunk. High-entropy chunks are the
// classic tell for embedded compressed or encrypted payloads.
package entropy

import "math"

// DefaultChunkSize is the per-chunk window when the caller passes 0.
const DefaultChunkSize = 256

// DefaultHighThreshold flags chunks at or above this many bits/byte.
const DefaultHighThreshold = 7.5

// Chunk is the entropy of one fixed-size window of the buffer.
type Chunk struct {
	Offset  int     `json:"offset"`
	Entropy float64 `json:"entropy"`
	High    bool    `json:"high"`
}

// Report carries whole-buffer and per-chunk entropy. Overall is bits per
// byte in [0, 8].
type Report struct {
	Overall       float64 `json:"overall"`
	Chunks        []Chunk `json:"chunks"`
	HighChunks    int     `json:"high_chunks"`
	HighThreshold float64 `json:"high_threshold"`
}

// Options controls chunking and the high-entropy flag.
type Options struct {
	ChunkSize     int
	HighThreshold float64
}

// Analyze computes the entropy report for buf. An empty buffer yields
// overall 0 and no chunks. O(n) in the buffer length, pure.
func Analyze(buf []byte, opts Options) Report {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	threshold := opts.HighThreshold
	if threshold <= 0 {
		threshold = DefaultHighThreshold
	}

	report := Report{
		Overall:       Shannon(buf),
		HighThreshold: threshold,
	}

	for offset := 0; offset < len(buf); offset += chunkSize {
		end := offset + chunkSize
		if end > len(buf) {
			end = len(buf)
		}
		chunk := Chunk{
			Offset:  offset,
			Entropy: Shannon(buf[offset:end]),
		}
		chunk.High = chunk.Entropy >= threshold
		if chunk.High {
			report.HighChunks++
		}
		report.Chunks = append(report.Chunks, chunk)
	}

	return report
}

// Shannon returns the entropy of buf in bits per byte: H = -Σ p(b)·log2 p(b).
func Shannon(buf []byte) float64 {
	if len(buf) == 0 {
		return 0
	}

	var counts [256]int
	for _, b := range buf {
		counts[b]++
	}

	total := float64(len(buf))
	ent := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		ent -= p * math.Log2(p)
	}
	return ent
}
