// Package ela implements error-level analysis: an image is re-encoded
// through the lossy JPEG codec and diffed against itself. Regions that
// respond differently to recompression than their surroundings are a
// classic sign of splicing or local editing.
package ela

import (
	"image"

	"shutter/internal/codec"
	"shutter/internal/forensicerr"
)

const (
	// DefaultQuality is the JPEG re-encode quality for the round trip.
	DefaultQuality = 90
	// DefaultThreshold is the amplified-difference mean (0-255 scale) above
	// which a block is flagged.
	DefaultThreshold = 15.0
	// DefaultBlockSize is the square block edge in pixels.
	DefaultBlockSize = 32

	// amplify scales the raw per-pixel difference into a visible range.
	amplify = 10
)

type Options struct {
	Quality   int
	Threshold float64
	BlockSize int
}

func (o Options) withDefaults() Options {
	if o.Quality == 0 {
		o.Quality = DefaultQuality
	}
	if o.Threshold == 0 {
		o.Threshold = DefaultThreshold
	}
	if o.BlockSize == 0 {
		o.BlockSize = DefaultBlockSize
	}
	return o
}

// Block is a spatial region whose mean amplified difference exceeded the
// threshold. Confidence scales with how far past the threshold the block
// landed: exactly at threshold is 50, twice the threshold or more is 100.
type Block struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	MeanDiff   float64 `json:"meanDiff"`
	Confidence int     `json:"confidence"`
}

type Result struct {
	// OverallScore is min(100, meanDiff/50*100) across all pixels.
	OverallScore float64 `json:"overallScore"`
	MeanDiff     float64 `json:"meanDiff"`
	Verdict      string  `json:"verdict"`
	Suspicious   []Block `json:"suspiciousBlocks"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Quality      int     `json:"quality"`
	Threshold    float64 `json:"threshold"`
}

// Compare runs error-level analysis on a decoded image. The image is
// re-encoded at opts.Quality, decoded back, and diffed per pixel; the
// amplified difference map is partitioned into blocks and scored. A codec
// failure aborts the whole comparison, never a partial result.
func Compare(img image.Image, opts Options) (Result, error) {
	opts = opts.withDefaults()
	if opts.Quality < 10 || opts.Quality > 100 {
		return Result{}, forensicerr.Wrap(forensicerr.ErrConfiguration, "ela", "compare", "quality out of range 10-100", nil)
	}
	if opts.BlockSize < 8 {
		return Result{}, forensicerr.Wrap(forensicerr.ErrConfiguration, "ela", "compare", "block size below 8", nil)
	}

	encoded, err := codec.EncodeJPEG(img, opts.Quality)
	if err != nil {
		return Result{}, forensicerr.Wrap(forensicerr.ErrDecode, "ela", "compare", "re-encode", err)
	}
	roundTripped, err := codec.Decode(encoded)
	if err != nil {
		return Result{}, forensicerr.Wrap(forensicerr.ErrDecode, "ela", "compare", "round-trip decode", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return Result{}, forensicerr.Wrap(forensicerr.ErrDecode, "ela", "compare", "zero-sized image", nil)
	}

	diff, rawTotal := diffMap(img, roundTripped)

	// Mean of the raw (unamplified) per-pixel differences drives the score;
	// the visual map is amplified and clamped separately.
	meanDiff := rawTotal / float64(len(diff))

	result := Result{
		MeanDiff:  meanDiff,
		Width:     width,
		Height:    height,
		Quality:   opts.Quality,
		Threshold: opts.Threshold,
	}
	result.OverallScore = min(100, meanDiff/50*100)
	result.Verdict = verdict(result.OverallScore)
	result.Suspicious = suspiciousBlocks(diff, width, height, opts)

	return result, nil
}

// diffMap builds the amplified difference map (per pixel, the mean absolute
// channel difference scaled by the amplification factor and clamped to 255)
// and the sum of the raw, unclamped per-pixel differences.
func diffMap(a, b image.Image) ([]uint8, float64) {
	bounds := a.Bounds()
	bBounds := b.Bounds()
	out := make([]uint8, bounds.Dx()*bounds.Dy())
	var rawTotal float64

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		by := bBounds.Min.Y + (y - bounds.Min.Y)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			bx := bBounds.Min.X + (x - bounds.Min.X)
			ar, ag, ab, _ := a.At(x, y).RGBA()
			br, bg, bb, _ := b.At(bx, by).RGBA()

			channelSum := absDiff(ar>>8, br>>8) + absDiff(ag>>8, bg>>8) + absDiff(ab>>8, bb>>8)
			rawTotal += float64(channelSum) / 3

			d := channelSum * amplify / 3
			if d > 255 {
				d = 255
			}
			out[i] = uint8(d)
			i++
		}
	}
	return out, rawTotal
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

func suspiciousBlocks(diff []uint8, width, height int, opts Options) []Block {
	var blocks []Block
	size := opts.BlockSize

	for by := 0; by < height; by += size {
		for bx := 0; bx < width; bx += size {
			bw := min(size, width-bx)
			bh := min(size, height-by)

			var sum float64
			for y := by; y < by+bh; y++ {
				row := diff[y*width+bx : y*width+bx+bw]
				for _, v := range row {
					sum += float64(v)
				}
			}
			mean := sum / float64(bw*bh)
			if mean <= opts.Threshold {
				continue
			}

			confidence := int(mean / opts.Threshold * 50)
			if confidence > 100 {
				confidence = 100
			}
			blocks = append(blocks, Block{
				X:          bx,
				Y:          by,
				Width:      bw,
				Height:     bh,
				MeanDiff:   mean,
				Confidence: confidence,
			})
		}
	}
	return blocks
}

// verdict buckets the overall score into the four fixed narrative tiers.
func verdict(score float64) string {
	switch {
	case score < 10:
		return "low manipulation probability"
	case score < 30:
		return "moderate manipulation probability"
	case score < 60:
		return "high manipulation probability"
	default:
		return "very high manipulation probability"
	}
}
