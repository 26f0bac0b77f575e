package ela

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"shutter/internal/forensicerr"
)

func flatImage(width, height int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestCompareSelfIsClean(t *testing.T) {
	img := flatImage(96, 64, color.RGBA{R: 120, G: 130, B: 140, A: 255})

	result, err := Compare(img, Options{})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if result.OverallScore >= 10 {
		t.Errorf("overall score: got %.2f, want < 10 for unmodified image", result.OverallScore)
	}
	if len(result.Suspicious) != 0 {
		t.Errorf("suspicious blocks: got %d, want 0", len(result.Suspicious))
	}
	if result.Verdict != "low manipulation probability" {
		t.Errorf("verdict: got %q", result.Verdict)
	}
	if result.Width != 96 || result.Height != 64 {
		t.Errorf("dimensions: got %dx%d", result.Width, result.Height)
	}
}

func TestCompareDefaultsApplied(t *testing.T) {
	img := flatImage(32, 32, color.RGBA{R: 200, G: 200, B: 200, A: 255})

	result, err := Compare(img, Options{})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if result.Quality != DefaultQuality {
		t.Errorf("quality: got %d, want %d", result.Quality, DefaultQuality)
	}
	if result.Threshold != DefaultThreshold {
		t.Errorf("threshold: got %v, want %v", result.Threshold, DefaultThreshold)
	}
}

func TestCompareRejectsBadOptions(t *testing.T) {
	img := flatImage(16, 16, color.RGBA{A: 255})

	if _, err := Compare(img, Options{Quality: 5}); !errors.Is(err, forensicerr.ErrConfiguration) {
		t.Errorf("quality 5: got %v, want configuration error", err)
	}
	if _, err := Compare(img, Options{BlockSize: 4}); !errors.Is(err, forensicerr.ErrConfiguration) {
		t.Errorf("block size 4: got %v, want configuration error", err)
	}
}

func TestCompareZeroSizedImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if _, err := Compare(img, Options{}); !errors.Is(err, forensicerr.ErrDecode) {
		t.Errorf("got %v, want decode error", err)
	}
}

func TestDiffMapRawTotalNotClamped(t *testing.T) {
	a := flatImage(4, 4, color.RGBA{R: 200, G: 200, B: 200, A: 255})
	b := flatImage(4, 4, color.RGBA{A: 255})

	diff, rawTotal := diffMap(a, b)
	for _, v := range diff {
		if v != 255 {
			t.Fatalf("amplified map: got %d, want clamped 255", v)
		}
	}
	// 200 per channel per pixel: the visual map saturates but the raw total
	// carries the full difference.
	if want := 200.0 * 16; rawTotal != want {
		t.Errorf("raw total: got %v, want %v", rawTotal, want)
	}
}

func TestVerdictTiers(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0, "low manipulation probability"},
		{9.99, "low manipulation probability"},
		{10, "moderate manipulation probability"},
		{29.9, "moderate manipulation probability"},
		{30, "high manipulation probability"},
		{59.9, "high manipulation probability"},
		{60, "very high manipulation probability"},
		{100, "very high manipulation probability"},
	}
	for _, tc := range cases {
		if got := verdict(tc.score); got != tc.want {
			t.Errorf("verdict(%v): got %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestSuspiciousBlockGeometry(t *testing.T) {
	// 48x40 with block size 32 partitions into 2x2 blocks with clipped edges.
	width, height := 48, 40
	diff := make([]uint8, width*height)
	for i := range diff {
		diff[i] = 255
	}

	blocks := suspiciousBlocks(diff, width, height, Options{Threshold: 15, BlockSize: 32})
	if len(blocks) != 4 {
		t.Fatalf("block count: got %d, want 4", len(blocks))
	}

	edge := blocks[3]
	if edge.X != 32 || edge.Y != 32 || edge.Width != 16 || edge.Height != 8 {
		t.Errorf("edge block: got %+v", edge)
	}
	for _, b := range blocks {
		if b.Confidence != 100 {
			t.Errorf("saturated diff should give confidence 100, got %d", b.Confidence)
		}
	}
}

func TestSuspiciousBlocksBelowThreshold(t *testing.T) {
	diff := make([]uint8, 64*64)
	for i := range diff {
		diff[i] = 10
	}
	if blocks := suspiciousBlocks(diff, 64, 64, Options{Threshold: 15, BlockSize: 32}); blocks != nil {
		t.Errorf("got %d blocks, want none", len(blocks))
	}
}

func TestConfidenceScalesWithThresholdExcess(t *testing.T) {
	diff := make([]uint8, 32*32)
	for i := range diff {
		diff[i] = 30
	}
	blocks := suspiciousBlocks(diff, 32, 32, Options{Threshold: 20, BlockSize: 32})
	if len(blocks) != 1 {
		t.Fatalf("block count: got %d, want 1", len(blocks))
	}
	// mean 30 over threshold 20: 30/20*50 = 75.
	if blocks[0].Confidence != 75 {
		t.Errorf("confidence: got %d, want 75", blocks[0].Confidence)
	}
}
