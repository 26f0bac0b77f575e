package testsupport

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// FlatImage builds a uniformly colored RGBA image.
func FlatImage(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// JPEGBytes encodes a flat gray image as a real JPEG stream.
func JPEGBytes(t testing.TB, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := FlatImage(width, height, color.RGBA{R: 128, G: 128, B: 128, A: 255})
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// PNGBytes encodes a flat gray image as a real PNG stream.
func PNGBytes(t testing.TB, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := FlatImage(width, height, color.RGBA{R: 128, G: 128, B: 128, A: 255})
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// WriteFile drops content into dir under name and returns the full path.
func WriteFile(t testing.TB, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ZerosWithZIP returns a zero-filled buffer with a ZIP local-file signature
// planted at offset.
func ZerosWithZIP(size, offset int) []byte {
	buf := make([]byte, size)
	copy(buf[offset:], []byte{0x50, 0x4B, 0x03, 0x04})
	return buf
}
