// Package codec wraps image decoding and JPEG re-encoding behind the small
// interface the analysis engine needs. JPEG, PNG, GIF, BMP, and TIFF
// decoders are registered; anything else fails with ErrDecode.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ErrDecode marks unreadable or corrupt image bytes. Operations that need
// decoded pixels fail outright on it; partial results are never returned.
var ErrDecode = errors.New("image decode failure")

// Decoder turns raw bytes into pixels. The package-level Decode satisfies
// it; tests substitute their own.
type Decoder interface {
	Decode(buf []byte) (image.Image, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(buf []byte) (image.Image, error)

func (f DecoderFunc) Decode(buf []byte) (image.Image, error) { return f(buf) }

// Decode decodes buf using the registered image formats.
func Decode(buf []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

// EncodeJPEG re-encodes img at the given quality (1-100).
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}
	return buf.Bytes(), nil
}
