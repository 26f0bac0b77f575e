package metadata

import (
	"bytes"
	"context"

	"shutter/internal/sigscan"
)

// RawScanExtractor works at the byte level without trusting any container
// structure: header identification, trailing-data detection past the image
// terminator, and gross structural counts. It is the strategy that still
// returns something useful for truncated or lightly corrupted files.
type RawScanExtractor struct{}

func NewRawScanExtractor() *RawScanExtractor { return &RawScanExtractor{} }

func (e *RawScanExtractor) ID() string { return "rawscan" }

func (e *RawScanExtractor) Parse(ctx context.Context, buf []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	fields := map[string]Value{
		"FileSize": Number(float64(len(buf))),
	}

	match := sigscan.Detect(buf)
	fields["DetectedFormat"] = String(match.Type)

	switch {
	case bytes.HasPrefix(buf, jpegMagic):
		e.scanJPEGStructure(buf, fields)
	case bytes.HasPrefix(buf, pngMagic):
		e.scanPNGStructure(buf, fields)
	}

	return Result{
		StrategyID: e.ID(),
		Fields:     fields,
		Coverage:   clampCoverage(len(fields) * 10),
	}, nil
}

func (e *RawScanExtractor) scanJPEGStructure(buf []byte, fields map[string]Value) {
	// The EOI marker ends the image stream; anything after it is payload
	// the encoder never wrote.
	eoi := bytes.LastIndex(buf, []byte{0xFF, 0xD9})
	if eoi < 0 {
		fields["Truncated"] = Bool(true)
		return
	}
	trailing := len(buf) - (eoi + 2)
	fields["EOIOffset"] = Number(float64(eoi))
	fields["TrailingBytes"] = Number(float64(trailing))
	fields["HasTrailingData"] = Bool(trailing > 0)

	fields["MarkerCount"] = Number(float64(bytes.Count(buf[:eoi], []byte{0xFF, 0xDB}) +
		bytes.Count(buf[:eoi], []byte{0xFF, 0xC4})))
}

func (e *RawScanExtractor) scanPNGStructure(buf []byte, fields map[string]Value) {
	iend := bytes.LastIndex(buf, []byte("IEND"))
	if iend < 0 {
		fields["Truncated"] = Bool(true)
		return
	}
	// IEND chunk: 4 type bytes + 4 CRC bytes after the index.
	trailing := len(buf) - (iend + 8)
	if trailing < 0 {
		trailing = 0
	}
	fields["IENDOffset"] = Number(float64(iend))
	fields["TrailingBytes"] = Number(float64(trailing))
	fields["HasTrailingData"] = Bool(trailing > 0)
	fields["IDATCount"] = Number(float64(bytes.Count(buf[:iend], []byte("IDAT"))))
}
