package metadata

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"strings"
)

// SegmentExtractor walks container segments by hand: JPEG marker segments
// or PNG chunks. It deliberately overlaps the primary EXIF parser on fields
// like dimensions so consolidation can cross-check the two.
type SegmentExtractor struct{}

func NewSegmentExtractor() *SegmentExtractor { return &SegmentExtractor{} }

func (e *SegmentExtractor) ID() string { return "segments" }

var (
	jpegMagic = []byte{0xFF, 0xD8}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
)

func (e *SegmentExtractor) Parse(ctx context.Context, buf []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	switch {
	case bytes.HasPrefix(buf, jpegMagic):
		return e.parseJPEG(buf)
	case bytes.HasPrefix(buf, pngMagic):
		return e.parsePNG(buf)
	default:
		return Result{}, fmt.Errorf("segments: unrecognized container")
	}
}

func (e *SegmentExtractor) parseJPEG(buf []byte) (Result, error) {
	fields := map[string]Value{"Container": String("JPEG")}
	segmentCount := 0

	offset := 2
	for offset+4 <= len(buf) {
		if buf[offset] != 0xFF {
			break
		}
		marker := buf[offset+1]
		offset += 2

		// Padding and standalone markers carry no length word.
		if marker == 0xFF {
			offset--
			continue
		}
		if marker == 0xD8 || (marker >= 0xD0 && marker <= 0xD7) {
			continue
		}
		if marker == 0xD9 { // EOI
			break
		}
		if offset+2 > len(buf) {
			break
		}
		length := int(binary.BigEndian.Uint16(buf[offset : offset+2]))
		if length < 2 || offset+length > len(buf) {
			break
		}
		segment := buf[offset+2 : offset+length]
		segmentCount++

		switch {
		case marker == 0xE0 && bytes.HasPrefix(segment, []byte("JFIF\x00")):
			if len(segment) >= 7 {
				fields["JFIFVersion"] = String(fmt.Sprintf("%d.%02d", segment[5], segment[6]))
			}
		case marker == 0xE1 && bytes.HasPrefix(segment, []byte("Exif\x00\x00")):
			fields["HasEXIF"] = Bool(true)
		case marker == 0xE1 && bytes.HasPrefix(segment, []byte("http://ns.adobe.com/xap/1.0/")):
			fields["HasXMP"] = Bool(true)
		case marker == 0xED:
			fields["HasIPTC"] = Bool(true)
		case marker == 0xFE:
			if comment := strings.TrimSpace(string(segment)); comment != "" {
				fields["Comment"] = String(comment)
			}
		case isSOFMarker(marker):
			if len(segment) >= 5 {
				fields["ImageHeight"] = Number(float64(binary.BigEndian.Uint16(segment[1:3])))
				fields["ImageWidth"] = Number(float64(binary.BigEndian.Uint16(segment[3:5])))
				fields["BitDepth"] = Number(float64(segment[0]))
			}
			fields["Progressive"] = Bool(marker == 0xC2)
		}

		if marker == 0xDA { // SOS: entropy-coded data follows, stop walking
			break
		}
		offset += length
	}

	fields["SegmentCount"] = Number(float64(segmentCount))
	return Result{
		StrategyID: e.ID(),
		Fields:     fields,
		Coverage:   clampCoverage(coverageFromFieldCount(len(fields)) + 20),
	}, nil
}

func isSOFMarker(marker byte) bool {
	// SOF0-SOF15 minus DHT (C4), JPG (C8), DAC (CC).
	return marker >= 0xC0 && marker <= 0xCF && marker != 0xC4 && marker != 0xC8 && marker != 0xCC
}

func (e *SegmentExtractor) parsePNG(buf []byte) (Result, error) {
	fields := map[string]Value{"Container": String("PNG")}
	chunkCount := 0

	offset := len(pngMagic)
	for offset+8 <= len(buf) {
		length := int(binary.BigEndian.Uint32(buf[offset : offset+4]))
		chunkType := string(buf[offset+4 : offset+8])
		dataStart := offset + 8
		if length < 0 || dataStart+length > len(buf) {
			break
		}
		data := buf[dataStart : dataStart+length]
		chunkCount++

		switch chunkType {
		case "IHDR":
			if len(data) >= 10 {
				fields["ImageWidth"] = Number(float64(binary.BigEndian.Uint32(data[0:4])))
				fields["ImageHeight"] = Number(float64(binary.BigEndian.Uint32(data[4:8])))
				fields["BitDepth"] = Number(float64(data[8]))
				fields["ColorType"] = Number(float64(data[9]))
			}
		case "tEXt":
			if key, value, ok := splitPNGText(data); ok {
				fields[key] = String(value)
			}
		case "eXIf":
			fields["HasEXIF"] = Bool(true)
		case "iTXt":
			if bytes.HasPrefix(data, []byte("XML:com.adobe.xmp")) {
				fields["HasXMP"] = Bool(true)
			}
		case "IEND":
			offset = len(buf)
			continue
		}

		// Chunk data is followed by a 4-byte CRC.
		offset = dataStart + length + 4
	}

	fields["ChunkCount"] = Number(float64(chunkCount))
	return Result{
		StrategyID: e.ID(),
		Fields:     fields,
		Coverage:   clampCoverage(coverageFromFieldCount(len(fields)) + 20),
	}, nil
}

func clampCoverage(coverage int) int {
	if coverage > 100 {
		return 100
	}
	if coverage < 0 {
		return 0
	}
	return coverage
}

func splitPNGText(data []byte) (string, string, bool) {
	sep := bytes.IndexByte(data, 0)
	if sep <= 0 {
		return "", "", false
	}
	key := strings.TrimSpace(string(data[:sep]))
	if key == "" {
		return "", "", false
	}
	return key, string(data[sep+1:]), true
}
