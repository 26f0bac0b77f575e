package metadata

import (
	"context"
	"encoding/binary"
	"testing"
)

// buildJPEG assembles a minimal but structurally valid JPEG stream:
// SOI, APP0/JFIF, optional extra segments, SOF0, EOI.
func buildJPEG(extra ...[]byte) []byte {
	buf := []byte{0xFF, 0xD8}

	app0 := append([]byte("JFIF\x00"), 1, 2, 0, 0, 1, 0, 1, 0, 0)
	buf = appendSegment(buf, 0xE0, app0)

	for _, segment := range extra {
		buf = append(buf, segment...)
	}

	// SOF0: precision 8, height 32, width 64, 3 components.
	sof := []byte{8, 0, 32, 0, 64, 3, 1, 0x22, 0, 2, 0x11, 1, 3, 0x11, 1}
	buf = appendSegment(buf, 0xC0, sof)

	return append(buf, 0xFF, 0xD9)
}

func appendSegment(buf []byte, marker byte, payload []byte) []byte {
	buf = append(buf, 0xFF, marker)
	var length [2]byte
	binary.BigEndian.PutUint16(length[:], uint16(len(payload)+2))
	buf = append(buf, length[:]...)
	return append(buf, payload...)
}

func segment(marker byte, payload []byte) []byte {
	return appendSegment(nil, marker, payload)
}

func TestSegmentExtractorJPEG(t *testing.T) {
	comment := segment(0xFE, []byte("shot on location"))
	exifStub := segment(0xE1, append([]byte("Exif\x00\x00"), 0x4D, 0x4D, 0, 0x2A))
	buf := buildJPEG(comment, exifStub)

	result, err := NewSegmentExtractor().Parse(context.Background(), buf)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if result.StrategyID != "segments" {
		t.Errorf("strategy id: got %q", result.StrategyID)
	}

	checks := map[string]Value{
		"Container":   String("JPEG"),
		"JFIFVersion": String("1.02"),
		"Comment":     String("shot on location"),
		"HasEXIF":     Bool(true),
		"ImageWidth":  Number(64),
		"ImageHeight": Number(32),
		"Progressive": Bool(false),
	}
	for name, want := range checks {
		got, ok := result.Fields[name]
		if !ok {
			t.Errorf("field %q missing", name)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("field %q: got %s, want %s", name, got.Canonical(), want.Canonical())
		}
	}
	if result.Coverage <= 0 || result.Coverage > 100 {
		t.Errorf("coverage out of range: %d", result.Coverage)
	}
}

func TestSegmentExtractorPNG(t *testing.T) {
	buf := append([]byte{}, pngMagic...)

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], 640)
	binary.BigEndian.PutUint32(ihdr[4:8], 480)
	ihdr[8] = 8
	ihdr[9] = 6
	buf = appendPNGChunk(buf, "IHDR", ihdr)
	buf = appendPNGChunk(buf, "tEXt", append([]byte("Software\x00"), []byte("darktable 4.6")...))
	buf = appendPNGChunk(buf, "IEND", nil)

	result, err := NewSegmentExtractor().Parse(context.Background(), buf)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if got := result.Fields["ImageWidth"]; !got.Equal(Number(640)) {
		t.Errorf("ImageWidth: got %s", got.Canonical())
	}
	if got := result.Fields["ImageHeight"]; !got.Equal(Number(480)) {
		t.Errorf("ImageHeight: got %s", got.Canonical())
	}
	if got := result.Fields["Software"]; !got.Equal(String("darktable 4.6")) {
		t.Errorf("Software: got %s", got.Canonical())
	}
}

func appendPNGChunk(buf []byte, chunkType string, data []byte) []byte {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))
	buf = append(buf, length[:]...)
	buf = append(buf, chunkType...)
	buf = append(buf, data...)
	return append(buf, 0, 0, 0, 0) // CRC, unchecked by the walker
}

func TestSegmentExtractorRejectsUnknownContainer(t *testing.T) {
	if _, err := NewSegmentExtractor().Parse(context.Background(), []byte("plain text")); err == nil {
		t.Fatal("expected error for unrecognized container")
	}
}

func TestRawScanTrailingData(t *testing.T) {
	buf := buildJPEG()
	buf = append(buf, []byte("SECRET PAYLOAD")...)

	result, err := NewRawScanExtractor().Parse(context.Background(), buf)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := result.Fields["HasTrailingData"]; !got.Equal(Bool(true)) {
		t.Errorf("HasTrailingData: got %s, want true", got.Canonical())
	}
	if got := result.Fields["TrailingBytes"]; !got.Equal(Number(14)) {
		t.Errorf("TrailingBytes: got %s, want 14", got.Canonical())
	}
	if got := result.Fields["DetectedFormat"]; !got.Equal(String("JPEG (JFIF)")) {
		t.Errorf("DetectedFormat: got %s", got.Canonical())
	}
}

func TestRawScanCleanFile(t *testing.T) {
	result, err := NewRawScanExtractor().Parse(context.Background(), buildJPEG())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := result.Fields["HasTrailingData"]; !got.Equal(Bool(false)) {
		t.Errorf("HasTrailingData: got %s, want false", got.Canonical())
	}
}

func TestRawScanNeverFailsOnGarbage(t *testing.T) {
	result, err := NewRawScanExtractor().Parse(context.Background(), []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("rawscan should tolerate garbage: %v", err)
	}
	if got := result.Fields["DetectedFormat"]; !got.Equal(String("Unknown")) {
		t.Errorf("DetectedFormat: got %s, want Unknown", got.Canonical())
	}
}

const xmpSample = `<?xpacket begin="" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description tiff:Make="Canon" tiff:Model="Canon EOS R5"
    xmp:CreatorTool="Adobe Lightroom 7.1">
   <xmp:CreateDate>2023-04-01T10:30:00</xmp:CreateDate>
   <dc:creator><rdf:Seq><rdf:li>Jane Doe</rdf:li></rdf:Seq></dc:creator>
  </rdf:Description>
 </rdf:RDF>
</x:xmpmeta>
<?xpacket end="w"?>`

func TestXMPExtractor(t *testing.T) {
	buf := append([]byte("leading binary \x00\x01"), []byte(xmpSample)...)

	result, err := NewXMPExtractor().Parse(context.Background(), buf)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	checks := map[string]Value{
		"Make":             String("Canon"),
		"Model":            String("Canon EOS R5"),
		"Software":         String("Adobe Lightroom 7.1"),
		"DateTimeOriginal": String("2023-04-01T10:30:00"),
		"Artist":           String("Jane Doe"),
		"HasXMPPacket":     Bool(true),
	}
	for name, want := range checks {
		got, ok := result.Fields[name]
		if !ok {
			t.Errorf("field %q missing", name)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("field %q: got %s, want %s", name, got.Canonical(), want.Canonical())
		}
	}
}

func TestXMPExtractorNoPacket(t *testing.T) {
	if _, err := NewXMPExtractor().Parse(context.Background(), []byte("no xml here")); err == nil {
		t.Fatal("expected error when no packet is present")
	}
}

func TestEXIFExtractorRejectsNonImage(t *testing.T) {
	if _, err := NewEXIFExtractor().Parse(context.Background(), []byte("not an image")); err == nil {
		t.Fatal("expected error for non-image input")
	}
}

func TestDefaultExtractorOrder(t *testing.T) {
	extractors := DefaultExtractors()
	want := []string{"exif", "segments", "rawscan", "xmp"}
	if len(extractors) != len(want) {
		t.Fatalf("extractor count: got %d, want %d", len(extractors), len(want))
	}
	for i, e := range extractors {
		if e.ID() != want[i] {
			t.Errorf("position %d: got %q, want %q", i, e.ID(), want[i])
		}
	}
}
