package sigscan

// Part is one fixed byte sequence a signature requires at a given offset.
type Part struct {
	Offset int
	Bytes  []byte
}

// Signature describes one known file-format header. Parts must all match for
// the signature to apply; Confidence reflects how specific the prefix is.
type Signature struct {
	Type       string
	Confidence int
	Parts      []Part
}

func sig(name string, confidence int, prefix ...byte) Signature {
	return Signature{Type: name, Confidence: confidence, Parts: []Part{{Offset: 0, Bytes: prefix}}}
}

// signatures is ordered: more specific prefixes come before the generic ones
// they share bytes with (JPEG variants before bare FF D8 FF). Detection takes
// the first match.
var signatures = []Signature{
	sig("JPEG (JFIF)", 100, 0xFF, 0xD8, 0xFF, 0xE0),
	sig("JPEG (EXIF)", 100, 0xFF, 0xD8, 0xFF, 0xE1),
	sig("JPEG", 90, 0xFF, 0xD8, 0xFF),
	sig("PNG", 100, 0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A),
	sig("GIF (87a)", 100, 'G', 'I', 'F', '8', '7', 'a'),
	sig("GIF (89a)", 100, 'G', 'I', 'F', '8', '9', 'a'),
	sig("TIFF (little-endian)", 100, 0x49, 0x49, 0x2A, 0x00),
	sig("TIFF (big-endian)", 100, 0x4D, 0x4D, 0x00, 0x2A),
	{
		Type:       "WebP",
		Confidence: 100,
		Parts: []Part{
			{Offset: 0, Bytes: []byte("RIFF")},
			{Offset: 8, Bytes: []byte("WEBP")},
		},
	},
	{
		Type:       "HEIC",
		Confidence: 100,
		Parts:      []Part{{Offset: 4, Bytes: []byte("ftypheic")}},
	},
	sig("Photoshop (PSD)", 100, '8', 'B', 'P', 'S'),
	sig("ZIP", 100, 0x50, 0x4B, 0x03, 0x04),
	sig("PDF", 100, 0x25, 0x50, 0x44, 0x46),
	sig("OLE Compound Document", 100, 0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1),
	sig("Windows Executable (PE)", 90, 0x4D, 0x5A, 0x90, 0x00),
	sig("ELF Executable", 100, 0x7F, 'E', 'L', 'F'),
	sig("GZIP", 90, 0x1F, 0x8B, 0x08),
	sig("RAR Archive", 100, 0x52, 0x61, 0x72, 0x21, 0x1A, 0x07),
	sig("7-Zip Archive", 100, 0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C),
	sig("BMP", 70, 'B', 'M'),
	sig("ICO", 70, 0x00, 0x00, 0x01, 0x00),
}

// Known returns a copy of the signature table, primarily for display.
func Known() []Signature {
	out := make([]Signature, len(signatures))
	copy(out, signatures)
	return out
}
