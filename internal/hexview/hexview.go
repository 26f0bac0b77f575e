// Package hexview formats byte ranges as offset/hex/ASCII rows, the
// presentation used by hex dumps and by the pattern scanner's offset math.
package hexview

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// RowWidth is the number of bytes rendered per row.
const RowWidth = 16

// Row is one rendered line: an 8-digit uppercase hex offset, the
// space-separated hex octets padded to full row width, and the printable
// ASCII projection with '.' for everything outside 0x20-0x7E.
type Row struct {
	Offset string `json:"offset"`
	Hex    string `json:"hex"`
	ASCII  string `json:"ascii"`
}

// Render formats buf into rows. baseOffset shifts the displayed offsets so a
// sub-range of a larger file labels correctly; limit caps the rendered bytes
// (<= 0 renders everything given). Rendering the whole of a large file is a
// display concern — callers pass the cap they need.
func Render(buf []byte, baseOffset, limit int) []Row {
	if limit > 0 && limit < len(buf) {
		buf = buf[:limit]
	}

	rows := make([]Row, 0, (len(buf)+RowWidth-1)/RowWidth)
	for start := 0; start < len(buf); start += RowWidth {
		end := start + RowWidth
		if end > len(buf) {
			end = len(buf)
		}
		rows = append(rows, renderRow(buf[start:end], baseOffset+start))
	}
	return rows
}

func renderRow(chunk []byte, offset int) Row {
	var hexParts [RowWidth]string
	var ascii strings.Builder

	for i := 0; i < RowWidth; i++ {
		if i < len(chunk) {
			hexParts[i] = fmt.Sprintf("%02X", chunk[i])
		} else {
			hexParts[i] = "  "
		}
	}
	for _, b := range chunk {
		if b >= 0x20 && b <= 0x7E {
			ascii.WriteByte(b)
		} else {
			ascii.WriteByte('.')
		}
	}

	return Row{
		Offset: fmt.Sprintf("%08X", offset),
		Hex:    strings.Join(hexParts[:], " "),
		ASCII:  ascii.String(),
	}
}

// ParseRows decodes the hex columns of rows back into the original bytes.
// This is the inverse of Render for any input range.
func ParseRows(rows []Row) ([]byte, error) {
	var out []byte
	for _, row := range rows {
		compact := strings.ReplaceAll(strings.TrimSpace(row.Hex), " ", "")
		decoded, err := hex.DecodeString(compact)
		if err != nil {
			return nil, fmt.Errorf("parse hex row at offset %s: %w", row.Offset, err)
		}
		out = append(out, decoded...)
	}
	return out, nil
}
