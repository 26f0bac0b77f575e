package metadata

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// EXIFExtractor is the primary metadata parser, an adapter over goexif.
// It is registered first, so its values win consolidation ties.
type EXIFExtractor struct{}

func NewEXIFExtractor() *EXIFExtractor { return &EXIFExtractor{} }

func (e *EXIFExtractor) ID() string { return "exif" }

func (e *EXIFExtractor) Parse(ctx context.Context, buf []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	x, err := exif.Decode(bytes.NewReader(buf))
	if err != nil {
		return Result{}, fmt.Errorf("exif decode: %w", err)
	}

	fields := make(map[string]Value)
	walker := tagWalker{fields: fields}
	if err := x.Walk(&walker); err != nil {
		return Result{}, fmt.Errorf("exif walk: %w", err)
	}

	// LatLong folds the four raw GPS rational tags into signed decimal
	// degrees; keep both forms, the decimal ones are what reports use.
	if lat, long, err := x.LatLong(); err == nil {
		fields["GPSLatitude"] = Number(lat)
		fields["GPSLongitude"] = Number(long)
	}

	return Result{
		StrategyID: e.ID(),
		Fields:     fields,
		Coverage:   coverageFromFieldCount(len(fields)),
	}, nil
}

type tagWalker struct {
	fields map[string]Value
}

func (w *tagWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if tag == nil {
		return nil
	}
	w.fields[string(name)] = tagValue(tag)
	return nil
}

func tagValue(tag *tiff.Tag) Value {
	switch tag.Format() {
	case tiff.StringVal:
		s, err := tag.StringVal()
		if err != nil {
			return String(tag.String())
		}
		return String(strings.TrimSpace(s))
	case tiff.IntVal:
		n, err := tag.Int(0)
		if err != nil {
			return String(tag.String())
		}
		return Number(float64(n))
	case tiff.FloatVal:
		f, err := tag.Float(0)
		if err != nil {
			return String(tag.String())
		}
		return Number(f)
	case tiff.RatVal:
		num, den, err := tag.Rat2(0)
		if err != nil || den == 0 {
			return String(tag.String())
		}
		return Number(float64(num) / float64(den))
	default:
		return String(strings.Trim(tag.String(), `"`))
	}
}

// coverageFromFieldCount maps extracted field counts onto the 0-100
// coverage scale, saturating at 50 fields. Rough by design: coverage is a
// diagnostic hint, never an input to consolidation.
func coverageFromFieldCount(count int) int {
	coverage := count * 2
	if coverage > 100 {
		coverage = 100
	}
	return coverage
}
