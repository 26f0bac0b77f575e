package metadata

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// XMPExtractor locates an embedded XMP packet and harvests the common
// properties from it. XMP duplicates much of EXIF on purpose, which makes
// it a useful independent witness for consolidation.
type XMPExtractor struct{}

func NewXMPExtractor() *XMPExtractor { return &XMPExtractor{} }

func (e *XMPExtractor) ID() string { return "xmp" }

var (
	xmpStart = regexp.MustCompile(`<x:xmpmeta[^>]*>`)
	xmpEnd   = []byte("</x:xmpmeta>")

	// Property name -> the consolidated field it maps onto. XMP properties
	// appear either as XML attributes or as element text.
	xmpProperties = map[string]string{
		"tiff:Make":              "Make",
		"tiff:Model":             "Model",
		"xmp:CreatorTool":        "Software",
		"xmp:CreateDate":         "DateTimeOriginal",
		"xmp:ModifyDate":         "DateTime",
		"photoshop:DateCreated":  "DateTimeOriginal",
		"dc:creator":             "Artist",
		"dc:description":         "ImageDescription",
		"tiff:ImageWidth":        "ImageWidth",
		"tiff:ImageLength":       "ImageHeight",
		"exif:ISOSpeedRatings":   "ISOSpeedRatings",
		"xmpRights:WebStatement": "Copyright",
	}
)

func (e *XMPExtractor) Parse(ctx context.Context, buf []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	packet, err := findPacket(buf)
	if err != nil {
		return Result{}, err
	}

	// Properties are visited in sorted order and never overwrite, so two
	// properties mapping to one field (both date forms) resolve the same
	// way on every run.
	properties := make([]string, 0, len(xmpProperties))
	for property := range xmpProperties {
		properties = append(properties, property)
	}
	sort.Strings(properties)

	fields := make(map[string]Value)
	for _, property := range properties {
		fieldName := xmpProperties[property]
		if _, exists := fields[fieldName]; exists {
			continue
		}
		if value, ok := propertyValue(packet, property); ok {
			fields[fieldName] = String(value)
		}
	}
	fields["HasXMPPacket"] = Bool(true)

	return Result{
		StrategyID: e.ID(),
		Fields:     fields,
		Coverage:   clampCoverage(len(fields) * 8),
	}, nil
}

func findPacket(buf []byte) (string, error) {
	loc := xmpStart.FindIndex(buf)
	if loc == nil {
		return "", fmt.Errorf("xmp: no packet found")
	}
	rest := buf[loc[0]:]
	end := strings.Index(string(rest), string(xmpEnd))
	if end < 0 {
		return "", fmt.Errorf("xmp: unterminated packet")
	}
	return string(rest[:end+len(xmpEnd)]), nil
}

// propertyValue tries the attribute form (name="value") first, then the
// element form (<name>value</name>), matching how writers actually emit XMP.
func propertyValue(packet, property string) (string, bool) {
	attr := regexp.MustCompile(regexp.QuoteMeta(property) + `="([^"]*)"`)
	if m := attr.FindStringSubmatch(packet); m != nil && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1]), true
	}
	elem := regexp.MustCompile(`<` + regexp.QuoteMeta(property) + `>\s*([^<]+?)\s*</` + regexp.QuoteMeta(property) + `>`)
	if m := elem.FindStringSubmatch(packet); m != nil && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1]), true
	}
	// rdf:Seq / rdf:Alt wrapped single values (dc:creator et al).
	wrapped := regexp.MustCompile(`<` + regexp.QuoteMeta(property) + `>[\s\S]*?<rdf:li[^>]*>\s*([^<]+?)\s*</rdf:li>`)
	if m := wrapped.FindStringSubmatch(packet); m != nil && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}
