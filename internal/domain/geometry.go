package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Geometry type tags as they appear in the feed.
const (
	GeometryPoint   = "Point"
	GeometryPolygon = "Polygon"
)

// Shape is the decoded form of a geometry payload. Exactly one of Point or
// Ring is set for a successful decode; both are nil for unknown geometry
// kinds and malformed payloads.
type Shape struct {
	Point *Geo
	Ring  []Geo
}

// Empty reports whether the shape carries no coordinates.
func (s Shape) Empty() bool {
	return s.Point == nil && len(s.Ring) == 0
}

// DecodeGeometry parses a stored geometry payload according to its type tag.
// Payloads are the raw JSON coordinates value from the feed: [lon, lat] for
// points, [[[lon, lat], ...]] for polygons (exterior ring first).
//
// Decode failures are deliberately silent: corruption in one observation
// must not abort report derivation for the rest, so malformed payloads and
// unknown geometry kinds both return an empty Shape.
func DecodeGeometry(geomType, payload string) Shape {
	switch geomType {
	case GeometryPoint:
		return decodePoint(payload)
	case GeometryPolygon:
		return decodePolygon(payload)
	default:
		return Shape{}
	}
}

func decodePoint(payload string) Shape {
	var coords []float64
	if err := json.Unmarshal([]byte(payload), &coords); err != nil || len(coords) < 2 {
		return Shape{}
	}
	return Shape{Point: &Geo{Lon: coords[0], Lat: coords[1]}}
}

func decodePolygon(payload string) Shape {
	var rings [][][]float64
	if err := json.Unmarshal([]byte(payload), &rings); err != nil || len(rings) == 0 {
		return Shape{}
	}

	exterior := rings[0]
	ring := make([]Geo, 0, len(exterior))
	for _, pair := range exterior {
		if len(pair) < 2 {
			return Shape{}
		}
		ring = append(ring, Geo{Lon: pair[0], Lat: pair[1]})
	}
	if len(ring) == 0 {
		return Shape{}
	}
	return Shape{Ring: ring}
}

// EncodePoint renders a coordinate pair in Point payload form.
// Round-trips through DecodeGeometry within floating-point tolerance.
func EncodePoint(g Geo) string {
	return fmt.Sprintf("[%s, %s]", formatCoord(g.Lon), formatCoord(g.Lat))
}

// EncodePolygon renders a ring in Polygon payload form.
func EncodePolygon(ring []Geo) string {
	pairs := make([]string, len(ring))
	for i, g := range ring {
		pairs[i] = fmt.Sprintf("[%s, %s]", formatCoord(g.Lon), formatCoord(g.Lat))
	}
	return "[[" + strings.Join(pairs, ", ") + "]]"
}

// FlattenRing renders a ring as "lon, lat, lon, lat, ..." for the
// spreadsheet's polygon column.
func FlattenRing(ring []Geo) string {
	parts := make([]string, 0, len(ring)*2)
	for _, g := range ring {
		parts = append(parts, formatCoord(g.Lon), formatCoord(g.Lat))
	}
	return strings.Join(parts, ", ")
}

// formatCoord formats a coordinate with enough precision to round-trip
// float64 exactly, without trailing zero noise.
func formatCoord(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.10f", v), "0"), ".")
}
