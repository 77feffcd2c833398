package domain

import (
	"encoding/json"
	"time"
)

// Feed is the decoded EONET events document.
type Feed struct {
	Title  string      `json:"title,omitempty"`
	Events []FeedEvent `json:"events"`
}

// FeedEvent is one upstream event with its nested collections.
type FeedEvent struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Categories []FeedCategory `json:"categories"`
	Sources    []FeedSource   `json:"sources"`
	Geometries []FeedGeometry `json:"geometries"`
}

// FeedCategory is a classification tag attached to an event.
type FeedCategory struct {
	Title string `json:"title"`
}

// FeedSource is a provenance link for an event.
type FeedSource struct {
	URL string `json:"url"`
}

// FeedGeometry is a single dated coordinate observation. Coordinates are
// kept as raw JSON because their shape depends on Type (see doc.go); the
// store persists the raw text and DecodeGeometry parses it on the way out.
type FeedGeometry struct {
	Date        string          `json:"date"`
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Geo is a WGS-84 coordinate pair, longitude first per GeoJSON order.
type Geo struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Record is one derived report row: a category membership joined against a
// single geometry observation, with the event title attached.
//
// Longitude/Latitude are set for Point observations, PolygonCoords for
// Polygon observations (a flattened "lon, lat, lon, lat, ..." rendering of
// the exterior ring). All three are nil when the geometry kind is unknown
// or the payload failed to decode.
type Record struct {
	EventID       string
	Category      string
	EventTitle    string
	ObservedAt    time.Time
	GeometryType  string
	Longitude     *float64
	Latitude      *float64
	PolygonCoords *string
}

// observedAtLayouts are accepted geometry date formats, most common first.
var observedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseObservedAt parses a geometry date string. The second return value is
// false when no layout matches; callers drop such observations.
func ParseObservedAt(s string) (time.Time, bool) {
	for _, layout := range observedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
