// Package domain models NASA EONET natural-hazard event data.
//
// # Data Source
//
// Events originate from the Earth Observatory Natural Event Tracker (EONET),
// https://eonet.gsfc.nasa.gov. The feed is a single JSON document holding an
// array of open events. Each event carries an upstream-assigned string ID
// (e.g. "EONET_2880"), a title, and three nested collections:
//
//	categories: classification tags, e.g. "Wildfires", "Severe Storms".
//	            An event may belong to more than one category.
//	sources:    provenance URLs pointing at the originating agency.
//	geometries: dated coordinate observations. A long-running event (a
//	            wildfire tracked daily) accumulates one geometry per
//	            reporting date.
//
// # Geometry Conventions
//
// EONET reports two geometry kinds, distinguished by the "type" field:
//
//	Point:   coordinates = [lon, lat]
//	Polygon: coordinates = [[[lon, lat], ...]] — one or more closed rings,
//	         only the exterior ring is meaningful here.
//
// Coordinates are WGS-84 with longitude first, the GeoJSON order. The
// snapshot store keeps the coordinates value as its raw JSON text and
// [DecodeGeometry] parses it back structurally; see geometry.go. Unknown
// geometry kinds and malformed payloads decode to "no coordinates" rather
// than errors, so one corrupt observation never sinks a whole report.
//
// # Time Conventions
//
// Geometry dates are RFC 3339 UTC timestamps ("2024-03-15T00:00:00Z").
// Older feed snapshots occasionally omit the zone suffix; both forms are
// accepted by [ParseObservedAt]. Unparsable dates are treated as absent and
// the observation is excluded from derived reports.
//
// Reports cover a rolling one-calendar-month window, half-open: an
// observation at exactly the window start is included, one at exactly the
// window end is not. See [Window] and [RollingMonth].
package domain
