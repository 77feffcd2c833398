package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeGeometry_Point(t *testing.T) {
	shape := DecodeGeometry(GeometryPoint, "[10.5, 20.25]")

	require.NotNil(t, shape.Point)
	assert.Equal(t, 10.5, shape.Point.Lon)
	assert.Equal(t, 20.25, shape.Point.Lat)
	assert.Empty(t, shape.Ring)
}

func TestDecodeGeometry_Polygon(t *testing.T) {
	payload := "[[[ -10.0, 5.0 ], [ -10.0, 6.0 ], [ -9.0, 6.0 ], [ -10.0, 5.0 ]]]"
	shape := DecodeGeometry(GeometryPolygon, payload)

	require.Len(t, shape.Ring, 4)
	assert.Nil(t, shape.Point)
	assert.Equal(t, Geo{Lon: -10.0, Lat: 5.0}, shape.Ring[0])
	assert.Equal(t, Geo{Lon: -9.0, Lat: 6.0}, shape.Ring[2])
	assert.Equal(t, shape.Ring[0], shape.Ring[3], "ring should close")
}

func TestDecodeGeometry_UnknownType(t *testing.T) {
	shape := DecodeGeometry("MultiPoint", "[[1.0, 2.0]]")
	assert.True(t, shape.Empty())
}

func TestDecodeGeometry_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		geomType string
		payload  string
	}{
		{"truncated point bracket", GeometryPoint, "[10.5, 20.2"},
		{"point with one coordinate", GeometryPoint, "[10.5]"},
		{"point with non-numeric token", GeometryPoint, `["ten", "twenty"]`},
		{"empty payload", GeometryPoint, ""},
		{"polygon as flat list", GeometryPolygon, "[1.0, 2.0, 3.0]"},
		{"polygon with short pair", GeometryPolygon, "[[[1.0], [2.0, 3.0]]]"},
		{"polygon empty ring", GeometryPolygon, "[[]]"},
		{"polygon no rings", GeometryPolygon, "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape := DecodeGeometry(tt.geomType, tt.payload)
			assert.True(t, shape.Empty())
		})
	}
}

func TestEncodePoint_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		geo  Geo
	}{
		{"simple", Geo{Lon: 10.5, Lat: 20.25}},
		{"negative", Geo{Lon: -122.4194, Lat: 37.7749}},
		{"integral", Geo{Lon: 180, Lat: -90}},
		{"high precision", Geo{Lon: 35.123456789, Lat: -7.987654321}},
		{"zero", Geo{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape := DecodeGeometry(GeometryPoint, EncodePoint(tt.geo))
			require.NotNil(t, shape.Point)
			assert.InDelta(t, tt.geo.Lon, shape.Point.Lon, 1e-9)
			assert.InDelta(t, tt.geo.Lat, shape.Point.Lat, 1e-9)
		})
	}
}

func TestEncodePolygon_RoundTrip(t *testing.T) {
	ring := []Geo{
		{Lon: -10.25, Lat: 5.5},
		{Lon: -10.25, Lat: 6.5},
		{Lon: -9.125, Lat: 6.5},
		{Lon: -10.25, Lat: 5.5},
	}

	shape := DecodeGeometry(GeometryPolygon, EncodePolygon(ring))
	require.Len(t, shape.Ring, len(ring))
	for i := range ring {
		assert.InDelta(t, ring[i].Lon, shape.Ring[i].Lon, 1e-9)
		assert.InDelta(t, ring[i].Lat, shape.Ring[i].Lat, 1e-9)
	}
}

func TestFlattenRing(t *testing.T) {
	flat := FlattenRing([]Geo{{Lon: 1.5, Lat: 2}, {Lon: -3, Lat: 4.25}})
	assert.Equal(t, "1.5, 2, -3, 4.25", flat)
}
