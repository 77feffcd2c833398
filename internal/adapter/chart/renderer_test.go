package chart

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/eonet-report-etl/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func testWindow() domain.Window {
	return domain.Window{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func decodePNG(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck // read-only in test

	img, err := png.Decode(f)
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestRender_WritesValidPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.png")
	records := map[string][]domain.Record{
		"Wildfires": {
			{EventID: "EV1", Longitude: ptr(10.5), Latitude: ptr(20.25)},
			{EventID: "EV2"}, // nil coordinates: skipped, not fatal
		},
		"Severe Storms": {
			{EventID: "EV3", Longitude: ptr(-122.4), Latitude: ptr(37.7)},
		},
	}

	r := NewRenderer("")
	require.NoError(t, r.Render(path, []string{"Wildfires", "Severe Storms"}, records, testWindow()))

	w, h := decodePNG(t, path)
	assert.Equal(t, canvasWidth, w)
	assert.Equal(t, canvasHeight+captionBand, h)
}

func TestRender_ZeroPlottablePoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.png")

	r := NewRenderer("")
	require.NoError(t, r.Render(path, []string{"Wildfires"}, map[string][]domain.Record{}, testWindow()))

	_, _ = decodePNG(t, path)
}

func TestRender_WithBasemap(t *testing.T) {
	dir := t.TempDir()
	basemap := filepath.Join(dir, "basemap.png")

	// A small stand-in basemap; Render scales it to the canvas.
	dc := gg.NewContext(360, 180)
	dc.SetRGB(0.2, 0.4, 0.2)
	dc.Clear()
	require.NoError(t, dc.SavePNG(basemap))

	path := filepath.Join(dir, "chart.png")
	r := NewRenderer(basemap)
	require.NoError(t, r.Render(path, []string{"Wildfires"}, nil, testWindow()))

	w, h := decodePNG(t, path)
	assert.Equal(t, canvasWidth, w)
	assert.Equal(t, canvasHeight+captionBand, h)
}

func TestRender_MissingBasemap(t *testing.T) {
	r := NewRenderer(filepath.Join(t.TempDir(), "nope.png"))
	err := r.Render(filepath.Join(t.TempDir(), "chart.png"), []string{"Wildfires"}, nil, testWindow())
	assert.Error(t, err)
}

func TestRender_UnwritablePath(t *testing.T) {
	r := NewRenderer("")
	err := r.Render(filepath.Join(t.TempDir(), "missing", "chart.png"), []string{"Wildfires"}, nil, testWindow())
	assert.Error(t, err)
}

func TestProject(t *testing.T) {
	x, y := project(0, 0)
	assert.InDelta(t, canvasWidth/2, x, 1e-9)
	assert.InDelta(t, canvasHeight/2, y, 1e-9)

	x, y = project(-180, 90)
	assert.Zero(t, x)
	assert.Zero(t, y)

	x, y = project(180, -90)
	assert.InDelta(t, canvasWidth, x, 1e-9)
	assert.InDelta(t, canvasHeight, y, 1e-9)
}
