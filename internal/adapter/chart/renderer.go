// Package chart renders derived report records onto an equirectangular
// world map and saves it as a PNG.
package chart

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/couchcryptid/eonet-report-etl/internal/domain"
)

// Canvas dimensions: 2:1 so the equirectangular projection is undistorted.
const (
	canvasWidth  = 1600
	canvasHeight = 800
	captionBand  = 40
)

// markerStyle pairs a plot shape with an RGB color. Styles are assigned to
// categories in order, wrapping around for long category lists.
type markerStyle struct {
	shape   string // "cross", "circle", "triangle", "square"
	r, g, b float64
}

var palette = []markerStyle{
	{shape: "cross", r: 0.85, g: 0.10, b: 0.10},
	{shape: "circle", r: 0.12, g: 0.35, b: 0.80},
	{shape: "triangle", r: 0.95, g: 0.60, b: 0.05},
	{shape: "square", r: 0.15, g: 0.60, b: 0.25},
}

// Renderer draws the map artifact. It implements pipeline.ChartRenderer.
// An optional basemap PNG is drawn under the markers; without one the
// renderer falls back to an ocean fill with a 30-degree graticule.
type Renderer struct {
	basemapPath string
}

// NewRenderer creates a renderer. basemapPath may be empty.
func NewRenderer(basemapPath string) *Renderer {
	return &Renderer{basemapPath: basemapPath}
}

// Render plots one marker layer per category, skipping records without
// point coordinates, and writes the PNG to path. The caption embeds the
// report window. Zero plottable points is valid output: the basemap and
// caption alone still make a well-formed artifact.
func (r *Renderer) Render(path string, categories []string, recordsByCategory map[string][]domain.Record, window domain.Window) error {
	dc := gg.NewContext(canvasWidth, canvasHeight+captionBand)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	if err := r.drawBasemap(dc); err != nil {
		return err
	}

	for i, category := range categories {
		style := palette[i%len(palette)]
		drawLayer(dc, recordsByCategory[category], style)
	}

	drawCaption(dc, categories, window)

	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("write chart %s: %w", path, err)
	}
	return nil
}

func (r *Renderer) drawBasemap(dc *gg.Context) error {
	if r.basemapPath != "" {
		im, err := gg.LoadImage(r.basemapPath)
		if err != nil {
			return fmt.Errorf("load basemap %s: %w", r.basemapPath, err)
		}
		drawScaled(dc, im)
		return nil
	}

	// No basemap: ocean fill with a 30-degree graticule as orientation aid.
	dc.SetRGB(0.88, 0.93, 0.97)
	dc.DrawRectangle(0, 0, canvasWidth, canvasHeight)
	dc.Fill()

	dc.SetRGB(0.70, 0.75, 0.80)
	dc.SetLineWidth(1)
	for lon := -180.0; lon <= 180.0; lon += 30 {
		x, _ := project(lon, 0)
		dc.DrawLine(x, 0, x, canvasHeight)
	}
	for lat := -90.0; lat <= 90.0; lat += 30 {
		_, y := project(0, lat)
		dc.DrawLine(0, y, canvasWidth, y)
	}
	dc.Stroke()

	// Equator emphasized.
	_, equator := project(0, 0)
	dc.SetRGB(0.55, 0.60, 0.65)
	dc.DrawLine(0, equator, canvasWidth, equator)
	dc.Stroke()
	return nil
}

func drawScaled(dc *gg.Context, im image.Image) {
	bounds := im.Bounds()
	sx := float64(canvasWidth) / float64(bounds.Dx())
	sy := float64(canvasHeight) / float64(bounds.Dy())

	dc.Push()
	dc.Scale(sx, sy)
	dc.DrawImage(im, 0, 0)
	dc.Pop()
}

func drawLayer(dc *gg.Context, records []domain.Record, style markerStyle) {
	dc.SetRGB(style.r, style.g, style.b)
	for _, rec := range records {
		if rec.Longitude == nil || rec.Latitude == nil {
			continue
		}
		x, y := project(*rec.Longitude, *rec.Latitude)
		drawMarker(dc, x, y, style.shape)
	}
}

const markerSize = 5.0

func drawMarker(dc *gg.Context, x, y float64, shape string) {
	switch shape {
	case "cross":
		dc.SetLineWidth(2)
		dc.DrawLine(x-markerSize, y-markerSize, x+markerSize, y+markerSize)
		dc.DrawLine(x-markerSize, y+markerSize, x+markerSize, y-markerSize)
		dc.Stroke()
	case "triangle":
		dc.MoveTo(x, y-markerSize)
		dc.LineTo(x-markerSize, y+markerSize)
		dc.LineTo(x+markerSize, y+markerSize)
		dc.ClosePath()
		dc.Fill()
	case "square":
		dc.DrawRectangle(x-markerSize, y-markerSize, 2*markerSize, 2*markerSize)
		dc.Fill()
	default:
		dc.DrawCircle(x, y, markerSize)
		dc.Fill()
	}
}

func drawCaption(dc *gg.Context, categories []string, window domain.Window) {
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetRGB(0.10, 0.10, 0.10)
	title := fmt.Sprintf("Earth observations for the period %s", window)
	dc.DrawStringAnchored(title, canvasWidth/2, canvasHeight+captionBand/2, 0.5, 0.35)

	// Legend: one swatch per category, left-aligned under the map.
	x := 12.0
	y := canvasHeight + captionBand - 10.0
	for i, category := range categories {
		style := palette[i%len(palette)]
		dc.SetRGB(style.r, style.g, style.b)
		drawMarker(dc, x, y-4, style.shape)
		dc.SetRGB(0.10, 0.10, 0.10)
		dc.DrawString(category, x+10, y)
		w, _ := dc.MeasureString(category)
		x += w + 34
	}
}

// project maps WGS-84 lon/lat onto canvas pixels, plate carrée.
func project(lon, lat float64) (float64, float64) {
	x := (lon + 180) / 360 * canvasWidth
	y := (90 - lat) / 180 * canvasHeight
	return x, y
}
