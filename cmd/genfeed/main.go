// Command genfeed generates a deterministic mock EONET feed document for
// local pipeline runs and fixtures. Point it at a file, then run the
// report command with EONET_URL served from that file (e.g. via a static
// file server) to exercise the pipeline without touching the real API.
//
// Usage:
//
//	go run ./cmd/genfeed -out data/mock/eonet_feed.json -events 25
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/couchcryptid/eonet-report-etl/internal/domain"
)

var baseDate = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

// categoryDef pairs a category with the geometry kind its mock events use.
type categoryDef struct {
	title    string
	geomType string
}

var defs = []categoryDef{
	{title: "Wildfires", geomType: domain.GeometryPoint},
	{title: "Severe Storms", geomType: domain.GeometryPoint},
	{title: "Volcanoes", geomType: domain.GeometryPolygon},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the feed JSON")
	events := flag.Int("events", 30, "number of events to generate")
	seed := flag.Int64("seed", 1, "PRNG seed for reproducible output")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	rng := rand.New(rand.NewSource(*seed))
	feed := domain.Feed{Title: "EONET Events (mock)"}

	for i := 0; i < *events; i++ {
		def := defs[i%len(defs)]
		feed.Events = append(feed.Events, makeEvent(rng, i, def))
	}

	data, err := json.MarshalIndent(feed, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal feed: %w", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}

	log.Printf("wrote %d events to %s", len(feed.Events), *out)
	return nil
}

func makeEvent(rng *rand.Rand, i int, def categoryDef) domain.FeedEvent {
	id := fmt.Sprintf("EONET_MOCK_%04d", i+1)
	center := domain.Geo{
		Lon: rng.Float64()*360 - 180,
		Lat: rng.Float64()*160 - 80,
	}

	// A handful of observations per event, one per day like a tracked fire.
	days := 1 + rng.Intn(4)
	geoms := make([]domain.FeedGeometry, 0, days)
	for d := 0; d < days; d++ {
		date := baseDate.AddDate(0, 0, i%28+d).Format(time.RFC3339)
		geoms = append(geoms, domain.FeedGeometry{
			Date:        date,
			Type:        def.geomType,
			Coordinates: json.RawMessage(encodeCoords(rng, def.geomType, center)),
		})
	}

	return domain.FeedEvent{
		ID:         id,
		Title:      fmt.Sprintf("%s event %d", def.title, i+1),
		Categories: []domain.FeedCategory{{Title: def.title}},
		Sources:    []domain.FeedSource{{URL: fmt.Sprintf("https://example.org/%s", id)}},
		Geometries: geoms,
	}
}

func encodeCoords(rng *rand.Rand, geomType string, center domain.Geo) string {
	jitter := func() float64 { return (rng.Float64() - 0.5) * 0.2 }

	if geomType == domain.GeometryPolygon {
		d := 0.5 + rng.Float64()
		ring := []domain.Geo{
			{Lon: center.Lon - d, Lat: center.Lat - d},
			{Lon: center.Lon - d, Lat: center.Lat + d},
			{Lon: center.Lon + d, Lat: center.Lat + d},
			{Lon: center.Lon + d, Lat: center.Lat - d},
			{Lon: center.Lon - d, Lat: center.Lat - d},
		}
		return domain.EncodePolygon(ring)
	}
	return domain.EncodePoint(domain.Geo{Lon: center.Lon + jitter(), Lat: center.Lat + jitter()})
}
