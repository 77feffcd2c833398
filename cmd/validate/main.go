// Command validate audits a populated snapshot database: referential
// integrity of the child tables against events, geometry payload
// decodability, and observation date parseability. Run it after a report
// run (DB_PATH is the same file the report command writes) to confirm the
// snapshot is internally consistent.
//
// Usage:
//
//	go run ./cmd/validate -db eonet.db
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/eonet-report-etl/internal/domain"
	"github.com/couchcryptid/eonet-report-etl/internal/observability"
	"github.com/couchcryptid/eonet-report-etl/internal/store"
)

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dbPath := flag.String("db", "eonet.db", "path to the snapshot database")
	flag.Parse()

	if err := run(*dbPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(dbPath string) error {
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("snapshot db %s: %w", dbPath, err)
	}

	s, err := store.Open(dbPath, slog.Default(), observability.NewMetrics())
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck // read-only audit

	ctx := context.Background()
	phases := []*phase{
		checkCounts(ctx, s),
		checkReferentialIntegrity(ctx, s),
		checkGeometries(ctx, s),
	}

	failed := 0
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS  %s\n", p.name)
			continue
		}
		failed++
		fmt.Printf("FAIL  %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("      %s\n", e)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d phases failed", failed, len(phases))
	}
	return nil
}

func checkCounts(ctx context.Context, s *store.Store) *phase {
	p := &phase{name: "table counts"}
	for _, table := range []string{"events", "categories", "sources", "geometries"} {
		n, err := s.CountRows(ctx, table)
		if err != nil {
			p.errorf("%s: %v", table, err)
			continue
		}
		fmt.Printf("      %-12s %d rows\n", table, n)
	}
	return p
}

func checkReferentialIntegrity(ctx context.Context, s *store.Store) *phase {
	p := &phase{name: "referential integrity"}
	for _, table := range []string{"categories", "sources", "geometries"} {
		n, err := s.OrphanCount(ctx, table)
		if err != nil {
			p.errorf("%s: %v", table, err)
			continue
		}
		if n > 0 {
			p.errorf("%s: %d rows reference a missing event", table, n)
		}
	}
	return p
}

func checkGeometries(ctx context.Context, s *store.Store) *phase {
	p := &phase{name: "geometry decodability"}
	rows, err := s.GeometryRows(ctx)
	if err != nil {
		p.errorf("%v", err)
		return p
	}

	for _, r := range rows {
		if _, ok := domain.ParseObservedAt(r.ObservedAt); !ok {
			p.errorf("%s: unparsable observation date %q", r.EventID, r.ObservedAt)
		}
		switch r.GeomType {
		case domain.GeometryPoint, domain.GeometryPolygon:
			if domain.DecodeGeometry(r.GeomType, r.Payload).Empty() {
				p.errorf("%s: %s payload failed to decode", r.EventID, r.GeomType)
			}
		default:
			// Unknown kinds are tolerated by reporting; note them only.
			fmt.Printf("      %s: unsupported geometry kind %q (coordinates omitted from reports)\n", r.EventID, r.GeomType)
		}
	}
	return p
}
