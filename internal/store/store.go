// Package store persists the latest feed snapshot in SQLite and derives
// report records from it.
//
// The store is a working cache, not a history: Reset truncates every table
// and Ingest reloads the current snapshot, so rows never survive from one
// run into the next run's report.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/couchcryptid/eonet-report-etl/internal/domain"
	"github.com/couchcryptid/eonet-report-etl/internal/observability"
)

// tables maps table names to their CREATE statements. Reset checks presence
// by name against sqlite_master before creating; an existing table is
// truncated instead, which is the externally observable contract.
var tables = []struct {
	name   string
	create string
}{
	{"events", `CREATE TABLE events (event_id TEXT NOT NULL, title TEXT NOT NULL)`},
	{"categories", `CREATE TABLE categories (event_id TEXT NOT NULL, title TEXT NOT NULL)`},
	{"sources", `CREATE TABLE sources (event_id TEXT NOT NULL, url TEXT NOT NULL)`},
	{"geometries", `CREATE TABLE geometries (event_id TEXT NOT NULL, observed_at TEXT NOT NULL, geom_type TEXT NOT NULL, payload TEXT NOT NULL)`},
}

// Store wraps the snapshot database. One Store, one *sql.DB, one run.
type Store struct {
	db      *sql.DB
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Open connects to the SQLite database at path, creating the file if absent.
func Open(path string, logger *slog.Logger, metrics *observability.Metrics) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	// SQLite allows only one writer; the pipeline is strictly sequential
	// anyway, so a single connection avoids lock contention entirely.
	db.SetMaxOpenConns(1)
	return &Store{db: db, logger: logger, metrics: metrics}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Reset ensures all four snapshot tables exist and are empty. Safe to call
// repeatedly.
func (s *Store) Reset(ctx context.Context) error {
	for _, t := range tables {
		exists, err := s.tableExists(ctx, t.name)
		if err != nil {
			return err
		}
		if exists {
			if _, err := s.db.ExecContext(ctx, "DELETE FROM "+t.name); err != nil {
				return fmt.Errorf("truncate %s: %w", t.name, err)
			}
			continue
		}
		if _, err := s.db.ExecContext(ctx, t.create); err != nil {
			return fmt.Errorf("create %s: %w", t.name, err)
		}
	}
	return nil
}

func (s *Store) tableExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return count == 1, nil
}

// Ingest flattens the feed document into the four snapshot tables. Events
// missing an id or title are skipped and logged; the remaining events still
// load (partial inserts are acceptable, there is no rollback requirement).
// Returns the number of events ingested.
func (s *Store) Ingest(ctx context.Context, feed domain.Feed) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin ingest: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	ingested := 0
	for i, evt := range feed.Events {
		if evt.ID == "" || evt.Title == "" {
			s.logger.Warn("skipping malformed feed event",
				"index", i, "id", evt.ID, "reason", "missing required fields")
			s.metrics.IngestErrors.Inc()
			continue
		}
		if err := s.insertEvent(ctx, tx, evt); err != nil {
			return ingested, err
		}
		ingested++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit ingest: %w", err)
	}

	s.metrics.EventsIngested.Add(float64(ingested))
	s.logger.Info("feed ingested", "events", ingested, "skipped", len(feed.Events)-ingested)
	return ingested, nil
}

func (s *Store) insertEvent(ctx context.Context, tx *sql.Tx, evt domain.FeedEvent) error {
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO events (event_id, title) VALUES (?, ?)", evt.ID, evt.Title); err != nil {
		return fmt.Errorf("insert event %s: %w", evt.ID, err)
	}
	s.metrics.RowsInserted.WithLabelValues("events").Inc()

	for _, cat := range evt.Categories {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO categories (event_id, title) VALUES (?, ?)", evt.ID, cat.Title); err != nil {
			return fmt.Errorf("insert category for %s: %w", evt.ID, err)
		}
		s.metrics.RowsInserted.WithLabelValues("categories").Inc()
	}
	for _, src := range evt.Sources {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO sources (event_id, url) VALUES (?, ?)", evt.ID, src.URL); err != nil {
			return fmt.Errorf("insert source for %s: %w", evt.ID, err)
		}
		s.metrics.RowsInserted.WithLabelValues("sources").Inc()
	}
	for _, geom := range evt.Geometries {
		// Coordinates are stored as their raw JSON text; DecodeGeometry
		// parses them back structurally at derivation time.
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO geometries (event_id, observed_at, geom_type, payload) VALUES (?, ?, ?, ?)",
			evt.ID, geom.Date, geom.Type, string(geom.Coordinates)); err != nil {
			return fmt.Errorf("insert geometry for %s: %w", evt.ID, err)
		}
		s.metrics.RowsInserted.WithLabelValues("geometries").Inc()
	}
	return nil
}

// deriveQuery joins category memberships against geometry observations and
// attaches the event title. Ordering is part of the contract: report rows
// come out grouped by event, each event's observations in date order.
const deriveQuery = `
SELECT c.event_id, c.title, COALESCE(e.title, ''), g.observed_at, g.geom_type, g.payload
FROM categories c
INNER JOIN geometries g ON g.event_id = c.event_id
LEFT JOIN events e ON e.event_id = c.event_id
WHERE c.title = ?
ORDER BY c.event_id, g.observed_at`

// DeriveCategoryReport reconstructs typed report records for one category
// over a half-open time window.
//
// Rows whose observed_at does not parse are dropped. Rows whose geometry
// payload does not decode keep their place in the report with nil
// coordinate fields; corruption in one observation never fails the rest.
// An empty result is not an error.
func (s *Store) DeriveCategoryReport(ctx context.Context, category string, window domain.Window) ([]domain.Record, error) {
	if category == "" {
		return nil, fmt.Errorf("%w: empty", domain.ErrInvalidCategory)
	}
	if err := window.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, deriveQuery, category)
	if err != nil {
		return nil, fmt.Errorf("derive %s: %w", category, err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		var (
			rec        domain.Record
			observedAt string
			payload    string
		)
		if err := rows.Scan(&rec.EventID, &rec.Category, &rec.EventTitle, &observedAt, &rec.GeometryType, &payload); err != nil {
			return nil, fmt.Errorf("scan derived row: %w", err)
		}

		ts, ok := domain.ParseObservedAt(observedAt)
		if !ok {
			s.logger.Debug("dropping observation with unparsable date",
				"event_id", rec.EventID, "observed_at", observedAt)
			continue
		}
		if !window.Contains(ts) {
			continue
		}
		rec.ObservedAt = ts

		shape := domain.DecodeGeometry(rec.GeometryType, payload)
		switch {
		case shape.Point != nil:
			rec.Longitude = &shape.Point.Lon
			rec.Latitude = &shape.Point.Lat
		case len(shape.Ring) > 0:
			flat := domain.FlattenRing(shape.Ring)
			rec.PolygonCoords = &flat
		default:
			// Unknown geometry kinds are simply unplotted; only supported
			// kinds that fail to parse count as decode failures.
			if rec.GeometryType == domain.GeometryPoint || rec.GeometryType == domain.GeometryPolygon {
				s.metrics.DecodeFailures.Inc()
				s.logger.Warn("geometry payload failed to decode",
					"event_id", rec.EventID, "geom_type", rec.GeometryType)
			}
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("derive %s: %w", category, err)
	}

	s.metrics.RecordsDerived.WithLabelValues(category).Add(float64(len(records)))
	return records, nil
}

// CountRows returns the row count of one snapshot table. Used by the
// validate command and tests; the table name must be one of the four
// snapshot tables.
func (s *Store) CountRows(ctx context.Context, table string) (int, error) {
	if !knownTable(table) {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func knownTable(name string) bool {
	for _, t := range tables {
		if t.name == name {
			return true
		}
	}
	return false
}
