package store

import (
	"context"
	"fmt"
)

// GeometryRow is one raw geometries row, as stored. Used by the validate
// command to audit a snapshot without re-deriving a report.
type GeometryRow struct {
	EventID    string
	ObservedAt string
	GeomType   string
	Payload    string
}

// OrphanCount returns the number of rows in a child table whose event_id
// has no matching events row. Referential integrity is cooperative, not
// constraint-enforced, so orphans indicate a partial or corrupted load.
func (s *Store) OrphanCount(ctx context.Context, table string) (int, error) {
	switch table {
	case "categories", "sources", "geometries":
	default:
		return 0, fmt.Errorf("table %q has no event_id parent relation", table)
	}

	var n int
	query := "SELECT count(*) FROM " + table +
		" WHERE event_id NOT IN (SELECT event_id FROM events)"
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orphans in %s: %w", table, err)
	}
	return n, nil
}

// GeometryRows returns every stored geometry observation.
func (s *Store) GeometryRows(ctx context.Context) ([]GeometryRow, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT event_id, observed_at, geom_type, payload FROM geometries ORDER BY event_id, observed_at")
	if err != nil {
		return nil, fmt.Errorf("read geometries: %w", err)
	}
	defer rows.Close()

	var out []GeometryRow
	for rows.Next() {
		var r GeometryRow
		if err := rows.Scan(&r.EventID, &r.ObservedAt, &r.GeomType, &r.Payload); err != nil {
			return nil, fmt.Errorf("scan geometry row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
