// Package workbook writes derived report records to an xlsx workbook,
// one sheet per hazard category.
package workbook

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/eonet-report-etl/internal/domain"
)

// header is the column layout shared by every sheet.
var header = []string{
	"Event ID", "Category", "Event Title", "Observed At",
	"Geometry Type", "Longitude", "Latitude", "Polygon Coordinates",
}

// Writer produces the spreadsheet artifact. It implements
// pipeline.WorkbookWriter.
type Writer struct{}

// NewWriter creates a workbook writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write saves one sheet per category, in the given order, to path. Sheets
// are named after their category. A category with no records still gets a
// sheet holding just the header row. Failure to write is fatal to the run.
func (w *Writer) Write(path string, categories []string, recordsByCategory map[string][]domain.Record) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook

	for i, category := range categories {
		if err := writeSheet(f, category, recordsByCategory[category]); err != nil {
			return err
		}
		if i == 0 {
			// Reuse the default sheet slot for the first category.
			if err := f.DeleteSheet("Sheet1"); err != nil {
				return fmt.Errorf("drop default sheet: %w", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write workbook %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, category string, records []domain.Record) error {
	if _, err := f.NewSheet(category); err != nil {
		return fmt.Errorf("create sheet %s: %w", category, err)
	}

	if err := setRow(f, category, 1, toAnySlice(header)); err != nil {
		return err
	}
	for i, rec := range records {
		row := []any{
			rec.EventID,
			rec.Category,
			rec.EventTitle,
			rec.ObservedAt.UTC().Format(time.RFC3339),
			rec.GeometryType,
			derefOrNil(rec.Longitude),
			derefOrNil(rec.Latitude),
			stringOrNil(rec.PolygonCoords),
		}
		if err := setRow(f, category, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("row coordinate: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// derefOrNil keeps null coordinates as empty cells rather than zeroes.
func derefOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func stringOrNil(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
