package workbook

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/eonet-report-etl/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestWrite_OneSheetPerCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	categories := []string{"Wildfires", "Severe Storms"}

	records := map[string][]domain.Record{
		"Wildfires": {
			{
				EventID:      "EV1",
				Category:     "Wildfires",
				EventTitle:   "Fire A",
				ObservedAt:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
				GeometryType: "Point",
				Longitude:    ptr(10.5),
				Latitude:     ptr(20.25),
			},
			{
				EventID:       "EV2",
				Category:      "Wildfires",
				EventTitle:    "Fire B",
				ObservedAt:    time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC),
				GeometryType:  "Polygon",
				PolygonCoords: ptr("1, 2, 1, 3, 2, 3, 1, 2"),
			},
		},
		"Severe Storms": {},
	}

	w := NewWriter()
	require.NoError(t, w.Write(path, categories, records))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck // read-only in test

	assert.Equal(t, []string{"Wildfires", "Severe Storms"}, f.GetSheetList())

	rows, err := f.GetRows("Wildfires")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus two records")
	assert.Equal(t, "Event ID", rows[0][0])
	assert.Equal(t, "EV1", rows[1][0])
	assert.Equal(t, "2024-03-15T00:00:00Z", rows[1][3])
	assert.Equal(t, "10.5", rows[1][5])
	assert.Equal(t, "20.25", rows[1][6])
	assert.Equal(t, "1, 2, 1, 3, 2, 3, 1, 2", rows[2][7])

	stormRows, err := f.GetRows("Severe Storms")
	require.NoError(t, err)
	require.Len(t, stormRows, 1, "empty category still gets its header")
}

func TestWrite_NullCoordinatesStayEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	records := map[string][]domain.Record{
		"Wildfires": {{
			EventID:      "EV1",
			Category:     "Wildfires",
			EventTitle:   "Fire A",
			ObservedAt:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			GeometryType: "Point",
		}},
	}

	require.NoError(t, NewWriter().Write(path, []string{"Wildfires"}, records))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck // read-only in test

	lon, err := f.GetCellValue("Wildfires", "F2")
	require.NoError(t, err)
	assert.Empty(t, lon)
}

func TestWrite_UnwritablePath(t *testing.T) {
	records := map[string][]domain.Record{}
	err := NewWriter().Write(filepath.Join(t.TempDir(), "missing", "deep", "report.xlsx"), []string{"Wildfires"}, records)
	assert.Error(t, err)
}
