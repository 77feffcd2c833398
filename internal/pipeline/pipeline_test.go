package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/eonet-report-etl/internal/domain"
	"github.com/couchcryptid/eonet-report-etl/internal/observability"
	"github.com/couchcryptid/eonet-report-etl/internal/pipeline"
)

var testCategories = []string{"Wildfires", "Severe Storms"}

// --- mocks ---

type mockFetcher struct {
	feed  domain.Feed
	err   error
	calls int
}

func (m *mockFetcher) Fetch(_ context.Context) (domain.Feed, error) {
	m.calls++
	return m.feed, m.err
}

type mockStore struct {
	resetCalls  int
	ingestCalls int
	derived     []string // categories in derivation order
	records     map[string][]domain.Record
	deriveErr   error
}

func (m *mockStore) Reset(_ context.Context) error { m.resetCalls++; return nil }

func (m *mockStore) Ingest(_ context.Context, feed domain.Feed) (int, error) {
	m.ingestCalls++
	return len(feed.Events), nil
}

func (m *mockStore) DeriveCategoryReport(_ context.Context, category string, _ domain.Window) ([]domain.Record, error) {
	if m.deriveErr != nil {
		return nil, m.deriveErr
	}
	m.derived = append(m.derived, category)
	return m.records[category], nil
}

type mockWorkbook struct {
	paths []string
	err   error
}

func (m *mockWorkbook) Write(path string, _ []string, _ map[string][]domain.Record) error {
	if m.err != nil {
		return m.err
	}
	m.paths = append(m.paths, path)
	return os.WriteFile(path, []byte("workbook"), 0o600)
}

type mockChart struct {
	paths []string
	err   error
}

func (m *mockChart) Render(path string, _ []string, _ map[string][]domain.Record, _ domain.Window) error {
	if m.err != nil {
		return m.err
	}
	m.paths = append(m.paths, path)
	return os.WriteFile(path, []byte("chart"), 0o600)
}

type mockDeliverer struct {
	calls           int
	to              string
	attachments     []string
	subject         string
	allFilesExisted bool
	err             error
}

func (m *mockDeliverer) Deliver(_ context.Context, to string, attachments []string, subject, _, _ string) error {
	m.calls++
	m.to = to
	m.attachments = attachments
	m.subject = subject
	m.allFilesExisted = true
	for _, path := range attachments {
		if _, err := os.Stat(path); err != nil {
			m.allFilesExisted = false
		}
	}
	return m.err
}

// --- helpers ---

type fixture struct {
	fetcher   *mockFetcher
	store     *mockStore
	workbook  *mockWorkbook
	chart     *mockChart
	deliverer *mockDeliverer
	pipeline  *pipeline.Pipeline
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	f := &fixture{
		fetcher: &mockFetcher{feed: domain.Feed{Events: []domain.FeedEvent{
			{ID: "EV1", Title: "Fire A"},
		}}},
		store: &mockStore{records: map[string][]domain.Record{
			"Wildfires": {{EventID: "EV1", Category: "Wildfires"}},
		}},
		workbook:  &mockWorkbook{},
		chart:     &mockChart{},
		deliverer: &mockDeliverer{},
	}
	f.pipeline = pipeline.New(f.fetcher, f.store, f.workbook, f.chart, f.deliverer,
		slog.Default(), observability.NewMetricsForTesting(), testCategories, "EONET report")
	return f
}

// --- tests ---

func TestRun_HappyPath(t *testing.T) {
	f := newFixture(t)

	err := f.pipeline.Run(context.Background(), "ops@example.com")
	require.NoError(t, err)

	assert.Equal(t, 1, f.store.resetCalls)
	assert.Equal(t, 1, f.fetcher.calls)
	assert.Equal(t, 1, f.store.ingestCalls)
	assert.Equal(t, testCategories, f.store.derived, "each tracked category derived once, in order")
	assert.Len(t, f.workbook.paths, 1)
	assert.Len(t, f.chart.paths, 1)

	assert.Equal(t, 1, f.deliverer.calls)
	assert.Equal(t, "ops@example.com", f.deliverer.to)
	assert.Equal(t, "EONET report", f.deliverer.subject)
	require.Len(t, f.deliverer.attachments, 2)
	assert.True(t, f.deliverer.allFilesExisted, "artifacts must exist at delivery time")

	for _, path := range f.deliverer.attachments {
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr), "workspace must be removed after the run: %s", path)
	}

	assert.NoError(t, f.pipeline.CheckReadiness(context.Background()))
}

func TestRun_InvalidAddress_ShortCircuits(t *testing.T) {
	f := newFixture(t)

	err := f.pipeline.Run(context.Background(), "not-an-address")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)

	// No store reset, no network call, no artifacts, no delivery.
	assert.Zero(t, f.store.resetCalls)
	assert.Zero(t, f.fetcher.calls)
	assert.Zero(t, f.store.ingestCalls)
	assert.Empty(t, f.workbook.paths)
	assert.Empty(t, f.chart.paths)
	assert.Zero(t, f.deliverer.calls)
}

func TestRun_FetchFailure_IsLoggedNoOp(t *testing.T) {
	f := newFixture(t)
	f.fetcher.err = domain.ErrFetchFailed

	err := f.pipeline.Run(context.Background(), "ops@example.com")
	require.NoError(t, err, "connectivity failure must not escape as an error")

	assert.Equal(t, 1, f.store.resetCalls, "store stays as Reset left it")
	assert.Zero(t, f.store.ingestCalls)
	assert.Empty(t, f.workbook.paths, "no artifacts on a no-op run")
	assert.Empty(t, f.chart.paths)
	assert.Zero(t, f.deliverer.calls)
}

func TestRun_DeriveFailure_Propagates(t *testing.T) {
	f := newFixture(t)
	f.store.deriveErr = domain.ErrInvalidWindow

	err := f.pipeline.Run(context.Background(), "ops@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
	assert.Zero(t, f.deliverer.calls)
}

func TestRun_RenderFailure_SkipsDelivery(t *testing.T) {
	f := newFixture(t)
	f.workbook.err = errors.New("disk full")

	err := f.pipeline.Run(context.Background(), "ops@example.com")
	require.Error(t, err)
	assert.Zero(t, f.deliverer.calls, "a run that cannot produce artifacts must not deliver")
}

func TestRun_DeliveryFailure_IsFatalButCleansUp(t *testing.T) {
	f := newFixture(t)
	f.deliverer.err = errors.New("smtp unreachable")

	err := f.pipeline.Run(context.Background(), "ops@example.com")
	require.Error(t, err)

	require.Len(t, f.deliverer.attachments, 2)
	for _, path := range f.deliverer.attachments {
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr), "cleanup must run even when delivery fails: %s", path)
	}
}

func TestCheckReadiness_BeforeAnyRun(t *testing.T) {
	f := newFixture(t)
	assert.Error(t, f.pipeline.CheckReadiness(context.Background()))
}
