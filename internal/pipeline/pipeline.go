// Package pipeline sequences one report run: validate address, reset the
// snapshot store, fetch and ingest the feed, derive and render the report
// artifacts, deliver them, clean up.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/eonet-report-etl/internal/domain"
	"github.com/couchcryptid/eonet-report-etl/internal/observability"
)

// FeedFetcher retrieves the current events document.
type FeedFetcher interface {
	Fetch(ctx context.Context) (domain.Feed, error)
}

// SnapshotStore persists the feed snapshot and derives report records.
type SnapshotStore interface {
	Reset(ctx context.Context) error
	Ingest(ctx context.Context, feed domain.Feed) (int, error)
	DeriveCategoryReport(ctx context.Context, category string, window domain.Window) ([]domain.Record, error)
}

// WorkbookWriter writes the spreadsheet artifact.
type WorkbookWriter interface {
	Write(path string, categories []string, recordsByCategory map[string][]domain.Record) error
}

// ChartRenderer writes the map artifact.
type ChartRenderer interface {
	Render(path string, categories []string, recordsByCategory map[string][]domain.Record, window domain.Window) error
}

// Deliverer transmits the artifacts to the destination address.
type Deliverer interface {
	Deliver(ctx context.Context, to string, attachments []string, subject, textBody, htmlBody string) error
}

// Pipeline runs the linear report state machine. Strictly sequential, one
// run per invocation, no retries.
type Pipeline struct {
	fetcher    FeedFetcher
	store      SnapshotStore
	workbook   WorkbookWriter
	chart      ChartRenderer
	deliverer  Deliverer
	logger     *slog.Logger
	metrics    *observability.Metrics
	categories []string
	subject    string
	completed  atomic.Bool
}

// New creates a Pipeline over the given collaborators. categories is the
// ordered list of tracked hazard categories; each gets one workbook sheet
// and one chart marker layer.
func New(fetcher FeedFetcher, store SnapshotStore, workbook WorkbookWriter, chart ChartRenderer, deliverer Deliverer, logger *slog.Logger, metrics *observability.Metrics, categories []string, subject string) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		store:      store,
		workbook:   workbook,
		chart:      chart,
		deliverer:  deliverer,
		logger:     logger,
		metrics:    metrics,
		categories: categories,
		subject:    subject,
	}
}

// CheckReadiness reports whether a run has completed, for the /readyz
// endpoint while the job process is alive.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.completed.Load() {
		return errors.New("no report run has completed yet")
	}
	return nil
}

// Run executes one report run for the given destination address.
//
// An invalid address fails before any workspace, store, or network work.
// A feed fetch failure ends the run as a logged no-op without error.
// Artifact-write and delivery failures are fatal and propagate, but the
// scoped workspace is removed on every exit path.
func (p *Pipeline) Run(ctx context.Context, address string) (err error) {
	start := time.Now()
	p.metrics.RunActive.Set(1)
	defer func() {
		p.metrics.RunActive.Set(0)
		p.metrics.RunDuration.Observe(time.Since(start).Seconds())
		p.completed.Store(true)
		if err != nil {
			p.metrics.LastRunStatus.Set(-1)
		}
	}()

	logger := p.logger.With("run_id", uuid.NewString())

	to, err := domain.NormalizeAddress(address)
	if err != nil {
		logger.Error("address validation failed", "error", err)
		return err
	}
	logger.Info("run started", "to", to, "categories", p.categories)

	workspace, err := os.MkdirTemp("", "eonet-report-*")
	if err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	// Cleanup runs exactly once, success or failure, delivery outcome
	// included.
	defer func() {
		if rmErr := os.RemoveAll(workspace); rmErr != nil {
			logger.Error("workspace cleanup failed", "workspace", workspace, "error", rmErr)
		} else {
			logger.Debug("workspace removed", "workspace", workspace)
		}
	}()

	if err := p.timed("reset_store", func() error { return p.store.Reset(ctx) }); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}

	var feed domain.Feed
	fetchErr := p.timed("fetch", func() error {
		var ferr error
		feed, ferr = p.fetcher.Fetch(ctx)
		return ferr
	})
	if fetchErr != nil {
		// Connectivity failure is a no-op run, not a crash: the store stays
		// as Reset left it and no artifacts are produced.
		logger.Error("feed fetch failed, ending run", "error", fetchErr)
		p.metrics.LastRunStatus.Set(0)
		return nil
	}

	if err := p.timed("ingest", func() error {
		_, ierr := p.store.Ingest(ctx, feed)
		return ierr
	}); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	window := domain.CurrentWindow()
	workbookPath, chartPath, err := p.deriveAndRender(ctx, workspace, window, logger)
	if err != nil {
		return err
	}

	if err := p.timed("deliver", func() error {
		text, html := composeBodies(p.categories, window)
		return p.deliverer.Deliver(ctx, to, []string{workbookPath, chartPath}, p.subject, text, html)
	}); err != nil {
		return fmt.Errorf("deliver: %w", err)
	}

	p.metrics.LastRunStatus.Set(1)
	logger.Info("run complete", "window", window.String(), "duration", time.Since(start))
	return nil
}

// deriveAndRender derives records per tracked category and writes both
// artifacts into the workspace. Artifact names carry the window end so
// repeated runs produce distinguishable attachments.
func (p *Pipeline) deriveAndRender(ctx context.Context, workspace string, window domain.Window, logger *slog.Logger) (string, string, error) {
	recordsByCategory := make(map[string][]domain.Record, len(p.categories))

	err := p.timed("derive", func() error {
		for _, category := range p.categories {
			records, derr := p.store.DeriveCategoryReport(ctx, category, window)
			if derr != nil {
				return fmt.Errorf("derive %s: %w", category, derr)
			}
			recordsByCategory[category] = records
			logger.Info("category derived", "category", category, "records", len(records))
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}

	stamp := window.End.UTC().Format("200601021504")
	workbookPath := filepath.Join(workspace, stamp+"_eonet_report.xlsx")
	chartPath := filepath.Join(workspace, stamp+"_chart.png")

	err = p.timed("render", func() error {
		if werr := p.workbook.Write(workbookPath, p.categories, recordsByCategory); werr != nil {
			return fmt.Errorf("write workbook: %w", werr)
		}
		p.metrics.ArtifactsWritten.WithLabelValues("workbook").Inc()

		if cerr := p.chart.Render(chartPath, p.categories, recordsByCategory, window); cerr != nil {
			return fmt.Errorf("render chart: %w", cerr)
		}
		p.metrics.ArtifactsWritten.WithLabelValues("chart").Inc()
		return nil
	})
	if err != nil {
		return "", "", err
	}

	return workbookPath, chartPath, nil
}

func (p *Pipeline) timed(stage string, f func() error) error {
	start := time.Now()
	err := f()
	p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	return err
}

func composeBodies(categories []string, window domain.Window) (string, string) {
	list := ""
	items := ""
	for i, c := range categories {
		if i > 0 {
			list += ", "
		}
		list += c
		items += "<li>" + c + "</li>"
	}

	text := fmt.Sprintf(
		"Please find attached the latest spreadsheet and chart for %s from EONET, covering %s.",
		list, window)
	html := fmt.Sprintf(`<html>
  <body>
    <h3>Automated Data Delivery</h3>
    <p>Please find attached the latest spreadsheet and chart from EONET, covering %s:</p>
    <ul>%s</ul>
  </body>
</html>`, window, items)
	return text, html
}
