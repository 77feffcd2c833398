// Package eonet fetches the EONET open-events document over HTTP.
package eonet

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/eonet-report-etl/internal/domain"
)

// Client retrieves the events feed. It implements pipeline.FeedFetcher.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a feed client for the given events endpoint.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch performs a single GET against the events endpoint and decodes the
// response. Transport errors and non-200 statuses both wrap
// domain.ErrFetchFailed so the orchestrator can treat the run as a no-op.
func (c *Client) Fetch(ctx context.Context) (domain.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return domain.Feed{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Feed{}, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Feed{}, fmt.Errorf("%w: status %d from %s", domain.ErrFetchFailed, resp.StatusCode, c.url)
	}

	var feed domain.Feed
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return domain.Feed{}, fmt.Errorf("%w: decode response: %w", domain.ErrFetchFailed, err)
	}

	c.logger.Debug("feed fetched", "url", c.url, "events", len(feed.Events))
	return feed, nil
}
