// Package search is the adapter around DuckDuckGo's HTML endpoint. It is
// the only component that talks to the search provider: scrapers hand it a
// query and get back uniform title/snippet/URL results. Provider errors,
// timeouts, and bot challenges all surface as an empty result list rather
// than an error, so a flaky provider degrades a source to zero results
// instead of failing the request.
package search

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/devicerevive/secondlife/internal/metrics"
)

// Result is one uniform search hit.
type Result struct {
	Title   string
	Snippet string
	URL     string
}

// Request describes a single search.
type Request struct {
	Query      string
	Site       string // optional domain restriction, e.g. "youtube.com"
	MaxResults int    // 0 means the client default
	Timeout    time.Duration
}

// ClientConfig configures the search client.
type ClientConfig struct {
	Fetcher *Fetcher
	// Concurrency bounds in-flight SERP fetches across all scrapers.
	Concurrency int64
	// MaxResults is the default per-query result cap.
	MaxResults int
	// Timeout is the default per-query wall-clock cap.
	Timeout time.Duration
	// BaseURL overrides the DDG HTML endpoint, for tests.
	BaseURL string
	Logger  *slog.Logger
}

// Client executes searches through a bounded worker slot pool. The pool is
// the one shared resource of the pipeline: it is created at service start
// and sized so that scrapers × queries cannot grow fetches without bound.
type Client struct {
	fetcher    *Fetcher
	sem        *semaphore.Weighted
	maxResults int
	timeout    time.Duration
	baseURL    string
	logger     *slog.Logger
}

const defaultBaseURL = "https://html.duckduckgo.com/html/"

// NewClient creates a search client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		fetcher:    cfg.Fetcher,
		sem:        semaphore.NewWeighted(cfg.Concurrency),
		maxResults: cfg.MaxResults,
		timeout:    cfg.Timeout,
		baseURL:    cfg.BaseURL,
		logger:     cfg.Logger,
	}
}

// Search runs one SERP query and returns its hits. It never returns an
// error: the caller observes "no results" on timeout, provider failure, or
// bot challenge.
func (c *Client) Search(ctx context.Context, req Request) []Result {
	if req.MaxResults <= 0 {
		req.MaxResults = c.maxResults
	}
	if req.Timeout == 0 {
		req.Timeout = c.timeout
	}

	query := req.Query
	if req.Site != "" {
		query = "site:" + req.Site + " " + query
	}

	ctx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	if err := c.sem.Acquire(ctx, 1); err != nil {
		c.logger.Warn("search pool acquire failed", "query", query, "error", err)
		return nil
	}
	defer c.sem.Release(1)

	target := c.baseURL + "?q=" + url.QueryEscape(query)
	res := c.fetcher.Fetch(ctx, target)

	switch {
	case res.Error != "":
		c.logger.Warn("search failed", "query", query, "error", res.Error)
		metrics.RecordSearch(req.Site, 0, false, "", res.Duration)
		return nil
	case res.Challenged:
		c.logger.Warn("search challenged", "query", query, "source", res.ChallengeSrc)
		metrics.RecordSearch(req.Site, 0, true, res.ChallengeSrc, res.Duration)
		return nil
	}

	results := parseSERP(res.Body, req.MaxResults)
	c.logger.Info("search done", "query", query, "results", len(results))
	metrics.RecordSearch(req.Site, len(results), false, "", res.Duration)
	return results
}
