package generic

import (
	"context"
	"fmt"
	"strings"

	"gridscrape/internal/browser"
	"gridscrape/internal/extractor"
	"gridscrape/internal/fetcher"
	"gridscrape/internal/logger"
	"gridscrape/internal/scraper"
	"gridscrape/internal/table"
)

// launch starts the browser for a single Scrape call.
var launch = browser.New

// BrowserScraper renders a page in a headless browser and normalizes the
// first table matching the configured selector.
type BrowserScraper struct {
	cfg browser.Config
}

// NewBrowserScraper creates a browser-backed scraper.
func NewBrowserScraper(cfg browser.Config) *BrowserScraper {
	return &BrowserScraper{cfg: cfg}
}

// Name returns scraper name
func (g *BrowserScraper) Name() string {
	return "generic"
}

// Scrape fetches target, waits for the table and normalizes it. The browser
// is owned by this call and released before it returns, whatever the outcome.
func (g *BrowserScraper) Scrape(ctx context.Context, target string, opts scraper.Options) (*scraper.Result, error) {
	if opts.Selector == "" {
		return nil, fmt.Errorf("table selector is required")
	}

	logger.Section("browser")
	b, err := launch(g.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}
	logger.Debug("browser started: pid=%d headless=%t proxy=%q", b.PID(), g.cfg.Headless, g.cfg.ProxyURL)
	defer func() {
		if err := b.Close(); err != nil {
			logger.Warn("failed to close browser: %v", err)
		}
		logger.Debug("browser %d stopped", b.PID())
	}()

	waitTarget := opts.WaitTarget
	if opts.WaitFor == string(fetcher.WaitStrategyElement) && waitTarget == "" {
		waitTarget = opts.Selector
	}

	logger.Section("fetch")
	f := fetcher.NewFetcher(b)
	result, err := f.Fetch(ctx, target, fetcher.WaitStrategy(opts.WaitFor), waitTarget, opts.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer result.Page.Close()

	// The markup is captured while the browser is still open; parsing happens
	// on plain strings after that.
	scope := opts.Scope
	if scope == "" {
		scope = "document"
	}
	markup, err := extractor.NewExtractor(result.Page).Extract(scope, opts.Selector)
	if err != nil {
		return nil, fmt.Errorf("failed to extract content: %w", err)
	}
	logger.Debug("captured %d bytes of markup (scope=%s)", len(markup), scope)

	// An element capture is the table itself, so any ancestor context in the
	// selector no longer applies.
	selector := opts.Selector
	if scope == "element" {
		selector = "table"
	}

	logger.Section("normalize")
	t, src, err := table.Parse(strings.NewReader(markup), selector)
	if err != nil {
		return nil, fmt.Errorf("failed to locate table %q: %w", opts.Selector, err)
	}
	logger.Info("headers from %s: %d columns, %d rows", src, t.Width(), len(t.Rows))

	return &scraper.Result{
		Table:        t,
		HeaderSource: src,
		Source:       result.URL,
		Title:        result.Title,
		LoadTime:     result.LoadTime,
	}, nil
}
