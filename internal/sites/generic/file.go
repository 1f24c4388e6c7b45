package generic

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gridscrape/internal/logger"
	"gridscrape/internal/scraper"
	"gridscrape/internal/table"

	"golang.org/x/net/html/charset"
)

// FileScraper normalizes a table from a saved HTML file. No browser is
// involved, so the wait options are ignored.
type FileScraper struct{}

// NewFileScraper creates a file-backed scraper.
func NewFileScraper() *FileScraper {
	return &FileScraper{}
}

// Name returns scraper name
func (s *FileScraper) Name() string {
	return "file"
}

// Scrape reads the file at path, decoding legacy charsets declared in the
// document, and normalizes the first table matching opts.Selector.
func (s *FileScraper) Scrape(ctx context.Context, path string, opts scraper.Options) (*scraper.Result, error) {
	if opts.Selector == "" {
		return nil, fmt.Errorf("table selector is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	r, err := charset.NewReader(f, "text/html")
	if err != nil {
		return nil, fmt.Errorf("failed to detect input encoding: %w", err)
	}

	t, src, err := table.Parse(r, opts.Selector)
	if err != nil {
		return nil, fmt.Errorf("failed to locate table %q: %w", opts.Selector, err)
	}
	logger.Info("headers from %s: %d columns, %d rows", src, t.Width(), len(t.Rows))

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &scraper.Result{
		Table:        t,
		HeaderSource: src,
		Source:       abs,
		Title:        filepath.Base(path),
		LoadTime:     time.Since(start),
	}, nil
}
