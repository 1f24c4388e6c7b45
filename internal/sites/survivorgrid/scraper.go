package survivorgrid

import (
	"context"
	"fmt"

	"gridscrape/internal/browser"
	"gridscrape/internal/scraper"
	"gridscrape/internal/sites/generic"
)

const (
	pageURL  = "https://www.survivorgrid.com/"
	selector = "table#grid"
	baseName = "survivor_grid"
)

func init() {
	scraper.Register(&Scraper{})
}

// Scraper exports the NFL survivor pool grid from survivorgrid.com.
type Scraper struct{}

// Name returns site name
func (s *Scraper) Name() string {
	return "survivorgrid"
}

func (s *Scraper) DefaultTarget() string   { return pageURL }
func (s *Scraper) DefaultSelector() string { return selector }
func (s *Scraper) DefaultBaseName() string { return baseName }

// Scrape renders the grid page and normalizes the grid table. An empty target
// or selector falls back to the site defaults.
func (s *Scraper) Scrape(ctx context.Context, target string, opts scraper.Options) (*scraper.Result, error) {
	if target == "" {
		target = pageURL
	}
	if opts.Selector == "" {
		opts.Selector = selector
	}

	gs := generic.NewBrowserScraper(browser.Config{
		Headless:  !opts.ShowUI,
		ProxyURL:  opts.ProxyURL,
		NoSandbox: true,
	})
	res, err := gs.Scrape(ctx, target, opts)
	if err != nil {
		return nil, fmt.Errorf("survivorgrid: %w", err)
	}
	return res, nil
}
