package scraper

import (
	"context"
	"time"

	"gridscrape/internal/table"
)

// Scraper produces one normalized table from a target.
type Scraper interface {
	Name() string
	Scrape(ctx context.Context, target string, opts Options) (*Result, error)
}

type Options struct {
	Selector   string // CSS selector of the target table
	WaitFor    string // element/load/time
	WaitTarget string // selector override for element, milliseconds for time
	Timeout    time.Duration
	Scope      string // document/element: how much markup to capture
	ShowUI     bool
	ProxyURL   string
}

// Result is a normalized table plus details about where it came from.
type Result struct {
	Table        *table.Table
	HeaderSource table.HeaderSource
	Source       string // final URL or input file path
	Title        string
	LoadTime     time.Duration
}

// Preset is implemented by scrapers bound to a known page. Its values are
// used when the operator does not supply a target, selector or file name.
type Preset interface {
	DefaultTarget() string
	DefaultSelector() string
	DefaultBaseName() string
}
