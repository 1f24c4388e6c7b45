package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gridscrape/internal/browser"
	"gridscrape/internal/logger"

	"github.com/go-rod/rod"
)

// ErrTimeout is returned when the page or the awaited element does not show
// up within the configured timeout.
var ErrTimeout = errors.New("timed out waiting for page")

// WaitStrategy wait strategy type
type WaitStrategy string

const (
	WaitStrategyElement WaitStrategy = "element" // Wait for the target selector to appear
	WaitStrategyLoad    WaitStrategy = "load"    // Wait for the load event
	WaitStrategyTime    WaitStrategy = "time"    // Wait for a fixed number of milliseconds
)

// FetchResult fetch result
type FetchResult struct {
	Page     *rod.Page     // Page object, closed by the caller
	Title    string        // Page title
	URL      string        // Final URL
	LoadTime time.Duration // Load time
}

// Fetcher page fetcher
type Fetcher struct {
	browser *browser.Browser
}

// NewFetcher creates a new Fetcher instance
func NewFetcher(b *browser.Browser) *Fetcher {
	return &Fetcher{browser: b}
}

// Fetch navigates to url and blocks until the wait strategy is satisfied.
// For the element strategy target is a CSS selector; for the time strategy it
// is a number of milliseconds. The whole operation is bounded by timeout.
func (f *Fetcher) Fetch(ctx context.Context, url string, strategy WaitStrategy, target string, timeout time.Duration) (*FetchResult, error) {
	startTime := time.Now()

	page, err := f.browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	bounded := page.Context(ctx).Timeout(timeout)

	logger.Debug("navigating to %s", url)
	if err := bounded.Navigate(url); err != nil {
		page.Close()
		return nil, wrapTimeout(fmt.Errorf("failed to navigate: %w", err))
	}

	if err := applyWaitStrategy(bounded, strategy, target); err != nil {
		page.Close()
		return nil, wrapTimeout(fmt.Errorf("wait strategy failed: %w", err))
	}

	title := ""
	if info, err := page.Info(); err == nil {
		title = info.Title
		url = info.URL
	}

	result := &FetchResult{
		Page:     page,
		Title:    title,
		URL:      url,
		LoadTime: time.Since(startTime),
	}
	logger.Debug("page ready after %s: %q", result.LoadTime.Round(time.Millisecond), title)
	return result, nil
}

// applyWaitStrategy applies wait strategy
func applyWaitStrategy(page *rod.Page, strategy WaitStrategy, target string) error {
	switch strategy {
	case WaitStrategyElement:
		if target == "" {
			return fmt.Errorf("wait target is required for element strategy")
		}
		if _, err := page.Element(target); err != nil {
			return fmt.Errorf("failed to wait for element '%s': %w", target, err)
		}

	case WaitStrategyTime:
		d, err := ParseWaitTime(target)
		if err != nil {
			return err
		}
		if err := page.WaitLoad(); err != nil {
			return fmt.Errorf("failed to wait for page load: %w", err)
		}
		select {
		case <-time.After(d):
		case <-page.GetContext().Done():
			return page.GetContext().Err()
		}

	default:
		if err := page.WaitLoad(); err != nil {
			return fmt.Errorf("failed to wait for page load: %w", err)
		}
	}

	return nil
}

// ParseWaitTime parses the millisecond count used by the time strategy.
func ParseWaitTime(target string) (time.Duration, error) {
	if target == "" {
		return 0, fmt.Errorf("wait target is required for time strategy")
	}
	ms, err := strconv.Atoi(target)
	if err != nil || ms < 0 {
		return 0, fmt.Errorf("invalid wait time '%s': expected milliseconds", target)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// wrapTimeout marks deadline errors with ErrTimeout so callers can tell a
// slow page apart from other failures.
func wrapTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}
