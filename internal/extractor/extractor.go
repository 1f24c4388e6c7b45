package extractor

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
)

// Extractor captures rendered markup from a live page.
type Extractor struct {
	page    *rod.Page
	timeout time.Duration
}

// NewExtractor creates a new Extractor instance
func NewExtractor(page *rod.Page) *Extractor {
	return &Extractor{
		page:    page,
		timeout: 10 * time.Second,
	}
}

// Extract returns markup for the given scope: "document" for the whole page,
// "element" for the outer HTML of the first element matching selector.
func (e *Extractor) Extract(scope, selector string) (string, error) {
	switch scope {
	case "document":
		return e.Document()
	case "element":
		return e.Element(selector)
	default:
		return "", fmt.Errorf("unsupported scope: %s", scope)
	}
}

// Document returns the complete rendered HTML document.
func (e *Extractor) Document() (string, error) {
	result, err := e.page.Timeout(e.timeout).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("failed to get full HTML: %w", err)
	}

	html := result.Value.Str()
	if !strings.Contains(html, "<!DOCTYPE") {
		html = "<!DOCTYPE html>\n" + html
	}
	return html, nil
}

// Element returns the outer HTML of the first element matching selector.
// A missing element yields an empty string rather than waiting.
func (e *Extractor) Element(selector string) (string, error) {
	elements, err := e.page.Timeout(e.timeout).Elements(selector)
	if err != nil {
		return "", fmt.Errorf("failed to query CSS selector: %w", err)
	}
	if len(elements) == 0 {
		return "", nil
	}

	html, err := elements[0].HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get element HTML: %w", err)
	}
	return html, nil
}
