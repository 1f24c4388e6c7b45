package scraper

import (
	"errors"

	"gridscrape/internal/fetcher"
	"gridscrape/internal/table"
)

// Kind classifies a failed run for the operator.
type Kind string

const (
	KindLookup       Kind = "lookup"       // target table absent from the markup
	KindTimeout      Kind = "timeout"      // target never appeared within the wait bound
	KindUnclassified Kind = "unclassified" // anything else
)

// Classify maps err onto the failure taxonomy.
func Classify(err error) Kind {
	switch {
	case errors.Is(err, table.ErrNotFound):
		return KindLookup
	case errors.Is(err, fetcher.ErrTimeout):
		return KindTimeout
	default:
		return KindUnclassified
	}
}
