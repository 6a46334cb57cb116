// Package search defines the external search provider interface and
// the Exa adapter used for search-augmented generation. Results are
// ephemeral: they are formatted into prompt context and never persisted.
package search

import (
	"context"
	"time"
)

// Result holds a single search result in provider relevance order.
type Result struct {
	Title         string
	URL           string
	PublishedDate *time.Time
	Author        string
	Text          string
}

// Provider is the interface for pluggable search backends.
type Provider interface {
	// Search returns up to a small bounded number of results for the
	// query within the given category. An empty result set is not an
	// error.
	Search(ctx context.Context, query, category string) ([]Result, error)
}

// Disabled is a Provider that always returns no results. It stands in
// when no search backend is configured, so search-augmented requests
// degrade to plain generation instead of failing.
type Disabled struct{}

var _ Provider = Disabled{}

// Search returns an empty result set.
func (Disabled) Search(ctx context.Context, query, category string) ([]Result, error) {
	return nil, nil
}
