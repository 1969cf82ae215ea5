// Package search serves the catalog out of a Meilisearch index and falls
// back to another catalog source while the index is unreachable.
package search

import (
	"context"
	"errors"

	"herbar/client/internal/catalog"
)

var (
	ErrUnhealthy = errors.New("search index unhealthy")
	ErrNotFound  = errors.New("plant not indexed")
)

// Source is a catalog fetcher that can report whether it is reachable.
type Source interface {
	catalog.Fetcher
	Healthy() bool
}

// Indexer pushes records into a search index.
type Indexer interface {
	IndexRecords(ctx context.Context, records []catalog.Record) error
}
