package search

import (
	"context"
	"log/slog"

	"herbar/client/internal/catalog"
)

// Service is the catalog facade that tries the index first and falls back to
// another source.
type Service struct {
	primary  Source
	fallback catalog.Fetcher
	logger   *slog.Logger
}

// NewService creates the facade. primary may be nil when no index is
// configured.
func NewService(primary Source, fallback catalog.Fetcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{primary: primary, fallback: fallback, logger: logger}
}

func (s *Service) usePrimary() bool {
	return s.primary != nil && s.primary.Healthy()
}

func (s *Service) FetchAll(ctx context.Context) ([]catalog.Record, error) {
	if s.usePrimary() {
		records, err := s.primary.FetchAll(ctx)
		if err == nil || s.fallback == nil || ctx.Err() != nil {
			return records, err
		}
		s.logger.Warn("search index failed, falling back", "op", "fetch_all", "error", err)
	}
	if s.fallback == nil {
		return nil, ErrUnhealthy
	}
	return s.fallback.FetchAll(ctx)
}

func (s *Service) FetchDetail(ctx context.Context, id int) (catalog.Detail, error) {
	if s.usePrimary() {
		d, err := s.primary.FetchDetail(ctx, id)
		if err == nil || s.fallback == nil || ctx.Err() != nil {
			return d, err
		}
		s.logger.Warn("search index failed, falling back", "op", "fetch_detail", "id", id, "error", err)
	}
	if s.fallback == nil {
		return catalog.Detail{}, ErrUnhealthy
	}
	return s.fallback.FetchDetail(ctx, id)
}

// Forget drops a cached detail of id in whichever source keeps one.
func (s *Service) Forget(id int) {
	for _, src := range []catalog.Fetcher{s.primary, s.fallback} {
		if f, ok := src.(catalog.Forgetter); ok {
			f.Forget(id)
		}
	}
}

// Reindex pushes records into the index when it is an Indexer and reachable.
func (s *Service) Reindex(ctx context.Context, records []catalog.Record) error {
	idx, ok := s.primary.(Indexer)
	if !ok || !s.usePrimary() {
		return ErrUnhealthy
	}
	return idx.IndexRecords(ctx, records)
}
