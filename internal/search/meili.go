package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"

	"herbar/client/internal/catalog"
)

const (
	idxPlants       = "herbar_plants"
	defaultPageSize = 200
)

// Meili implements Source and Indexer via Meilisearch.
type Meili struct {
	client   meili.ServiceManager
	healthy  atomic.Bool
	done     chan struct{}
	logger   *slog.Logger
	pageSize int64
}

// NewMeili creates a Meilisearch client and configures the plant index. An
// unreachable server is not an error; the health loop keeps probing it.
func NewMeili(url, apiKey string, logger *slog.Logger) *Meili {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Meili{
		client:   meili.New(url, meili.WithAPIKey(apiKey)),
		done:     make(chan struct{}),
		logger:   logger.With("component", "meili"),
		pageSize: defaultPageSize,
	}

	if _, err := m.client.Health(); err != nil {
		m.logger.Warn("meilisearch unavailable", "url", url, "error", err)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{Uid: idxPlants, PrimaryKey: "id"}); err != nil {
		m.logger.Debug("create index (may already exist)", "index", idxPlants, "error", err)
	}

	index := m.client.Index(idxPlants)
	filterable := []interface{}{"id", "category", "tags", "toxicity"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		m.logger.Warn("update filterable attrs", "index", idxPlants, "error", err)
	}
	sortable := []string{"id"}
	if _, err := index.UpdateSortableAttributes(&sortable); err != nil {
		m.logger.Warn("update sortable attrs", "index", idxPlants, "error", err)
	}
	searchable := []string{"name", "scientific_name", "category", "tags"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		m.logger.Warn("update searchable attrs", "index", idxPlants, "error", err)
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				m.logger.Info("meilisearch recovered, reconfiguring index")
				m.configureIndex()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// FetchAll pages through the whole index in id order.
func (m *Meili) FetchAll(ctx context.Context) ([]catalog.Record, error) {
	records := []catalog.Record{}
	for offset := int64(0); ; offset += m.pageSize {
		hits, err := m.search(ctx, &meili.SearchRequest{
			IndexUID: idxPlants,
			Limit:    m.pageSize,
			Offset:   offset,
			Sort:     []string{"id:asc"},
		})
		if err != nil {
			return nil, err
		}
		for _, hit := range hits {
			r, err := hitToRecord(hit)
			if err != nil {
				return nil, err
			}
			r.Classification, r.CareGuide, r.SeasonalCare, r.Pests, r.QuickFacts = nil, "", "", nil, nil
			records = append(records, r)
		}
		if int64(len(hits)) < m.pageSize {
			return records, nil
		}
	}
}

// FetchDetail reads the detail fields stored alongside the indexed record.
func (m *Meili) FetchDetail(ctx context.Context, id int) (catalog.Detail, error) {
	hits, err := m.search(ctx, &meili.SearchRequest{
		IndexUID: idxPlants,
		Limit:    1,
		Filter:   fmt.Sprintf("id = %d", id),
	})
	if err != nil {
		return catalog.Detail{}, err
	}
	if len(hits) == 0 {
		return catalog.Detail{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	r, err := hitToRecord(hits[0])
	if err != nil {
		return catalog.Detail{}, err
	}
	return catalog.Detail{
		CareGuide:      r.CareGuide,
		SeasonalCare:   r.SeasonalCare,
		Classification: r.Classification,
		Pests:          r.Pests,
		QuickFacts:     r.QuickFacts,
	}, nil
}

func (m *Meili) search(ctx context.Context, req *meili.SearchRequest) ([]meili.Hit, error) {
	if !m.healthy.Load() {
		return nil, ErrUnhealthy
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := m.client.MultiSearch(&meili.MultiSearchRequest{
		Queries: []*meili.SearchRequest{req},
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, fmt.Errorf("meilisearch multi-search: %w", err)
	}
	var hits []meili.Hit
	for _, sr := range resp.Results {
		hits = append(hits, sr.Hits...)
	}
	return hits, nil
}

// IndexRecords adds or replaces records, detail fields included.
func (m *Meili) IndexRecords(ctx context.Context, records []catalog.Record) error {
	if len(records) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := m.client.Index(idxPlants).AddDocuments(records, nil); err != nil {
		return fmt.Errorf("index plants: %w", err)
	}
	return nil
}

func hitToRecord(hit meili.Hit) (catalog.Record, error) {
	raw, err := json.Marshal(hit)
	if err != nil {
		return catalog.Record{}, fmt.Errorf("encode hit: %w", err)
	}
	var r catalog.Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return catalog.Record{}, fmt.Errorf("decode hit: %w", err)
	}
	if r.ID <= 0 || r.Name == "" {
		return catalog.Record{}, fmt.Errorf("decode hit: missing id or name")
	}
	return r, nil
}
