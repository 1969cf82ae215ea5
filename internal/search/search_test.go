package search

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	meili "github.com/meilisearch/meilisearch-go"

	"herbar/client/internal/catalog"
)

type fakeSource struct {
	healthy       bool
	fetchAllFn    func(ctx context.Context) ([]catalog.Record, error)
	fetchDetailFn func(ctx context.Context, id int) (catalog.Detail, error)
	indexed       []catalog.Record
}

func (f *fakeSource) Healthy() bool { return f.healthy }

func (f *fakeSource) FetchAll(ctx context.Context) ([]catalog.Record, error) {
	return f.fetchAllFn(ctx)
}

func (f *fakeSource) FetchDetail(ctx context.Context, id int) (catalog.Detail, error) {
	return f.fetchDetailFn(ctx, id)
}

func (f *fakeSource) IndexRecords(_ context.Context, records []catalog.Record) error {
	f.indexed = append(f.indexed, records...)
	return nil
}

func recordsOf(names ...string) func(context.Context) ([]catalog.Record, error) {
	return func(context.Context) ([]catalog.Record, error) {
		out := make([]catalog.Record, 0, len(names))
		for i, n := range names {
			out = append(out, catalog.Record{ID: i + 1, Name: n})
		}
		return out, nil
	}
}

func TestServiceUsesHealthyPrimary(t *testing.T) {
	primary := &fakeSource{healthy: true, fetchAllFn: recordsOf("Aloe")}
	fallback := &fakeSource{fetchAllFn: recordsOf("Ficus", "Calathea")}
	got, err := NewService(primary, fallback, nil).FetchAll(context.Background())
	if err != nil || len(got) != 1 || got[0].Name != "Aloe" {
		t.Fatalf("expected primary records, got %+v (%v)", got, err)
	}
}

func TestServiceFallsBackWhenUnhealthyOrFailing(t *testing.T) {
	fallback := &fakeSource{fetchAllFn: recordsOf("Ficus", "Calathea")}

	unhealthy := &fakeSource{healthy: false, fetchAllFn: func(context.Context) ([]catalog.Record, error) {
		t.Fatal("unhealthy primary must not be called")
		return nil, nil
	}}
	got, err := NewService(unhealthy, fallback, nil).FetchAll(context.Background())
	if err != nil || len(got) != 2 {
		t.Fatalf("expected fallback records, got %+v (%v)", got, err)
	}

	failing := &fakeSource{healthy: true, fetchAllFn: func(context.Context) ([]catalog.Record, error) {
		return nil, errors.New("boom")
	}}
	got, err = NewService(failing, fallback, nil).FetchAll(context.Background())
	if err != nil || len(got) != 2 {
		t.Fatalf("expected fallback after failure, got %+v (%v)", got, err)
	}
}

func TestServiceDetailFallback(t *testing.T) {
	primary := &fakeSource{healthy: true, fetchDetailFn: func(_ context.Context, id int) (catalog.Detail, error) {
		return catalog.Detail{}, ErrNotFound
	}}
	fallback := &fakeSource{fetchDetailFn: func(_ context.Context, id int) (catalog.Detail, error) {
		return catalog.Detail{CareGuide: "lumina indirecta"}, nil
	}}
	d, err := NewService(primary, fallback, nil).FetchDetail(context.Background(), 7)
	if err != nil || d.CareGuide != "lumina indirecta" {
		t.Fatalf("unexpected detail %+v (%v)", d, err)
	}
}

func TestServiceWithoutSources(t *testing.T) {
	if _, err := NewService(nil, nil, nil).FetchAll(context.Background()); !errors.Is(err, ErrUnhealthy) {
		t.Fatalf("expected ErrUnhealthy, got %v", err)
	}
}

func TestServiceReindex(t *testing.T) {
	primary := &fakeSource{healthy: true}
	svc := NewService(primary, nil, nil)
	if err := svc.Reindex(context.Background(), []catalog.Record{{ID: 1, Name: "Aloe"}}); err != nil {
		t.Fatalf("reindex failed: %v", err)
	}
	if len(primary.indexed) != 1 {
		t.Fatalf("expected one indexed record, got %d", len(primary.indexed))
	}
	primary.healthy = false
	if err := svc.Reindex(context.Background(), nil); !errors.Is(err, ErrUnhealthy) {
		t.Fatalf("expected ErrUnhealthy, got %v", err)
	}
}

func TestHitToRecord(t *testing.T) {
	hit := meili.Hit{
		"id":             json.RawMessage(`3`),
		"name":           json.RawMessage(`"Zamioculcas"`),
		"tags":           json.RawMessage(`["rezistent","umbra"]`),
		"difficulty":     json.RawMessage(`1`),
		"classification": json.RawMessage(`{"familie":"Araceae"}`),
		"_rankingScore":  json.RawMessage(`0.9`),
	}
	r, err := hitToRecord(hit)
	if err != nil {
		t.Fatalf("hitToRecord failed: %v", err)
	}
	if r.ID != 3 || r.Name != "Zamioculcas" || len(r.Tags) != 2 || r.Classification["familie"] != "Araceae" {
		t.Fatalf("unexpected record %+v", r)
	}

	if _, err := hitToRecord(meili.Hit{"name": json.RawMessage(`"fara id"`)}); err == nil {
		t.Fatal("expected error for hit without id")
	}
}

type cachingFetcher struct {
	fakeSource
	forgotten []int
}

func (c *cachingFetcher) Forget(id int) { c.forgotten = append(c.forgotten, id) }

func TestServiceForgetReachesCachingSource(t *testing.T) {
	fallback := &cachingFetcher{}
	NewService(nil, fallback, nil).Forget(5)
	NewService(&fakeSource{healthy: true}, fallback, nil).Forget(6)
	if len(fallback.forgotten) != 2 || fallback.forgotten[0] != 5 || fallback.forgotten[1] != 6 {
		t.Fatalf("expected forgets for 5 and 6, got %v", fallback.forgotten)
	}
}
