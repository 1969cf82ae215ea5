package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"herbar/client/internal/catalog"
	"herbar/client/internal/state"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	if opts.Backoff == 0 {
		opts.Backoff = time.Millisecond
	}
	c, err := NewClient(srv.URL+"/", opts)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestFetchAll(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/plants" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`[{"id":1,"name":"Aloe","tags":["usor"],"toxicity":1},{"id":2,"name":"Calathea"}]`))
	}, Options{})

	records, err := c.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(records) != 2 || records[0].Name != "Aloe" || records[0].Tags[0] != "usor" {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestFetchAllRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"id":1,"name":"Aloe"}]`))
	}, Options{Retries: 2})

	if _, err := c.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if hits.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", hits.Load())
	}
}

func TestLinearBackoff(t *testing.T) {
	var waits []time.Duration
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, Options{Retries: 3, Backoff: 10 * time.Millisecond})
	c.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	if _, err := c.FetchAll(context.Background()); !errors.Is(err, ErrStatus) {
		t.Fatalf("expected ErrStatus, got %v", err)
	}
	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond}
	if len(waits) != len(want) {
		t.Fatalf("expected %v, got %v", want, waits)
	}
	for i := range want {
		if waits[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, waits)
		}
	}
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}, Options{Retries: 3})

	_, err := c.FetchAll(context.Background())
	if !errors.Is(err, ErrStatus) || !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrStatus wrapping ErrFetch, got %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("404 retried %d times", hits.Load()-1)
	}
}

func TestShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"object instead of array", `{"plants":[]}`},
		{"empty body", ``},
		{"garbage", `[{"id":`},
		{"record without id", `[{"name":"Aloe"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}, Options{})
			if _, err := c.FetchAll(context.Background()); !errors.Is(err, ErrShape) {
				t.Fatalf("expected ErrShape, got %v", err)
			}
		})
	}
}

func TestTimeout(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}, Options{Timeout: 20 * time.Millisecond, Retries: 1})

	_, err := c.FetchAll(context.Background())
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected a retry after timeout, got %d attempts", hits.Load())
	}
}

func TestFetchDetailCachesAndForgets(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/plants/7" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		_, _ = w.Write([]byte(`{"care_guide":"lumina indirecta","pests":["afide"],"classification":{"familie":"Araceae"}}`))
	}, Options{})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		d, err := c.FetchDetail(ctx, 7)
		if err != nil {
			t.Fatalf("FetchDetail failed: %v", err)
		}
		if d.Classification["familie"] != "Araceae" {
			t.Fatalf("unexpected detail %+v", d)
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("expected cached detail, got %d requests", hits.Load())
	}
	c.Forget(7)
	if _, err := c.FetchDetail(ctx, 7); err != nil {
		t.Fatalf("FetchDetail after Forget failed: %v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected refetch after Forget, got %d requests", hits.Load())
	}
}

func TestInvalidatedDetailIsRefetched(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/plants/3" {
			http.NotFound(w, r)
			return
		}
		n := hits.Add(1)
		_, _ = w.Write([]byte(`{"care_guide":"v` + string(rune('0'+n)) + `"}`))
	}, Options{})

	initial := catalog.Reduce(catalog.Initial(), catalog.Loaded(catalog.Ingest([]catalog.Record{{ID: 3, Name: "Zamioculcas"}})))
	store := state.New(state.Combine(map[string]state.Reducer{catalog.SliceName: catalog.Reduce}),
		state.State{catalog.SliceName: initial})
	thunks := catalog.NewThunks(catalog.Deps{Fetcher: c})
	ctx := context.Background()

	for _, thunk := range []state.Thunk{thunks.EnsureDetail(3), thunks.InvalidateDetail(3), thunks.EnsureDetail(3)} {
		if err := store.DispatchThunk(ctx, thunk); err != nil {
			t.Fatalf("thunk failed: %v", err)
		}
	}
	if hits.Load() != 2 {
		t.Fatalf("expected a second request after invalidation, got %d", hits.Load())
	}
	rec, _ := catalog.Find(catalog.From(store.GetState()).Records, 3)
	if rec.CareGuide != "v2" || !rec.DetailLoaded {
		t.Fatalf("expected refreshed detail, got %q loaded=%v", rec.CareGuide, rec.DetailLoaded)
	}
}

func TestEmptyDetailIsShapeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}, Options{})
	if _, err := c.FetchDetail(context.Background(), 1); !errors.Is(err, ErrShape) {
		t.Fatalf("expected ErrShape, got %v", err)
	}
}

func TestFetchFAQ(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/faq":
			_, _ = w.Write([]byte(`{"title":"Intrebari","entries":[{"question":"Ud des?","answer":"Nu."}]}`))
		default:
			http.NotFound(w, r)
		}
	}, Options{})

	content, err := c.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if content.Title != "Intrebari" || len(content.Entries) != 1 {
		t.Fatalf("unexpected content %+v", content)
	}
}

func TestCanceledContextStopsRetries(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, Options{Retries: 5, Backoff: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	c.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return sleepCtx(ctx, d)
	}
	if _, err := c.FetchAll(ctx); !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one attempt, got %d", hits.Load())
	}
}
