package faq

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"herbar/client/internal/catalog"
	"herbar/client/internal/state"
)

type fakeLoader struct {
	calls  atomic.Int32
	loadFn func(ctx context.Context) (Content, error)
}

func (f *fakeLoader) Load(ctx context.Context) (Content, error) {
	f.calls.Add(1)
	return f.loadFn(ctx)
}

type recordingReporter struct{ errs []error }

func (r *recordingReporter) Report(err error) { r.errs = append(r.errs, err) }

func newStore() *state.Store {
	return state.New(state.Combine(map[string]state.Reducer{
		SliceName:         Reduce,
		catalog.SliceName: catalog.Reduce,
	}), state.State{SliceName: Initial(), catalog.SliceName: catalog.Initial()})
}

var sample = Content{Title: "Intrebari", Entries: []Entry{{Question: "Cat de des ud?", Answer: "Cand solul e uscat."}}}

func TestOpenLoadsOnce(t *testing.T) {
	loader := &fakeLoader{loadFn: func(context.Context) (Content, error) { return sample, nil }}
	cat := catalog.NewThunks(catalog.Deps{})
	thunks := NewThunks(loader, cat, nil, nil)
	store := newStore()
	ctx := context.Background()

	if err := store.DispatchThunk(ctx, thunks.Open()); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	_ = store.DispatchThunk(ctx, thunks.Close())
	if err := store.DispatchThunk(ctx, thunks.Open()); err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected one load, got %d", loader.calls.Load())
	}
	fs := From(store.GetState())
	if !fs.Open || fs.Content == nil || fs.Content.Title != "Intrebari" {
		t.Fatalf("unexpected slice %+v", fs)
	}
	if catalog.From(store.GetState()).RequestToken == 0 {
		t.Fatal("opening the faq must supersede pending record opens")
	}
}

func TestOpenFailureReportsOnce(t *testing.T) {
	reporter := &recordingReporter{}
	loader := &fakeLoader{loadFn: func(context.Context) (Content, error) { return Content{Title: "gol"}, nil }}
	thunks := NewThunks(loader, nil, reporter, nil)
	store := newStore()

	err := store.DispatchThunk(context.Background(), thunks.Open())
	if !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	fs := From(store.GetState())
	if fs.Open || !fs.Failed {
		t.Fatalf("unexpected slice after failure %+v", fs)
	}
	if len(reporter.errs) != 1 {
		t.Fatalf("expected one report, got %d", len(reporter.errs))
	}
}

func TestModalRequestClosesPanel(t *testing.T) {
	s := Reduce(Initial(), Opened(0)).(State)
	s = Reduce(s, catalog.ModalRequested(4)).(State)
	if s.Open {
		t.Fatal("record modal request must close the faq")
	}
}

func TestOpenedIgnoresSupersededToken(t *testing.T) {
	s := Reduce(Initial(), catalog.ModalClosed(3)).(State)
	s = Reduce(s, catalog.ModalRequested(4)).(State)
	if s.ModalToken != 4 {
		t.Fatalf("expected mirrored token 4, got %d", s.ModalToken)
	}
	if s = Reduce(s, Opened(3)).(State); s.Open {
		t.Fatal("panel opened behind a newer record request")
	}
	if s = Reduce(s, Opened(4)).(State); !s.Open {
		t.Fatal("panel with the latest token must open")
	}
}

func TestModalOpenedClosesPanelOnlyWhenLatest(t *testing.T) {
	s := Reduce(Initial(), catalog.ModalClosed(5)).(State)
	s = Reduce(s, Opened(5)).(State)

	stale := catalog.ModalOpened(4, catalog.ModalContext{Current: catalog.Record{ID: 1}})
	if s = Reduce(s, stale).(State); !s.Open {
		t.Fatal("a superseded record open must not close the panel")
	}
	latest := catalog.ModalOpened(5, catalog.ModalContext{Current: catalog.Record{ID: 1}})
	if s = Reduce(s, latest).(State); s.Open {
		t.Fatal("a record modal that opens must close the panel")
	}
}

type gatedFetcher struct {
	started chan struct{}
	release chan struct{}
}

func (f *gatedFetcher) FetchAll(context.Context) ([]catalog.Record, error) { return nil, nil }

func (f *gatedFetcher) FetchDetail(ctx context.Context, id int) (catalog.Detail, error) {
	close(f.started)
	<-f.release
	return catalog.Detail{CareGuide: "Udare rara."}, nil
}

func TestPanelAndModalNeverOpenTogether(t *testing.T) {
	for _, faqFirst := range []bool{true, false} {
		loaderStarted, releaseLoader := make(chan struct{}), make(chan struct{})
		loader := &fakeLoader{loadFn: func(context.Context) (Content, error) {
			close(loaderStarted)
			<-releaseLoader
			return sample, nil
		}}
		fetcher := &gatedFetcher{started: make(chan struct{}), release: make(chan struct{})}
		cat := catalog.NewThunks(catalog.Deps{Fetcher: fetcher})
		thunks := NewThunks(loader, cat, nil, nil)
		store := newStore()
		ctx := context.Background()
		if err := store.Dispatch(catalog.Loaded(catalog.Ingest([]catalog.Record{{ID: 1, Name: "Ficus"}}))); err != nil {
			t.Fatalf("Dispatch failed: %v", err)
		}

		faqDone, modalDone := make(chan error, 1), make(chan error, 1)
		go func() { faqDone <- store.DispatchThunk(ctx, thunks.Open()) }()
		<-loaderStarted
		go func() { modalDone <- store.DispatchThunk(ctx, cat.OpenModal(1)) }()
		<-fetcher.started

		if faqFirst {
			close(releaseLoader)
			<-faqDone
			close(fetcher.release)
			<-modalDone
		} else {
			close(fetcher.release)
			<-modalDone
			close(releaseLoader)
			<-faqDone
		}

		st := store.GetState()
		if From(st).Open || catalog.From(st).Modal == nil {
			t.Fatalf("faqFirst=%v: faq open=%v modal open=%v, want only the later record modal",
				faqFirst, From(st).Open, catalog.From(st).Modal != nil)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := Reduce(Initial(), Loaded(sample)).(State)
	c := s.Clone().(State)
	c.Content.Entries[0].Answer = "altceva"
	if s.Content.Entries[0].Answer != sample.Entries[0].Answer {
		t.Fatal("clone shares entries")
	}
}
