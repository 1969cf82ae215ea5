package view

import (
	"sync"

	"herbar/client/internal/catalog"
	"herbar/client/internal/favorites"
	"herbar/client/internal/metrics"
	"herbar/client/internal/state"
)

// ComputeFunc has the signature of Compute.
type ComputeFunc func(records []catalog.Record, query string, activeTags []string, sortKey catalog.SortKey, favoritesOnly bool, favoriteIDs []int) []catalog.Record

// Input holds the arguments of one visible-list computation. The slice
// arguments are identified by the revision their owning reducer assigned
// when it produced them: equal revisions mean the same value.
type Input struct {
	Records       []catalog.Record
	RecordsRev    uint64
	Query         string
	ActiveTags    []string
	TagsRev       uint64
	SortKey       catalog.SortKey
	FavoritesOnly bool
	FavoriteIDs   []int
	FavoritesRev  uint64
}

// InputFrom projects a state tree onto the pipeline arguments.
func InputFrom(st state.State) Input {
	cs := catalog.From(st)
	fs := favorites.From(st)
	return Input{
		Records:       cs.Records,
		RecordsRev:    cs.RecordsRev,
		Query:         cs.Query,
		ActiveTags:    cs.ActiveTags,
		TagsRev:       cs.TagsRev,
		SortKey:       cs.SortKey,
		FavoritesOnly: fs.OnlyFavorites,
		FavoriteIDs:   fs.IDs,
		FavoritesRev:  fs.Rev,
	}
}

type memoKey struct {
	recordsRev    uint64
	query         string
	tagsRev       uint64
	sortKey       catalog.SortKey
	favoritesOnly bool
	favoritesRev  uint64
}

func (in Input) key() memoKey {
	return memoKey{
		recordsRev:    in.RecordsRev,
		query:         in.Query,
		tagsRev:       in.TagsRev,
		sortKey:       in.SortKey,
		favoritesOnly: in.FavoritesOnly,
		favoritesRev:  in.FavoritesRev,
	}
}

// Memo caches the most recent computation. Results are shared between
// callers and must be treated as read-only.
type Memo struct {
	fn ComputeFunc

	mu     sync.Mutex
	valid  bool
	last   memoKey
	result []catalog.Record
}

// NewMemo wraps fn; a nil fn wraps Compute.
func NewMemo(fn ComputeFunc) *Memo {
	if fn == nil {
		fn = Compute
	}
	return &Memo{fn: fn}
}

// Visible returns the visible list for in, recomputing only when any key
// argument differs from the previous call.
func (m *Memo) Visible(in Input) []catalog.Record {
	key := in.key()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.valid && key == m.last {
		return m.result
	}
	metrics.VisibleRecomputes.Inc()
	m.result = m.fn(in.Records, in.Query, in.ActiveTags, in.SortKey, in.FavoritesOnly, in.FavoriteIDs)
	m.last = key
	m.valid = true
	return m.result
}

// FromState is Visible(InputFrom(st)).
func (m *Memo) FromState(st state.State) []catalog.Record {
	return m.Visible(InputFrom(st))
}

// Reset drops the cached entry.
func (m *Memo) Reset() {
	m.mu.Lock()
	m.valid = false
	m.result = nil
	m.mu.Unlock()
}
