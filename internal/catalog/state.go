package catalog

import (
	"sort"

	"herbar/client/internal/state"
)

// SliceName is the key of the catalog slice in the state tree.
const SliceName = "catalog"

// SortKey selects the comparator applied to the visible list.
type SortKey string

const (
	SortNameAsc        SortKey = "az"
	SortNameDesc       SortKey = "za"
	SortToxicityAsc    SortKey = "toxicity-asc"
	SortToxicityDesc   SortKey = "toxicity-desc"
	SortDifficultyAsc  SortKey = "difficulty-asc"
	SortDifficultyDesc SortKey = "difficulty-desc"
	SortGrowthAsc      SortKey = "growth-asc"
	SortGrowthDesc     SortKey = "growth-desc"
	SortAirAsc         SortKey = "air-asc"
	SortAirDesc        SortKey = "air-desc"

	DefaultSort = SortNameAsc
)

// CopyStatus tracks the copy-link button.
type CopyStatus string

const (
	CopyIdle    CopyStatus = "idle"
	CopySuccess CopyStatus = "success"
	CopyError   CopyStatus = "error"
)

// ModalContext is the focused record with its neighbours in the visible list.
type ModalContext struct {
	Current  Record
	Previous Record
	Next     Record
}

// State is the catalog slice. RecordsRev and TagsRev change whenever the
// reducer produces a new Records or ActiveTags value; they identify those
// values for memoization.
type State struct {
	Records      []Record
	RecordsRev   uint64
	Loading      bool
	LoadError    string
	Query        string
	SortKey      SortKey
	ActiveTags   []string
	TagsRev      uint64
	Modal        *ModalContext
	CopyStatus   CopyStatus
	RequestToken uint64
}

// Initial is the slice at store creation: empty and loading.
func Initial() State {
	return State{
		Records:    []Record{},
		Loading:    true,
		SortKey:    DefaultSort,
		ActiveTags: []string{},
		CopyStatus: CopyIdle,
	}
}

// Clone implements state.Slice.
func (s State) Clone() state.Slice {
	return s.clone()
}

func (s State) clone() State {
	out := s
	if s.Records != nil {
		out.Records = make([]Record, len(s.Records))
		for i, r := range s.Records {
			out.Records[i] = r.Clone()
		}
	}
	out.ActiveTags = cloneStrings(s.ActiveTags)
	if s.Modal != nil {
		m := ModalContext{
			Current:  s.Modal.Current.Clone(),
			Previous: s.Modal.Previous.Clone(),
			Next:     s.Modal.Next.Clone(),
		}
		out.Modal = &m
	}
	return out
}

// From extracts the catalog slice from a state tree.
func From(st state.State) State {
	if s, ok := st[SliceName].(State); ok {
		return s
	}
	return Initial()
}

// HasTag reports whether tag is active.
func (s State) HasTag(tag string) bool {
	for _, t := range s.ActiveTags {
		if t == tag {
			return true
		}
	}
	return false
}

// AllTags lists every tag present on a record, sorted.
func (s State) AllTags() []string {
	seen := make(map[string]struct{})
	for _, r := range s.Records {
		for _, t := range r.Tags {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// UniqueTags drops empty and repeated tags while keeping first-seen order.
func UniqueTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
