// Package favorites owns the favorited record ids and the favorites-only
// filter, persisted through a key-value store.
package favorites

import (
	"slices"
	"sort"

	"herbar/client/internal/state"
)

// SliceName is the key of the favorites slice in the state tree.
const SliceName = "favorites"

const (
	ActionHydrated = "favorites/hydrated"
	ActionToggled  = "favorites/toggled"
	ActionSetOnly  = "favorites/setOnly"
)

// State is the favorites slice. IDs is sorted and duplicate free; Rev changes
// whenever IDs does.
type State struct {
	IDs           []int
	Rev           uint64
	OnlyFavorites bool
}

func Initial() State {
	return State{IDs: []int{}}
}

// Clone implements state.Slice.
func (s State) Clone() state.Slice {
	out := s
	out.IDs = append([]int(nil), s.IDs...)
	if out.IDs == nil {
		out.IDs = []int{}
	}
	return out
}

// From extracts the favorites slice from a state tree.
func From(st state.State) State {
	if s, ok := st[SliceName].(State); ok {
		return s
	}
	return Initial()
}

// Has reports whether id is a favorite.
func (s State) Has(id int) bool {
	i := sort.SearchInts(s.IDs, id)
	return i < len(s.IDs) && s.IDs[i] == id
}

func Hydrated(ids []int) state.Action { return state.Action{Type: ActionHydrated, Payload: ids} }

func Toggled(id int) state.Action { return state.Action{Type: ActionToggled, Payload: id} }

func SetOnly(only bool) state.Action { return state.Action{Type: ActionSetOnly, Payload: only} }

// Reduce is the favorites slice reducer.
func Reduce(prev state.Slice, action state.Action) state.Slice {
	s, ok := prev.(State)
	if !ok {
		s = Initial()
	}
	switch action.Type {
	case ActionHydrated:
		ids, _ := action.Payload.([]int)
		ids = Normalize(ids)
		if slices.Equal(ids, s.IDs) {
			return prev
		}
		s.IDs = ids
		s.Rev++
		return s
	case ActionToggled:
		id, ok := action.Payload.(int)
		if !ok {
			return prev
		}
		ids := make([]int, 0, len(s.IDs)+1)
		for _, existing := range s.IDs {
			if existing != id {
				ids = append(ids, existing)
			}
		}
		if len(ids) == len(s.IDs) {
			ids = append(ids, id)
		}
		s.IDs = Normalize(ids)
		s.Rev++
		return s
	case ActionSetOnly:
		only, _ := action.Payload.(bool)
		if only == s.OnlyFavorites {
			return prev
		}
		s.OnlyFavorites = only
		return s
	default:
		return prev
	}
}

// Normalize returns a sorted, duplicate-free copy of ids.
func Normalize(ids []int) []int {
	out := make([]int, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
