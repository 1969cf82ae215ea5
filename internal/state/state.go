// Package state implements the single-writer state container shared by the
// feature modules: a state tree partitioned into named slices, pure slice
// reducers composed by name, synchronous subscriber notification and thunks.
package state

import "sort"

// Action is a plain state-change record.
type Action struct {
	Type    string
	Payload any
}

// Slice is the portion of the state tree owned by one reducer. Clone must
// return a deep copy that shares no mutable memory with the receiver.
type Slice interface {
	Clone() Slice
}

// State is the whole tree keyed by slice name.
type State map[string]Slice

// Clone deep-copies every slice.
func (s State) Clone() State {
	if s == nil {
		return nil
	}
	out := make(State, len(s))
	for name, slice := range s {
		if slice == nil {
			out[name] = nil
			continue
		}
		out[name] = slice.Clone()
	}
	return out
}

// Reducer computes the next value of one slice. It must be pure: no I/O, no
// goroutines, no mutation of prev. Unknown action types return prev.
type Reducer func(prev Slice, action Action) Slice

// RootReducer computes the next tree.
type RootReducer func(prev State, action Action) State

// Identity is the reducer used for modules that contribute no reducer.
func Identity(prev Slice, _ Action) Slice {
	return prev
}

// Combine builds a root reducer that hands every slice to the reducer
// registered under its name. Slices without a reducer pass through unchanged.
// Reducers run in name order so a panic is reproducible.
func Combine(reducers map[string]Reducer) RootReducer {
	names := make([]string, 0, len(reducers))
	for name := range reducers {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(prev State, action Action) State {
		next := make(State, len(prev))
		for name, slice := range prev {
			next[name] = slice
		}
		for _, name := range names {
			reduce := reducers[name]
			if reduce == nil {
				continue
			}
			next[name] = reduce(prev[name], action)
		}
		return next
	}
}
