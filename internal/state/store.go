package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"herbar/client/internal/metrics"
)

var (
	// ErrReducer wraps a panic raised by a reducer. The dispatch that raised it
	// leaves the state untouched.
	ErrReducer = errors.New("reducer failed")
	// ErrEmptyAction is returned for actions without a type.
	ErrEmptyAction = errors.New("action type is required")
	// ErrNilThunk is returned when DispatchThunk receives nil.
	ErrNilThunk = errors.New("thunk is nil")
)

// Listener receives independent snapshots of the state after and before a
// dispatch. A listener may dispatch; that dispatch is applied at once and
// its notification is delivered after the current round.
type Listener func(next, prev State)

// Dispatcher is what thunks see of the store.
type Dispatcher interface {
	Dispatch(action Action) error
	DispatchThunk(ctx context.Context, thunk Thunk) error
	GetState() State
}

// Thunk sequences asynchronous work around dispatches.
type Thunk func(ctx context.Context, d Dispatcher) error

type notification struct {
	action     Action
	next, prev State
}

type listenerEntry struct {
	id uint64
	fn Listener
}

// Store holds the state tree. The zero value is not usable; call New.
type Store struct {
	reducer RootReducer
	logger  *slog.Logger

	// dispatchMu serializes reductions and guards queue and draining.
	// Notifications leave queue in reduction order, delivered by one
	// goroutine at a time.
	dispatchMu sync.Mutex
	queue      []notification
	draining   bool

	mu    sync.RWMutex
	state State

	listenersMu sync.Mutex
	listeners   []listenerEntry
	nextID      uint64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for listener failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a store with the given root reducer and initial tree.
func New(reducer RootReducer, initial State, opts ...Option) *Store {
	s := &Store{
		reducer: reducer,
		logger:  slog.Default(),
		state:   initial.Clone(),
	}
	if s.state == nil {
		s.state = State{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetState returns a deep snapshot of the current tree.
func (s *Store) GetState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Dispatch applies a plain action. The new state is visible to GetState
// when Dispatch returns, and listeners have been notified unless the call
// came from a listener or raced another goroutine's notification round; the
// goroutine already notifying then delivers it, in order. A reducer panic
// aborts the dispatch and is returned as an error wrapping ErrReducer.
func (s *Store) Dispatch(action Action) error {
	if action.Type == "" {
		return ErrEmptyAction
	}

	s.dispatchMu.Lock()
	s.mu.RLock()
	prev := s.state
	s.mu.RUnlock()

	next, err := s.reduce(prev, action)
	if err != nil {
		s.dispatchMu.Unlock()
		metrics.DispatchErrors.WithLabelValues(action.Type).Inc()
		return err
	}

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
	s.queue = append(s.queue, notification{action: action, next: next, prev: prev})
	deliver := !s.draining
	s.draining = true
	s.dispatchMu.Unlock()
	metrics.Dispatches.WithLabelValues(action.Type).Inc()

	if deliver {
		s.drain()
	}
	return nil
}

func (s *Store) drain() {
	for {
		s.dispatchMu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.dispatchMu.Unlock()
			return
		}
		n := s.queue[0]
		s.queue = s.queue[1:]
		s.dispatchMu.Unlock()
		s.notify(n.action, n.next, n.prev)
	}
}

// DispatchThunk runs thunk with the store as its dispatcher and returns the
// thunk's result.
func (s *Store) DispatchThunk(ctx context.Context, thunk Thunk) error {
	if thunk == nil {
		return ErrNilThunk
	}
	return thunk(ctx, s)
}

// Subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (s *Store) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	s.listenersMu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			defer s.listenersMu.Unlock()
			for i, entry := range s.listeners {
				if entry.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) reduce(prev State, action Action) (next State, err error) {
	defer func() {
		if r := recover(); r != nil {
			next = nil
			err = fmt.Errorf("%w: %s: %v", ErrReducer, action.Type, r)
		}
	}()
	next = s.reducer(prev, action)
	if next == nil {
		next = State{}
	}
	return next, nil
}

func (s *Store) notify(action Action, next, prev State) {
	s.listenersMu.Lock()
	listeners := make([]listenerEntry, len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.Unlock()

	for _, entry := range listeners {
		s.callListener(action, entry, next.Clone(), prev.Clone())
	}
}

func (s *Store) callListener(action Action, entry listenerEntry, next, prev State) {
	defer func() {
		if r := recover(); r != nil {
			metrics.ListenerPanics.Inc()
			s.logger.Error("state listener failed", "action", action.Type, "listener", entry.id, "err", r)
		}
	}()
	entry.fn(next, prev)
}
