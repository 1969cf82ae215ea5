// Package module composes independently loaded feature modules into one
// reducer tree, one component map and one set of event bindings.
package module

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"herbar/client/internal/dom"
	"herbar/client/internal/state"
	"herbar/client/internal/ui"
)

var (
	ErrDuplicate = errors.New("module already registered")
	ErrNoName    = errors.New("module name is required")
)

// Components maps component names to components.
type Components map[string]ui.Component

// Reader is the read-only view of the store given to component factories.
type Reader interface {
	GetState() state.State
}

// Binder is what bound event handlers use to act on the store. Run starts
// thunk on its own goroutine. Thunks report their own operational failures,
// so Run only logs the returned error; a panic is recovered and reported.
type Binder interface {
	Dispatch(action state.Action) error
	GetState() state.State
	Run(name string, thunk state.Thunk)
}

// SyncContext is handed to every SyncUI call. OldState is nil on the first
// sync, which must render unconditionally.
type SyncContext struct {
	Ctx        context.Context
	Doc        *dom.Document
	Components Components
	State      state.State
	OldState   state.State
}

// Module is one feature. Every field except Name is optional; a nil Reducer
// leaves the slice untouched.
type Module struct {
	Name           string
	Reducer        state.Reducer
	Initial        state.Slice
	InitComponents func(doc *dom.Document, r Reader) (Components, error)
	BindEvents     func(doc *dom.Document, b Binder) error
	SyncUI         func(ctx SyncContext)
}

// Loader produces a module. Loaders run independently: one failing does not
// keep the others out of the registry.
type Loader func() (Module, error)

type Registry struct {
	logger  *slog.Logger
	modules []Module

	bindOnce sync.Once
	bindErr  error
}

// Load runs every loader and registers the modules that load. Failed,
// panicking, unnamed and duplicate modules are logged and left out.
func Load(logger *slog.Logger, loaders ...Loader) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{logger: logger}
	for i, load := range loaders {
		m, err := safeLoad(load)
		if err != nil {
			logger.Error("module failed to load", "index", i, "err", err)
			continue
		}
		if err := r.add(m); err != nil {
			logger.Error("module rejected", "module", m.Name, "err", err)
		}
	}
	return r
}

func safeLoad(load Loader) (m Module, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("loader panicked: %v", rec)
		}
	}()
	if load == nil {
		return Module{}, errors.New("nil loader")
	}
	return load()
}

func (r *Registry) add(m Module) error {
	if m.Name == "" {
		return ErrNoName
	}
	for _, existing := range r.modules {
		if existing.Name == m.Name {
			return fmt.Errorf("%w: %s", ErrDuplicate, m.Name)
		}
	}
	r.modules = append(r.modules, m)
	return nil
}

// Modules returns the registered modules in load order.
func (r *Registry) Modules() []Module {
	return append([]Module(nil), r.modules...)
}

// Names returns the registered module names in load order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.modules))
	for i, m := range r.modules {
		names[i] = m.Name
	}
	return names
}

// Has reports whether a module named name loaded.
func (r *Registry) Has(name string) bool {
	for _, m := range r.modules {
		if m.Name == name {
			return true
		}
	}
	return false
}

// Reducers maps slice names to reducers, defaulting to state.Identity.
func (r *Registry) Reducers() map[string]state.Reducer {
	out := make(map[string]state.Reducer, len(r.modules))
	for _, m := range r.modules {
		if m.Reducer == nil {
			out[m.Name] = state.Identity
			continue
		}
		out[m.Name] = m.Reducer
	}
	return out
}

// RootReducer combines Reducers.
func (r *Registry) RootReducer() state.RootReducer {
	return state.Combine(r.Reducers())
}

// InitialState collects every module's initial slice.
func (r *Registry) InitialState() state.State {
	st := state.State{}
	for _, m := range r.modules {
		if m.Initial != nil {
			st[m.Name] = m.Initial
		}
	}
	return st
}

// InitComponents merges every module's components in load order. A later
// module's component replaces an earlier one of the same name; each shadowed
// name is logged.
func (r *Registry) InitComponents(doc *dom.Document, reader Reader) (Components, error) {
	merged := Components{}
	owner := map[string]string{}
	for _, m := range r.modules {
		if m.InitComponents == nil {
			continue
		}
		comps, err := m.InitComponents(doc, reader)
		if err != nil {
			return nil, fmt.Errorf("init components of %s: %w", m.Name, err)
		}
		names := make([]string, 0, len(comps))
		for name := range comps {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if prev, ok := owner[name]; ok {
				r.logger.Warn("component shadowed", "component", name, "module", m.Name, "shadowed", prev)
			}
			merged[name] = comps[name]
			owner[name] = m.Name
		}
	}
	return merged, nil
}

// BindEvents calls every module's binder. Only the first call does anything;
// later calls return the first call's result.
func (r *Registry) BindEvents(doc *dom.Document, b Binder) error {
	r.bindOnce.Do(func() {
		for _, m := range r.modules {
			if m.BindEvents == nil {
				continue
			}
			if err := m.BindEvents(doc, b); err != nil {
				r.bindErr = fmt.Errorf("bind events of %s: %w", m.Name, err)
				return
			}
		}
	})
	return r.bindErr
}

// Sync calls every SyncUI. A panicking module is logged and the others still
// run.
func (r *Registry) Sync(ctx SyncContext) {
	for _, m := range r.modules {
		if m.SyncUI == nil {
			continue
		}
		r.syncOne(m, ctx)
	}
}

func (r *Registry) syncOne(m Module, ctx SyncContext) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("module sync failed", "module", m.Name, "err", rec)
		}
	}()
	m.SyncUI(ctx)
}

// Render renders props with the named component, logging failures. It is
// the helper SyncUI implementations use.
func Render(logger *slog.Logger, comps Components, name string, props any) {
	c, ok := comps[name]
	if !ok {
		return
	}
	if err := c.Render(props); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("render failed", "component", name, "err", err)
	}
}
