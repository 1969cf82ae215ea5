package module

import (
	"errors"
	"testing"

	"herbar/client/internal/dom"
	"herbar/client/internal/state"
	"herbar/client/internal/ui"
)

type box struct{ N int }

func (b box) Clone() state.Slice { return b }

type fakeComponent struct {
	name  string
	props []any
}

func (c *fakeComponent) Render(props any) error {
	c.props = append(c.props, props)
	return nil
}

type fakeBinder struct{ state.State }

func (b fakeBinder) Dispatch(state.Action) error { return nil }
func (b fakeBinder) GetState() state.State       { return b.State }
func (b fakeBinder) Run(string, state.Thunk)     {}

func named(name string) Loader {
	return func() (Module, error) {
		return Module{Name: name, Initial: box{}}, nil
	}
}

func TestLoadSkipsFailingModules(t *testing.T) {
	reg := Load(nil,
		named("catalog"),
		func() (Module, error) { return Module{}, errors.New("chunk missing") },
		func() (Module, error) { panic("init exploded") },
		named("catalog"),
		named("faq"),
		nil,
	)
	got := reg.Names()
	if len(got) != 2 || got[0] != "catalog" || got[1] != "faq" {
		t.Fatalf("unexpected modules %v", got)
	}
	if !reg.Has("faq") || reg.Has("favorites") {
		t.Fatal("Has reports wrong membership")
	}
}

func TestReducersDefaultToIdentity(t *testing.T) {
	reg := Load(nil, named("faq"), func() (Module, error) {
		return Module{Name: "counter", Initial: box{}, Reducer: func(prev state.Slice, a state.Action) state.Slice {
			b := prev.(box)
			if a.Type == "inc" {
				b.N++
			}
			return b
		}}, nil
	})

	store := state.New(reg.RootReducer(), reg.InitialState())
	if err := store.Dispatch(state.Action{Type: "inc"}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	st := store.GetState()
	if st["counter"].(box).N != 1 || st["faq"].(box).N != 0 {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestInitComponentsLastWriteWins(t *testing.T) {
	first := &fakeComponent{name: "first"}
	second := &fakeComponent{name: "second"}
	reg := Load(nil,
		func() (Module, error) {
			return Module{Name: "a", InitComponents: func(*dom.Document, Reader) (Components, error) {
				return Components{"grid": first, "count": first}, nil
			}}, nil
		},
		func() (Module, error) {
			return Module{Name: "b", InitComponents: func(*dom.Document, Reader) (Components, error) {
				return Components{"grid": second}, nil
			}}, nil
		},
	)

	comps, err := reg.InitComponents(nil, fakeBinder{})
	if err != nil {
		t.Fatalf("InitComponents failed: %v", err)
	}
	if comps["grid"] != ui.Component(second) || comps["count"] != ui.Component(first) {
		t.Fatal("merge order not honoured")
	}
}

func TestInitComponentsPropagatesError(t *testing.T) {
	reg := Load(nil, func() (Module, error) {
		return Module{Name: "a", InitComponents: func(*dom.Document, Reader) (Components, error) {
			return nil, dom.ErrMissingElement
		}}, nil
	})
	if _, err := reg.InitComponents(nil, fakeBinder{}); !errors.Is(err, dom.ErrMissingElement) {
		t.Fatalf("expected ErrMissingElement, got %v", err)
	}
}

func TestBindEventsRunsOnce(t *testing.T) {
	calls := 0
	reg := Load(nil, func() (Module, error) {
		return Module{Name: "a", BindEvents: func(*dom.Document, Binder) error {
			calls++
			return nil
		}}, nil
	})
	for i := 0; i < 3; i++ {
		if err := reg.BindEvents(nil, fakeBinder{}); err != nil {
			t.Fatalf("BindEvents failed: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one bind, got %d", calls)
	}
}

func TestSyncRecoversPanics(t *testing.T) {
	var synced []string
	reg := Load(nil,
		func() (Module, error) {
			return Module{Name: "a", SyncUI: func(SyncContext) { panic("render exploded") }}, nil
		},
		func() (Module, error) {
			return Module{Name: "b", SyncUI: func(ctx SyncContext) {
				if ctx.OldState == nil {
					synced = append(synced, "b")
				}
			}}, nil
		},
	)
	reg.Sync(SyncContext{State: state.State{}})
	if len(synced) != 1 {
		t.Fatal("second module did not sync after the first panicked")
	}
}

func TestRenderHelper(t *testing.T) {
	c := &fakeComponent{}
	Render(nil, Components{"count": c}, "count", 3)
	Render(nil, Components{"count": c}, "missing", 4)
	if len(c.props) != 1 || c.props[0] != 3 {
		t.Fatalf("unexpected renders %v", c.props)
	}
}
