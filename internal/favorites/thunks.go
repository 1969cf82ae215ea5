package favorites

import (
	"context"
	"fmt"
	"sync"

	"herbar/client/internal/state"
)

// Reporter receives operational failures.
type Reporter interface {
	Report(err error)
}

// Thunks builds the asynchronous favorites actions.
type Thunks struct {
	repo     *Repository
	reporter Reporter

	// toggleMu makes the read of the current favorites and the write that
	// follows one step.
	toggleMu sync.Mutex
}

func NewThunks(repo *Repository, reporter Reporter) *Thunks {
	return &Thunks{repo: repo, reporter: reporter}
}

// Hydrate loads persisted favorites into the store. Used during startup, so
// failures are returned rather than reported.
func (t *Thunks) Hydrate() state.Thunk {
	return func(ctx context.Context, d state.Dispatcher) error {
		ids, err := t.repo.Load(ctx)
		if err != nil {
			return fmt.Errorf("hydrate favorites: %w", err)
		}
		return d.Dispatch(Hydrated(ids))
	}
}

// Toggle persists the change first and updates the slice only on success,
// with the ids the store now holds.
func (t *Thunks) Toggle(id int) state.Thunk {
	return func(ctx context.Context, d state.Dispatcher) error {
		t.toggleMu.Lock()
		defer t.toggleMu.Unlock()

		var (
			ids []int
			err error
		)
		if From(d.GetState()).Has(id) {
			ids, err = t.repo.Remove(ctx, id)
		} else {
			ids, err = t.repo.Add(ctx, id)
		}
		if err != nil {
			err = fmt.Errorf("toggle favorite %d: %w", id, err)
			if t.reporter != nil {
				t.reporter.Report(err)
			}
			return err
		}
		return d.Dispatch(Hydrated(ids))
	}
}
