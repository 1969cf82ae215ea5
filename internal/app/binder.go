package app

import (
	"context"
	"log/slog"
	"sync"

	"herbar/client/internal/state"
)

// binder runs event-triggered thunks on their own goroutines against the
// store.
type binder struct {
	store   *state.Store
	ctx     context.Context
	handler *ErrorHandler
	logger  *slog.Logger
	wg      sync.WaitGroup
}

func (b *binder) Dispatch(action state.Action) error {
	return b.store.Dispatch(action)
}

func (b *binder) GetState() state.State {
	return b.store.GetState()
}

func (b *binder) Run(name string, thunk state.Thunk) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer b.handler.Recover()
		if err := b.store.DispatchThunk(b.ctx, thunk); err != nil {
			b.logger.Debug("thunk finished with error", "thunk", name, "err", err)
		}
	}()
}

// Wait blocks until every thunk started by Run has returned.
func (b *binder) Wait() {
	b.wg.Wait()
}
