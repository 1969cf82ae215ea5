package faq

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"herbar/client/internal/catalog"
	"herbar/client/internal/state"
)

type Reporter interface {
	Report(err error)
}

// RequestTokens issues the tokens that order record opens and closes.
type RequestTokens interface {
	NextToken() uint64
}

type Thunks struct {
	loader   Loader
	tokens   RequestTokens
	reporter Reporter
	logger   *slog.Logger
	flights  singleflight.Group
}

func NewThunks(loader Loader, tokens RequestTokens, reporter Reporter, logger *slog.Logger) *Thunks {
	if logger == nil {
		logger = slog.Default()
	}
	return &Thunks{loader: loader, tokens: tokens, reporter: reporter, logger: logger}
}

// Open closes any record modal, loads the content on first use and opens
// the panel. A record opened while the content loads wins: the panel then
// stays closed. A load failure marks the slice as failed and is reported.
func (t *Thunks) Open() state.Thunk {
	return func(ctx context.Context, d state.Dispatcher) error {
		token := From(d.GetState()).ModalToken
		if t.tokens != nil {
			token = t.tokens.NextToken()
			if err := d.Dispatch(catalog.ModalClosed(token)); err != nil {
				return err
			}
		}
		if From(d.GetState()).Content == nil {
			_, err, _ := t.flights.Do("faq", func() (any, error) {
				if From(d.GetState()).Content != nil {
					return nil, nil
				}
				content, err := t.load(ctx)
				if err != nil {
					_ = d.Dispatch(LoadFailed())
					return nil, err
				}
				return nil, d.Dispatch(Loaded(content))
			})
			if err != nil {
				err = fmt.Errorf("open faq: %w", err)
				if t.reporter != nil {
					t.reporter.Report(err)
				}
				return err
			}
		}
		return d.Dispatch(Opened(token))
	}
}

func (t *Thunks) load(ctx context.Context) (Content, error) {
	if t.loader == nil {
		return Content{}, fmt.Errorf("no faq loader configured")
	}
	content, err := t.loader.Load(ctx)
	if err != nil {
		return Content{}, err
	}
	if err := content.Validate(); err != nil {
		return Content{}, err
	}
	t.logger.Debug("faq loaded", "entries", len(content.Entries))
	return content, nil
}

func (t *Thunks) Close() state.Thunk {
	return func(_ context.Context, d state.Dispatcher) error {
		return d.Dispatch(Closed())
	}
}
