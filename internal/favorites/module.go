package favorites

import (
	"log/slog"
	"strconv"

	"herbar/client/internal/dom"
	"herbar/client/internal/module"
	"herbar/client/internal/ui"
)

// Module is the favorites feature: the favorites-only toggle and the
// favorite mark events on cards.
func Module(thunks *Thunks, logger *slog.Logger) module.Loader {
	return func() (module.Module, error) {
		if logger == nil {
			logger = slog.Default()
		}
		return module.Module{
			Name:    SliceName,
			Reducer: Reduce,
			Initial: Initial(),
			InitComponents: func(doc *dom.Document, _ module.Reader) (module.Components, error) {
				filter, err := ui.NewFavoritesFilter(doc)
				if err != nil {
					return nil, err
				}
				return module.Components{"favorites-filter": filter}, nil
			},
			BindEvents: func(doc *dom.Document, b module.Binder) error {
				doc.On("favorites:toggle", func(ev dom.Event) {
					id, err := strconv.Atoi(ev.Value)
					if err != nil {
						logger.Warn("favorites:toggle without record id", "value", ev.Value)
						return
					}
					b.Run("toggle-favorite", thunks.Toggle(id))
				})
				doc.On("favorites:only", func(ev dom.Event) {
					only := !From(b.GetState()).OnlyFavorites
					if ev.Value != "" {
						parsed, err := strconv.ParseBool(ev.Value)
						if err != nil {
							logger.Warn("favorites:only with invalid flag", "value", ev.Value)
							return
						}
						only = parsed
					}
					if err := b.Dispatch(SetOnly(only)); err != nil {
						logger.Error("dispatch failed", "action", ActionSetOnly, "err", err)
					}
				})
				return nil
			},
			SyncUI: func(ctx module.SyncContext) {
				fs := From(ctx.State)
				if ctx.OldState != nil {
					old := From(ctx.OldState)
					if old.Rev == fs.Rev && old.OnlyFavorites == fs.OnlyFavorites {
						return
					}
				}
				module.Render(logger, ctx.Components, "favorites-filter", ui.FavoritesFilterProps{Only: fs.OnlyFavorites, Count: len(fs.IDs)})
			},
		}, nil
	}
}
