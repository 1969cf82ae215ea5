package faq

import (
	"log/slog"

	"herbar/client/internal/dom"
	"herbar/client/internal/module"
	"herbar/client/internal/ui"
)

// Module is the FAQ panel feature.
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
				panel, err := ui.NewFAQ(doc)
				if err != nil {
					return nil, err
				}
				return module.Components{"faq": panel}, nil
			},
			BindEvents: func(doc *dom.Document, b module.Binder) error {
				doc.On("faq:open", func(dom.Event) { b.Run("open-faq", thunks.Open()) })
				doc.On("faq:close", func(dom.Event) { b.Run("close-faq", thunks.Close()) })
				return nil
			},
			SyncUI: func(ctx module.SyncContext) {
				fs := From(ctx.State)
				if ctx.OldState != nil {
					old := From(ctx.OldState)
					if old.Open == fs.Open && old.Failed == fs.Failed && (old.Content == nil) == (fs.Content == nil) {
						return
					}
				}
				props := ui.FAQProps{Open: fs.Open, Failed: fs.Failed}
				if fs.Content != nil {
					props.Title = fs.Content.Title
					for _, e := range fs.Content.Entries {
						props.Entries = append(props.Entries, ui.QA{Question: e.Question, Answer: e.Answer})
					}
				}
				module.Render(logger, ctx.Components, "faq", props)
			},
		}, nil
	}
}
