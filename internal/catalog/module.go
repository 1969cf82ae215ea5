package catalog

import (
	"context"
	"log/slog"
	"sort"
	"strconv"

	"herbar/client/internal/dom"
	"herbar/client/internal/favorites"
	"herbar/client/internal/module"
	"herbar/client/internal/state"
	"herbar/client/internal/ui"
)

// ModalProvider builds the detail component on first use and returns the same
// instance afterwards.
type ModalProvider interface {
	Get(ctx context.Context) (*ui.Modal, error)
}

type ModuleDeps struct {
	Thunks *Thunks
	// Visible returns the visible list for a state tree.
	Visible func(state.State) []Record
	// Suggest proposes record names for a query with no results.
	Suggest func(records []Record, query string) []string
	Modal   ModalProvider
	Logger  *slog.Logger
}

// SortOptions lists the sort keys in display order.
var SortOptions = []ui.Option{
	{Value: string(SortNameAsc), Label: "Nume A-Z"},
	{Value: string(SortNameDesc), Label: "Nume Z-A"},
	{Value: string(SortToxicityAsc), Label: "Toxicitate crescator"},
	{Value: string(SortToxicityDesc), Label: "Toxicitate descrescator"},
	{Value: string(SortDifficultyAsc), Label: "Dificultate crescator"},
	{Value: string(SortDifficultyDesc), Label: "Dificultate descrescator"},
	{Value: string(SortGrowthAsc), Label: "Crestere lenta intai"},
	{Value: string(SortGrowthDesc), Label: "Crestere rapida intai"},
	{Value: string(SortAirAsc), Label: "Purificare aer crescator"},
	{Value: string(SortAirDesc), Label: "Purificare aer descrescator"},
}

// Module is the catalog feature: search, sort, tag filters, the grid, the
// result count and the record modal.
func Module(deps ModuleDeps) module.Loader {
	return func() (module.Module, error) {
		if deps.Logger == nil {
			deps.Logger = slog.Default()
		}
		f := &feature{deps: deps}
		return module.Module{
			Name:           SliceName,
			Reducer:        Reduce,
			Initial:        Initial(),
			InitComponents: f.initComponents,
			BindEvents:     f.bindEvents,
			SyncUI:         f.sync,
		}, nil
	}
}

type feature struct {
	deps ModuleDeps
}

func (f *feature) initComponents(doc *dom.Document, _ module.Reader) (module.Components, error) {
	search, err := ui.NewSearch(doc)
	if err != nil {
		return nil, err
	}
	sortSel, err := ui.NewSort(doc)
	if err != nil {
		return nil, err
	}
	tags, err := ui.NewTags(doc)
	if err != nil {
		return nil, err
	}
	grid, err := ui.NewGrid(doc)
	if err != nil {
		return nil, err
	}
	count, err := ui.NewCount(doc)
	if err != nil {
		return nil, err
	}
	return module.Components{"search": search, "sort": sortSel, "tags": tags, "grid": grid, "count": count}, nil
}

func (f *feature) bindEvents(doc *dom.Document, b module.Binder) error {
	t := f.deps.Thunks
	dispatch := func(a state.Action) {
		if err := b.Dispatch(a); err != nil {
			f.deps.Logger.Error("dispatch failed", "action", a.Type, "err", err)
		}
	}
	open := func(b module.Binder) bool { return From(b.GetState()).Modal != nil }

	doc.On("search:input", func(ev dom.Event) { dispatch(SetQuery(ev.Value)) })
	doc.On("sort:change", func(ev dom.Event) { dispatch(SetSort(SortKey(ev.Value))) })
	doc.On("tag:toggle", func(ev dom.Event) { dispatch(ToggleTag(ev.Value)) })
	doc.On("filters:clear", func(dom.Event) { dispatch(ClearFilters()) })
	doc.On("card:open", func(ev dom.Event) {
		id, err := strconv.Atoi(ev.Value)
		if err != nil {
			f.deps.Logger.Warn("card:open without record id", "value", ev.Value)
			return
		}
		b.Run("open-modal", t.OpenModal(id))
	})

	next := func(dom.Event) {
		if open(b) {
			b.Run("navigate", t.Navigate(1))
		}
	}
	prev := func(dom.Event) {
		if open(b) {
			b.Run("navigate", t.Navigate(-1))
		}
	}
	closeModal := func(dom.Event) {
		if open(b) {
			b.Run("close-modal", t.CloseModal())
		}
	}
	doc.On("modal:next", next)
	doc.On("key:right", next)
	doc.On("modal:prev", prev)
	doc.On("key:left", prev)
	doc.On("modal:close", closeModal)
	doc.On("key:escape", closeModal)
	doc.On("modal:copy", func(dom.Event) { b.Run("copy-link", t.CopyLink()) })
	doc.On("modal:refresh", func(dom.Event) {
		if open(b) {
			b.Run("refresh-modal", t.RefreshModal())
		}
	})
	return nil
}

func (f *feature) sync(ctx module.SyncContext) {
	cs := From(ctx.State)
	fs := favorites.From(ctx.State)
	first := ctx.OldState == nil
	var old State
	var oldFavs favorites.State
	if !first {
		old = From(ctx.OldState)
		oldFavs = favorites.From(ctx.OldState)
	}
	log := f.deps.Logger
	favsChanged := first || fs.Rev != oldFavs.Rev || fs.OnlyFavorites != oldFavs.OnlyFavorites

	if first || cs.Query != old.Query {
		module.Render(log, ctx.Components, "search", ui.SearchProps{Query: cs.Query})
	}
	if first || cs.SortKey != old.SortKey {
		module.Render(log, ctx.Components, "sort", ui.SortProps{Selected: string(cs.SortKey), Options: SortOptions})
	}
	if first || cs.RecordsRev != old.RecordsRev || cs.TagsRev != old.TagsRev {
		module.Render(log, ctx.Components, "tags", ui.TagsProps{All: cs.AllTags(), Active: append([]string(nil), cs.ActiveTags...)})
	}

	listChanged := first || favsChanged ||
		cs.RecordsRev != old.RecordsRev || cs.TagsRev != old.TagsRev ||
		cs.Query != old.Query || cs.SortKey != old.SortKey ||
		cs.Loading != old.Loading || cs.LoadError != old.LoadError
	if listChanged {
		f.syncGrid(ctx, cs, fs)
	}

	if modalChanged(cs, old) || (cs.Modal != nil && favsChanged) {
		f.syncModal(ctx, cs, fs)
	}
}

func (f *feature) syncGrid(ctx module.SyncContext, cs State, fs favorites.State) {
	visible := f.visible(ctx.State)
	cards := make([]ui.Card, len(visible))
	for i, r := range visible {
		cards[i] = CardOf(r, fs.Has(r.ID))
	}
	props := ui.GridProps{Cards: cards, Loading: cs.Loading, Error: cs.LoadError, Query: cs.Query}
	if len(visible) == 0 && cs.Query != "" && f.deps.Suggest != nil {
		props.Suggestions = f.deps.Suggest(cs.Records, cs.Query)
	}
	module.Render(f.deps.Logger, ctx.Components, "grid", props)
	module.Render(f.deps.Logger, ctx.Components, "count", ui.CountProps{Visible: len(visible), Total: len(cs.Records)})
}

func (f *feature) syncModal(ctx module.SyncContext, cs State, fs favorites.State) {
	if f.deps.Modal == nil {
		return
	}
	c := ctx.Ctx
	if c == nil {
		c = context.Background()
	}
	modal, err := f.deps.Modal.Get(c)
	if err != nil {
		f.deps.Logger.Error("detail view unavailable", "err", err)
		return
	}
	props := ui.ModalProps{CopyStatus: string(cs.CopyStatus)}
	if m := cs.Modal; m != nil {
		props.Open = true
		props.Current = CardOf(m.Current, fs.Has(m.Current.ID))
		props.Previous = CardOf(m.Previous, fs.Has(m.Previous.ID))
		props.Next = CardOf(m.Next, fs.Has(m.Next.ID))
		props.Detail = DetailOf(m.Current)
	}
	if err := modal.Render(props); err != nil {
		f.deps.Logger.Error("render failed", "component", "modal", "err", err)
	}
}

func (f *feature) visible(st state.State) []Record {
	if f.deps.Visible != nil {
		return f.deps.Visible(st)
	}
	return From(st).Records
}

func modalChanged(cs, old State) bool {
	if cs.CopyStatus != old.CopyStatus {
		return true
	}
	switch {
	case cs.Modal == nil && old.Modal == nil:
		return false
	case cs.Modal == nil || old.Modal == nil:
		return true
	}
	a, b := cs.Modal, old.Modal
	return a.Current.ID != b.Current.ID ||
		a.Current.DetailLoaded != b.Current.DetailLoaded ||
		a.Previous.ID != b.Previous.ID ||
		a.Next.ID != b.Next.ID
}

// CardOf is the grid view of r.
func CardOf(r Record, favorite bool) ui.Card {
	return ui.Card{
		ID:              r.ID,
		Name:            r.Name,
		ScientificName:  r.ScientificName,
		Category:        r.Category,
		Tags:            cloneStrings(r.Tags),
		Toxicity:        r.Toxicity,
		DifficultyClass: r.DifficultyClass(),
		Favorite:        favorite,
	}
}

// DetailOf is the modal view of the detail fields of r. Classification
// entries are sorted by key.
func DetailOf(r Record) ui.Detail {
	pairs := make([]ui.Pair, 0, len(r.Classification))
	for k, v := range r.Classification {
		pairs = append(pairs, ui.Pair{Key: k, Value: v})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
	return ui.Detail{
		CareGuide:      r.CareGuide,
		SeasonalCare:   r.SeasonalCare,
		Classification: pairs,
		Pests:          cloneStrings(r.Pests),
		QuickFacts:     cloneStrings(r.QuickFacts),
	}
}
