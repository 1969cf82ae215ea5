// Package app wires the feature modules, the store and the document together
// and runs the startup sequence.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"herbar/client/internal/catalog"
	"herbar/client/internal/clip"
	"herbar/client/internal/config"
	"herbar/client/internal/debounce"
	"herbar/client/internal/dom"
	"herbar/client/internal/faq"
	"herbar/client/internal/favorites"
	"herbar/client/internal/kv"
	"herbar/client/internal/metrics"
	"herbar/client/internal/module"
	"herbar/client/internal/notify"
	"herbar/client/internal/state"
	"herbar/client/internal/ui"
	"herbar/client/internal/urlstate"
	"herbar/client/internal/view"
)

var (
	ErrStarted  = errors.New("controller already started")
	ErrNoSource = errors.New("no catalog source configured")
)

// suggestions is how many names the empty grid proposes.
const suggestions = 3

// mountIDs are the elements the components render into.
var mountIDs = []string{"search", "sort", "favorites-filter", "tags", "count", "grid", "modal", "faq", "notifications"}

// Deps are the collaborators of a Controller. Only Fetcher is required.
type Deps struct {
	Fetcher   catalog.Fetcher
	FAQ       faq.Loader
	KV        kv.Store
	Clipboard catalog.ClipboardWriter
	Location  urlstate.Location
	Document  *dom.Document
	// Modules are loaded after the built-in features.
	Modules []module.Loader
	Logger  *slog.Logger
}

type Controller struct {
	cfg    config.Config
	deps   Deps
	logger *slog.Logger

	stage   atomic.Int32
	started atomic.Bool

	notifier *notify.Service
	handler  *ErrorHandler
	doc      *dom.Document
	notes    *ui.Notifications
	notesMu  sync.Mutex

	memo       *view.Memo
	modal      *ModalFactory
	catalog    *catalog.Thunks
	favorites  *favorites.Thunks
	faq        *faq.Thunks
	registry   *module.Registry
	store      *state.Store
	components module.Components
	binder     *binder

	runCtx context.Context
	cancel context.CancelFunc

	uiSync      *debounce.Debouncer
	urlWriter   *urlstate.Writer
	unsubscribe func()
	flushMu     sync.Mutex
	mu          sync.Mutex
	pending     state.State
	synced      state.State

	closeOnce sync.Once
}

func New(cfg config.Config, deps Deps) *Controller {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.KV == nil {
		deps.KV = kv.NewMemoryStore()
	}
	if deps.Location == nil {
		deps.Location = urlstate.NewMemoryLocation(cfg.PublicURL)
	}
	if deps.Clipboard == nil {
		deps.Clipboard = &clip.Memory{}
	}
	return &Controller{cfg: cfg, deps: deps, logger: deps.Logger}
}

// Stage reports the last stage reached.
func (c *Controller) Stage() Stage {
	return Stage(c.stage.Load())
}

// Start runs the startup sequence. A failing stage is reported as critical
// and ends the sequence; Start is never retried.
func (c *Controller) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrStarted
	}
	c.runCtx, c.cancel = context.WithCancel(context.WithoutCancel(ctx))

	steps := []struct {
		to  Stage
		run func(ctx context.Context) error
	}{
		{StageErrorHandlersInstalled, c.installErrorHandlers},
		{StageDOMBootstrapped, c.bootstrapDOM},
		{StageStoreCreated, c.createStore},
		{StageComponentsMerged, c.mergeComponents},
		{StageEventsBound, c.bindEvents},
		{StageFavoritesHydrated, c.hydrateFavorites},
		{StageIntroSettled, c.settleIntro},
		{StageRecordsLoaded, c.loadRecords},
		{StageURLHydrated, c.hydrateURL},
		{StageSyncAttached, c.attachSync},
	}
	for _, step := range steps {
		started := time.Now()
		if err := step.run(ctx); err != nil {
			return c.fail(err)
		}
		c.advance(step.to, started)
	}
	c.advance(StageReady, time.Now())
	return nil
}

func (c *Controller) advance(to Stage, started time.Time) {
	c.stage.Store(int32(to))
	metrics.StartupStage.Set(float64(to))
	metrics.StageDuration.WithLabelValues(to.String()).Observe(time.Since(started).Seconds())
	c.logger.Info("startup stage reached", "stage", to.String())
}

func (c *Controller) fail(err error) error {
	appErr := startupError(c.Stage(), err)
	if c.handler != nil {
		c.handler.Handle(appErr)
	} else {
		c.logger.Error("startup failed", "stage", appErr.Stage.String(), "err", err)
	}
	return appErr
}

func (c *Controller) installErrorHandlers(context.Context) error {
	c.notifier = notify.New(
		notify.WithMax(c.cfg.NotifyMax),
		notify.WithDismiss(c.cfg.NotifyDismiss),
		notify.WithLogger(c.logger),
		notify.WithObserver(c.renderNotifications),
	)
	c.handler = NewErrorHandler(c.notifier, c.logger)
	return nil
}

func (c *Controller) bootstrapDOM(context.Context) error {
	doc := c.deps.Document
	if doc == nil {
		var err error
		if doc, err = dom.NewDefault(c.logger); err != nil {
			return err
		}
	}
	if err := doc.Require(mountIDs...); err != nil {
		return err
	}
	notes, err := ui.NewNotifications(doc)
	if err != nil {
		return err
	}
	c.doc = doc
	c.notesMu.Lock()
	c.notes = notes
	c.notesMu.Unlock()
	c.renderNotifications(c.notifier.Active())
	return nil
}

func (c *Controller) createStore(context.Context) error {
	if c.deps.Fetcher == nil {
		return ErrNoSource
	}
	pipeline := view.Pipeline{PetKeywords: c.cfg.PetKeywords}
	c.memo = view.NewMemo(pipeline.Compute)
	c.modal = NewModalFactory(c.doc)

	c.catalog = catalog.NewThunks(catalog.Deps{
		Fetcher:        c.deps.Fetcher,
		Reporter:       c.handler,
		Clipboard:      c.deps.Clipboard,
		Visible:        c.memo.FromState,
		ShareURL:       c.shareURL,
		CopyResetDelay: c.cfg.CopyResetDelay,
		Logger:         c.logger,
	})
	repo := favorites.NewRepository(c.deps.KV, c.cfg.FavoritesKey, c.logger)
	c.favorites = favorites.NewThunks(repo, c.handler)

	loaders := []module.Loader{
		catalog.Module(catalog.ModuleDeps{
			Thunks:  c.catalog,
			Visible: c.memo.FromState,
			Suggest: func(records []catalog.Record, query string) []string {
				return view.Suggest(records, query, suggestions)
			},
			Modal:  c.modal,
			Logger: c.logger,
		}),
		favorites.Module(c.favorites, c.logger),
	}
	if c.deps.FAQ != nil {
		c.faq = faq.NewThunks(c.deps.FAQ, c.catalog, c.handler, c.logger)
		loaders = append(loaders, faq.Module(c.faq, c.logger))
	}
	loaders = append(loaders, c.deps.Modules...)

	c.registry = module.Load(c.logger, loaders...)
	if !c.registry.Has(catalog.SliceName) {
		return fmt.Errorf("catalog module failed to load")
	}
	c.store = state.New(c.registry.RootReducer(), c.registry.InitialState(), state.WithLogger(c.logger))
	c.binder = &binder{store: c.store, ctx: c.runCtx, handler: c.handler, logger: c.logger}
	return nil
}

func (c *Controller) mergeComponents(context.Context) error {
	comps, err := c.registry.InitComponents(c.doc, c.store)
	if err != nil {
		return err
	}
	c.components = comps
	return nil
}

func (c *Controller) bindEvents(context.Context) error {
	if err := c.registry.BindEvents(c.doc, c.binder); err != nil {
		return err
	}
	c.doc.On("notification:dismiss", func(ev dom.Event) {
		c.notifier.Dismiss(ev.Value)
	})
	return nil
}

func (c *Controller) hydrateFavorites(ctx context.Context) error {
	return c.store.DispatchThunk(ctx, c.favorites.Hydrate())
}

func (c *Controller) settleIntro(ctx context.Context) error {
	if c.cfg.IntroDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(c.cfg.IntroDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Controller) loadRecords(ctx context.Context) error {
	return c.store.DispatchThunk(ctx, c.catalog.LoadRecords())
}

// hydrateURL applies the filters found in the location, then focuses the
// record or opens the FAQ it names. Failures of that last step are
// reported by the thunks and do not stop startup.
func (c *Controller) hydrateURL(ctx context.Context) error {
	p := urlstate.Decode(c.deps.Location.Href())
	if p.Empty() {
		return nil
	}
	if p.Query != nil {
		if err := c.store.Dispatch(catalog.SetQuery(*p.Query)); err != nil {
			return err
		}
	}
	if p.Sort != nil {
		key := catalog.SortKey(*p.Sort)
		if view.KnownSortKey(key) {
			if err := c.store.Dispatch(catalog.SetSort(key)); err != nil {
				return err
			}
		} else {
			c.logger.Warn("ignoring unknown sort key from url", "sort", *p.Sort)
		}
	}
	if len(p.Tags) > 0 {
		if err := c.store.Dispatch(catalog.SetTags(p.Tags)); err != nil {
			return err
		}
	}

	switch {
	case p.PendingModal != nil:
		if err := c.store.DispatchThunk(ctx, c.catalog.OpenModal(*p.PendingModal)); err != nil {
			c.logger.Warn("could not open record from url", "id", *p.PendingModal, "err", err)
		}
	case p.PendingFAQ && c.faq != nil:
		if err := c.store.DispatchThunk(ctx, c.faq.Open()); err != nil {
			c.logger.Warn("could not open faq from url", "err", err)
		}
	}
	return nil
}

func (c *Controller) attachSync(context.Context) error {
	c.urlWriter = urlstate.NewWriter(c.deps.Location, c.cfg.URLWriteWindow, c.logger)
	c.uiSync = debounce.New(c.cfg.UISyncWindow, c.flush)
	c.unsubscribe = c.store.Subscribe(func(next, _ state.State) {
		c.mu.Lock()
		c.pending = next
		c.mu.Unlock()
		c.uiSync.Trigger()
	})

	c.mu.Lock()
	if c.pending == nil {
		c.pending = c.store.GetState()
	}
	c.mu.Unlock()
	c.flush()
	return nil
}

// flush syncs the newest pending state against the last synced one, so a
// burst of dispatches renders once.
func (c *Controller) flush() {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()

	c.mu.Lock()
	next, old := c.pending, c.synced
	c.pending = nil
	if next != nil {
		c.synced = next
	}
	c.mu.Unlock()
	if next == nil {
		return
	}

	c.registry.Sync(module.SyncContext{
		Ctx:        c.runCtx,
		Doc:        c.doc,
		Components: c.components,
		State:      next,
		OldState:   old,
	})
	c.urlWriter.Schedule(next)
}

func (c *Controller) renderNotifications(items []notify.Notification) {
	c.notesMu.Lock()
	defer c.notesMu.Unlock()
	if c.notes == nil {
		return
	}
	props := ui.NotificationsProps{Items: make([]ui.NotificationItem, 0, len(items))}
	for _, n := range items {
		props.Items = append(props.Items, ui.NotificationItem{ID: n.ID, Class: n.Class, Message: n.Message, Count: n.Count})
	}
	if err := c.notes.Render(props); err != nil {
		c.logger.Warn("render notifications", "err", err)
	}
}

func (c *Controller) shareURL(st state.State) string {
	return urlstate.Encode(c.deps.Location.Href(), urlstate.FromState(st))
}

// Settle waits for running event thunks and flushes pending UI and URL
// writes.
func (c *Controller) Settle() {
	if c.binder != nil {
		c.binder.Wait()
	}
	if c.uiSync != nil {
		c.uiSync.Flush()
	}
	if c.urlWriter != nil {
		c.urlWriter.Flush()
	}
}

// Close cancels running thunks, flushes the last UI sync and URL write and
// stops the notification timers.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		if c.binder != nil {
			c.binder.Wait()
		}
		if c.uiSync != nil {
			c.uiSync.Flush()
			c.uiSync.Stop()
		}
		if c.unsubscribe != nil {
			c.unsubscribe()
		}
		if c.urlWriter != nil {
			c.urlWriter.Close()
		}
		if c.notifier != nil {
			c.notifier.Close()
		}
	})
}

// Emit delivers a document event, as a user interaction would.
func (c *Controller) Emit(ev dom.Event) int {
	if c.doc == nil {
		return 0
	}
	return c.doc.Emit(ev)
}

func (c *Controller) Document() *dom.Document { return c.doc }

func (c *Controller) Store() *state.Store { return c.store }

func (c *Controller) Handler() *ErrorHandler { return c.handler }

func (c *Controller) Modal() *ModalFactory { return c.modal }

// Visible is the current visible list.
func (c *Controller) Visible() []catalog.Record {
	if c.store == nil {
		return nil
	}
	return c.memo.FromState(c.store.GetState())
}

func (c *Controller) Notifications() []notify.Notification {
	if c.notifier == nil {
		return nil
	}
	return c.notifier.Active()
}

// URL is the location as last written.
func (c *Controller) URL() string {
	return c.deps.Location.Href()
}
