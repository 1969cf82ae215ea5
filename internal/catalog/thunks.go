package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"herbar/client/internal/nav"
	"herbar/client/internal/state"
)

var (
	ErrUnknownRecord = errors.New("record not found")
	ErrNoClipboard   = errors.New("clipboard unavailable")
)

// Fetcher is the data-fetch collaborator.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]Record, error)
	FetchDetail(ctx context.Context, id int) (Detail, error)
}

// Forgetter is implemented by fetchers that cache details.
type Forgetter interface {
	Forget(id int)
}

// Reporter receives operational failures raised by thunks.
type Reporter interface {
	Report(err error)
}

// ClipboardWriter copies text to the system clipboard.
type ClipboardWriter interface {
	WriteAll(text string) error
}

// Tokens issues monotonically increasing navigation request tokens.
type Tokens struct {
	last atomic.Uint64
}

// Next returns a token larger than every token issued before.
func (t *Tokens) Next() uint64 {
	return t.last.Add(1)
}

// Deps are the collaborators the catalog thunks need.
type Deps struct {
	Fetcher   Fetcher
	Reporter  Reporter
	Clipboard ClipboardWriter
	// Visible returns the visible list for a state tree.
	Visible func(state.State) []Record
	// ShareURL returns the shareable link for a state tree.
	ShareURL       func(state.State) string
	CopyResetDelay time.Duration
	Logger         *slog.Logger
}

// Thunks builds the asynchronous catalog actions.
type Thunks struct {
	deps    Deps
	tokens  Tokens
	flights singleflight.Group
}

func NewThunks(deps Deps) *Thunks {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Thunks{deps: deps}
}

// LoadRecords performs the initial bulk load. Failures are returned, not
// reported: the startup sequence decides how fatal they are.
func (t *Thunks) LoadRecords() state.Thunk {
	return func(ctx context.Context, d state.Dispatcher) error {
		if err := d.Dispatch(LoadStarted()); err != nil {
			return err
		}
		records, err := t.deps.Fetcher.FetchAll(ctx)
		if err != nil {
			_ = d.Dispatch(LoadFailed(err.Error()))
			return fmt.Errorf("load records: %w", err)
		}
		return d.Dispatch(Loaded(Ingest(records)))
	}
}

// EnsureDetail fetches the detail of record id unless it is already loaded.
// Concurrent calls for the same id share one fetch.
func (t *Thunks) EnsureDetail(id int) state.Thunk {
	return func(ctx context.Context, d state.Dispatcher) error {
		record, ok := Find(From(d.GetState()).Records, id)
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownRecord, id)
		}
		if record.DetailLoaded {
			return nil
		}
		_, err, _ := t.flights.Do(strconv.Itoa(id), func() (any, error) {
			if current, ok := Find(From(d.GetState()).Records, id); ok && current.DetailLoaded {
				return nil, nil
			}
			detail, err := t.deps.Fetcher.FetchDetail(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("load detail %d: %w", id, err)
			}
			return nil, d.Dispatch(DetailLoadedAction(id, detail))
		})
		return err
	}
}

// InvalidateDetail drops the loaded detail of record id, in the slice and in
// a caching fetcher, so the next EnsureDetail fetches it again.
func (t *Thunks) InvalidateDetail(id int) state.Thunk {
	return func(_ context.Context, d state.Dispatcher) error {
		if f, ok := t.deps.Fetcher.(Forgetter); ok {
			f.Forget(id)
		}
		return d.Dispatch(InvalidateDetail(id))
	}
}

// RefreshModal refetches the detail of the focused record and reopens it.
func (t *Thunks) RefreshModal() state.Thunk {
	return func(ctx context.Context, d state.Dispatcher) error {
		m := From(d.GetState()).Modal
		if m == nil {
			return nil
		}
		id := m.Current.ID
		if err := d.DispatchThunk(ctx, t.InvalidateDetail(id)); err != nil {
			return err
		}
		return d.DispatchThunk(ctx, t.OpenModal(id))
	}
}

// OpenModal loads the record detail and focuses it. Only the latest open or
// close request is applied; resolutions of superseded requests are dropped.
func (t *Thunks) OpenModal(id int) state.Thunk {
	return func(ctx context.Context, d state.Dispatcher) error {
		token := t.tokens.Next()
		if err := d.Dispatch(ModalRequested(token)); err != nil {
			return err
		}

		if err := d.DispatchThunk(ctx, t.EnsureDetail(id)); err != nil {
			if !t.latest(d, token) {
				t.deps.Logger.Debug("dropping failure of superseded open", "id", id, "err", err)
				return nil
			}
			err = fmt.Errorf("open record %d: %w", id, err)
			t.report(err)
			return err
		}

		st := d.GetState()
		if From(st).RequestToken != token {
			return nil
		}
		current, ok := Find(From(st).Records, id)
		if !ok {
			err := fmt.Errorf("open record: %w: %d", ErrUnknownRecord, id)
			t.report(err)
			return err
		}
		previous, next := nav.Adjacent(current, t.visible(st), RecordID)
		return d.Dispatch(ModalOpened(token, ModalContext{Current: current, Previous: previous, Next: next}))
	}
}

// NextToken issues a request token, for panels that supersede record opens
// themselves.
func (t *Thunks) NextToken() uint64 {
	return t.tokens.Next()
}

// CloseModal drops the modal and supersedes pending opens.
func (t *Thunks) CloseModal() state.Thunk {
	return func(_ context.Context, d state.Dispatcher) error {
		return d.Dispatch(ModalClosed(t.tokens.Next()))
	}
}

// Navigate opens the record step positions away from the focused one in the
// current visible list: +1 for next, -1 for previous.
func (t *Thunks) Navigate(step int) state.Thunk {
	return func(ctx context.Context, d state.Dispatcher) error {
		st := d.GetState()
		cs := From(st)
		if cs.Modal == nil || step == 0 {
			return nil
		}
		previous, next := nav.Adjacent(cs.Modal.Current, t.visible(st), RecordID)
		target := next
		if step < 0 {
			target = previous
		}
		if target.ID == cs.Modal.Current.ID {
			return nil
		}
		return d.DispatchThunk(ctx, t.OpenModal(target.ID))
	}
}

// CopyLink copies the shareable link of the current view and resets the
// status to idle after the configured delay.
func (t *Thunks) CopyLink() state.Thunk {
	return func(_ context.Context, d state.Dispatcher) error {
		var copyErr error
		switch {
		case t.deps.Clipboard == nil:
			copyErr = ErrNoClipboard
		case t.deps.ShareURL == nil:
			copyErr = errors.New("share url unavailable")
		default:
			if err := t.deps.Clipboard.WriteAll(t.deps.ShareURL(d.GetState())); err != nil {
				copyErr = fmt.Errorf("copy link: %w", err)
			}
		}

		status := CopySuccess
		if copyErr != nil {
			status = CopyError
		}
		if err := d.Dispatch(SetCopyStatus(status)); err != nil {
			return err
		}
		if t.deps.CopyResetDelay > 0 {
			time.AfterFunc(t.deps.CopyResetDelay, func() {
				if From(d.GetState()).CopyStatus == status {
					_ = d.Dispatch(SetCopyStatus(CopyIdle))
				}
			})
		}
		if copyErr != nil {
			t.report(copyErr)
			return copyErr
		}
		return nil
	}
}

func (t *Thunks) latest(d state.Dispatcher, token uint64) bool {
	return From(d.GetState()).RequestToken == token
}

func (t *Thunks) visible(st state.State) []Record {
	if t.deps.Visible == nil {
		return From(st).Records
	}
	return t.deps.Visible(st)
}

func (t *Thunks) report(err error) {
	if t.deps.Reporter != nil {
		t.deps.Reporter.Report(err)
	}
}
