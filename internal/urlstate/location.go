package urlstate

import (
	"log/slog"
	"sync"
	"time"

	"herbar/client/internal/debounce"
	"herbar/client/internal/state"
)

// Location is the address bar.
type Location interface {
	Href() string
	Replace(href string)
}

// MemoryLocation keeps the current URL and every replacement made.
type MemoryLocation struct {
	mu      sync.Mutex
	href    string
	history []string
}

func NewMemoryLocation(href string) *MemoryLocation {
	return &MemoryLocation{href: href}
}

func (l *MemoryLocation) Href() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.href
}

func (l *MemoryLocation) Replace(href string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.href = href
	l.history = append(l.history, href)
}

// History returns the replacements in order.
func (l *MemoryLocation) History() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.history...)
}

// Writer pushes state to a Location. Bursts of Schedule calls within one
// window produce a single write; a write of the current URL is skipped.
type Writer struct {
	loc    Location
	logger *slog.Logger
	deb    *debounce.Debouncer

	mu      sync.Mutex
	pending Params
	writes  int
}

func NewWriter(loc Location, window time.Duration, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Writer{loc: loc, logger: logger}
	w.deb = debounce.New(window, w.write)
	return w
}

// Schedule records st as the state to write when the window elapses.
func (w *Writer) Schedule(st state.State) {
	w.ScheduleParams(FromState(st))
}

// ScheduleParams is Schedule for already projected params.
func (w *Writer) ScheduleParams(p Params) {
	w.mu.Lock()
	w.pending = p
	w.mu.Unlock()
	w.deb.Trigger()
}

func (w *Writer) write() {
	w.mu.Lock()
	p := w.pending
	w.mu.Unlock()

	current := w.loc.Href()
	next := Encode(current, p)
	if next == current {
		return
	}
	w.loc.Replace(next)
	w.mu.Lock()
	w.writes++
	w.mu.Unlock()
	w.logger.Debug("url updated", "href", next)
}

// Writes counts replacements made.
func (w *Writer) Writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}

// Flush writes a pending update now.
func (w *Writer) Flush() { w.deb.Flush() }

// Close flushes and stops the writer.
func (w *Writer) Close() {
	w.deb.Flush()
	w.deb.Stop()
}
