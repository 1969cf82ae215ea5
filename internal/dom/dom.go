// Package dom is a headless document: an x/net/html node tree addressed by
// element id plus a synchronous event emitter.
package dom

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

//go:embed index.html
var DefaultTemplate string

var ErrMissingElement = errors.New("element not found")

// Event is a user interaction. Value carries the input value or the target
// id, depending on the event type.
type Event struct {
	Type  string
	Value string
}

type Handler func(Event)

type listener struct {
	id uint64
	fn Handler
}

// Document is safe for concurrent use. Element writes and event emission use
// separate locks so handlers may render.
type Document struct {
	logger *slog.Logger

	mu        sync.Mutex
	root      *html.Node
	mutations uint64

	lmu       sync.Mutex
	listeners map[string][]listener
	nextID    uint64
}

// Parse reads an HTML document.
func Parse(r io.Reader, logger *slog.Logger) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Document{logger: logger, root: root, listeners: map[string][]listener{}}, nil
}

// NewDefault parses DefaultTemplate.
func NewDefault(logger *slog.Logger) (*Document, error) {
	return Parse(strings.NewReader(DefaultTemplate), logger)
}

// Require fails with ErrMissingElement naming every id absent from the
// document.
func (d *Document) Require(ids ...string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var missing []string
	for _, id := range ids {
		if findByID(d.root, id) == nil {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingElement, strings.Join(missing, ", "))
	}
	return nil
}

// Element returns the element with id, or nil.
func (d *Document) Element(id string) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := findByID(d.root, id)
	if n == nil {
		return nil
	}
	return &Element{doc: d, node: n, id: id}
}

// Mutations counts writes that changed the tree.
func (d *Document) Mutations() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mutations
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// HTML returns the rendered document.
func (d *Document) HTML() string {
	var buf bytes.Buffer
	_ = d.Render(&buf)
	return buf.String()
}

// On registers fn for events of type typ and returns a function removing it.
func (d *Document) On(typ string, fn Handler) func() {
	d.lmu.Lock()
	d.nextID++
	id := d.nextID
	d.listeners[typ] = append(d.listeners[typ], listener{id: id, fn: fn})
	d.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.lmu.Lock()
			defer d.lmu.Unlock()
			ls := d.listeners[typ]
			for i, l := range ls {
				if l.id == id {
					d.listeners[typ] = append(ls[:i:i], ls[i+1:]...)
					return
				}
			}
		})
	}
}

// Emit calls every handler registered for ev.Type in registration order and
// returns how many ran. A panicking handler is logged and skipped.
func (d *Document) Emit(ev Event) int {
	d.lmu.Lock()
	ls := append([]listener(nil), d.listeners[ev.Type]...)
	d.lmu.Unlock()

	for _, l := range ls {
		d.call(ev, l)
	}
	return len(ls)
}

func (d *Document) call(ev Event, l listener) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler failed", "event", ev.Type, "err", r)
		}
	}()
	l.fn(ev)
}

// Listeners reports how many handlers are registered for typ.
func (d *Document) Listeners(typ string) int {
	d.lmu.Lock()
	defer d.lmu.Unlock()
	return len(d.listeners[typ])
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && attr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// H builds an element node.
func H(tag string, attrs []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag)), Attr: attrs}
	for _, c := range children {
		if c != nil {
			n.AppendChild(c)
		}
	}
	return n
}

// A builds an attribute list from key/value pairs.
func A(kv ...string) []html.Attribute {
	out := make([]html.Attribute, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return out
}

// T builds a text node.
func T(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}
