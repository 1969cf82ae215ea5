// Package ui holds the components rendered into the headless document. Each
// component owns one mount element and re-renders only when its props change.
package ui

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"herbar/client/internal/dom"
)

var ErrProps = errors.New("unexpected props")

// Component renders props into its mount element. Render is idempotent:
// repeated calls with equal props leave the document untouched.
type Component interface {
	Render(props any) error
}

type base struct {
	el *dom.Element

	mu       sync.Mutex
	rendered bool
	last     any
	renders  int
}

func mount(doc *dom.Document, id string) (base, error) {
	el := doc.Element(id)
	if el == nil {
		return base{}, fmt.Errorf("mount %s: %w", id, dom.ErrMissingElement)
	}
	return base{el: el}, nil
}

// begin reports whether props differ from the last rendered props and, if
// so, records them. Callers render only when it returns true.
func (b *base) begin(props any) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rendered && reflect.DeepEqual(b.last, props) {
		return false
	}
	b.rendered = true
	b.last = props
	b.renders++
	return true
}

// Renders counts renders that reached the document.
func (b *base) Renders() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.renders
}

func propsError(component string, props any) error {
	return fmt.Errorf("%w: %s got %T", ErrProps, component, props)
}

// Card is the view of one record in the grid and the modal.
type Card struct {
	ID              int
	Name            string
	ScientificName  string
	Category        string
	Tags            []string
	Toxicity        int
	DifficultyClass string
	Favorite        bool
}

// Detail is the view of the detail-only record fields.
type Detail struct {
	CareGuide      string
	SeasonalCare   string
	Classification []Pair
	Pests          []string
	QuickFacts     []string
}

type Pair struct {
	Key   string
	Value string
}

type Option struct {
	Value string
	Label string
}
