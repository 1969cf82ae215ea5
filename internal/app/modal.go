package app

import (
	"context"
	"sync"

	"herbar/client/internal/dom"
	"herbar/client/internal/ui"
)

// ModalFactory builds the record detail component on first use and reuses
// it. A failed build is not cached.
type ModalFactory struct {
	doc *dom.Document

	mu     sync.Mutex
	modal  *ui.Modal
	builds int
}

func NewModalFactory(doc *dom.Document) *ModalFactory {
	return &ModalFactory{doc: doc}
}

func (f *ModalFactory) Get(ctx context.Context) (*ui.Modal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.modal != nil {
		return f.modal, nil
	}
	f.builds++
	m, err := ui.NewModal(f.doc)
	if err != nil {
		return nil, err
	}
	f.modal = m
	return m, nil
}

// Builds reports how many times construction was attempted.
func (f *ModalFactory) Builds() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.builds
}
