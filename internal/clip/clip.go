// Package clip writes to the system clipboard.
package clip

import (
	"errors"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
)

var ErrUnsupported = errors.New("no clipboard utility available")

// System writes through github.com/atotto/clipboard.
type System struct{}

func (System) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	return nil
}

// Memory keeps the last copied text. It stands in for the system clipboard
// on headless hosts.
type Memory struct {
	mu   sync.Mutex
	text string
}

func (m *Memory) WriteAll(text string) error {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
	return nil
}

func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Fallback tries Primary and, when it fails, writes to Secondary.
type Fallback struct {
	Primary   interface{ WriteAll(string) error }
	Secondary interface{ WriteAll(string) error }
}

func (f Fallback) WriteAll(text string) error {
	err := f.Primary.WriteAll(text)
	if err == nil || f.Secondary == nil {
		return err
	}
	if serr := f.Secondary.WriteAll(text); serr != nil {
		return errors.Join(err, serr)
	}
	return nil
}
