// Package faq owns the auxiliary content panel: its content, whether it is
// open and whether loading it failed.
package faq

import (
	"context"
	"errors"
	"strings"

	"herbar/client/internal/catalog"
	"herbar/client/internal/state"
)

const SliceName = "faq"

const (
	ActionLoaded     = "faq/loaded"
	ActionLoadFailed = "faq/loadFailed"
	ActionOpened     = "faq/opened"
	ActionClosed     = "faq/closed"
)

// ErrEmptyContent is the data-shape error for content without entries.
var ErrEmptyContent = errors.New("faq content is empty")

type Entry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type Content struct {
	Title   string  `json:"title"`
	Entries []Entry `json:"entries"`
}

// Validate rejects content without a single answered question.
func (c Content) Validate() error {
	for _, e := range c.Entries {
		if strings.TrimSpace(e.Question) != "" && strings.TrimSpace(e.Answer) != "" {
			return nil
		}
	}
	return ErrEmptyContent
}

func (c Content) clone() Content {
	c.Entries = append([]Entry(nil), c.Entries...)
	return c
}

// Loader fetches the FAQ document.
type Loader interface {
	Load(ctx context.Context) (Content, error)
}

// State is the faq slice. ModalToken mirrors the latest record request
// token of the catalog slice; the panel and a record modal are never open
// together.
type State struct {
	Content    *Content
	Open       bool
	Failed     bool
	ModalToken uint64
}

func Initial() State { return State{} }

func (s State) Clone() state.Slice {
	if s.Content != nil {
		c := s.Content.clone()
		s.Content = &c
	}
	return s
}

func From(st state.State) State {
	if s, ok := st[SliceName].(State); ok {
		return s
	}
	return Initial()
}

func Loaded(c Content) state.Action { return state.Action{Type: ActionLoaded, Payload: c} }
func LoadFailed() state.Action      { return state.Action{Type: ActionLoadFailed} }
func Closed() state.Action          { return state.Action{Type: ActionClosed} }

// Opened opens the panel unless a record request newer than token was made
// after it was issued.
func Opened(token uint64) state.Action { return state.Action{Type: ActionOpened, Payload: token} }

// Reduce is the faq slice reducer. A record request or a record modal that
// actually opens closes the panel.
func Reduce(prev state.Slice, action state.Action) state.Slice {
	s, ok := prev.(State)
	if !ok {
		s = Initial()
	}
	switch action.Type {
	case ActionLoaded:
		c, ok := action.Payload.(Content)
		if !ok {
			return prev
		}
		c = c.clone()
		s.Content = &c
		s.Failed = false
		return s
	case ActionLoadFailed:
		s.Failed = true
		return s
	case ActionOpened:
		token, _ := action.Payload.(uint64)
		if token != s.ModalToken || s.Open {
			return prev
		}
		s.Open = true
		return s
	case ActionClosed:
		if !s.Open {
			return prev
		}
		s.Open = false
		return s
	case catalog.ActionModalRequested, catalog.ActionModalClosed:
		token, _ := action.Payload.(uint64)
		closing := s.Open && action.Type == catalog.ActionModalRequested
		if token <= s.ModalToken && !closing {
			return prev
		}
		if token > s.ModalToken {
			s.ModalToken = token
		}
		if closing {
			s.Open = false
		}
		return s
	case catalog.ActionModalOpened:
		token, ok := catalog.OpenedToken(action)
		if !ok || token != s.ModalToken || !s.Open {
			return prev
		}
		s.Open = false
		return s
	default:
		return prev
	}
}
