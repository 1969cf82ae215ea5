// Package notify keeps the user-visible notification list. A Service is
// constructed explicitly and passed to whoever reports to the user.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"herbar/client/internal/metrics"
	"herbar/client/internal/util"
)

const (
	ClassCritical    = "critical"
	ClassOperational = "operational"
)

// Notification is one visible message. Count is how many identical reports
// were collapsed into it.
type Notification struct {
	ID         string
	Class      string
	Message    string
	Count      int
	Persistent bool
	CreatedAt  time.Time
}

type entry struct {
	Notification
	gen   uint64
	timer *time.Timer
}

// Service holds at most Max notifications. A report identical in class and
// message to a visible one bumps its count and restarts its dismiss timer.
// When full, the oldest transient notification is evicted, or the oldest one
// overall if every visible notification is persistent.
type Service struct {
	max      int
	dismiss  time.Duration
	logger   *slog.Logger
	observer func([]Notification)
	now      func() time.Time

	mu      sync.Mutex
	items   []*entry
	closed  bool
	observe sync.Mutex
}

type Option func(*Service)

func WithMax(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.max = n
		}
	}
}

// WithDismiss sets how long transient notifications stay visible. Zero keeps
// them until dismissed.
func WithDismiss(d time.Duration) Option {
	return func(s *Service) { s.dismiss = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver registers fn to receive the list after every change.
func WithObserver(fn func([]Notification)) Option {
	return func(s *Service) { s.observer = fn }
}

func New(opts ...Option) *Service {
	s := &Service{
		max:     3,
		dismiss: 4 * time.Second,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify shows message and returns the id of the notification holding it.
func (s *Service) Notify(class, message string, persistent bool) string {
	metrics.Notifications.WithLabelValues(class).Inc()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ""
	}
	for _, e := range s.items {
		if e.Class == class && e.Message == message {
			e.Count++
			e.Persistent = e.Persistent || persistent
			s.arm(e)
			id, count := e.ID, e.Count
			s.mu.Unlock()
			s.logger.Debug("notification collapsed", "id", id, "count", count)
			s.publish()
			return id
		}
	}

	if len(s.items) >= s.max {
		s.evict()
	}
	e := &entry{Notification: Notification{
		ID:         util.NewID("ntf"),
		Class:      class,
		Message:    message,
		Count:      1,
		Persistent: persistent,
		CreatedAt:  s.now(),
	}}
	s.items = append(s.items, e)
	s.arm(e)
	id := e.ID
	s.mu.Unlock()

	s.publish()
	return id
}

// arm restarts the dismiss timer of a transient entry. Callers hold mu.
func (s *Service) arm(e *entry) {
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if e.Persistent || s.dismiss <= 0 {
		return
	}
	id, gen := e.ID, e.gen
	e.timer = time.AfterFunc(s.dismiss, func() { s.expire(id, gen) })
}

func (s *Service) expire(id string, gen uint64) {
	s.mu.Lock()
	for i, e := range s.items {
		if e.ID == id && e.gen == gen {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			s.mu.Unlock()
			s.publish()
			return
		}
	}
	s.mu.Unlock()
}

// evict drops one entry to make room. Callers hold mu.
func (s *Service) evict() {
	victim := 0
	for i, e := range s.items {
		if !e.Persistent {
			victim = i
			break
		}
	}
	e := s.items[victim]
	if e.timer != nil {
		e.timer.Stop()
	}
	s.items = append(s.items[:victim:victim], s.items[victim+1:]...)
}

// Dismiss removes the notification with id.
func (s *Service) Dismiss(id string) bool {
	s.mu.Lock()
	for i, e := range s.items {
		if e.ID == id {
			if e.timer != nil {
				e.timer.Stop()
			}
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			s.mu.Unlock()
			s.publish()
			return true
		}
	}
	s.mu.Unlock()
	return false
}

// Active returns the visible notifications, oldest first.
func (s *Service) Active() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Service) snapshot() []Notification {
	out := make([]Notification, len(s.items))
	for i, e := range s.items {
		out[i] = e.Notification
	}
	return out
}

func (s *Service) publish() {
	if s.observer == nil {
		return
	}
	s.observe.Lock()
	defer s.observe.Unlock()
	s.observer(s.Active())
}

// Close stops every dismiss timer. Later reports are dropped.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, e := range s.items {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
}
