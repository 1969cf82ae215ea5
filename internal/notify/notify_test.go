package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"herbar/client/internal/metrics"
)

func TestIdenticalReportsCollapse(t *testing.T) {
	svc := New(WithDismiss(0))
	before := testutil.ToFloat64(metrics.Notifications.WithLabelValues(ClassOperational))

	first := svc.Notify(ClassOperational, "Detaliile nu au putut fi incarcate", false)
	second := svc.Notify(ClassOperational, "Detaliile nu au putut fi incarcate", false)
	if first != second {
		t.Fatal("identical report created a second notification")
	}
	active := svc.Active()
	if len(active) != 1 || active[0].Count != 2 {
		t.Fatalf("unexpected notifications %+v", active)
	}
	if got := testutil.ToFloat64(metrics.Notifications.WithLabelValues(ClassOperational)) - before; got != 2 {
		t.Fatalf("expected 2 counted reports, got %v", got)
	}
}

func TestCapEvictsOldestTransient(t *testing.T) {
	svc := New(WithMax(3), WithDismiss(0))
	svc.Notify(ClassCritical, "pornire esuata", true)
	svc.Notify(ClassOperational, "a", false)
	svc.Notify(ClassOperational, "b", false)
	svc.Notify(ClassOperational, "c", false)

	active := svc.Active()
	if len(active) != 3 {
		t.Fatalf("expected cap of 3, got %d", len(active))
	}
	if active[0].Message != "pornire esuata" || active[1].Message != "b" || active[2].Message != "c" {
		t.Fatalf("unexpected eviction result %+v", active)
	}
}

func TestTransientNotificationsAutoDismiss(t *testing.T) {
	var mu sync.Mutex
	var seen [][]Notification
	svc := New(WithDismiss(15*time.Millisecond), WithObserver(func(items []Notification) {
		mu.Lock()
		seen = append(seen, items)
		mu.Unlock()
	}))
	defer svc.Close()

	svc.Notify(ClassCritical, "fatal", true)
	svc.Notify(ClassOperational, "copiere esuata", false)

	deadline := time.Now().Add(time.Second)
	for len(svc.Active()) != 1 {
		if time.Now().After(deadline) {
			t.Fatal("transient notification was not dismissed")
		}
		time.Sleep(2 * time.Millisecond)
	}
	if svc.Active()[0].Message != "fatal" {
		t.Fatal("persistent notification was dismissed")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 3 {
		t.Fatalf("expected 3 observer calls, got %d", len(seen))
	}
}

func TestDismiss(t *testing.T) {
	svc := New()
	id := svc.Notify(ClassCritical, "x", true)
	if !svc.Dismiss(id) || svc.Dismiss(id) {
		t.Fatal("Dismiss should succeed exactly once")
	}
	if len(svc.Active()) != 0 {
		t.Fatal("notification still visible")
	}
}
