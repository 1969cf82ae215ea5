package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("second register must be a no-op: %v", err)
	}
}

func TestCountersGather(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatal(err)
	}
	before := testutil.ToFloat64(Notifications.WithLabelValues("operational"))
	Notifications.WithLabelValues("operational").Inc()
	if got := testutil.ToFloat64(Notifications.WithLabelValues("operational")); got != before+1 {
		t.Fatalf("expected %v, got %v", before+1, got)
	}
	StartupStage.Set(3)
	if got := testutil.ToFloat64(StartupStage); got != 3 {
		t.Fatalf("expected stage 3, got %v", got)
	}
}
