package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersOnPrivateRegistry(t *testing.T) {
	// Two instances on separate registries must not collide.
	m1 := New(prometheus.NewRegistry())
	m2 := New(prometheus.NewRegistry())

	m1.ChunksGenerated.Inc()
	m1.ChunksGenerated.Inc()
	if got := testutil.ToFloat64(m1.ChunksGenerated); got != 2 {
		t.Errorf("chunks generated = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m2.ChunksGenerated); got != 0 {
		t.Errorf("second instance counted %v, want 0", got)
	}
}

func TestStoreMergeKinds(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.StoreMerges.WithLabelValues("weekly").Inc()
	m.StoreMerges.WithLabelValues("subject").Inc()
	m.StoreMerges.WithLabelValues("subject").Inc()

	if got := testutil.ToFloat64(m.StoreMerges.WithLabelValues("weekly")); got != 1 {
		t.Errorf("weekly merges = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.StoreMerges.WithLabelValues("subject")); got != 2 {
		t.Errorf("subject merges = %v, want 2", got)
	}
}
