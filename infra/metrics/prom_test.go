package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/fleetgrid/evsched/core/metrics"
)

func TestPromSink_RecordAllocationRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink, ok := sinkIf.(*PromSink)
	if !ok {
		t.Fatalf("expected PromSink")
	}

	ev := coremetrics.AllocationRunEvent{
		RunID: "r1", SiteID: "site-a", RoutesInWindow: 10, RoutesAllocated: 8,
		Score: 42, Fallback: false, Time: time.Now(),
	}
	if err := sink.RecordAllocationRun(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	got := testutil.ToFloat64(sink.allocations.WithLabelValues("site-a", "false"))
	if got != 1 {
		t.Fatalf("expected counter 1, got %v", got)
	}
}

func TestPromSink_RecordSolverFallback(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, _ := NewPromSinkWithRegistry(reg)
	sink := sinkIf.(*PromSink)

	if err := sink.RecordSolverFallback(coremetrics.SolverFallbackEvent{Stage: "allocation", Reason: "timeout"}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	got := testutil.ToFloat64(sink.fallbacks.WithLabelValues("allocation"))
	if got != 1 {
		t.Fatalf("expected counter 1, got %v", got)
	}
}
