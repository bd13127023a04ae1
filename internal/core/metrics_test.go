package core

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("NewPrometheusMetricsRecorder: %v", err)
	}

	ctx := context.Background()
	rec.Observe(ctx, "import_csv", true, 25*time.Millisecond)
	rec.Observe(ctx, "import_csv", true, 40*time.Millisecond)
	rec.Observe(ctx, "purchase", false, 10*time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond) // dropped

	if got := testutil.ToFloat64(rec.operations.WithLabelValues("import_csv", "success")); got != 2 {
		t.Fatalf("import_csv success = %v, want 2", got)
	}
	if got := testutil.ToFloat64(rec.operations.WithLabelValues("purchase", "error")); got != 1 {
		t.Fatalf("purchase error = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(rec.durations); got != 2 {
		t.Fatalf("duration series = %d, want 2", got)
	}
}

func TestPrometheusMetricsRecorderDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusMetricsRecorder(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatal("second register on same registry should fail")
	}
}

func TestServiceRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("NewPrometheusMetricsRecorder: %v", err)
	}
	svc := newTestService(t, WithMetrics(rec))

	importBatch(t, svc, threeRecordCSV())
	if got := testutil.ToFloat64(rec.operations.WithLabelValues("import_csv", "success")); got != 1 {
		t.Fatalf("import_csv success = %v, want 1", got)
	}
}
