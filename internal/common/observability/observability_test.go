package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"placement-tracker/internal/common/config"
	"placement-tracker/internal/common/logger"
	"placement-tracker/internal/common/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestRecordOperation_ExportsToPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := newWithRegisterer(config.ObservabilityConfig{ServiceName: "placement-tracker"}, logger.NewTestLogger(t), reg)
	defer o.Shutdown()

	o.RecordOperation(context.Background(), "colleges", "insert", "success", 3*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "placement_store_calls_total")
	assert.Contains(t, names, "placement_store_call_duration_milliseconds")
	for _, n := range names {
		assert.NotContains(t, n, ".", "exported names must be valid Prometheus names")
	}
}

func TestRecordOperation_SharesRegistryWithStoreMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(metrics.StoreOperationsTotal))
	require.NoError(t, reg.Register(metrics.StoreOperationDuration))

	o := newWithRegisterer(config.ObservabilityConfig{ServiceName: "placement-tracker"}, logger.NewTestLogger(t), reg)
	defer o.Shutdown()

	metrics.StoreOperationsTotal.WithLabelValues("students", "select", "success").Inc()
	metrics.StoreOperationDuration.WithLabelValues("students", "select").Observe(0.002)
	o.RecordOperation(context.Background(), "students", "select", "success", 2*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	seen := map[string]int{}
	for _, f := range families {
		seen[f.GetName()]++
	}
	for name, n := range seen {
		assert.Equal(t, 1, n, name)
	}
	assert.Contains(t, seen, "store_operations_total")
	assert.Contains(t, seen, "placement_store_calls_total")
}

func TestStartSpan_WithoutJaegerIsNoop(t *testing.T) {
	o := newWithRegisterer(config.ObservabilityConfig{ServiceName: "placement-tracker"}, logger.NewTestLogger(t), prometheus.NewRegistry())
	defer o.Shutdown()

	ctx, span := o.StartSpan(context.Background(), "store.CreateCollege", attribute.String("table", "colleges"))
	assert.NotNil(t, ctx)
	assert.False(t, span.SpanContext().IsValid())
	EndSpan(span, errors.New("boom"))
}

func TestNoop(t *testing.T) {
	o := Noop()
	o.RecordOperation(context.Background(), "students", "select", "success", time.Millisecond)
	_, span := o.StartSpan(context.Background(), "x")
	EndSpan(span, nil)
	o.Shutdown()
}
