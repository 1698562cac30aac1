// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Total number of store operations by table, operation and outcome",
		},
		[]string{"table", "operation", "status"},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Duration of store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"table", "operation"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "score_type_cache_lookups_total",
			Help: "Score type cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "student_index_requests_total",
			Help: "Student index requests by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	ImportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "csv_import_rows_total",
			Help: "CSV import rows by outcome",
		},
		[]string{"outcome"},
	)
)

// Status labels shared by the counters above.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)
