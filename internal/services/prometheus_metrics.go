package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	ledgerOperations  *prometheus.CounterVec
	proofRejections   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	decryptBatches    *prometheus.CounterVec
	decryptBatchSize  prometheus.Histogram
}

func NewPrometheusMetrics() MetricsRecorderInterface {
	return &PrometheusMetrics{
		ledgerOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_operations_total",
				Help: "Total number of ledger mutations by operation and status",
			},
			[]string{"operation", "status"},
		),
		proofRejections: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proof_rejections_total",
				Help: "Total number of ciphertext validity proofs rejected",
			},
			[]string{"operation"},
		),
		operationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_operation_duration_milliseconds",
				Help:    "Ledger mutation duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"operation"},
		),
		decryptBatches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decrypt_batches_total",
				Help: "Total number of batched decryption requests by status",
			},
			[]string{"status"},
		),
		decryptBatchSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "decrypt_batch_size",
				Help:    "Number of handles per batched decryption request",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	operation := tags["operation"]
	if operation == "" {
		operation = "unknown"
	}

	switch name {
	case "ledger_operations_total":
		m.ledgerOperations.WithLabelValues(operation, "success").Inc()
	case "ledger_operations_failed":
		m.ledgerOperations.WithLabelValues(operation, "failed").Inc()
	case "proof_rejections_total":
		m.proofRejections.WithLabelValues(operation).Inc()
	case "decrypt_batches_total":
		status := tags["status"]
		if status == "" {
			status = "unknown"
		}
		m.decryptBatches.WithLabelValues(status).Inc()
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case "record_income", "record_expense", "set_budget", "set_goal":
		m.operationDuration.WithLabelValues(name).Observe(float64(duration.Milliseconds()))
	}
}

// RecordBatchSize observes the handle count of one decryption batch.
func (m *PrometheusMetrics) RecordBatchSize(size int) {
	m.decryptBatchSize.Observe(float64(size))
}
