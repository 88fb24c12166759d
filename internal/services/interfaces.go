package services

import (
	"time"
)

// MetricsRecorderInterface records engine counters and timings.
type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordBatchSize(size int)
}
