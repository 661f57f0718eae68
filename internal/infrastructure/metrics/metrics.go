package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docchat",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	// Upload counters
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "ingest",
			Name:      "uploads_total",
			Help:      "Total document uploads",
		},
		[]string{"status"},
	)

	UploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "ingest",
			Name:      "upload_bytes_total",
			Help:      "Total bytes uploaded",
		},
	)

	ChunksProcessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "ingest",
			Name:      "chunks_processed_total",
			Help:      "Total chunks embedded and indexed",
		},
	)

	// Query counters
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "rag",
			Name:      "queries_total",
			Help:      "Total answered queries",
		},
		[]string{"mode", "status"},
	)

	StreamDeltasTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "rag",
			Name:      "stream_deltas_total",
			Help:      "Total streamed answer deltas",
		},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docchat",
			Subsystem: "rag",
			Name:      "generation_duration_seconds",
			Help:      "Answer generation duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"mode"},
	)
)
