package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/xhad/medscan/internal/models"
)

// Metrics holds all application metrics
type Metrics struct {
	// Extraction metrics
	Extractions        *prometheus.CounterVec
	ExtractionDuration prometheus.Histogram
	DiseasesDetected   *prometheus.CounterVec

	// Store metrics
	StoreOperations *prometheus.CounterVec

	// Server metrics
	RateLimited prometheus.Counter
}

// New creates the metrics and registers them on reg.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Extractions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Total number of documents run through the pipeline",
		}, []string{"status"}),
		ExtractionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Time spent extracting one document",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		DiseasesDetected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diseases_detected_total",
			Help:      "Total number of disease labels reported",
		}, []string{"disease"}),
		StoreOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Total number of result store operations",
		}, []string{"operation", "status"}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Total number of requests rejected by the rate limiter",
		}),
	}
}

// ObserveExtraction records one pipeline run.
func (m *Metrics) ObserveExtraction(result models.ExtractionResult, elapsed time.Duration) {
	status := "success"
	if !result.Success {
		status = "failure"
	}
	m.Extractions.WithLabelValues(status).Inc()
	m.ExtractionDuration.Observe(elapsed.Seconds())

	for _, d := range result.Diseases {
		if d != models.NoDisease {
			m.DiseasesDetected.WithLabelValues(d).Inc()
		}
	}
}

// ObserveStore records the outcome of a store call.
func (m *Metrics) ObserveStore(operation string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.StoreOperations.WithLabelValues(operation, status).Inc()
}
