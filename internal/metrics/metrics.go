// Package metrics declares the Prometheus collectors shared by the API server
// and the batch worker. They register with the default registry on import.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DocumentsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dx_documents_generated_total",
			Help: "Documents rendered, by kind and outcome (ok, input_error)",
		},
		[]string{"kind", "outcome"},
	)

	DocumentCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dx_document_cache_lookups_total",
			Help: "Document cache lookups, by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	ValidationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dx_validation_failures_total",
			Help: "Answer sets that failed validation",
		},
	)

	Diagnoses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dx_diagnoses_total",
			Help: "Diagnoses computed, by top-ranked project type",
		},
		[]string{"top_type"},
	)

	BatchJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dx_batch_jobs_total",
			Help: "Batch answer files processed, by outcome (ok, failed)",
		},
		[]string{"outcome"},
	)

	BatchJobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dx_batch_job_duration_seconds",
			Help:    "Time to render all documents for one answer file",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Handler serves the default registry in the exposition format.
func Handler() http.Handler { return promhttp.Handler() }
