package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	templatesSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "examination_templates_saved_total",
		Help: "Templates saved, by operation (insert or replace).",
	}, []string{"op"})

	papersSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "examination_papers_submitted_total",
		Help: "Question papers persisted, by operation (insert or replace).",
	}, []string{"op"})

	paperValidationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "examination_paper_validation_failures_total",
		Help: "Paper submissions rejected because of missing values.",
	})

	storageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "examination_storage_failures_total",
		Help: "Key-value store failures surfaced at the submit boundary.",
	}, []string{"op"})

	exportJobsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "examination_export_jobs_total",
		Help: "Finished export jobs, by format and status.",
	}, []string{"format", "status"})

	exportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "examination_export_duration_seconds",
		Help:    "Time spent rendering and storing an export.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	})

	exportArtifactsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "examination_export_artifacts_purged_total",
		Help: "Export artifacts deleted by the retention job.",
	})
)
