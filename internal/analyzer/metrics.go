package analyzer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "analysis_runs_total",
		Help: "Number of analysis runs started.",
	})

	runFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "analysis_run_failures_total",
		Help: "Number of analysis runs that failed before delivery.",
	})

	instrumentsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_instruments_skipped_total",
		Help: "Instruments skipped during reconstruction, by reason.",
	}, []string{"reason"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "analysis_run_duration_seconds",
		Help:    "Wall time of a full analysis run.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})
)
