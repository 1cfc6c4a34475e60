package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_analyses_total",
			Help: "Total number of analysis tasks by outcome",
		},
		[]string{"tenant_id", "outcome"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insight_pipeline_stage_duration_seconds",
			Help:    "Duration of each analysis pipeline stage",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"stage"},
	)

	QuotaExceededTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_quota_exceeded_total",
			Help: "Task submissions rejected for lack of quota",
		},
		[]string{"tenant_id"},
	)

	QuotaRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "insight_quota_remaining",
			Help: "Remaining analysis allowance per tenant",
		},
		[]string{"tenant_id"},
	)
)
