package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "statusci"
)

var (
	pollDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20}

	PollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "polls_total",
		Help:      "Count of widget poll cycles.",
	}, []string{"server", "outcome"})

	FetchFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_failures_total",
		Help:      "Count of upstream fetch failures.",
	}, []string{"server", "reason"})

	PollDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "poll_duration_seconds",
		Help:      "Time taken for one widget poll cycle.",
		Buckets:   pollDurationBuckets,
	}, []string{"server"})

	ActiveWidgets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_widgets",
		Help:      "Number of widgets currently polling.",
	})
)
