package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ifcatom = "ifcatom"

	// Poller metrics
	pollTicksTotal    = "poll_ticks_total"
	pollErrorsTotal   = "poll_errors_total"
	staleUpdatesTotal = "stale_updates_total"
	JobStatusCount    = "job_status_count"

	// Labels
	jobStatusLabel = "status"
	pollErrorLabel = "kind"
)

var pollErrorLabels = []string{
	pollErrorLabel,
}

var jobStatusCountLabels = []string{
	jobStatusLabel,
}

/**
* Metrics definition
**/
var pollTicksTotalMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: ifcatom,
		Name:      pollTicksTotal,
		Help:      "number of total status poll ticks",
	},
)

var pollErrorsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: ifcatom,
		Name:      pollErrorsTotal,
		Help:      "number of failed status polls by kind",
	},
	pollErrorLabels,
)

var staleUpdatesTotalMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: ifcatom,
		Name:      staleUpdatesTotal,
		Help:      "number of status updates discarded by the guarded merge",
	},
)

var jobStatusCountMetric = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Subsystem: ifcatom,
		Name:      JobStatusCount,
		Help:      "metrics to record the number of tracked jobs in each status",
	},
	jobStatusCountLabels,
)

func IncreasePollTicksMetric() {
	pollTicksTotalMetric.Inc()
}

func IncreasePollErrorsMetric(kind string) {
	labels := prometheus.Labels{
		pollErrorLabel: kind,
	}
	pollErrorsTotalMetric.With(labels).Inc()
}

func IncreaseStaleUpdatesMetric() {
	staleUpdatesTotalMetric.Inc()
}

func UpdateJobStatusCountMetric(status string, count int) {
	labels := prometheus.Labels{
		jobStatusLabel: status,
	}
	jobStatusCountMetric.With(labels).Set(float64(count))
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(pollTicksTotalMetric)
	prometheus.MustRegister(pollErrorsTotalMetric)
	prometheus.MustRegister(staleUpdatesTotalMetric)
	prometheus.MustRegister(jobStatusCountMetric)
}
