package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Jobs records maintenance job runs. A nil *Jobs is a valid no-op recorder.
type Jobs struct {
	runs      *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	processed *prometheus.CounterVec
}

func NewJobs(reg prometheus.Registerer) *Jobs {
	if reg == nil {
		return &Jobs{}
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_runs_total",
		Help:      "Maintenance job runs by outcome (ok or error).",
	}, []string{"job", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "job_duration_seconds",
		Help:      "Duration of maintenance job runs.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job"})
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_items_processed_total",
		Help:      "Rows changed by maintenance jobs.",
	}, []string{"job"})
	reg.MustRegister(runs, duration, processed)
	return &Jobs{runs: runs, duration: duration, processed: processed}
}

// ObserveRun records one run of job.
func (j *Jobs) ObserveRun(job string, err error, duration time.Duration) {
	if j == nil || j.runs == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	j.runs.WithLabelValues(normalizeLabel(job), outcome).Inc()
	j.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

func (j *Jobs) AddProcessed(job string, n int) {
	if j == nil || j.processed == nil || n <= 0 {
		return
	}
	j.processed.WithLabelValues(normalizeLabel(job)).Add(float64(n))
}
