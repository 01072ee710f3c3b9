// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grievd_commands_total",
		Help: "Total number of commands handled by the gateway, labelled by event type and outcome.",
	}, []string{"event_type", "outcome"})

	CommandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grievd_command_duration_ms",
		Help:    "Gateway latency from command receipt to commit, lock wait included, in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"event_type"})

	LockTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grievd_lock_timeouts_total",
		Help: "Total number of commands that gave up waiting for a grievance lock.",
	})

	SweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grievd_monitor_sweeps_total",
		Help: "Total number of escalation monitor sweeps.",
	})

	SweepOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grievd_monitor_grievances_total",
		Help: "Grievances handled by monitor sweeps, labelled by outcome.",
	}, []string{"outcome"})

	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "grievd_monitor_sweep_duration_ms",
		Help:    "Escalation monitor sweep duration in milliseconds.",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 5000, 15000, 60000},
	})

	StatsDrift = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grievd_stats_drift_total",
		Help: "Department aggregates overwritten by reconciliation, labelled by department.",
	}, []string{"department_id"})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grievd_notifications_total",
		Help: "Notifications emitted, labelled by sink and status.",
	}, []string{"sink", "status"})

	NotifyQueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "grievd_notify_queue_utilization_ratio",
		Help: "Current notification queue utilization (0 to 1).",
	})

	ConfigReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grievd_config_reloads_total",
		Help: "Configuration reload attempts, labelled by status.",
	}, []string{"status"})
)

// Millis converts d to fractional milliseconds for the *_ms histograms.
func Millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
