package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Cycle metrics
	CyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dyndns_cycles_total",
			Help: "Total number of update cycles by outcome",
		},
		[]string{"outcome"},
	)

	CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dyndns_cycle_duration_seconds",
			Help:    "Update cycle duration in seconds, including the daemon delay",
			Buckets: prometheus.DefBuckets,
		},
	)

	LastCycleTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dyndns_last_cycle_timestamp_seconds",
			Help: "Unix time at which the last cycle finished",
		},
	)

	// Update metrics
	DomainUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dyndns_domain_updates_total",
			Help: "Total number of domain update attempts by result",
		},
		[]string{"result"},
	)

	CurrentIP = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dyndns_current_ip_info",
			Help: "Last applied public IP address (value is always 1)",
		},
		[]string{"ip"},
	)
)

func init() {
	prometheus.MustRegister(
		CyclesTotal,
		CycleDuration,
		LastCycleTimestamp,
		DomainUpdatesTotal,
		CurrentIP,
	)
}
