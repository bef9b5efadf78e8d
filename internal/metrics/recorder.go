package metrics

import (
	"github.com/netguru/dyndns-updater/internal/updater"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
	resultDryRun  = "dry_run"
)

// Recorder updates the prometheus collectors after each cycle.
type Recorder struct {
	lastIP string
}

// NewRecorder creates a new metrics recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// ReportCycle implements updater.Reporter.
func (r *Recorder) ReportCycle(report updater.CycleReport) {
	CyclesTotal.WithLabelValues(string(report.Outcome)).Inc()
	CycleDuration.Observe(report.Duration().Seconds())
	LastCycleTimestamp.Set(float64(report.Finished.Unix()))

	for _, res := range report.Results {
		switch {
		case res.Err != nil:
			DomainUpdatesTotal.WithLabelValues(resultFailure).Inc()
		case res.DryRun:
			DomainUpdatesTotal.WithLabelValues(resultDryRun).Inc()
		default:
			DomainUpdatesTotal.WithLabelValues(resultSuccess).Inc()
		}
	}

	if report.LastIP != "" && report.LastIP != r.lastIP {
		if r.lastIP != "" {
			CurrentIP.DeleteLabelValues(r.lastIP)
		}
		CurrentIP.WithLabelValues(report.LastIP).Set(1)
		r.lastIP = report.LastIP
	}
}
