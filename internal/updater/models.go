package updater

import (
	"errors"
	"time"

	"go.uber.org/multierr"
)

// Outcome is the terminal state of one cycle.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeMinor   Outcome = "ip-unchanged"
	OutcomePartial Outcome = "partial-failure"
	OutcomeFatal   Outcome = "fatal"
)

// DomainRecord is a configured (domain name, provider record ID) pair.
type DomainRecord struct {
	Name     string
	RecordID string
}

// CycleContext holds the values shared by the steps of a single cycle.
type CycleContext struct {
	ID    string
	Cycle int
	Start time.Time
	IP    string
}

// RunState survives between cycles in daemon mode. Only the Updater touches it.
type RunState struct {
	Cycles int
	LastIP string
}

// DomainResult is the outcome of one domain update attempt.
type DomainResult struct {
	Record DomainRecord
	IP     string
	DryRun bool
	Err    error
}

// CycleReport is the value handed to reporters once a cycle is finalized.
type CycleReport struct {
	Cycle    int
	ID       string
	Start    time.Time
	Finished time.Time
	IP       string
	LastIP   string
	Outcome  Outcome
	Err      error
	Results  []DomainResult
}

// Duration returns how long the cycle took, delay included.
func (r CycleReport) Duration() time.Duration {
	return r.Finished.Sub(r.Start)
}

// ExitCode maps the outcome to the process status used in single-shot mode.
func (r CycleReport) ExitCode() int {
	switch r.Outcome {
	case OutcomeSuccess, OutcomeMinor:
		return 0
	default:
		return 1
	}
}

// Failed returns the results whose update did not succeed.
func (r CycleReport) Failed() []DomainResult {
	var failed []DomainResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Reporter receives every finalized cycle.
type Reporter interface {
	ReportCycle(report CycleReport)
}

// classify turns the cycle error into an Outcome.
func classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case IsMinor(err):
		return OutcomeMinor
	case IsFatal(err):
		return OutcomeFatal
	}
	var ue *UpdateError
	for _, e := range multierr.Errors(err) {
		if !errors.As(e, &ue) {
			return OutcomeFatal
		}
	}
	return OutcomePartial
}
