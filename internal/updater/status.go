package updater

import (
	"context"
	"sync"

	"sigs.k8s.io/external-dns/endpoint"

	"github.com/netguru/dyndns-updater/pkg/api"
	"github.com/netguru/dyndns-updater/pkg/errors"
)

// StatusRecorder keeps the last cycle report for the status API.
// It implements Reporter and api.StatusProvider.
type StatusRecorder struct {
	mu      sync.RWMutex
	filter  endpoint.DomainFilter
	records []DomainRecord
	last    *CycleReport
}

// NewStatusRecorder creates a recorder serving the records managed by u.
func NewStatusRecorder(u *Updater) *StatusRecorder {
	return &StatusRecorder{
		filter:  u.config.DomainFilter,
		records: u.Records(),
	}
}

// ReportCycle implements Reporter.
func (s *StatusRecorder) ReportCycle(report CycleReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &report
}

// Status implements api.StatusProvider.
func (s *StatusRecorder) Status() (api.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return api.Status{}, errors.ErrStatusUnavailable
	}
	r := s.last

	status := api.Status{
		Cycle:    r.Cycle,
		CycleID:  r.ID,
		Start:    r.Start,
		Finished: r.Finished,
		IP:       r.IP,
		LastIP:   r.LastIP,
		Outcome:  string(r.Outcome),
	}
	if r.Err != nil {
		status.Error = r.Err.Error()
	}
	for _, res := range r.Results {
		ds := api.DomainStatus{
			Domain:   res.Record.Name,
			RecordID: res.Record.RecordID,
			IP:       res.IP,
			DryRun:   res.DryRun,
			Success:  res.Err == nil,
		}
		if res.Err != nil {
			ds.Error = res.Err.Error()
		}
		status.Domains = append(status.Domains, ds)
	}
	return status, nil
}

// Records implements api.StatusProvider. Targets are the last applied IP, if any.
func (s *StatusRecorder) Records(_ context.Context) ([]*endpoint.Endpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ip string
	if s.last != nil {
		ip = s.last.LastIP
	}
	return Endpoints(s.records, ip), nil
}

// GetDomainFilter implements api.StatusProvider.
func (s *StatusRecorder) GetDomainFilter() endpoint.DomainFilterInterface {
	return s.filter
}
