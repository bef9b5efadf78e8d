package api

import "time"

const (
	contentTypeHeader = "Content-Type"
	contentTypeJSON   = "application/json"
	varyHeader        = "Vary"
	logFieldError     = "err"
)

type Message struct {
	Message string `json:"message"`
}

// Status is the snapshot of the last finished cycle
type Status struct {
	Cycle    int            `json:"cycle"`
	CycleID  string         `json:"cycleId"`
	Start    time.Time      `json:"start"`
	Finished time.Time      `json:"finished"`
	IP       string         `json:"ip,omitempty"`
	LastIP   string         `json:"lastIp,omitempty"`
	Outcome  string         `json:"outcome"`
	Error    string         `json:"error,omitempty"`
	Domains  []DomainStatus `json:"domains,omitempty"`
}

// DomainStatus is the result of one domain update in the last cycle
type DomainStatus struct {
	Domain   string `json:"domain"`
	RecordID string `json:"recordId"`
	IP       string `json:"ip"`
	DryRun   bool   `json:"dryRun,omitempty"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}
