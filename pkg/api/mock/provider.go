package mock

import (
	"context"

	"sigs.k8s.io/external-dns/endpoint"

	"github.com/netguru/dyndns-updater/pkg/api"
	"github.com/netguru/dyndns-updater/pkg/errors"
)

// MockProvider is a mock implementation of the api.StatusProvider interface for testing
type MockProvider struct {
	StatusFn       func() (api.Status, error)
	RecordsFn      func(ctx context.Context) ([]*endpoint.Endpoint, error)
	DomainFilterFn func() endpoint.DomainFilterInterface
}

// Status calls the StatusFn or reports that no cycle has completed if not set
func (m *MockProvider) Status() (api.Status, error) {
	if m.StatusFn != nil {
		return m.StatusFn()
	}
	return api.Status{}, errors.ErrStatusUnavailable
}

// Records calls the RecordsFn or returns an empty slice if not set
func (m *MockProvider) Records(ctx context.Context) ([]*endpoint.Endpoint, error) {
	if m.RecordsFn != nil {
		return m.RecordsFn(ctx)
	}
	return []*endpoint.Endpoint{}, nil
}

// GetDomainFilter calls the DomainFilterFn or returns an empty filter if not set
func (m *MockProvider) GetDomainFilter() endpoint.DomainFilterInterface {
	if m.DomainFilterFn != nil {
		return m.DomainFilterFn()
	}
	return endpoint.DomainFilter{}
}
