package updater

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/mock"
)

// MockResolver is a mock implementation of the Resolver interface
type MockResolver struct {
	mock.Mock
}

// Resolve mocks the Resolve method
func (m *MockResolver) Resolve(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockReporter is a mock implementation of the Reporter interface
type MockReporter struct {
	mock.Mock
}

// ReportCycle mocks the ReportCycle method
func (m *MockReporter) ReportCycle(report CycleReport) {
	m.Called(report)
}

// reporterFunc adapts a function to the Reporter interface
type reporterFunc func(CycleReport)

func (f reporterFunc) ReportCycle(r CycleReport) { f(r) }

// providerServer fakes a provider update endpoint and records every request.
type providerServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []url.Values
	status   map[string]int    // record ID -> status code, 200 when absent
	body     map[string]string // record ID -> response body
}

func newProviderServer(t *testing.T) *providerServer {
	t.Helper()
	p := &providerServer{
		status: map[string]int{},
		body:   map[string]string{},
	}
	p.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		p.mu.Lock()
		p.requests = append(p.requests, q)
		status, ok := p.status[q.Get("id")]
		body := p.body[q.Get("id")]
		p.mu.Unlock()

		if !ok {
			status = http.StatusOK
		}
		if body == "" {
			body = "success"
		}
		if strings.HasPrefix(body, "{") {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(p.Close)
	return p
}

func (p *providerServer) updateURL() string {
	return p.URL + "/update?username={{settings.username}}&password={{settings.password}}&id={{domain.id}}&ip={{domain.newIP}}"
}

func (p *providerServer) hits() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

func (p *providerServer) hitsFor(recordID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, q := range p.requests {
		if q.Get("id") == recordID {
			n++
		}
	}
	return n
}

func (p *providerServer) setStatus(recordID string, status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status[recordID] = status
}

func (p *providerServer) setBody(recordID, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.body[recordID] = body
}

// discoveryServer fakes a public IP service answering with body.
type discoveryServer struct {
	*httptest.Server
	count atomic.Int32
}

func newDiscoveryServer(t *testing.T, handler http.HandlerFunc) *discoveryServer {
	t.Helper()
	d := &discoveryServer{}
	d.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d.count.Add(1)
		handler(w, r)
	}))
	t.Cleanup(d.Close)
	return d
}

func (d *discoveryServer) hits() int {
	return int(d.count.Load())
}

func staticJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		io.WriteString(w, body)
	}
}

func staticBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, body)
	}
}

// testConfig returns a valid configuration pointing at the fake provider.
func testConfig(p *providerServer, domains map[string]string) Config {
	return Config{
		UpdateURL: p.updateURL(),
		Username:  "user",
		Password:  "secret",
		Domains:   domains,
	}
}
