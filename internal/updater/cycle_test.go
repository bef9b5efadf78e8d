package updater

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"sigs.k8s.io/external-dns/endpoint"

	pkgerrors "github.com/netguru/dyndns-updater/pkg/errors"
)

func TestRunCycleConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"no domains", func(c *Config) { c.Domains = nil }, pkgerrors.ErrMissingDomains},
		{"no username", func(c *Config) { c.Username = "" }, pkgerrors.ErrMissingUsername},
		{"no password", func(c *Config) { c.Password = "" }, pkgerrors.ErrMissingPassword},
		{"no update url", func(c *Config) { c.UpdateURL = "" }, pkgerrors.ErrMissingUpdateURL},
		{"filter excludes every domain", func(c *Config) {
			c.DomainFilter = endpoint.DomainFilter{Filters: []string{"other.org"}}
		}, pkgerrors.ErrMissingDomains},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProviderServer(t)
			cfg := testConfig(p, map[string]string{"example.com": "111"})
			tt.modify(&cfg)
			resolver := &MockResolver{}
			u := NewUpdater(zap.NewNop(), cfg, WithResolver(resolver))

			report := u.RunCycle(context.Background())

			var ce *ConfigError
			require.ErrorAs(t, report.Err, &ce)
			assert.ErrorIs(t, report.Err, tt.wantErr)
			assert.Equal(t, OutcomeFatal, report.Outcome)
			assert.Equal(t, 1, report.ExitCode())
			assert.Equal(t, 1, report.Cycle)
			resolver.AssertNotCalled(t, "Resolve", mock.Anything)
			assert.Equal(t, 0, p.hits())
		})
	}
}

func TestRunCycleForcedIP(t *testing.T) {
	p := newProviderServer(t)
	discovery := newDiscoveryServer(t, staticBody(`{"ip":"1.1.1.1"}`))
	cfg := testConfig(p, map[string]string{"example.com": "111"})
	cfg.IP = "9.9.9.9"
	cfg.IPURL = discovery.URL
	u := NewUpdater(zap.NewNop(), cfg)

	report := u.RunCycle(context.Background())

	require.NoError(t, report.Err)
	assert.Equal(t, OutcomeSuccess, report.Outcome)
	assert.Equal(t, "9.9.9.9", report.IP)
	assert.Equal(t, 0, discovery.hits())
	require.Equal(t, 1, p.hits())
	assert.Equal(t, "111", p.requests[0].Get("id"))
	assert.Equal(t, "9.9.9.9", p.requests[0].Get("ip"))
	assert.Equal(t, RunState{Cycles: 1, LastIP: "9.9.9.9"}, u.State())
}

func TestRunCycleUnchanged(t *testing.T) {
	p := newProviderServer(t)
	discovery := newDiscoveryServer(t, staticBody(`{"ip":"9.9.9.9"}`))
	cfg := testConfig(p, map[string]string{"example.com": "111"})
	cfg.IPURL = discovery.URL
	u := NewUpdater(zap.NewNop(), cfg)
	u.state.LastIP = "9.9.9.9"

	report := u.RunCycle(context.Background())

	assert.ErrorIs(t, report.Err, ErrIPUnchanged)
	assert.Equal(t, OutcomeMinor, report.Outcome)
	assert.Equal(t, 0, report.ExitCode())
	assert.Equal(t, 1, discovery.hits())
	assert.Equal(t, 0, p.hits())
	assert.Equal(t, "9.9.9.9", u.State().LastIP)

	require.NoError(t, u.Run(context.Background()))
	assert.Equal(t, 0, p.hits())
}

func TestRunCycleIPChangedBetweenCycles(t *testing.T) {
	p := newProviderServer(t)
	var current atomic.Value
	current.Store("9.9.9.9")
	cfg := testConfig(p, map[string]string{"example.com": "111"})
	u := NewUpdater(zap.NewNop(), cfg, WithResolver(ResolverFunc(func(context.Context) (string, error) {
		return current.Load().(string), nil
	})))

	require.Equal(t, OutcomeSuccess, u.RunCycle(context.Background()).Outcome)
	require.Equal(t, OutcomeMinor, u.RunCycle(context.Background()).Outcome)
	current.Store("8.8.8.8")
	report := u.RunCycle(context.Background())

	assert.Equal(t, OutcomeSuccess, report.Outcome)
	assert.Equal(t, 2, p.hits())
	assert.Equal(t, "8.8.8.8", p.requests[1].Get("ip"))
	assert.Equal(t, RunState{Cycles: 3, LastIP: "8.8.8.8"}, u.State())
}

func TestRunCycleResolutionFailures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		timeout    time.Duration
		wantReason Reason
	}{
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			timeout:    50 * time.Millisecond,
			wantReason: ReasonTransport,
		},
		{
			name:       "unparseable",
			handler:    staticBody(`{"ip":"unknown"}`),
			wantReason: ReasonUnparseable,
		},
		{
			name: "bad status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantReason: ReasonHTTPStatus,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProviderServer(t)
			discovery := newDiscoveryServer(t, tt.handler)
			cfg := testConfig(p, map[string]string{"example.com": "111", "example.org": "222"})
			cfg.IPURL = discovery.URL
			cfg.Timeout = tt.timeout
			u := NewUpdater(zap.NewNop(), cfg)

			report := u.RunCycle(context.Background())

			var re *ResolutionError
			require.ErrorAs(t, report.Err, &re)
			assert.Equal(t, tt.wantReason, re.Reason)
			assert.Equal(t, OutcomeFatal, report.Outcome)
			assert.Equal(t, 1, report.ExitCode())
			assert.Equal(t, 0, p.hits())
			assert.Empty(t, u.State().LastIP)
		})
	}
}

func TestRunCyclePartialFailure(t *testing.T) {
	p := newProviderServer(t)
	p.setStatus("1", http.StatusInternalServerError)
	cfg := testConfig(p, map[string]string{"a.example.com": "1", "b.example.com": "2"})
	cfg.IP = "9.9.9.9"
	u := NewUpdater(zap.NewNop(), cfg)

	report := u.RunCycle(context.Background())

	assert.Equal(t, OutcomePartial, report.Outcome)
	assert.Equal(t, 1, report.ExitCode())
	assert.Equal(t, 1, p.hitsFor("1"))
	assert.Equal(t, 1, p.hitsFor("2"))

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "a.example.com", failed[0].Record.Name)

	var ue *UpdateError
	require.ErrorAs(t, report.Err, &ue)
	assert.Equal(t, "1", ue.RecordID)

	// the failed domain is not retried until the IP changes again
	assert.Equal(t, "9.9.9.9", u.State().LastIP)
	assert.Equal(t, OutcomeMinor, u.RunCycle(context.Background()).Outcome)
	assert.Equal(t, 1, p.hitsFor("1"))
}

func TestRunCycleDryRun(t *testing.T) {
	p := newProviderServer(t)
	cfg := testConfig(p, map[string]string{"a.example.com": "1", "b.example.com": "2"})
	cfg.IP = "9.9.9.9"
	cfg.DryRun = true
	u := NewUpdater(zap.NewNop(), cfg)

	report := u.RunCycle(context.Background())

	require.NoError(t, report.Err)
	assert.Equal(t, OutcomeSuccess, report.Outcome)
	require.Len(t, report.Results, 2)
	assert.True(t, report.Results[0].DryRun)
	assert.Equal(t, 0, p.hits())
}

func TestRunCycleReporters(t *testing.T) {
	p := newProviderServer(t)
	cfg := testConfig(p, map[string]string{"example.com": "111"})
	cfg.IP = "9.9.9.9"

	reporter := &MockReporter{}
	reporter.On("ReportCycle", mock.MatchedBy(func(r CycleReport) bool {
		return r.Cycle == 1 && r.Outcome == OutcomeSuccess && r.LastIP == "9.9.9.9"
	})).Once()
	reporter.On("ReportCycle", mock.MatchedBy(func(r CycleReport) bool {
		return r.Cycle == 2 && r.Outcome == OutcomeMinor
	})).Once()

	u := NewUpdater(zap.NewNop(), cfg, WithReporters(reporter))
	u.RunCycle(context.Background())
	u.RunCycle(context.Background())

	reporter.AssertExpectations(t)
	reporter.AssertNumberOfCalls(t, "ReportCycle", 2)
}

func TestRunCycleCountsEveryCycle(t *testing.T) {
	p := newProviderServer(t)
	cfg := testConfig(p, map[string]string{"example.com": "111"})
	cfg.Username = ""
	u := NewUpdater(zap.NewNop(), cfg)

	var ids []string
	u.AddReporter(reporterFunc(func(r CycleReport) { ids = append(ids, r.ID) }))

	for i := 1; i <= 3; i++ {
		report := u.RunCycle(context.Background())
		assert.Equal(t, i, report.Cycle)
	}
	assert.Equal(t, 3, u.State().Cycles)
	require.Len(t, ids, 3)
	assert.NotEqual(t, ids[0], ids[1])
	assert.NotEqual(t, ids[1], ids[2])
}

func TestRunCycleTimestamps(t *testing.T) {
	p := newProviderServer(t)
	mockClock := clock.NewMock()
	mockClock.Set(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	cfg := testConfig(p, map[string]string{"example.com": "111"})
	u := NewUpdater(zap.NewNop(), cfg, WithClock(mockClock), WithResolver(ResolverFunc(func(context.Context) (string, error) {
		mockClock.Add(3 * time.Second)
		return "9.9.9.9", nil
	})))

	report := u.RunCycle(context.Background())

	require.NoError(t, report.Err)
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), report.Start)
	assert.Equal(t, 3*time.Second, report.Duration())
}

func TestRunCycleDaemonDelay(t *testing.T) {
	p := newProviderServer(t)
	mockClock := clock.NewMock()
	var resolved atomic.Int32
	cfg := testConfig(p, map[string]string{"example.com": "111"})
	cfg.Daemon = true
	cfg.Delay = 2 * time.Minute
	u := NewUpdater(zap.NewNop(), cfg, WithClock(mockClock), WithResolver(ResolverFunc(func(context.Context) (string, error) {
		resolved.Add(1)
		return "9.9.9.9", nil
	})))

	// first cycle never waits
	require.Equal(t, OutcomeSuccess, u.RunCycle(context.Background()).Outcome)
	require.Equal(t, int32(1), resolved.Load())

	done := make(chan CycleReport, 1)
	go func() { done <- u.RunCycle(context.Background()) }()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), resolved.Load(), "second cycle resolves only after the delay")

	require.Eventually(t, func() bool {
		mockClock.Add(time.Minute)
		return resolved.Load() == 2
	}, time.Second, 10*time.Millisecond)

	report := <-done
	assert.Equal(t, OutcomeMinor, report.Outcome)
	assert.Equal(t, 2, report.Cycle)
}

func TestRunCycleSingleShotNoDelay(t *testing.T) {
	p := newProviderServer(t)
	mockClock := clock.NewMock()
	cfg := testConfig(p, map[string]string{"example.com": "111"})
	cfg.IP = "9.9.9.9"
	cfg.Delay = time.Hour
	u := NewUpdater(zap.NewNop(), cfg, WithClock(mockClock))

	u.RunCycle(context.Background())
	report := u.RunCycle(context.Background())

	assert.Equal(t, OutcomeMinor, report.Outcome)
}

func TestRunCycleCancelDuringDelay(t *testing.T) {
	p := newProviderServer(t)
	resolver := &MockResolver{}
	resolver.On("Resolve", mock.Anything).Return("9.9.9.9", nil).Once()
	cfg := testConfig(p, map[string]string{"example.com": "111"})
	cfg.Daemon = true
	cfg.Delay = time.Hour
	u := NewUpdater(zap.NewNop(), cfg, WithClock(clock.NewMock()), WithResolver(resolver))

	u.RunCycle(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan CycleReport, 1)
	go func() { done <- u.RunCycle(ctx) }()
	cancel()

	select {
	case report := <-done:
		assert.ErrorIs(t, report.Err, context.Canceled)
		assert.Equal(t, OutcomeFatal, report.Outcome)
	case <-time.After(time.Second):
		t.Fatal("cycle did not stop on cancellation")
	}
	resolver.AssertNumberOfCalls(t, "Resolve", 1)
	assert.Equal(t, 1, p.hits())
}
