package updater

import (
	"net/http"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// HTTPClient defines the part of *http.Client used to reach remote services
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Updater runs update cycles: it resolves the public IP, detects changes and
// pushes the new IP to every configured domain record.
type Updater struct {
	config    Config
	client    HTTPClient
	resolver  Resolver
	logger    *zap.Logger
	clock     clock.Clock
	reporters []Reporter
	records   []DomainRecord
	state     RunState
}

// Option customizes an Updater.
type Option func(*Updater)

// WithHTTPClient sets the client used for discovery and update requests.
func WithHTTPClient(client HTTPClient) Option {
	return func(u *Updater) { u.client = client }
}

// WithResolver replaces the resolver derived from the configuration.
func WithResolver(resolver Resolver) Option {
	return func(u *Updater) { u.resolver = resolver }
}

// WithClock sets the clock used for timestamps and the daemon delay.
func WithClock(c clock.Clock) Option {
	return func(u *Updater) { u.clock = c }
}

// WithReporters registers reporters notified after every cycle.
func WithReporters(reporters ...Reporter) Option {
	return func(u *Updater) { u.reporters = append(u.reporters, reporters...) }
}

// NewUpdater initializes a new Updater. The configuration is validated at the
// start of each cycle, not here.
func NewUpdater(logger *zap.Logger, config Config, opts ...Option) *Updater {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	u := &Updater{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
		clock:  clock.New(),
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.resolver == nil {
		u.resolver = NewResolver(config, u.client)
	}
	u.records = u.selectRecords()

	return u
}

// State returns a copy of the run state.
func (u *Updater) State() RunState {
	return u.state
}

// Records returns the domain records updated by each cycle, sorted by name.
func (u *Updater) Records() []DomainRecord {
	out := make([]DomainRecord, len(u.records))
	copy(out, u.records)
	return out
}

// AddReporter registers a reporter after construction.
func (u *Updater) AddReporter(r Reporter) {
	u.reporters = append(u.reporters, r)
}
