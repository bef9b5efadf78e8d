package updater

import (
	"time"

	"sigs.k8s.io/external-dns/endpoint"

	"github.com/netguru/dyndns-updater/pkg/errors"
)

const (
	// DefaultUpdateURL is the DNS Made Easy dynamic DNS endpoint.
	DefaultUpdateURL = "https://cp.dnsmadeeasy.com/servlet/updateip?username={{settings.username}}&password={{settings.password}}&id={{domain.id}}&ip={{domain.newIP}}"

	// DefaultIPURL is the public IP discovery service used when none is configured.
	DefaultIPURL = "https://api.ipify.org?format=json"

	DefaultTimeout = 30 * time.Second
	DefaultDelay   = 2 * time.Minute
	DefaultWorkers = 4
)

// Config is used to configure the creation of the Updater.
type Config struct {
	IP             string // forced IP, skips discovery when set
	IPURL          string // discovery service
	UpdateURL      string // provider URL template
	Username       string
	Password       string
	Domains        map[string]string // domain name -> provider record ID
	DomainFilter   endpoint.DomainFilter
	Timeout        time.Duration
	Delay          time.Duration
	AcceptAllCerts bool
	DryRun         bool
	Daemon         bool
	Workers        int
}

// Validate checks the fields every cycle needs before touching the network.
func (c Config) Validate() error {
	switch {
	case len(c.Domains) == 0:
		return &ConfigError{Err: errors.ErrMissingDomains}
	case c.Username == "":
		return &ConfigError{Err: errors.ErrMissingUsername}
	case c.Password == "":
		return &ConfigError{Err: errors.ErrMissingPassword}
	case c.UpdateURL == "":
		return &ConfigError{Err: errors.ErrMissingUpdateURL}
	}
	return nil
}

func (c Config) workerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return DefaultWorkers
}
