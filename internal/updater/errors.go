package updater

import (
	"errors"
	"fmt"

	pkgerrors "github.com/netguru/dyndns-updater/pkg/errors"
)

var (
	// ErrIPUnchanged is the minor outcome of a cycle that found nothing to do
	ErrIPUnchanged = pkgerrors.ErrIPUnchanged

	// ErrNoIPFound is returned when no quoted IPv4 literal is found in a discovery response
	ErrNoIPFound = pkgerrors.ErrNoIPFound

	// ErrUnexpectedStatus is returned when a remote service does not answer 200
	ErrUnexpectedStatus = pkgerrors.ErrUnexpectedStatus

	// ErrRemoteError is returned when a response body carries an "err" field
	ErrRemoteError = pkgerrors.ErrRemoteError
)

// Reason classifies why a network step failed.
type Reason string

const (
	ReasonTransport   Reason = "transport"
	ReasonHTTPStatus  Reason = "http-status"
	ReasonRemoteError Reason = "remote-error"
	ReasonUnparseable Reason = "unparseable"
	ReasonTemplate    Reason = "template"
)

// ConfigError is returned when a required setting is missing. It is fatal for the cycle.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ResolutionError is returned when the public IP could not be determined.
type ResolutionError struct {
	Reason Reason
	URL    string
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to get current IP address from %s (%s): %v", e.URL, e.Reason, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// UpdateError is returned when a single domain could not be updated.
// It never affects the other domains of the same cycle.
type UpdateError struct {
	Domain   string
	RecordID string
	Reason   Reason
	Err      error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("failed to set dynamic DNS of %s (ID #%s, %s): %v", e.Domain, e.RecordID, e.Reason, e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }

// IsFatal reports whether err ends a cycle before any domain was attempted.
func IsFatal(err error) bool {
	var ce *ConfigError
	var re *ResolutionError
	return errors.As(err, &ce) || errors.As(err, &re)
}

// IsMinor reports whether err is the expected "nothing changed" outcome.
func IsMinor(err error) bool {
	return errors.Is(err, ErrIPUnchanged)
}
