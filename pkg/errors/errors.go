package errors

import "errors"

var (
	// ErrMissingDomains is returned when no domain records are configured
	ErrMissingDomains = errors.New("no domains specified")

	// ErrMissingUsername is returned when the provider username is not provided
	ErrMissingUsername = errors.New("no username specified")

	// ErrMissingPassword is returned when the provider password is not provided
	ErrMissingPassword = errors.New("no password specified")

	// ErrMissingUpdateURL is returned when the update URL template is empty
	ErrMissingUpdateURL = errors.New("no update URL specified")

	// ErrIPUnchanged is the minor outcome of a cycle whose IP matches the last applied one
	ErrIPUnchanged = errors.New("ip-unchanged")

	// ErrNoIPFound is returned when the discovery response contains no quoted IPv4 literal
	ErrNoIPFound = errors.New("IP format is invalid")

	// ErrUnexpectedStatus is returned when a remote service answers with a non-200 status
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrRemoteError is returned when a response body carries an "err" field
	ErrRemoteError = errors.New("remote service reported an error")

	// ErrStatusUnavailable is returned by the status API before the first cycle finished
	ErrStatusUnavailable = errors.New("no cycle has completed yet")
)
