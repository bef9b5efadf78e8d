package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// maxBodySize caps how much of a remote response is read.
const maxBodySize = 64 << 10

var quotedIPv4 = regexp.MustCompile(`"(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})"`)

// Resolver looks up the current public IP address.
type Resolver interface {
	Resolve(ctx context.Context) (string, error)
}

// ResolverFunc adapts an ordinary function to the Resolver interface.
type ResolverFunc func(ctx context.Context) (string, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context) (string, error) {
	return f(ctx)
}

// NewResolver returns a resolver for the configuration: the forced IP when set,
// otherwise the discovery service at config.IPURL.
func NewResolver(config Config, client HTTPClient) Resolver {
	if config.IP != "" {
		return staticResolver(config.IP)
	}
	ipURL := config.IPURL
	if ipURL == "" {
		ipURL = DefaultIPURL
	}
	return &webResolver{client: client, url: ipURL, timeout: config.Timeout}
}

type staticResolver string

func (s staticResolver) Resolve(context.Context) (string, error) {
	return string(s), nil
}

type webResolver struct {
	client  HTTPClient
	url     string
	timeout time.Duration
}

// Resolve implements Resolver.
//
// The service must answer 200 with an IPv4 literal in double quotes somewhere in
// the body. Plain JSON, JSON with extra text and near-JSON all work.
func (wr *webResolver) Resolve(ctx context.Context) (string, error) {
	if wr.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, wr.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wr.url, nil)
	if err != nil {
		return "", &ResolutionError{Reason: ReasonTransport, URL: wr.url, Err: err}
	}
	// some discovery services only answer with JSON to XHR-looking requests
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Cache-Control", "no-cache,no-store,must-revalidate,max-age=-1")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")

	resp, err := wr.client.Do(req)
	if err != nil {
		return "", &ResolutionError{Reason: ReasonTransport, URL: wr.url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", &ResolutionError{Reason: ReasonTransport, URL: wr.url, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ResolutionError{
			Reason: ReasonHTTPStatus,
			URL:    wr.url,
			Err:    fmt.Errorf("%w: %s - %s", ErrUnexpectedStatus, resp.Status, body),
		}
	}

	if msg, ok := remoteError(resp.Header, body); ok {
		return "", &ResolutionError{Reason: ReasonRemoteError, URL: wr.url, Err: fmt.Errorf("%w: %s", ErrRemoteError, msg)}
	}

	match := quotedIPv4.FindSubmatch(body)
	if match == nil {
		return "", &ResolutionError{Reason: ReasonUnparseable, URL: wr.url, Err: fmt.Errorf("%w - %s", ErrNoIPFound, body)}
	}
	return string(match[1]), nil
}

// remoteError reports the "err" field of a JSON response when it is set to
// anything other than null, false, zero or an empty string. Bodies that are
// not served as JSON are never inspected.
func remoteError(header http.Header, body []byte) (string, bool) {
	if !isJSON(header.Get("Content-Type")) {
		return "", false
	}
	return bodyError(body)
}

// isJSON matches application/json, text/json and +json media types.
func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasSuffix(mediaType, "/json") || strings.HasSuffix(mediaType, "+json")
}

func bodyError(body []byte) (string, bool) {
	var payload struct {
		Err json.RawMessage `json:"err"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Err) == 0 {
		return "", false
	}

	var v any
	if err := json.Unmarshal(payload.Err, &v); err != nil {
		return string(payload.Err), true
	}
	switch val := v.(type) {
	case nil:
		return "", false
	case bool:
		return "true", val
	case float64:
		return string(payload.Err), val != 0
	case string:
		return val, val != ""
	default:
		return string(payload.Err), true
	}
}
