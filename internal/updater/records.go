package updater

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
	"sigs.k8s.io/external-dns/endpoint"
)

// RecordIDLabelKey is the endpoint label carrying the provider record ID.
const RecordIDLabelKey = "record-id"

// UpdateDomain pushes ip to a single domain record through the provider update URL.
// In dry-run mode nothing is sent and the update is only logged.
func (u *Updater) UpdateDomain(ctx context.Context, logger *zap.Logger, record DomainRecord, ip string) error {
	if u.config.DryRun {
		logger.Info("Would update domain",
			zap.String("target", record.Name),
			zap.String("ip", ip))
		return nil
	}

	updateURL, err := renderURL(u.config.UpdateURL, u.templateVars(record, ip))
	if err != nil {
		return &UpdateError{Domain: record.Name, RecordID: record.RecordID, Reason: ReasonTemplate, Err: err}
	}

	logger.Info("Updating domain",
		zap.String("target", record.Name),
		zap.String("ip", ip))

	if err := u.sendUpdate(ctx, updateURL); err != nil {
		err.Domain = record.Name
		err.RecordID = record.RecordID
		logger.Error("Failed to update domain",
			zap.String("target", record.Name),
			zap.String("record_id", record.RecordID),
			zap.String("reason", string(err.Reason)),
			zap.Error(err.Err))
		return err
	}

	logger.Info("Domain updated",
		zap.String("target", record.Name),
		zap.String("ip", ip),
		zap.String("status", "success"))
	return nil
}

// sendUpdate issues the GET request. The rendered URL holds credentials, so it is never logged.
func (u *Updater) sendUpdate(ctx context.Context, updateURL string) *UpdateError {
	ctx, cancel := context.WithTimeout(ctx, u.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, updateURL, nil)
	if err != nil {
		return &UpdateError{Reason: ReasonTemplate, Err: fmt.Errorf("invalid update URL: %w", err)}
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return &UpdateError{Reason: ReasonTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &UpdateError{Reason: ReasonTransport, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return &UpdateError{Reason: ReasonHTTPStatus, Err: fmt.Errorf("%w: %s - %s", ErrUnexpectedStatus, resp.Status, body)}
	}

	if msg, ok := remoteError(resp.Header, body); ok {
		return &UpdateError{Reason: ReasonRemoteError, Err: fmt.Errorf("%w: %s", ErrRemoteError, msg)}
	}
	return nil
}

// Endpoints lists the managed records as A endpoints pointing at ip.
func Endpoints(records []DomainRecord, ip string) []*endpoint.Endpoint {
	endpoints := make([]*endpoint.Endpoint, 0, len(records))
	for _, r := range records {
		var ep *endpoint.Endpoint
		if ip != "" {
			ep = endpoint.NewEndpoint(r.Name, endpoint.RecordTypeA, ip)
		} else {
			ep = endpoint.NewEndpoint(r.Name, endpoint.RecordTypeA)
		}
		ep.Labels = map[string]string{
			RecordIDLabelKey: r.RecordID,
		}
		endpoints = append(endpoints, ep)
	}
	return endpoints
}
