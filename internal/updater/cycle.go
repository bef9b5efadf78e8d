package updater

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/netguru/dyndns-updater/pkg/errors"
)

// RunCycle runs a single update cycle:
//
//	validate -> delay (daemon mode, not on the first cycle) -> resolve -> detect change -> dispatch
//
// and reports the result. It never panics on remote failures; they are classified in the report.
func (u *Updater) RunCycle(ctx context.Context) CycleReport {
	cc := &CycleContext{
		ID:    uuid.NewString(),
		Start: u.clock.Now(),
	}
	logger := u.logger.With(zap.String("cycle_id", cc.ID))

	results, err := u.runSteps(ctx, cc, logger)
	return u.finalize(cc, logger, results, err)
}

func (u *Updater) runSteps(ctx context.Context, cc *CycleContext, logger *zap.Logger) ([]DomainResult, error) {
	validateErr := u.validate()

	u.state.Cycles++
	cc.Cycle = u.state.Cycles
	logger = logger.With(zap.Int("cycle", cc.Cycle))

	if validateErr != nil {
		return nil, validateErr
	}

	if u.config.Daemon && cc.Cycle > 1 {
		logger.Debug("Waiting", zap.Duration("delay", u.config.Delay))
		if err := u.wait(ctx, u.config.Delay); err != nil {
			return nil, err
		}
	}

	logger.Info("Determining IP")
	ip, err := u.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	cc.IP = ip

	if !HasChanged(cc.IP, u.state.LastIP) {
		return nil, ErrIPUnchanged
	}
	logger.Debug("Updating IP", zap.String("target", cc.IP), zap.String("previous", u.state.LastIP))
	// Recorded before dispatch: a failed domain is not retried until the IP changes again.
	u.state.LastIP = cc.IP

	results := u.dispatchUpdates(ctx, logger, u.records, cc.IP)

	var errs error
	for _, res := range results {
		errs = multierr.Append(errs, res.Err)
	}
	return results, errs
}

func (u *Updater) validate() error {
	if err := u.config.Validate(); err != nil {
		return err
	}
	if len(u.records) == 0 {
		return &ConfigError{Err: errors.ErrMissingDomains}
	}
	return nil
}

func (u *Updater) finalize(cc *CycleContext, logger *zap.Logger, results []DomainResult, err error) CycleReport {
	report := CycleReport{
		Cycle:    cc.Cycle,
		ID:       cc.ID,
		Start:    cc.Start,
		Finished: u.clock.Now(),
		IP:       cc.IP,
		LastIP:   u.state.LastIP,
		Outcome:  classify(err),
		Err:      err,
		Results:  results,
	}
	logger = logger.With(zap.Int("cycle", cc.Cycle))

	switch report.Outcome {
	case OutcomeSuccess:
		logger.Info("All done", zap.String("ip", report.IP), zap.Int("domains", len(results)))
	case OutcomeMinor:
		logger.Debug("IP has not changed", zap.String("ip", report.IP))
	case OutcomePartial:
		logger.Error("Some domains failed to update",
			zap.String("ip", report.IP),
			zap.Int("failed", len(report.Failed())),
			zap.Int("domains", len(results)),
			zap.Error(err))
	default:
		logger.Error("Cycle failed", zap.Error(err))
	}

	for _, r := range u.reporters {
		r.ReportCycle(report)
	}
	return report
}

// wait blocks for d or until ctx is done.
func (u *Updater) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := u.clock.Timer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
