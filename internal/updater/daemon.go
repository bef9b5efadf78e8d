package updater

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// minConfigRetry bounds how fast a daemon re-validates a broken configuration.
const minConfigRetry = time.Second

// Run executes cycles until the configured mode says to stop.
//
// In single-shot mode one cycle runs and its error is returned unless the outcome
// was success or ip-unchanged. In daemon mode cycles repeat whatever their outcome
// until ctx is cancelled, and Run then returns nil.
func (u *Updater) Run(ctx context.Context) error {
	for {
		report := u.RunCycle(ctx)

		if !u.config.Daemon {
			if report.ExitCode() != 0 {
				return report.Err
			}
			return nil
		}

		if ctx.Err() != nil {
			u.logger.Info("Stopping daemon", zap.Int("cycles", u.state.Cycles))
			return nil
		}

		// A config error fails before the delay gate, so back off here instead.
		var ce *ConfigError
		if errors.As(report.Err, &ce) {
			if err := u.wait(ctx, max(u.config.Delay, minConfigRetry)); err != nil {
				u.logger.Info("Stopping daemon", zap.Int("cycles", u.state.Cycles))
				return nil
			}
		}
	}
}
