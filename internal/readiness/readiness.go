// Package readiness implements bounded fixed-interval polling of dependency
// health probes.
package readiness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/juju/retry"

	apperrors "github.com/allisson/groundwork/internal/errors"
)

// Probe reports whether a dependency is ready. nil means ready; an error
// carries the reason this attempt was not.
type Probe func(ctx context.Context) error

// Await polls probe once per interval until it succeeds or the attempt budget
// is exhausted. Fixed-interval on purpose: probes are cheap read-only checks,
// so backing off only delays detection. Exhaustion and interruption both
// return a readiness-category error carrying the last probe failure.
func Await(ctx context.Context, clk retry.Clock, logger *slog.Logger, name string, probe Probe, attempts int, interval time.Duration) error {
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			return probe(ctx)
		},
		Attempts: attempts,
		Delay:    interval,
		Clock:    clk,
		Stop:     ctx.Done(),
		NotifyFunc: func(lastError error, attempt int) {
			logger.Debug("dependency not ready",
				slog.String("dependency", name),
				slog.Int("attempt", attempt),
				slog.Int("budget", attempts),
				slog.String("reason", lastError.Error()),
			)
		},
	})

	switch {
	case err == nil:
		logger.Info("dependency ready", slog.String("dependency", name))
		return nil
	case retry.IsAttemptsExceeded(err):
		return apperrors.Readiness(fmt.Errorf("%s not ready after %d attempts: %w", name, attempts, retry.LastError(err)))
	case retry.IsRetryStopped(err):
		return apperrors.Readiness(fmt.Errorf("wait for %s interrupted: %w", name, retry.LastError(err)))
	default:
		return apperrors.Readiness(apperrors.Wrapf(err, "wait for %s", name))
	}
}
