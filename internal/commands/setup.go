package commands

import (
	"context"
	"log/slog"

	"github.com/allisson/groundwork/internal/app"
	"github.com/allisson/groundwork/internal/config"
	apperrors "github.com/allisson/groundwork/internal/errors"
	"github.com/allisson/groundwork/internal/provision"
)

// RunSetup executes one provisioning run: resolve and persist the secret
// state, render the gateway config, then (unless config-only) start the
// platform services in dependency order with readiness gates in between.
// Every step is idempotent, so re-invoking after any failure is always safe.
func RunSetup(ctx context.Context, opts provision.Options) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return apperrors.Environment(apperrors.Wrap(err, "invalid configuration"))
	}

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting provisioning run",
		slog.Bool("config_only", opts.ConfigOnly),
		slog.Bool("recreate", opts.Recreate),
	)
	defer closeContainer(container, logger)

	return container.Provisioner().Run(ctx, opts)
}
