package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/allisson/groundwork/internal/app"
	"github.com/allisson/groundwork/internal/bootstrap"
	"github.com/allisson/groundwork/internal/config"
	apperrors "github.com/allisson/groundwork/internal/errors"
	"github.com/allisson/groundwork/internal/provision"
	"github.com/allisson/groundwork/internal/secrets"
)

// RunBootstrap prepares a fresh install: downloads the selected profile's
// deployment assets into the install directory, asks for confirmation (unless
// autoConfirm), then hands off to the provisioning engine from inside the
// install directory. A declined confirmation leaves nothing behind but the
// downloaded assets.
func RunBootstrap(ctx context.Context, profileName string, autoConfirm bool, io IOTuple) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return apperrors.Environment(apperrors.Wrap(err, "invalid configuration"))
	}

	profile, err := bootstrap.ParseProfile(profileName)
	if err != nil {
		return apperrors.Environment(err)
	}

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	logger.Info("downloading deployment assets",
		slog.String("profile", string(profile)),
		slog.String("base_url", cfg.BootstrapBaseURL),
		slog.String("install_dir", cfg.InstallDir),
	)
	if err := container.Downloader().Fetch(ctx, profile.Files()); err != nil {
		return err
	}

	if !autoConfirm {
		confirmed, err := confirm(io, fmt.Sprintf("Provision the platform in %q?", cfg.InstallDir))
		if err != nil {
			return apperrors.Wrap(err, "read confirmation")
		}
		if !confirmed {
			return fmt.Errorf("bootstrap aborted by operator")
		}
	}

	if profile.EnablesAnalytics() {
		// Rides the normal environment-override path of the secret store, so
		// the toggle ends up persisted like any operator-provided value.
		if err := os.Setenv(secrets.KeyEnableAnalytics, "true"); err != nil {
			return apperrors.Wrap(err, "enable analytics toggle")
		}
	}

	if err := os.Chdir(cfg.InstallDir); err != nil {
		return apperrors.Environment(apperrors.Wrapf(err, "enter install directory %s", cfg.InstallDir))
	}

	logger.Info("assets ready, handing off to provisioning")
	return RunSetup(ctx, provision.Options{})
}
