// Package gateway renders the effective API gateway configuration from its
// declarative template by substituting current secret values.
package gateway

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/allisson/groundwork/internal/errors"
)

// Placeholder names recognized in the gateway template. Every occurrence is
// replaced; anything else in the template passes through verbatim.
const (
	placeholderAnonToken         = "$PLATFORM_ANON_KEY"
	placeholderServiceToken      = "$PLATFORM_SERVICE_KEY"
	placeholderDashboardUsername = "$DASHBOARD_USERNAME"
	placeholderDashboardPassword = "$DASHBOARD_PASSWORD"
)

// Substitutions holds the secret values injected into the template.
type Substitutions struct {
	AnonToken         string
	ServiceToken      string
	DashboardUsername string
	DashboardPassword string
}

// Renderer writes the rendered gateway configuration for a template/output
// path pair. The template file is never mutated; the output is regenerated on
// every run.
type Renderer struct {
	templatePath string
	outputPath   string
	logger       *slog.Logger
}

// NewRenderer returns a Renderer for the given template and output paths.
func NewRenderer(templatePath, outputPath string, logger *slog.Logger) *Renderer {
	return &Renderer{
		templatePath: templatePath,
		outputPath:   outputPath,
		logger:       logger,
	}
}

// Render reads the template, substitutes every placeholder occurrence, and
// writes the result to the output path in a single write. A missing template
// is fatal since the gateway cannot route without it.
func (r *Renderer) Render(sub Substitutions) error {
	raw, err := os.ReadFile(r.templatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.Environmentf("gateway template %s not found", r.templatePath)
		}
		return apperrors.Environment(apperrors.Wrapf(err, "read gateway template %s", r.templatePath))
	}

	rendered := strings.NewReplacer(
		placeholderAnonToken, sub.AnonToken,
		placeholderServiceToken, sub.ServiceToken,
		placeholderDashboardUsername, sub.DashboardUsername,
		placeholderDashboardPassword, sub.DashboardPassword,
	).Replace(string(raw))

	// When the output file is absent at container start, the runtime mounts a
	// directory in its place. Left there, the next render would fail and the
	// gateway would come up unconfigured.
	if info, err := os.Stat(r.outputPath); err == nil && info.IsDir() {
		r.logger.Warn("removing directory at gateway output path", slog.String("path", r.outputPath))
		if err := os.RemoveAll(r.outputPath); err != nil {
			return apperrors.Wrapf(err, "remove directory at %s", r.outputPath)
		}
	}

	if err := os.MkdirAll(filepath.Dir(r.outputPath), 0o755); err != nil {
		return apperrors.Wrapf(err, "create gateway config directory")
	}
	if err := os.WriteFile(r.outputPath, []byte(rendered), 0o644); err != nil {
		return apperrors.Wrapf(err, "write gateway config %s", r.outputPath)
	}

	r.logger.Info("gateway config rendered",
		slog.String("template", r.templatePath),
		slog.String("output", r.outputPath),
	)
	return nil
}
