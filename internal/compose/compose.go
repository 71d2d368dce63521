// Package compose wraps the docker compose command line used to start and
// inspect the platform's containers.
package compose

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/allisson/groundwork/internal/errors"
)

// Compose service names with startup-order significance. The data store and
// the object store must be ready before anything that depends on them starts.
const (
	ServiceDatabase    = "db"
	ServiceObjectStore = "objstore"
)

// Runner executes an external command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Compose drives docker compose against a single compose file.
type Compose struct {
	file   string
	runner Runner
	logger *slog.Logger
}

// New returns a Compose for the given compose file.
func New(file string, runner Runner, logger *slog.Logger) *Compose {
	return &Compose{
		file:   file,
		runner: runner,
		logger: logger,
	}
}

// Version checks that the docker compose plugin is available. Run eagerly,
// before any container state is touched.
func (c *Compose) Version(ctx context.Context) error {
	if _, err := c.runner.Run(ctx, "docker", "compose", "version"); err != nil {
		return apperrors.Environment(apperrors.Wrap(err, "docker compose is not available"))
	}
	return nil
}

// Preflight checks that the compose file exists and declares the services the
// startup sequence depends on.
func (c *Compose) Preflight() error {
	raw, err := os.ReadFile(c.file)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.Environmentf("compose file %s not found", c.file)
		}
		return apperrors.Environment(apperrors.Wrapf(err, "read compose file %s", c.file))
	}

	var parsed struct {
		Services map[string]any `yaml:"services"`
	}
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return apperrors.Environment(apperrors.Wrapf(err, "parse compose file %s", c.file))
	}
	for _, service := range []string{ServiceDatabase, ServiceObjectStore} {
		if _, ok := parsed.Services[service]; !ok {
			return apperrors.Environmentf("compose file %s does not define service %q", c.file, service)
		}
	}
	return nil
}

// Up starts the named services detached, or every declared service when none
// are named. recreate forces container recreation.
func (c *Compose) Up(ctx context.Context, recreate bool, services ...string) error {
	args := []string{"compose", "-f", c.file, "up", "-d"}
	if recreate {
		args = append(args, "--force-recreate")
	}
	args = append(args, services...)

	c.logger.Info("starting services",
		slog.String("services", strings.Join(services, ",")),
		slog.Bool("recreate", recreate),
	)
	output, err := c.runner.Run(ctx, "docker", args...)
	if err != nil {
		return apperrors.Wrapf(err, "docker compose up failed: %s", strings.TrimSpace(string(output)))
	}
	return nil
}

// LogsTail returns the last lines of a service's logs, for diagnostics when a
// readiness wait times out.
func (c *Compose) LogsTail(ctx context.Context, service string, lines int) (string, error) {
	output, err := c.runner.Run(ctx, "docker",
		"compose", "-f", c.file, "logs", "--no-color", "--tail", strconv.Itoa(lines), service)
	if err != nil {
		return "", apperrors.Wrapf(err, "docker compose logs for %s", service)
	}
	return string(output), nil
}
