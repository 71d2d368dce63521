// Package provision sequences a provisioning run: secret generation, gateway
// config rendering, phased service startup with readiness gates, data store
// reconciliation, and object storage initialization.
package provision

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/juju/retry"

	"github.com/allisson/groundwork/internal/compose"
	"github.com/allisson/groundwork/internal/gateway"
	"github.com/allisson/groundwork/internal/readiness"
	"github.com/allisson/groundwork/internal/secrets"
)

// State identifies a step of the provisioning run.
type State string

const (
	StateInit             State = "init"
	StateSecretsReady     State = "secrets_ready"
	StateConfigRendered   State = "config_rendered"
	StatePhase1Starting   State = "phase1_starting"
	StatePhase1Ready      State = "phase1_ready"
	StateReconciling      State = "reconciling"
	StateObjectStoreReady State = "objstore_ready"
	StatePhase2Starting   State = "phase2_starting"
	StateComplete         State = "complete"
	StateFailed           State = "failed"
)

// BootstrapRoles are created by the data store's own first-boot migration.
// Both must exist before anything that authenticates through them starts.
var BootstrapRoles = []string{"auth_admin", "storage_admin"}

const (
	roleWaitName = "database bootstrap roles"
	logTailLines = 20
)

// SecretStore is the provisioning view of the secret/config store.
type SecretStore interface {
	Load() error
	Fill(issuerFor func(signingSecret string) secrets.TokenIssuer) error
	Persist() error
	Value(key string) (string, bool)
}

// ConfigRenderer produces the effective gateway configuration.
type ConfigRenderer interface {
	Render(sub gateway.Substitutions) error
}

// LayoutEnsurer creates the runtime directory tree when absent.
type LayoutEnsurer interface {
	Ensure() error
}

// ComposeRunner drives the container runtime.
type ComposeRunner interface {
	Version(ctx context.Context) error
	Preflight() error
	Up(ctx context.Context, recreate bool, services ...string) error
	LogsTail(ctx context.Context, service string, lines int) (string, error)
}

// DataStore is the provisioning view of the primary database.
type DataStore interface {
	// Ping probes connectivity with a one-shot connection.
	Ping(ctx context.Context) error
	// Connect opens the administrative connection, once Ping reports ready.
	Connect() error
	// RolesReady probes whether every bootstrap role exists.
	RolesReady(ctx context.Context) error
	// Reconcile applies the idempotent corrective statements.
	Reconcile(ctx context.Context, rootPassword string) error
}

// ObjectStore is the provisioning view of the object storage service.
type ObjectStore interface {
	// Ready probes the health endpoint.
	Ready(ctx context.Context) error
	// Ensure creates the assets bucket and policy, best effort.
	Ensure(ctx context.Context)
}

// Dependencies carries every collaborator of a provisioning run.
type Dependencies struct {
	Store       SecretStore
	IssuerFor   func(signingSecret string) secrets.TokenIssuer
	Renderer    ConfigRenderer
	Layout      LayoutEnsurer
	Compose     ComposeRunner
	DataStore   DataStore
	ObjectStore ObjectStore
	Clock       retry.Clock
	Logger      *slog.Logger
	// Diagnostics receives the failing service's log tail when a readiness
	// wait times out.
	Diagnostics io.Writer

	// ServiceWaitAttempts bounds the connectivity waits; RoleWaitAttempts
	// bounds the much longer first-boot role wait. One attempt per
	// PollInterval.
	ServiceWaitAttempts int
	RoleWaitAttempts    int
	PollInterval        time.Duration
}

// Options selects the per-invocation behavior of a run.
type Options struct {
	// ConfigOnly stops after secret generation and config rendering; no
	// container state is touched.
	ConfigOnly bool
	// Recreate forces recreation of all containers on startup.
	Recreate bool
}

// Provisioner walks one run through the provisioning state machine. A run is
// single-threaded and never retries across states: any fatal error moves to
// StateFailed and the operator re-invokes the whole process, which is safe
// because every step is idempotent.
type Provisioner struct {
	deps  Dependencies
	state State
}

// New returns a Provisioner in StateInit.
func New(deps Dependencies) *Provisioner {
	return &Provisioner{
		deps:  deps,
		state: StateInit,
	}
}

// State returns the current state of the run.
func (p *Provisioner) State() State {
	return p.state
}

// Run executes the provisioning sequence.
func (p *Provisioner) Run(ctx context.Context, opts Options) (err error) {
	defer func() {
		if err != nil {
			p.transition(StateFailed)
		}
	}()

	if err = p.generate(); err != nil {
		return err
	}
	if opts.ConfigOnly {
		p.deps.Logger.Info("config-only run complete, service startup skipped")
		return nil
	}

	// Environment checks run eagerly, before any container state changes.
	if err = p.deps.Compose.Version(ctx); err != nil {
		return err
	}
	if err = p.deps.Compose.Preflight(); err != nil {
		return err
	}

	if err = p.phase1(ctx, opts.Recreate); err != nil {
		return err
	}

	p.transition(StateReconciling)
	if err = p.reconcile(ctx); err != nil {
		return err
	}

	p.deps.ObjectStore.Ensure(ctx)
	p.transition(StateObjectStoreReady)

	p.transition(StatePhase2Starting)
	if err = p.deps.Compose.Up(ctx, opts.Recreate); err != nil {
		return err
	}

	p.transition(StateComplete)
	p.deps.Logger.Info("provisioning complete")
	return nil
}

// generate runs the local generation phase: secret state, runtime layout,
// rendered gateway config. Nothing here touches container state.
func (p *Provisioner) generate() error {
	if err := p.deps.Store.Load(); err != nil {
		return err
	}
	if err := p.deps.Store.Fill(p.deps.IssuerFor); err != nil {
		return err
	}
	if err := p.deps.Store.Persist(); err != nil {
		return err
	}
	p.transition(StateSecretsReady)

	if err := p.deps.Layout.Ensure(); err != nil {
		return err
	}
	if err := p.deps.Renderer.Render(p.substitutions()); err != nil {
		return err
	}
	p.transition(StateConfigRendered)
	return nil
}

// phase1 starts the data store and object store, then blocks until both are
// ready and the data store's first-boot role migration has finished.
func (p *Provisioner) phase1(ctx context.Context, recreate bool) error {
	p.transition(StatePhase1Starting)
	if err := p.deps.Compose.Up(ctx, recreate, compose.ServiceDatabase, compose.ServiceObjectStore); err != nil {
		return err
	}

	if err := p.await(ctx, compose.ServiceDatabase, compose.ServiceDatabase,
		p.deps.DataStore.Ping, p.deps.ServiceWaitAttempts); err != nil {
		return err
	}
	if err := p.await(ctx, compose.ServiceObjectStore, compose.ServiceObjectStore,
		p.deps.ObjectStore.Ready, p.deps.ServiceWaitAttempts); err != nil {
		return err
	}

	if err := p.deps.DataStore.Connect(); err != nil {
		return err
	}
	// The role wait runs on its own much larger budget: it gates on the data
	// store's internal first-boot migration, not simple connectivity.
	if err := p.await(ctx, roleWaitName, compose.ServiceDatabase,
		p.deps.DataStore.RolesReady, p.deps.RoleWaitAttempts); err != nil {
		return err
	}

	p.transition(StatePhase1Ready)
	return nil
}

func (p *Provisioner) reconcile(ctx context.Context) error {
	rootPassword, ok := p.deps.Store.Value(secrets.KeyPostgresPassword)
	if !ok {
		return fmt.Errorf("root database credential missing from secret state")
	}
	return p.deps.DataStore.Reconcile(ctx, rootPassword)
}

// await polls probe on the fixed interval and, when the budget runs out,
// dumps the named service's recent logs to the diagnostics stream before
// surfacing the readiness error.
func (p *Provisioner) await(ctx context.Context, name, tailService string, probe readiness.Probe, attempts int) error {
	err := readiness.Await(ctx, p.deps.Clock, p.deps.Logger, name, probe, attempts, p.deps.PollInterval)
	if err == nil {
		return nil
	}
	if tail, tailErr := p.deps.Compose.LogsTail(ctx, tailService, logTailLines); tailErr == nil && tail != "" {
		fmt.Fprintf(p.deps.Diagnostics, "--- recent logs for %s ---\n%s", tailService, tail)
	}
	return err
}

func (p *Provisioner) substitutions() gateway.Substitutions {
	value := func(key string) string {
		v, _ := p.deps.Store.Value(key)
		return v
	}
	return gateway.Substitutions{
		AnonToken:         value(secrets.KeyAnonToken),
		ServiceToken:      value(secrets.KeyServiceToken),
		DashboardUsername: value(secrets.KeyDashboardUsername),
		DashboardPassword: value(secrets.KeyDashboardPassword),
	}
}

func (p *Provisioner) transition(next State) {
	p.deps.Logger.Info("state transition",
		slog.String("from", string(p.state)),
		slog.String("state", string(next)),
	)
	p.state = next
}
