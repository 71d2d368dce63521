// Package app provides the dependency injection container assembling the
// provisioning components.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	jujuclock "github.com/juju/clock"

	"github.com/allisson/groundwork/internal/bootstrap"
	"github.com/allisson/groundwork/internal/compose"
	"github.com/allisson/groundwork/internal/config"
	"github.com/allisson/groundwork/internal/gateway"
	"github.com/allisson/groundwork/internal/provision"
	"github.com/allisson/groundwork/internal/secrets"
	"github.com/allisson/groundwork/internal/token"
)

// Container holds all application dependencies and provides methods to access
// them. It follows the lazy initialization pattern - components are created on
// first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger     *slog.Logger
	httpClient *http.Client

	// Components
	store       *secrets.Store
	renderer    *gateway.Renderer
	layout      *layoutEnsurer
	compose     *compose.Compose
	dataStore   *dataStore
	objectStore *objectStore
	provisioner *provision.Provisioner
	downloader  *bootstrap.Downloader

	// Initialization flags and mutex for thread-safety
	mu              sync.Mutex
	loggerInit      sync.Once
	storeInit       sync.Once
	rendererInit    sync.Once
	layoutInit      sync.Once
	composeInit     sync.Once
	dataStoreInit   sync.Once
	objectStoreInit sync.Once
	provisionerInit sync.Once
	downloaderInit  sync.Once
}

// NewContainer creates a new dependency injection container with the provided
// configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance. Every record carries a
// run-scoped id so interleaved runs stay distinguishable in aggregated logs.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// Store returns the secret/config store bound to the persisted env file.
func (c *Container) Store() *secrets.Store {
	c.storeInit.Do(func() {
		c.store = secrets.NewStore(c.config.EnvFile, c.Logger())
	})
	return c.store
}

// Renderer returns the gateway config renderer.
func (c *Container) Renderer() *gateway.Renderer {
	c.rendererInit.Do(func() {
		c.renderer = gateway.NewRenderer(c.config.GatewayTemplate, c.config.GatewayOutput, c.Logger())
	})
	return c.renderer
}

// Layout returns the runtime directory layout. The directory settings live in
// the secret state, so the concrete layout is built only when Ensure runs.
func (c *Container) Layout() provision.LayoutEnsurer {
	c.layoutInit.Do(func() {
		c.layout = &layoutEnsurer{store: c.Store(), logger: c.Logger()}
	})
	return c.layout
}

// Compose returns the docker compose wrapper.
func (c *Container) Compose() *compose.Compose {
	c.composeInit.Do(func() {
		c.compose = compose.New(c.config.ComposeFile, compose.ExecRunner{}, c.Logger())
	})
	return c.compose
}

// DataStore returns the provisioner's view of the primary database.
func (c *Container) DataStore() provision.DataStore {
	c.dataStoreInit.Do(func() {
		c.dataStore = newDataStore(c.config, c.Store(), c.Logger())
	})
	return c.dataStore
}

// ObjectStore returns the provisioner's view of the object storage service.
func (c *Container) ObjectStore() provision.ObjectStore {
	c.objectStoreInit.Do(func() {
		c.objectStore = newObjectStore(c.config, c.Store(), c.httpClient, c.Logger())
	})
	return c.objectStore
}

// Provisioner returns the orchestrator for a provisioning run.
func (c *Container) Provisioner() *provision.Provisioner {
	c.provisionerInit.Do(func() {
		c.provisioner = provision.New(provision.Dependencies{
			Store: c.Store(),
			IssuerFor: func(signingSecret string) secrets.TokenIssuer {
				// issuedAt is captured once here so both canonical tokens
				// share an epoch.
				return token.NewIssuer(signingSecret, time.Now())
			},
			Renderer:    c.Renderer(),
			Layout:      c.Layout(),
			Compose:     c.Compose(),
			DataStore:   c.DataStore(),
			ObjectStore: c.ObjectStore(),
			Clock:       jujuclock.WallClock,
			Logger:      c.Logger(),
			Diagnostics: os.Stderr,

			ServiceWaitAttempts: c.config.ServiceWaitTimeout,
			RoleWaitAttempts:    c.config.RoleWaitTimeout,
			PollInterval:        time.Second,
		})
	})
	return c.provisioner
}

// Downloader returns the deployment asset downloader. Downloads get a more
// generous timeout than the probe client since assets can be sizable.
func (c *Container) Downloader() *bootstrap.Downloader {
	c.downloaderInit.Do(func() {
		client := &http.Client{Timeout: 30 * time.Second}
		c.downloader = bootstrap.NewDownloader(c.config.BootstrapBaseURL, c.config.InstallDir, client, c.Logger())
	})
	return c.downloader
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.dataStore != nil {
		if err := c.dataStore.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler).With(slog.String("run_id", uuid.NewString()))
}
