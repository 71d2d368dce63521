package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/allisson/groundwork/internal/config"
	"github.com/allisson/groundwork/internal/database"
	"github.com/allisson/groundwork/internal/layout"
	"github.com/allisson/groundwork/internal/objstore"
	"github.com/allisson/groundwork/internal/provision"
	"github.com/allisson/groundwork/internal/readiness"
	"github.com/allisson/groundwork/internal/reconcile"
	"github.com/allisson/groundwork/internal/secrets"
)

// Credentials for the platform services are resolved during the generation
// phase of the same run, so every adapter here reads them from the secret
// store at call time instead of capturing them at container build time.

// dataStore adapts the database, readiness, and reconcile packages to the
// provisioner's view of the primary data store.
type dataStore struct {
	host   string
	port   int
	store  *secrets.Store
	logger *slog.Logger
	db     *sql.DB
}

func newDataStore(cfg *config.Config, store *secrets.Store, logger *slog.Logger) *dataStore {
	return &dataStore{
		host:   cfg.DBHost,
		port:   cfg.DBPort,
		store:  store,
		logger: logger,
	}
}

func (d *dataStore) config() database.Config {
	user, _ := d.store.Value(secrets.KeyPostgresUser)
	password, _ := d.store.Value(secrets.KeyPostgresPassword)
	name, _ := d.store.Value(secrets.KeyPostgresDB)
	return database.Config{
		Host:               d.host,
		Port:               d.port,
		User:               user,
		Password:           password,
		Database:           name,
		MaxOpenConnections: 2,
		MaxIdleConnections: 2,
		ConnMaxLifetime:    30 * time.Minute,
	}
}

// Ping probes connectivity with a one-shot connection.
func (d *dataStore) Ping(ctx context.Context) error {
	return database.Ping(ctx, d.config())
}

// Connect opens the pooled administrative connection.
func (d *dataStore) Connect() error {
	db, err := database.Connect(d.config())
	if err != nil {
		return err
	}
	d.db = db
	return nil
}

// RolesReady probes whether the data store's first-boot migration has created
// every bootstrap role.
func (d *dataStore) RolesReady(ctx context.Context) error {
	if d.db == nil {
		return fmt.Errorf("administrative connection not open")
	}
	return readiness.RoleCount(d.db, provision.BootstrapRoles)(ctx)
}

// Reconcile applies the idempotent corrective statements.
func (d *dataStore) Reconcile(ctx context.Context, rootPassword string) error {
	if d.db == nil {
		return fmt.Errorf("administrative connection not open")
	}
	return reconcile.New(d.db, d.logger).Run(ctx, rootPassword)
}

// Close releases the administrative connection if one was opened.
func (d *dataStore) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// objectStore adapts the readiness probe and bucket initializer to the
// provisioner's view of the object storage service.
type objectStore struct {
	endpoint string
	bucket   string
	store    *secrets.Store
	client   *http.Client
	logger   *slog.Logger
}

func newObjectStore(cfg *config.Config, store *secrets.Store, client *http.Client, logger *slog.Logger) *objectStore {
	return &objectStore{
		endpoint: cfg.ObjectStoreEndpoint,
		bucket:   cfg.ObjectStoreBucket,
		store:    store,
		client:   client,
		logger:   logger,
	}
}

// Ready probes the liveness endpoint.
func (o *objectStore) Ready(ctx context.Context) error {
	url := fmt.Sprintf("http://%s/minio/health/live", o.endpoint)
	return readiness.HTTPHealth(o.client, url)(ctx)
}

// Ensure creates the assets bucket and its download policy, best effort.
func (o *objectStore) Ensure(ctx context.Context) {
	user, _ := o.store.Value(secrets.KeyObjStoreUser)
	password, _ := o.store.Value(secrets.KeyObjStorePassword)
	client, err := objstore.NewClient(o.endpoint, user, password)
	if err != nil {
		o.logger.Warn("object storage degraded: client not created",
			slog.String("error", err.Error()))
		return
	}
	objstore.NewInitializer(client, o.bucket, o.logger).Ensure(ctx)
}

// layoutEnsurer defers reading the directory settings until the secret state
// has been filled.
type layoutEnsurer struct {
	store  *secrets.Store
	logger *slog.Logger
}

// Ensure creates the runtime directory tree from the current settings.
func (l *layoutEnsurer) Ensure() error {
	functionsDir, _ := l.store.Value(secrets.KeyFunctionsDir)
	snippetsDir, _ := l.store.Value(secrets.KeySnippetsDir)
	return layout.New(functionsDir, snippetsDir, l.logger).Ensure()
}
