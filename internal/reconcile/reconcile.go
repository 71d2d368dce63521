// Package reconcile applies idempotent corrective statements against the
// primary data store once it reports ready.
package reconcile

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	apperrors "github.com/allisson/groundwork/internal/errors"
)

const (
	secondaryDatabase = "_platform"
	analyticsSchema   = "_analytics"
)

// serviceAccounts are the dependent roles whose passwords track the root
// credential. The data store's own bootstrap creates them; a missing role is
// skipped and picked up on a later run.
var serviceAccounts = []string{"authenticator", "pgbouncer"}

// Reconciler corrects drift between the persisted secret state and the data
// store: missing database/schema, stale service-account credentials.
type Reconciler struct {
	db     *sql.DB
	logger *slog.Logger
}

// New returns a Reconciler bound to an open connection on the primary
// database.
func New(db *sql.DB, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		db:     db,
		logger: logger,
	}
}

// Run applies every corrective step in order. Any failure aborts immediately;
// each step is independently idempotent, so the operator recovers by
// re-running the whole provisioning flow.
func (r *Reconciler) Run(ctx context.Context, rootPassword string) error {
	if err := r.ensureDatabase(ctx); err != nil {
		return apperrors.Reconcile(err)
	}
	if err := r.ensureSchema(ctx); err != nil {
		return apperrors.Reconcile(err)
	}
	if err := r.syncServiceAccounts(ctx, rootPassword); err != nil {
		return apperrors.Reconcile(err)
	}
	return nil
}

func (r *Reconciler) ensureDatabase(ctx context.Context) error {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM pg_database WHERE datname = $1", secondaryDatabase).Scan(&one)
	switch {
	case err == nil:
		r.logger.Debug("database already exists", slog.String("database", secondaryDatabase))
		return nil
	case apperrors.Is(err, sql.ErrNoRows):
		// CREATE DATABASE accepts no bind parameters and cannot run inside a
		// transaction block.
		stmt := fmt.Sprintf("CREATE DATABASE %s", pq.QuoteIdentifier(secondaryDatabase))
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create database %s: %w", secondaryDatabase, err)
		}
		r.logger.Info("database created", slog.String("database", secondaryDatabase))
		return nil
	default:
		return fmt.Errorf("check database %s: %w", secondaryDatabase, err)
	}
}

func (r *Reconciler) ensureSchema(ctx context.Context) error {
	stmt := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pq.QuoteIdentifier(analyticsSchema))
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create schema %s: %w", analyticsSchema, err)
	}
	r.logger.Debug("schema ensured", slog.String("schema", analyticsSchema))
	return nil
}

func (r *Reconciler) syncServiceAccounts(ctx context.Context, rootPassword string) error {
	for _, role := range serviceAccounts {
		var exists bool
		err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM pg_roles WHERE rolname = $1)", role).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check role %s: %w", role, err)
		}
		if !exists {
			r.logger.Debug("role not created yet, credential sync deferred to a later run",
				slog.String("role", role))
			continue
		}

		// ALTER ROLE does not accept the password as a bind parameter.
		stmt := fmt.Sprintf("ALTER ROLE %s WITH PASSWORD %s",
			pq.QuoteIdentifier(role), pq.QuoteLiteral(rootPassword))
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sync credential for role %s: %w", role, err)
		}
		r.logger.Info("role credential synced", slog.String("role", role))
	}
	return nil
}
