package readiness

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"

	"github.com/lib/pq"

	"github.com/allisson/groundwork/internal/database"
)

// DatabasePing probes the data store with a one-shot connection.
func DatabasePing(cfg database.Config) Probe {
	return func(ctx context.Context) error {
		return database.Ping(ctx, cfg)
	}
}

// HTTPHealth probes an HTTP health endpoint; any 2xx status is ready.
func HTTPHealth(client *http.Client, url string) Probe {
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return fmt.Errorf("health endpoint returned %s", resp.Status)
		}
		return nil
	}
}

// RoleCount probes for the data store's own bootstrap having created every
// named role. A partial set is as not-ready as none: the count must match
// exactly before dependent services may start.
func RoleCount(db *sql.DB, roles []string) Probe {
	return func(ctx context.Context) error {
		var count int
		row := db.QueryRowContext(ctx, "SELECT count(*) FROM pg_roles WHERE rolname = ANY($1)", pq.Array(roles))
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("count bootstrap roles: %w", err)
		}
		if count != len(roles) {
			return fmt.Errorf("%d of %d bootstrap roles present", count, len(roles))
		}
		return nil
	}
}
