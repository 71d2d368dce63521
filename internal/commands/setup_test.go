package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/groundwork/internal/errors"
	"github.com/allisson/groundwork/internal/provision"
	"github.com/allisson/groundwork/internal/secrets"
)

const gatewayTemplateFixture = `services:
  - name: anon
    key: $PLATFORM_ANON_KEY
  - name: service
    key: $PLATFORM_SERVICE_KEY
basicAuth:
  username: $DASHBOARD_USERNAME
  password: $DASHBOARD_PASSWORD
`

// configureRun points every path setting at dir and clears ambient overrides
// for the managed keys, so each test starts from a fresh deterministic state.
func configureRun(t *testing.T, dir string) {
	t.Helper()

	for _, key := range secrets.RequiredKeys() {
		t.Setenv(key, "")
	}
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("ENV_FILE", filepath.Join(dir, ".env"))
	t.Setenv("GATEWAY_TEMPLATE", filepath.Join(dir, "gateway.tmpl.yml"))
	t.Setenv("GATEWAY_OUTPUT", filepath.Join(dir, "gateway.yml"))
	t.Setenv(secrets.KeyFunctionsDir, filepath.Join(dir, "volumes", "functions"))
	t.Setenv(secrets.KeySnippetsDir, filepath.Join(dir, "volumes", "snippets"))

	err := os.WriteFile(filepath.Join(dir, "gateway.tmpl.yml"), []byte(gatewayTemplateFixture), 0o644)
	require.NoError(t, err)
}

func TestRunSetup(t *testing.T) {
	ctx := context.Background()

	t.Run("config-only run generates state, layout, and gateway config", func(t *testing.T) {
		dir := t.TempDir()
		configureRun(t, dir)

		err := RunSetup(ctx, provision.Options{ConfigOnly: true})
		require.NoError(t, err)

		state, err := godotenv.Read(filepath.Join(dir, ".env"))
		require.NoError(t, err)
		for _, key := range secrets.RequiredKeys() {
			require.Contains(t, state, key)
		}
		require.Equal(t, state[secrets.KeyAnonToken], state[secrets.KeyAnonTokenAlias])
		require.Equal(t, "admin", state[secrets.KeyDashboardUsername])

		rendered, err := os.ReadFile(filepath.Join(dir, "gateway.yml"))
		require.NoError(t, err)
		require.NotContains(t, string(rendered), "$PLATFORM_ANON_KEY")
		require.NotContains(t, string(rendered), "$DASHBOARD_PASSWORD")
		require.Contains(t, string(rendered), state[secrets.KeyAnonToken])
		require.Contains(t, string(rendered), "username: admin")

		require.FileExists(t, filepath.Join(dir, "volumes", "functions", "main", "index.ts"))
		require.FileExists(t, filepath.Join(dir, "volumes", "functions", "hello", "index.ts"))
		require.FileExists(t, filepath.Join(dir, "volumes", "snippets", ".keep"))
	})

	t.Run("second run persists byte-identical state", func(t *testing.T) {
		dir := t.TempDir()
		configureRun(t, dir)

		require.NoError(t, RunSetup(ctx, provision.Options{ConfigOnly: true}))
		first, err := os.ReadFile(filepath.Join(dir, ".env"))
		require.NoError(t, err)

		require.NoError(t, RunSetup(ctx, provision.Options{ConfigOnly: true}))
		second, err := os.ReadFile(filepath.Join(dir, ".env"))
		require.NoError(t, err)

		require.Equal(t, string(first), string(second))
	})

	t.Run("environment override wins over persisted state", func(t *testing.T) {
		dir := t.TempDir()
		configureRun(t, dir)

		require.NoError(t, RunSetup(ctx, provision.Options{ConfigOnly: true}))
		t.Setenv(secrets.KeyDashboardPassword, "operator-chosen")
		require.NoError(t, RunSetup(ctx, provision.Options{ConfigOnly: true}))

		state, err := godotenv.Read(filepath.Join(dir, ".env"))
		require.NoError(t, err)
		require.Equal(t, "operator-chosen", state[secrets.KeyDashboardPassword])
	})

	t.Run("invalid configuration", func(t *testing.T) {
		dir := t.TempDir()
		configureRun(t, dir)
		t.Setenv("LOG_LEVEL", "verbose")

		err := RunSetup(ctx, provision.Options{ConfigOnly: true})
		require.Error(t, err)
		require.Equal(t, apperrors.CategoryEnvironment, apperrors.CategoryOf(err))
		require.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("missing gateway template", func(t *testing.T) {
		dir := t.TempDir()
		configureRun(t, dir)
		require.NoError(t, os.Remove(filepath.Join(dir, "gateway.tmpl.yml")))

		err := RunSetup(ctx, provision.Options{ConfigOnly: true})
		require.Error(t, err)
		require.Equal(t, apperrors.CategoryEnvironment, apperrors.CategoryOf(err))
		require.Contains(t, err.Error(), "not found")
	})
}
