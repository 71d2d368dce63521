package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/groundwork/internal/config"
	"github.com/allisson/groundwork/internal/secrets"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		LogLevel:            "error",
		EnvFile:             filepath.Join(dir, ".env"),
		ComposeFile:         filepath.Join(dir, "docker-compose.yml"),
		GatewayTemplate:     filepath.Join(dir, "gateway.tmpl.yml"),
		GatewayOutput:       filepath.Join(dir, "gateway.yml"),
		DBHost:              "localhost",
		DBPort:              5432,
		ObjectStoreEndpoint: "localhost:9000",
		ObjectStoreBucket:   "assets",
		ServiceWaitTimeout:  60,
		RoleWaitTimeout:     600,
	}
}

func TestContainerSingletons(t *testing.T) {
	container := NewContainer(testConfig(t))

	assert.Same(t, container.Logger(), container.Logger())
	assert.Same(t, container.Store(), container.Store())
	assert.Same(t, container.Renderer(), container.Renderer())
	assert.Same(t, container.Compose(), container.Compose())
	assert.Same(t, container.Provisioner(), container.Provisioner())
	assert.Same(t, container.Downloader(), container.Downloader())
}

func TestContainerShutdown_NothingOpen(t *testing.T) {
	container := NewContainer(testConfig(t))
	assert.NoError(t, container.Shutdown(context.Background()))
}

func TestLayoutEnsurerReadsStoreSettings(t *testing.T) {
	cfg := testConfig(t)
	container := NewContainer(cfg)

	dir := t.TempDir()
	store := container.Store()
	store.SetValue(secrets.KeyFunctionsDir, filepath.Join(dir, "functions"))
	store.SetValue(secrets.KeySnippetsDir, filepath.Join(dir, "snippets"))

	require.NoError(t, container.Layout().Ensure())
	assert.FileExists(t, filepath.Join(dir, "functions", "main", "index.ts"))
	assert.FileExists(t, filepath.Join(dir, "snippets", ".keep"))
}

func TestDataStoreRequiresConnection(t *testing.T) {
	container := NewContainer(testConfig(t))
	ds := container.DataStore()

	err := ds.RolesReady(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "administrative connection not open")

	err = ds.Reconcile(context.Background(), "rootpw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "administrative connection not open")
}
