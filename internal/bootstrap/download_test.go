package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	apperrors "github.com/allisson/groundwork/internal/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// assetServer serves the given path -> content map under /deploy and returns
// 404 for anything else. The client is closed with the test so no keepalive
// goroutines survive for the leak detector to find.
func assetServer(t *testing.T, assets map[string]string) (baseURL string, client *http.Client) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content, ok := assets[strings.TrimPrefix(r.URL.Path, "/deploy/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(content))
	}))
	client = server.Client()
	t.Cleanup(func() {
		client.CloseIdleConnections()
		server.Close()
	})
	return server.URL + "/deploy", client
}

func TestFetch(t *testing.T) {
	t.Run("downloads every file into the install tree", func(t *testing.T) {
		baseURL, client := assetServer(t, map[string]string{
			"docker-compose.yml":      "services: {}\n",
			"config/gateway.tmpl.yml": "key: $PLATFORM_ANON_KEY\n",
			"config/Caddyfile":        "localhost\n",
		})
		installDir := t.TempDir()
		downloader := NewDownloader(baseURL, installDir, client, testLogger())

		require.NoError(t, downloader.Fetch(context.Background(), ProfileCore.Files()))

		compose, err := os.ReadFile(filepath.Join(installDir, "docker-compose.yml"))
		require.NoError(t, err)
		assert.Equal(t, "services: {}\n", string(compose))

		template, err := os.ReadFile(filepath.Join(installDir, "config", "gateway.tmpl.yml"))
		require.NoError(t, err)
		assert.Equal(t, "key: $PLATFORM_ANON_KEY\n", string(template))

		assert.FileExists(t, filepath.Join(installDir, "config", "Caddyfile"))
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		baseURL, client := assetServer(t, map[string]string{
			"docker-compose.yml": "services: {}\n",
		})
		installDir := t.TempDir()
		downloader := NewDownloader(baseURL, installDir, client, testLogger())

		require.NoError(t, downloader.Fetch(context.Background(), []string{"docker-compose.yml"}))

		leftovers, err := filepath.Glob(filepath.Join(installDir, ".download-*"))
		require.NoError(t, err)
		assert.Empty(t, leftovers)
	})

	t.Run("missing file fails the whole fetch", func(t *testing.T) {
		baseURL, client := assetServer(t, map[string]string{
			"docker-compose.yml": "services: {}\n",
		})
		installDir := t.TempDir()
		downloader := NewDownloader(baseURL, installDir, client, testLogger())

		err := downloader.Fetch(context.Background(), ProfileCore.Files())
		require.Error(t, err)
		assert.Equal(t, apperrors.CategoryEnvironment, apperrors.CategoryOf(err))
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("unreachable host fails the fetch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		baseURL := server.URL
		server.Close()

		downloader := NewDownloader(baseURL, t.TempDir(), &http.Client{}, testLogger())
		err := downloader.Fetch(context.Background(), []string{"docker-compose.yml"})
		require.Error(t, err)
		assert.Equal(t, apperrors.CategoryEnvironment, apperrors.CategoryOf(err))
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		baseURL, client := assetServer(t, map[string]string{
			"docker-compose.yml": "services: {}\n",
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		downloader := NewDownloader(baseURL, t.TempDir(), client, testLogger())
		assert.Error(t, downloader.Fetch(ctx, []string{"docker-compose.yml"}))
	})
}
