package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	apperrors "github.com/allisson/groundwork/internal/errors"
)

const (
	// downloadConcurrency bounds parallel fetches; downloadRate paces request
	// starts so repeated bootstraps cannot hammer the asset host.
	downloadConcurrency = 4
	downloadRate        = rate.Limit(4)
)

// Downloader fetches deployment asset files from the configured base location
// into the install directory.
type Downloader struct {
	baseURL    string
	installDir string
	client     *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewDownloader returns a Downloader rooted at installDir.
func NewDownloader(baseURL, installDir string, client *http.Client, logger *slog.Logger) *Downloader {
	return &Downloader{
		baseURL:    baseURL,
		installDir: installDir,
		client:     client,
		limiter:    rate.NewLimiter(downloadRate, downloadConcurrency),
		logger:     logger,
	}
}

// Fetch downloads every named file, creating parent directories as needed.
// Each file is written to a temp file and renamed into place, so an
// interrupted bootstrap never leaves a truncated asset behind. Any single
// failure fails the whole fetch: a partial asset set cannot be provisioned
// from.
func (d *Downloader) Fetch(ctx context.Context, files []string) error {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(downloadConcurrency)

	for _, file := range files {
		file := file
		group.Go(func() error {
			return d.fetch(ctx, file)
		})
	}

	if err := group.Wait(); err != nil {
		return apperrors.Environment(err)
	}
	return nil
}

func (d *Downloader) fetch(ctx context.Context, file string) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}

	source, err := url.JoinPath(d.baseURL, file)
	if err != nil {
		return apperrors.Wrapf(err, "build source url for %s", file)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return apperrors.Wrapf(err, "build request for %s", file)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return apperrors.Wrapf(err, "download %s", file)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("download %s: %s", file, resp.Status)
	}

	dest := filepath.Join(d.installDir, file)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return apperrors.Wrapf(err, "create directory for %s", file)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return apperrors.Wrapf(err, "create temp file for %s", file)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return apperrors.Wrapf(err, "write %s", file)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.Wrapf(err, "close %s", file)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return apperrors.Wrapf(err, "place %s", file)
	}

	d.logger.Info("asset downloaded",
		slog.String("file", file),
		slog.String("dest", dest),
	)
	return nil
}
