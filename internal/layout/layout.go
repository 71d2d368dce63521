// Package layout creates the on-disk runtime directories the platform
// containers mount, seeding them with default content only when absent.
package layout

import (
	_ "embed"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "github.com/allisson/groundwork/internal/errors"
)

//go:embed assets/functions/main/index.ts
var mainFunction []byte

//go:embed assets/functions/hello/index.ts
var helloFunction []byte

// Layout ensures the required runtime directory tree exists. Existing files
// are never overwritten: operator edits to function handlers survive re-runs.
type Layout struct {
	functionsDir string
	snippetsDir  string
	logger       *slog.Logger
}

// New returns a Layout for the given functions and snippets directories.
func New(functionsDir, snippetsDir string, logger *slog.Logger) *Layout {
	return &Layout{
		functionsDir: functionsDir,
		snippetsDir:  snippetsDir,
		logger:       logger,
	}
}

// Ensure creates every required path that is missing, writing the embedded
// default content for files.
func (l *Layout) Ensure() error {
	entries := []struct {
		path    string
		content []byte
	}{
		{filepath.Join(l.functionsDir, "main", "index.ts"), mainFunction},
		{filepath.Join(l.functionsDir, "hello", "index.ts"), helloFunction},
		{filepath.Join(l.snippetsDir, ".keep"), nil},
	}
	for _, entry := range entries {
		created, err := writeIfAbsent(entry.path, entry.content)
		if err != nil {
			return apperrors.Wrapf(err, "ensure runtime asset %s", entry.path)
		}
		if created {
			l.logger.Info("created default runtime asset", slog.String("path", entry.path))
		}
	}
	return nil
}

func writeIfAbsent(path string, content []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
