// Package secrets implements the persisted secret/config store for the
// platform. The store owns a single newline-delimited KEY=value file: prior
// state is loaded at process start, missing or structurally invalid values
// are filled in, and the merged result is written back atomically. All other
// components read the resolved values, never the file.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	apperrors "github.com/allisson/groundwork/internal/errors"
	"github.com/allisson/groundwork/internal/token"
)

// Store holds the merged secret set for one provisioning run.
type Store struct {
	path   string
	values map[string]string
	logger *slog.Logger
}

// NewStore creates a store backed by the env file at path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		values: make(map[string]string),
		logger: logger,
	}
}

// Load reads prior persisted state. An absent file is an empty state, not an
// error: the first run starts from nothing.
func (s *Store) Load() error {
	values, err := godotenv.Read(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("no prior state, starting fresh", slog.String("path", s.path))
			s.values = make(map[string]string)
			return nil
		}
		return apperrors.Wrapf(err, "failed to read state file %s", s.path)
	}

	s.values = values
	s.logger.Info("loaded prior state",
		slog.String("path", s.path),
		slog.Int("keys", len(values)),
	)
	return nil
}

// Resolve returns the value for key, preferring an ambient environment
// override, then the persisted value, then a freshly generated one. The
// resolved value is recorded so Persist writes it back.
func (s *Store) Resolve(key string, generate func() (string, error)) (string, error) {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		s.values[key] = value
		return value, nil
	}
	if value, ok := s.values[key]; ok && value != "" {
		return value, nil
	}

	value, err := generate()
	if err != nil {
		return "", apperrors.Wrapf(err, "failed to generate value for %s", key)
	}
	s.values[key] = value
	s.logger.Debug("generated value", slog.String("key", key))
	return value, nil
}

// ResolveToken resolves an issued credential stored under both a primary key
// and a compatibility alias. Environment and persisted candidates are only
// accepted when structurally well-formed; legacy random strings are replaced
// by freshly issued tokens. The alias always mirrors the primary afterwards.
func (s *Store) ResolveToken(key, alias string, issue func() (string, error)) (string, error) {
	candidate, fromEnv := os.LookupEnv(key)
	if !fromEnv || candidate == "" {
		candidate = s.values[key]
		if candidate == "" {
			// Older state files carried only the compatibility name.
			candidate = s.values[alias]
		}
	}

	if candidate != "" && !token.IsWellFormed(candidate) {
		s.logger.Info("replacing malformed credential", slog.String("key", key))
		candidate = ""
	}

	if candidate == "" {
		issued, err := issue()
		if err != nil {
			return "", apperrors.Wrapf(err, "failed to issue credential for %s", key)
		}
		candidate = issued
		s.logger.Debug("issued credential", slog.String("key", key))
	}

	s.values[key] = candidate
	s.values[alias] = candidate
	return candidate, nil
}

// Value returns the current value for key.
func (s *Store) Value(key string) (string, bool) {
	value, ok := s.values[key]
	return value, ok
}

// SetValue records a value directly, bypassing resolution.
func (s *Store) SetValue(key, value string) {
	s.values[key] = value
}

// Persist writes the full merged state back, replacing the prior file. The
// write is atomic: content goes to a temp file in the same directory which
// is then renamed over the destination. godotenv marshals keys in sorted
// order, so an unchanged state persists byte-identically.
func (s *Store) Persist() error {
	content, err := godotenv.Marshal(s.values)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal state")
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".env.tmp-*")
	if err != nil {
		return apperrors.Wrapf(err, "failed to create temp file in %s", dir)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := fmt.Fprintln(tmp, content); err != nil {
		tmp.Close()
		return apperrors.Wrap(err, "failed to write state")
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return apperrors.Wrap(err, "failed to set state file mode")
	}
	if err := tmp.Close(); err != nil {
		return apperrors.Wrap(err, "failed to close state file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return apperrors.Wrapf(err, "failed to replace %s", s.path)
	}

	s.logger.Info("persisted state",
		slog.String("path", s.path),
		slog.Int("keys", len(s.values)),
	)
	return nil
}
