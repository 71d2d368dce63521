// Package errors provides categorized fatal errors for the provisioning run.
// Every abort path is classified so the entry point can print a single
// categorized line before exiting; categories express what went wrong at the
// platform level rather than which statement or syscall failed.
package errors

import (
	"errors"
	"fmt"
)

// Category classifies a fatal provisioning error.
type Category string

const (
	// CategoryEnvironment indicates a required external capability is absent
	// or unusable (container runtime, template file, entropy source). These
	// are detected eagerly, before any state is mutated.
	CategoryEnvironment Category = "environment"

	// CategoryReadiness indicates a dependency failed to become observable-
	// ready within its polling budget.
	CategoryReadiness Category = "readiness"

	// CategoryReconcile indicates a corrective statement against the data
	// store failed; no partial application is assumed safe.
	CategoryReconcile Category = "reconcile"
)

// CategorizedError attaches a Category to an underlying error while keeping
// the error chain intact for errors.Is/As.
type CategorizedError struct {
	category Category
	err      error
}

// Error implements the error interface.
func (e *CategorizedError) Error() string {
	return fmt.Sprintf("%s: %v", e.category, e.err)
}

// Unwrap returns the underlying error.
func (e *CategorizedError) Unwrap() error {
	return e.err
}

// Category returns the classification of this error.
func (e *CategorizedError) Category() Category {
	return e.category
}

// Environment wraps err as an environment-category fatal error.
func Environment(err error) error {
	if err == nil {
		return nil
	}
	return &CategorizedError{category: CategoryEnvironment, err: err}
}

// Environmentf creates a new environment-category fatal error.
func Environmentf(format string, args ...any) error {
	return &CategorizedError{category: CategoryEnvironment, err: fmt.Errorf(format, args...)}
}

// Readiness wraps err as a readiness-category fatal error.
func Readiness(err error) error {
	if err == nil {
		return nil
	}
	return &CategorizedError{category: CategoryReadiness, err: err}
}

// Reconcile wraps err as a reconcile-category fatal error.
func Reconcile(err error) error {
	if err == nil {
		return nil
	}
	return &CategorizedError{category: CategoryReconcile, err: err}
}

// CategoryOf returns the category of the first CategorizedError in err's
// tree, or the empty string when err carries no category.
func CategoryOf(err error) Category {
	var categorized *CategorizedError
	if errors.As(err, &categorized) {
		return categorized.Category()
	}
	return ""
}

// FatalLine formats the single-line message printed to the error stream
// before a nonzero exit.
func FatalLine(err error) string {
	var categorized *CategorizedError
	if errors.As(err, &categorized) {
		return fmt.Sprintf("%s error: %v", categorized.Category(), categorized.Unwrap())
	}
	return fmt.Sprintf("error: %v", err)
}

// New creates a new error with the given message.
// This is a convenience wrapper around errors.New for consistency.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the error category.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context while preserving the error chain.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
