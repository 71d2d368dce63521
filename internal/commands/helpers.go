// Package commands contains the CLI command implementations for the
// provisioning and bootstrap entry points.
package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"io"
	"os"

	"github.com/allisson/groundwork/internal/app"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// confirm prints the prompt and reads one reply line. Only an explicit y/Y
// confirms; any other reply, including end of input, declines.
func confirm(io IOTuple, prompt string) (bool, error) {
	if _, err := fmt.Fprintf(io.Writer, "%s [y/N]: ", prompt); err != nil {
		return false, err
	}

	scanner := bufio.NewScanner(io.Reader)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return false, err
		}
		return false, nil
	}

	reply := strings.TrimSpace(scanner.Text())
	return reply == "y" || reply == "Y", nil
}
