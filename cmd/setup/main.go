// Package main provides the entry point for the provisioning command.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/groundwork/internal/commands"
	apperrors "github.com/allisson/groundwork/internal/errors"
	"github.com/allisson/groundwork/internal/provision"
)

func main() {
	cmd := &cli.Command{
		Name:    "setup",
		Usage:   "Provision the platform: secrets, config files, services, and data store",
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "config-only",
				Value: false,
				Usage: "Generate secrets and config files without starting services",
			},
			&cli.BoolFlag{
				Name:  "recreate",
				Value: false,
				Usage: "Force recreation of all containers on startup",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return commands.RunSetup(ctx, provision.Options{
				ConfigOnly: cmd.Bool("config-only"),
				Recreate:   cmd.Bool("recreate"),
			})
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, apperrors.FatalLine(err))
		os.Exit(1)
	}
}
