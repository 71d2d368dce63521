// Package main provides the entry point for the bootstrap command.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/groundwork/internal/commands"
	apperrors "github.com/allisson/groundwork/internal/errors"
)

func main() {
	cmd := &cli.Command{
		Name:    "bootstrap",
		Usage:   "Download the deployment assets and provision a fresh install",
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "profile",
				Aliases: []string{"p"},
				Value:   "core",
				Usage:   "Deployment profile: 'core' or 'full'",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Value:   false,
				Usage:   "Skip the confirmation prompt",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return commands.RunBootstrap(ctx, cmd.String("profile"), cmd.Bool("yes"), commands.DefaultIO())
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, apperrors.FatalLine(err))
		os.Exit(1)
	}
}
