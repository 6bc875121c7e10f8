package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/nullslate/nullslate/pkg/version"
)

var Version = version.String()

func Execute(ctx context.Context, args []string) error {
	app := &cli.Command{
		Name:  "nullslate",
		Usage: "CLI for the nullslate dev tooling ecosystem",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file path (default: $XDG_CONFIG_HOME/nullslate/config.toml)",
				Sources: cli.EnvVars("NULLSLATE_CONFIG"),
			},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "print debug output"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only print errors"},
		},
		Commands: []*cli.Command{
			{
				Name:  "version",
				Usage: "print version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Printf("nullslate version %s\n", Version)
					return nil
				},
			},
			initCmd(),
			{
				Name:  "dev",
				Usage: "Start the development server of the project in the current directory",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runProject(ctx, cmd, planDev)
				},
			},
			{
				Name:  "build",
				Usage: "Build the project in the current directory",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runProject(ctx, cmd, planBuild)
				},
			},
		},
	}

	err := app.Run(ctx, args)
	if err != nil {
		printCancel(os.Stderr, err.Error())
	}
	return err
}
