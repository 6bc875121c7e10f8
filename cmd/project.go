package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/nullslate/nullslate/pkg/config"
	"github.com/nullslate/nullslate/pkg/toolchain"
)

type planFunc func(root string, kind toolchain.Kind, manager string) []toolchain.Command

var (
	planDev   planFunc = toolchain.DevPlan
	planBuild planFunc = toolchain.BuildPlan
)

// runProject detects the project around the working directory and runs the
// commands plan returns for it.
func runProject(ctx context.Context, cmd *cli.Command, plan planFunc) error {
	logger := newLogger(cmd)

	cfg, cfgPath, err := config.Resolve(cmd.String("config"))
	if err != nil {
		return err
	}
	if cfgPath != "" {
		logger.Debug("loaded config", "path", cfgPath)
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	root, kind, err := toolchain.Detect(wd)
	if err != nil {
		return err
	}
	logger.Info("detected project", "kind", kind, "root", root)

	commands := plan(root, kind, cfg.Install.Manager)
	for _, c := range commands {
		logger.Debug("planned", "dir", c.Dir, "command", c.String())
	}

	return toolchain.Execute(ctx, toolchain.NewExecRunner(), commands, os.Stdin, os.Stdout, os.Stderr)
}
