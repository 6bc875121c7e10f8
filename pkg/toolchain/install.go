package toolchain

import (
	"context"
	"fmt"
	"strings"

	"github.com/nullslate/nullslate/pkg/events"
)

const stepInstall = "install"

// InstallConfig selects the package manager and the packages refreshed to
// their latest release after the install.
type InstallConfig struct {
	Manager string
	Latest  []string
}

// Install runs "<manager> install" in dir, then "<manager> add" for every
// latest package. Failures are reported to handler as warnings carrying the
// command to run by hand; Install reports whether everything succeeded.
func Install(ctx context.Context, r Runner, dir string, cfg InstallConfig, handler events.Handler) bool {
	if handler == nil {
		handler = events.Discard
	}

	ok := true

	if err := run(ctx, r, dir, cfg.Manager, "install"); err != nil {
		ok = false
		handler.Handle(events.Event{
			Level:   events.Warning,
			Step:    stepInstall,
			Message: fmt.Sprintf("%s install failed", cfg.Manager),
			Hint:    fmt.Sprintf("run it manually with: cd %s && %s install", dir, cfg.Manager),
			Error:   err,
		})
	}

	if len(cfg.Latest) == 0 {
		return ok
	}

	args := []string{"add"}
	for _, pkg := range cfg.Latest {
		args = append(args, pkg+"@latest")
	}

	if err := run(ctx, r, dir, cfg.Manager, args...); err != nil {
		ok = false
		handler.Handle(events.Event{
			Level:   events.Warning,
			Step:    stepInstall,
			Message: "failed to update packages to their latest release",
			Hint:    fmt.Sprintf("run it manually with: cd %s && %s %s", dir, cfg.Manager, strings.Join(args, " ")),
			Error:   err,
		})
	}

	return ok
}

func run(ctx context.Context, r Runner, dir, name string, args ...string) error {
	res, err := r.Run(ctx, name, args, RunOpts{Dir: dir})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &ExitError{Name: name, Code: res.ExitCode, Stderr: strings.TrimSpace(res.Stderr)}
	}
	return nil
}

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Name   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Name, e.Code, e.Stderr)
}
