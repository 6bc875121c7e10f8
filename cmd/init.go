package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/nullslate/nullslate/pkg/config"
	"github.com/nullslate/nullslate/pkg/events"
	"github.com/nullslate/nullslate/pkg/features"
	"github.com/nullslate/nullslate/pkg/scaffold"
	"github.com/nullslate/nullslate/pkg/steps"
	"github.com/nullslate/nullslate/pkg/toolchain"
	"github.com/nullslate/nullslate/pkg/vcs"
	"github.com/nullslate/nullslate/pkg/version"
)

func initCmd() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Scaffold a new project",
		ArgsUsage: "[name]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Usage: "project type: app, lib or fullstack"},
			&cli.BoolFlag{Name: "fullstack", Usage: "shorthand for --type fullstack"},
			&cli.BoolFlag{Name: "lib", Usage: "shorthand for --type lib"},
			&cli.BoolFlag{Name: "docs", Usage: "include the MDX documentation system"},
			&cli.BoolFlag{Name: "no-auth", Usage: "skip Auth.js authentication setup"},
			&cli.StringFlag{Name: "db", Value: "none", Usage: "database: postgres or none"},
			&cli.StringFlag{Name: "lang", Value: string(features.TypeScript), Usage: "library language: typescript or javascript"},
			&cli.BoolFlag{Name: "react", Usage: "library: include React components"},
			&cli.BoolFlag{Name: "css", Usage: "library: include stylesheets"},
			&cli.BoolFlag{Name: "testing", Usage: "library: include a test setup"},
			&cli.StringFlag{Name: "path", Usage: "output directory (default: ./<name>)"},
			&cli.BoolFlag{Name: "no-git", Usage: "skip git initialization"},
			&cli.BoolFlag{Name: "no-install", Usage: "skip dependency installation"},
			&cli.StringFlag{
				Name:    "template",
				Aliases: []string{"t"},
				Usage:   "template repository URL or local path",
				Sources: cli.EnvVars("NULLSLATE_TEMPLATE"),
			},
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "accept all defaults without prompting"},
		},
		Action: Init,
	}
}

// initFlags holds the init options as given on the command line.
type initFlags struct {
	Name      string
	Type      string
	Fullstack bool
	Lib       bool
	Docs      bool
	NoAuth    bool
	DB        string
	Lang      string
	LangSet   bool
	React     bool
	CSS       bool
	Testing   bool
	Path      string
	NoGit     bool
	NoInstall bool
	Template  string
	Yes       bool
}

func readInitFlags(cmd *cli.Command) initFlags {
	return initFlags{
		Name:      cmd.Args().First(),
		Type:      cmd.String("type"),
		Fullstack: cmd.Bool("fullstack"),
		Lib:       cmd.Bool("lib"),
		Docs:      cmd.Bool("docs"),
		NoAuth:    cmd.Bool("no-auth"),
		DB:        cmd.String("db"),
		Lang:      cmd.String("lang"),
		LangSet:   cmd.IsSet("lang"),
		React:     cmd.Bool("react"),
		CSS:       cmd.Bool("css"),
		Testing:   cmd.Bool("testing"),
		Path:      cmd.String("path"),
		NoGit:     cmd.Bool("no-git"),
		NoInstall: cmd.Bool("no-install"),
		Template:  cmd.String("template"),
		Yes:       cmd.Bool("yes"),
	}
}

// flavor returns the requested project flavor. explicit is false when the
// flags leave it to the default.
func (f initFlags) flavor() (flavor features.Flavor, explicit bool, err error) {
	if f.Fullstack && f.Lib {
		return "", false, errors.New("--fullstack and --lib are mutually exclusive")
	}

	var requested []features.Flavor
	if f.Type != "" {
		t, err := features.ParseFlavor(f.Type)
		if err != nil {
			return "", false, err
		}
		requested = append(requested, t)
	}
	if f.Fullstack {
		requested = append(requested, features.FlavorFullstack)
	}
	if f.Lib {
		requested = append(requested, features.FlavorLib)
	}

	if len(requested) == 0 {
		return features.FlavorApp, false, nil
	}
	for _, r := range requested[1:] {
		if r != requested[0] {
			return "", false, fmt.Errorf("conflicting project types %s and %s", requested[0], r)
		}
	}
	return requested[0], true, nil
}

// selection applies the feature flags over the flavor's defaults.
func (f initFlags) selection(spec *features.FlavorSpec) (features.Selection, error) {
	var database bool
	switch f.DB {
	case "", "none":
	case "postgres":
		database = true
	default:
		return features.Selection{}, fmt.Errorf("unknown database %q (expected postgres or none)", f.DB)
	}

	language := features.TypeScript
	if f.Lang != "" {
		l, err := features.ParseLanguage(f.Lang)
		if err != nil {
			return features.Selection{}, err
		}
		language = l
	}

	on := map[features.Toggle]bool{
		features.Docs:     f.Docs,
		features.Database: database,
		features.React:    f.React,
		features.CSS:      f.CSS,
		features.Testing:  f.Testing,
	}
	off := map[features.Toggle]bool{
		features.Auth: f.NoAuth,
	}

	enabled := make([]features.Toggle, 0, len(spec.Features))
	for _, feat := range spec.Features {
		if (feat.Default || on[feat.Toggle]) && !off[feat.Toggle] {
			enabled = append(enabled, feat.Toggle)
		}
	}

	return features.NewSelection(features.Flavor(spec.Name), language, enabled...), nil
}

// offers reports whether the flavor lets the user choose t.
func offers(spec *features.FlavorSpec, t features.Toggle) bool {
	for _, f := range spec.Options() {
		if f.Toggle == t {
			return true
		}
	}
	return false
}

// checkTarget fails when path exists in any form.
func checkTarget(path string) error {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return targetExistsError(path)
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("checking target directory: %w", err)
	}
}

func Init(ctx context.Context, cmd *cli.Command) error {
	return runInit(ctx, cmd, readInitFlags(cmd))
}

func runInit(ctx context.Context, cmd *cli.Command, f initFlags) error {
	logger := newLogger(cmd)
	out := os.Stdout
	interactive := !f.Yes

	if interactive {
		printIntro(out)
	}

	name := f.Name
	if name == "" {
		if f.Yes {
			return ErrNameRequired
		}
		var err error
		if name, err = promptName(ctx); err != nil {
			return err
		}
	}
	if err := validateProjectName(name); err != nil {
		return err
	}

	dest := f.Path
	if dest == "" {
		dest = name
	}
	if err := checkTarget(dest); err != nil {
		return err
	}

	cfg, cfgPath, err := config.Resolve(cmd.String("config"))
	if err != nil {
		return err
	}
	if cfgPath != "" {
		logger.Debug("loaded config", "path", cfgPath)
	}

	flavor, explicit, err := f.flavor()
	if err != nil {
		return err
	}
	if interactive && !explicit {
		if flavor, err = promptFlavor(ctx, flavor); err != nil {
			return err
		}
	}

	spec, err := features.Lookup(flavor)
	if err != nil {
		return err
	}

	sel, err := f.selection(spec)
	if err != nil {
		return err
	}
	if interactive {
		if spec.HasVariant("language") && !f.LangSet {
			if sel.Language, err = promptLanguage(ctx, sel.Language); err != nil {
				return err
			}
		}
		if sel, err = promptFeatures(ctx, spec, sel); err != nil {
			return err
		}
	}
	if f.DB == "postgres" && !offers(spec, features.Database) {
		logger.Warn("database is not available for this project type", "type", flavor)
	}
	logger.Debug("resolved selection", "type", flavor, "features", sel.EnabledList(), "language", sel.Language)

	source := f.Template
	if source == "" {
		source = cfg.TemplateFor(flavor)
	}

	var tmpl *scaffold.Template
	err = task(ctx, out, "Fetching template...", "Template fetched", func(ctx context.Context) error {
		t, err := scaffold.Open(ctx, source)
		tmpl = t
		return err
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := tmpl.Close(); err != nil {
			logger.Warn("failed to remove template clone", "err", err)
		}
	}()
	if dir := tmpl.Dir(); dir != "" {
		logger.Debug("template ready", "source", source, "dir", dir)
	}

	if err := tmpl.Compatible(version.Current()); err != nil {
		return err
	}

	// Info events wait for the running spinner; debug events go straight to
	// the logger. Warnings and errors are kept for the summary.
	printer := newLogPrinter(os.Stderr, printerMinLevel(cmd), events.Info)
	held := &heldEvents{}
	collector := events.NewCollector(events.Tee(debugEvents(logger), held))
	step := func(title, done string, fn func(context.Context) error) error {
		err := task(ctx, out, title, done, fn)
		held.Flush(printer)
		return err
	}

	var outcome *steps.Outcome
	err = step("Processing files...", "Files processed", func(ctx context.Context) error {
		o, err := steps.Scaffold(ctx, steps.Params{
			Template:    tmpl,
			Dest:        dest,
			ProjectName: name,
			Selection:   sel,
			Logger:      logger,
		}, collector)
		outcome = o
		return err
	})
	if err != nil {
		return err
	}

	if !f.NoGit {
		_ = step("Initializing git...", "Git initialized", func(ctx context.Context) error {
			if !initGit(dest, cfg, collector) {
				return errIncomplete
			}
			return nil
		})
	}

	installed := false
	if !f.NoInstall {
		appDir := filepath.Join(dest, filepath.FromSlash(outcome.AppDir))
		err := step("Installing dependencies...", "Dependencies installed", func(ctx context.Context) error {
			ok := toolchain.Install(ctx, toolchain.NewExecRunner(), appDir, toolchain.InstallConfig{
				Manager: cfg.Install.Manager,
				Latest:  cfg.Install.Latest,
			}, collector)
			if !ok {
				return errIncomplete
			}
			return nil
		})
		installed = err == nil
	}

	printSummary(printer, collector.Summary())

	next := nextSteps(flavor, dest, cfg.Install.Manager, installed)
	printOutro(out, outroMessage(name, dest, next))
	return nil
}

// initGit commits the generated tree. A failure is reported to handler as a
// warning and leaves the project usable.
func initGit(dest string, cfg *config.Config, handler events.Handler) bool {
	hash, err := vcs.Init(dest, cfg.Git.CommitMessage, cfg.Author())
	if err != nil {
		handler.Handle(events.Event{
			Level:   events.Warning,
			Step:    "git",
			Message: "git initialization failed",
			Hint:    fmt.Sprintf("run it manually with: cd %s && git init && git add -A && git commit -m %q", dest, cfg.Git.CommitMessage),
			Error:   err,
		})
		return false
	}
	handler.Handle(events.Event{
		Level:   events.Debug,
		Step:    "git",
		Message: "created initial commit " + hash.String(),
	})
	return true
}

// printerMinLevel is the lowest level the printer shows once a task has
// finished. Debug events never reach it.
func printerMinLevel(cmd *cli.Command) events.Level {
	if cmd.Bool("quiet") && !cmd.Bool("verbose") {
		return events.Error
	}
	return events.Info
}
