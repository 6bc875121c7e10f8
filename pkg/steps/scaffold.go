package steps

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/nullslate/nullslate/pkg/events"
	"github.com/nullslate/nullslate/pkg/features"
	"github.com/nullslate/nullslate/pkg/manifest"
	"github.com/nullslate/nullslate/pkg/postprocess"
	"github.com/nullslate/nullslate/pkg/scaffold"
)

var ErrNoTemplate = errors.New("no template")

var (
	IDResolve     = StepID{Owner: "nullslate", Name: "resolve"}
	IDMaterialize = StepID{Owner: "nullslate", Name: "materialize"}
	IDOverlay     = StepID{Owner: "nullslate", Name: "materialize", Sub: "overlay"}
	IDManifest    = StepID{Owner: "nullslate", Name: "manifest"}
	IDWrappers    = StepID{Owner: "nullslate", Name: "postprocess", Sub: "wrappers"}
	IDSecrets     = StepID{Owner: "nullslate", Name: "postprocess", Sub: "secrets"}
)

const (
	KeyParams  = K[*Params]("params")
	KeyFlavor  = K[*features.FlavorSpec]("flavor")
	KeyRules   = K[[]string]("rules")
	KeyOutcome = K[*Outcome]("outcome")
)

// Params is everything a scaffold run needs. Dest must not exist yet; the
// caller checks that before starting.
type Params struct {
	Template    *scaffold.Template
	Dest        string
	ProjectName string
	Selection   features.Selection
	// Table overrides the embedded feature table.
	Table  *features.Table
	Logger *log.Logger
}

// Outcome describes what a scaffold run produced. Paths are slash-separated
// and relative to Params.Dest.
type Outcome struct {
	AppDir   string
	Rules    []string
	Files    []string
	Skipped  []string
	Stripped []string
	Secrets  []string
}

// Scaffold materializes p.Template into p.Dest and applies the selected
// features to the result.
func Scaffold(ctx context.Context, p Params, handler events.Handler) (*Outcome, error) {
	if p.Template == nil {
		return nil, ErrNoTemplate
	}
	if p.Logger == nil {
		p.Logger = log.Default()
	}

	reg := NewRegistry()
	Put(reg, KeyParams, &p)
	Put(reg, KeyOutcome, &Outcome{})

	err := Run(ctx, reg, handler, Pipeline()...)

	outcome, _ := Lookup(reg, KeyOutcome)
	return outcome, err
}

// Pipeline returns the scaffold steps in execution order.
func Pipeline() []Step {
	return []Step{
		StepResolve(),
		StepMaterialize(),
		StepOverlay(),
		StepManifest(),
		StepWrappers(),
		StepSecrets(),
	}
}

// StepResolve looks up the flavor and computes the skip rules.
func StepResolve() Step {
	return StepFunc(IDResolve, func(ctx context.Context, sc Context) error {
		p := GetAs(sc, KeyParams)
		outcome := GetAs(sc, KeyOutcome)

		table := p.Table
		if table == nil {
			table = features.Default()
		}

		spec, err := table.Lookup(p.Selection.Flavor)
		if err != nil {
			return err
		}

		rules := spec.SkipRules(p.Selection)

		SetAs(sc, KeyFlavor, spec)
		SetAs(sc, KeyRules, rules)

		outcome.AppDir = "."
		if spec.Layout.App != "" {
			outcome.AppDir = spec.Layout.App
		}
		outcome.Rules = rules

		sc.Debugf("flavor %s with %d skip rules", spec.Name, len(rules))
		return nil
	}).WithReads(string(KeyParams), string(KeyOutcome)).
		WithWrites(string(KeyFlavor), string(KeyRules))
}

// StepMaterialize copies the template into the app directory.
func StepMaterialize() Step {
	return StepFunc(IDMaterialize, func(ctx context.Context, sc Context) error {
		p := GetAs(sc, KeyParams)
		spec := GetAs(sc, KeyFlavor)
		rules := GetAs(sc, KeyRules)
		outcome := GetAs(sc, KeyOutcome)

		opts := []scaffold.Option{scaffold.WithLogger(p.Logger)}
		if len(spec.Exclude) > 0 {
			opts = append(opts, scaffold.WithExclude(spec.Exclude...))
		}
		if spec.Layout.Overlay != "" {
			opts = append(opts, scaffold.WithExclude(spec.Layout.Overlay))
		}

		appDir := filepath.Join(p.Dest, filepath.FromSlash(outcome.AppDir))
		res, err := p.Template.Materialize(appDir, p.ProjectName, rules, opts...)
		if err != nil {
			return err
		}

		outcome.Files = append(outcome.Files, prefixed(outcome.AppDir, res.Files)...)
		outcome.Skipped = append(outcome.Skipped, prefixed(outcome.AppDir, res.Skipped)...)

		sc.Infof("copied %d files, skipped %d entries", len(res.Files), len(res.Skipped))
		return nil
	}).WithReads(string(KeyParams), string(KeyFlavor), string(KeyRules), string(KeyOutcome))
}

// StepOverlay copies the flavor's overlay directory to the project root.
func StepOverlay() Step {
	return StepFunc(IDOverlay, func(ctx context.Context, sc Context) error {
		p := GetAs(sc, KeyParams)
		spec := GetAs(sc, KeyFlavor)
		outcome := GetAs(sc, KeyOutcome)

		if spec.Layout.Overlay == "" {
			return nil
		}

		root := path.Join(p.Template.Base, spec.Layout.Overlay)
		if info, err := fs.Stat(p.Template.FS, root); err != nil || !info.IsDir() {
			sc.Debugf("template has no %s overlay", spec.Layout.Overlay)
			return nil
		}

		res, err := scaffold.Materialize(p.Template.FS, root, p.Dest, p.ProjectName, nil,
			scaffold.WithLogger(p.Logger),
			scaffold.WithIgnore(p.Template.Meta.Ignore...),
		)
		if err != nil {
			return err
		}

		outcome.Files = append(outcome.Files, res.Files...)
		sc.Infof("copied %d overlay files", len(res.Files))
		return nil
	}).WithReads(string(KeyParams), string(KeyFlavor), string(KeyOutcome))
}

// StepManifest applies the flavor's package.json edits.
func StepManifest() Step {
	return StepFunc(IDManifest, func(ctx context.Context, sc Context) error {
		p := GetAs(sc, KeyParams)
		spec := GetAs(sc, KeyFlavor)
		outcome := GetAs(sc, KeyOutcome)

		edits := spec.ManifestEdits(p.Selection)
		file := filepath.Join(p.Dest, filepath.FromSlash(outcome.AppDir), manifest.FileName)

		if err := manifest.EditFile(file, edits); err != nil {
			return err
		}

		sc.Debugf("%s manifest edits applied to %s", spec.Policy, manifest.FileName)
		return nil
	}).WithReads(string(KeyParams), string(KeyFlavor), string(KeyOutcome))
}

// StepWrappers strips the wrapper blocks of disabled features.
func StepWrappers() Step {
	return StepFunc(IDWrappers, func(ctx context.Context, sc Context) error {
		p := GetAs(sc, KeyParams)
		spec := GetAs(sc, KeyFlavor)
		outcome := GetAs(sc, KeyOutcome)

		appDir := filepath.Join(p.Dest, filepath.FromSlash(outcome.AppDir))
		for _, w := range spec.ActiveWrappers(p.Selection) {
			changed, err := postprocess.StripWrapper(appDir, w)
			if err != nil {
				return err
			}
			if !changed {
				sc.Debugf("no wrapper found in %s", w.File)
				continue
			}
			outcome.Stripped = append(outcome.Stripped, path.Join(outcome.AppDir, w.File))
		}

		return nil
	}).WithReads(string(KeyParams), string(KeyFlavor), string(KeyOutcome))
}

// StepSecrets writes a secrets file for each enabled feature that needs one.
func StepSecrets() Step {
	return StepFunc(IDSecrets, func(ctx context.Context, sc Context) error {
		p := GetAs(sc, KeyParams)
		spec := GetAs(sc, KeyFlavor)
		outcome := GetAs(sc, KeyOutcome)

		appDir := filepath.Join(p.Dest, filepath.FromSlash(outcome.AppDir))
		for _, s := range spec.ActiveSecrets(p.Selection) {
			if _, err := postprocess.WriteSecrets(appDir, s); err != nil {
				return err
			}
			rel := path.Join(outcome.AppDir, s.File)
			outcome.Secrets = append(outcome.Secrets, rel)
			sc.Infof("generated %s", rel)
		}

		return nil
	}).WithReads(string(KeyParams), string(KeyFlavor), string(KeyOutcome))
}

func prefixed(dir string, paths []string) []string {
	if dir == "." || dir == "" {
		return paths
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = path.Join(dir, p)
	}
	return out
}
