package cmd

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"

	"github.com/nullslate/nullslate/pkg/features"
)

var flavorLabels = map[features.Flavor]string{
	features.FlavorApp:       "App - web application",
	features.FlavorFullstack: "Fullstack - Rust backend with a web frontend",
	features.FlavorLib:       "Library - publishable npm package",
}

func flavorOptions() []huh.Option[features.Flavor] {
	options := make([]huh.Option[features.Flavor], 0, len(features.Flavors()))
	for _, f := range features.Flavors() {
		label, ok := flavorLabels[f]
		if !ok {
			label = string(f)
		}
		options = append(options, huh.NewOption(label, f))
	}
	return options
}

func runForm(ctx context.Context, fields ...huh.Field) error {
	err := huh.NewForm(huh.NewGroup(fields...)).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCancelled
	}
	return err
}

func promptName(ctx context.Context) (string, error) {
	var name string
	err := runForm(ctx, huh.NewInput().
		Title("Project name").
		Placeholder("my-app").
		Value(&name).
		Validate(func(s string) error {
			if !projectNamePattern.MatchString(s) {
				return errors.New("Use lowercase letters, numbers, and hyphens only")
			}
			return nil
		}),
	)
	return name, err
}

func promptFlavor(ctx context.Context, current features.Flavor) (features.Flavor, error) {
	flavor := current
	err := runForm(ctx, huh.NewSelect[features.Flavor]().
		Title("Project type").
		Options(flavorOptions()...).
		Value(&flavor),
	)
	return flavor, err
}

func promptLanguage(ctx context.Context, current features.Language) (features.Language, error) {
	language := current
	err := runForm(ctx, huh.NewSelect[features.Language]().
		Title("Language").
		Options(
			huh.NewOption("TypeScript", features.TypeScript),
			huh.NewOption("JavaScript", features.JavaScript),
		).
		Value(&language),
	)
	return language, err
}

// promptFeatures asks for the flavor's optional features, starting from sel.
func promptFeatures(ctx context.Context, spec *features.FlavorSpec, sel features.Selection) (features.Selection, error) {
	choices := spec.Options()
	if len(choices) == 0 {
		return sel, nil
	}

	options := make([]huh.Option[features.Toggle], 0, len(choices))
	for _, f := range choices {
		label := f.Label
		if f.Description != "" {
			label += " - " + f.Description
		}
		options = append(options, huh.NewOption(label, f.Toggle).Selected(sel.Enabled(f.Toggle)))
	}

	var selected []features.Toggle
	err := runForm(ctx, huh.NewMultiSelect[features.Toggle]().
		Title("Select features").
		Options(options...).
		Value(&selected),
	)
	if err != nil {
		return sel, err
	}

	return features.NewSelection(sel.Flavor, sel.Language, selected...), nil
}
