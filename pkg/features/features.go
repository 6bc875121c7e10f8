// Package features maps the user's feature toggles to the work a scaffold run
// performs: which template paths to skip, how to edit package.json and which
// post-processing steps apply. The mapping lives in an embedded table rather
// than in code.
package features

import (
	"fmt"
	"slices"
	"strings"
)

// Flavor is the kind of project being scaffolded.
type Flavor string

const (
	FlavorApp       Flavor = "app"
	FlavorLib       Flavor = "lib"
	FlavorFullstack Flavor = "fullstack"
)

var flavors = []Flavor{FlavorApp, FlavorFullstack, FlavorLib}

// Flavors lists every known flavor in display order.
func Flavors() []Flavor {
	return slices.Clone(flavors)
}

func ParseFlavor(s string) (Flavor, error) {
	f := Flavor(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(flavors, f) {
		return "", fmt.Errorf("unknown project type %q (expected app, lib or fullstack)", s)
	}
	return f, nil
}

// Toggle is a named feature switch.
type Toggle string

const (
	Auth     Toggle = "auth"
	Docs     Toggle = "docs"
	Database Toggle = "database"
	React    Toggle = "react"
	CSS      Toggle = "css"
	Testing  Toggle = "testing"
)

var toggles = []Toggle{Auth, Docs, Database, React, CSS, Testing}

func (t Toggle) valid() bool {
	return slices.Contains(toggles, t)
}

// Language is the source language variant of a library project.
type Language string

const (
	TypeScript Language = "typescript"
	JavaScript Language = "javascript"
)

func ParseLanguage(s string) (Language, error) {
	switch l := Language(strings.ToLower(strings.TrimSpace(s))); l {
	case TypeScript, JavaScript:
		return l, nil
	case "ts":
		return TypeScript, nil
	case "js":
		return JavaScript, nil
	default:
		return "", fmt.Errorf("unknown language %q (expected typescript or javascript)", s)
	}
}

// Policy decides how a flavor edits package.json.
type Policy string

const (
	// Subtractive removes the dependencies of disabled features. Used when the
	// template already ships with every dependency.
	Subtractive Policy = "subtractive"
	// Additive inserts the dependencies of enabled features.
	Additive Policy = "additive"
)

// Selection is the fully resolved set of toggles for one scaffold run.
type Selection struct {
	Flavor   Flavor
	Toggles  map[Toggle]bool
	Language Language
}

// NewSelection enables the given toggles; every other toggle is off.
func NewSelection(flavor Flavor, language Language, enabled ...Toggle) Selection {
	sel := Selection{
		Flavor:   flavor,
		Toggles:  make(map[Toggle]bool, len(enabled)),
		Language: language,
	}
	for _, t := range enabled {
		sel.Toggles[t] = true
	}
	return sel
}

// Enabled returns the selected state of t, before any locks are applied.
func (s Selection) Enabled(t Toggle) bool {
	return s.Toggles[t]
}

// EnabledList returns the enabled toggles in canonical order.
func (s Selection) EnabledList() []Toggle {
	out := make([]Toggle, 0, len(s.Toggles))
	for _, t := range toggles {
		if s.Toggles[t] {
			out = append(out, t)
		}
	}
	return out
}
