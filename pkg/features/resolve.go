package features

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/nullslate/nullslate/pkg/manifest"
	"github.com/nullslate/nullslate/pkg/postprocess"
)

// Resolve returns the skip rules for sel using the embedded table.
func Resolve(sel Selection) ([]string, error) {
	spec, err := Lookup(sel.Flavor)
	if err != nil {
		return nil, err
	}
	return spec.SkipRules(sel), nil
}

// IsSkipped reports whether rel is excluded by rules. A rule matches the path
// it names and everything below it, on whole path segments: "docs" skips
// "docs/page.md" but not "docs2/page.md".
func IsSkipped(rel string, rules []string) bool {
	rel = path.Clean(filepath.ToSlash(rel))
	for _, rule := range rules {
		rule = strings.TrimSuffix(filepath.ToSlash(rule), "/")
		if rule == "" {
			continue
		}
		if rel == rule || strings.HasPrefix(rel, rule+"/") {
			return true
		}
	}
	return false
}

// Enabled reports the effective state of t, with locked toggles taking
// precedence over the selection.
func (s *FlavorSpec) Enabled(sel Selection, t Toggle) bool {
	if locked, ok := s.Locked[string(t)]; ok {
		return locked
	}
	return sel.Enabled(t)
}

// Options returns the features a user may choose for this flavor.
func (s *FlavorSpec) Options() []FeatureSpec {
	out := make([]FeatureSpec, 0, len(s.Features))
	for _, f := range s.Features {
		if _, locked := s.Locked[string(f.Toggle)]; locked {
			continue
		}
		out = append(out, f)
	}
	return out
}

// HasVariant reports whether the flavor offers a choice for option.
func (s *FlavorSpec) HasVariant(option string) bool {
	for _, v := range s.Variants {
		if v.Option == option {
			return true
		}
	}
	return false
}

func (s *FlavorSpec) variantApplies(v VariantSpec, sel Selection) bool {
	return v.Option == "language" && Language(v.Value) == sel.Language
}

// SkipRules collects the skip rules of every disabled feature followed by
// every matching variant, in table order.
func (s *FlavorSpec) SkipRules(sel Selection) []string {
	rules := make([]string, 0)
	for _, f := range s.Features {
		if !s.Enabled(sel, f.Toggle) {
			rules = append(rules, f.Skip...)
		}
	}
	for _, v := range s.Variants {
		if s.variantApplies(v, sel) {
			rules = append(rules, v.Skip...)
		}
	}
	return rules
}

// ManifestEdits returns the package.json changes for sel under the flavor's
// policy. Subtractive flavors only ever remove; additive ones only ever add.
func (s *FlavorSpec) ManifestEdits(sel Selection) manifest.Edits {
	edits := manifest.Edits{}

	switch s.Policy {
	case Subtractive:
		for _, f := range s.Features {
			if !s.Enabled(sel, f.Toggle) {
				edits.RemoveAll(f.Remove)
			}
		}
		for _, v := range s.Variants {
			if s.variantApplies(v, sel) {
				edits.RemoveAll(v.Remove)
			}
		}
	case Additive:
		for _, f := range s.Features {
			if s.Enabled(sel, f.Toggle) {
				edits.AddAll(f.Add)
			}
		}
		for _, v := range s.Variants {
			if s.variantApplies(v, sel) {
				edits.AddAll(v.Add)
			}
		}
	}

	return edits
}

// ActiveWrappers returns the wrapper blocks to strip because their toggle is off.
func (s *FlavorSpec) ActiveWrappers(sel Selection) []postprocess.Wrapper {
	out := make([]postprocess.Wrapper, 0)
	for _, w := range s.Wrappers {
		if s.Enabled(sel, w.Toggle) {
			continue
		}
		out = append(out, postprocess.Wrapper{
			File:   w.File,
			Import: w.Import,
			Open:   w.Open,
			Close:  w.Close,
		})
	}
	return out
}

// ActiveSecrets returns the secrets files to generate because their toggle is on.
func (s *FlavorSpec) ActiveSecrets(sel Selection) []postprocess.Secrets {
	out := make([]postprocess.Secrets, 0)
	for _, sec := range s.Secrets {
		if !s.Enabled(sel, sec.Toggle) {
			continue
		}
		out = append(out, postprocess.Secrets{
			File:         sec.File,
			Header:       sec.Header,
			Key:          sec.Key,
			Placeholders: sec.Placeholders,
		})
	}
	return out
}
