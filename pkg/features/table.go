package features

import (
	_ "embed"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nullslate/nullslate/pkg/utils/lazy"
)

//go:embed features.toml
var builtinTable []byte

var defaultTable = lazy.New(func() (*Table, error) {
	return ParseTable(builtinTable)
})

var ErrUnknownFlavor = errors.New("unknown flavor")

// Table is the decoded feature table.
type Table struct {
	Flavors map[string]*FlavorSpec `toml:"flavors"`
}

// FlavorSpec describes one flavor. Exclude lists template paths never copied
// into this flavor's projects; it is not inherited.
type FlavorSpec struct {
	Name     string          `toml:"-"`
	Policy   Policy          `toml:"policy"`
	Inherit  string          `toml:"inherit"`
	Locked   map[string]bool `toml:"locked"`
	Layout   Layout          `toml:"layout"`
	Exclude  []string        `toml:"exclude"`
	Features []FeatureSpec   `toml:"features"`
	Variants []VariantSpec   `toml:"variants"`
	Wrappers []WrapperSpec   `toml:"wrappers"`
	Secrets  []SecretsSpec   `toml:"secrets"`
}

// Layout places the template inside the target. App is the directory that
// receives the template root; Overlay is a template subdirectory copied to
// the target root instead.
type Layout struct {
	App     string `toml:"app"`
	Overlay string `toml:"overlay"`
}

type FeatureSpec struct {
	Toggle      Toggle                       `toml:"toggle"`
	Label       string                       `toml:"label"`
	Description string                       `toml:"description"`
	Default     bool                         `toml:"default"`
	Skip        []string                     `toml:"skip"`
	Remove      map[string][]string          `toml:"remove"`
	Add         map[string]map[string]string `toml:"add"`
}

// VariantSpec applies when an enumerated option has a specific value, rather
// than when a toggle is off.
type VariantSpec struct {
	Option string                       `toml:"option"`
	Value  string                       `toml:"value"`
	Skip   []string                     `toml:"skip"`
	Remove map[string][]string          `toml:"remove"`
	Add    map[string]map[string]string `toml:"add"`
}

// WrapperSpec names a wrapper block stripped from a file when Toggle is off.
type WrapperSpec struct {
	Toggle Toggle `toml:"toggle"`
	File   string `toml:"file"`
	Import string `toml:"import"`
	Open   string `toml:"open"`
	Close  string `toml:"close"`
}

// SecretsSpec names a secrets file generated when Toggle is on.
type SecretsSpec struct {
	Toggle       Toggle   `toml:"toggle"`
	File         string   `toml:"file"`
	Header       string   `toml:"header"`
	Key          string   `toml:"key"`
	Placeholders []string `toml:"placeholders"`
}

// Default returns the embedded table.
func Default() *Table {
	return defaultTable.MustGet()
}

// Lookup returns the FlavorSpec of flavor from the embedded table.
func Lookup(flavor Flavor) (*FlavorSpec, error) {
	return Default().Lookup(flavor)
}

func (t *Table) Lookup(flavor Flavor) (*FlavorSpec, error) {
	spec, ok := t.Flavors[string(flavor)]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownFlavor, flavor)
	}
	return spec, nil
}

// ParseTable decodes and validates a feature table, resolving inheritance.
func ParseTable(data []byte) (*Table, error) {
	var table Table
	if md, err := toml.Decode(string(data), &table); err != nil {
		return nil, fmt.Errorf("decoding feature table: %w", err)
	} else if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in feature table: %v", undecoded)
	}

	for name, spec := range table.Flavors {
		if spec.Inherit == "" {
			continue
		}
		parent, ok := table.Flavors[spec.Inherit]
		if !ok {
			return nil, fmt.Errorf("flavor %s: inherits unknown flavor %q", name, spec.Inherit)
		}
		if parent.Inherit != "" {
			return nil, fmt.Errorf("flavor %s: cannot inherit %s, which inherits %s", name, spec.Inherit, parent.Inherit)
		}
		spec.inherit(parent)
	}

	for name, spec := range table.Flavors {
		spec.Name = name
		if err := spec.validate(); err != nil {
			return nil, fmt.Errorf("flavor %s: %w", name, err)
		}
	}

	return &table, nil
}

func (s *FlavorSpec) inherit(parent *FlavorSpec) {
	if s.Policy == "" {
		s.Policy = parent.Policy
	}
	if len(s.Features) == 0 {
		s.Features = parent.Features
	}
	if len(s.Variants) == 0 {
		s.Variants = parent.Variants
	}
	if len(s.Wrappers) == 0 {
		s.Wrappers = parent.Wrappers
	}
	if len(s.Secrets) == 0 {
		s.Secrets = parent.Secrets
	}
}

func (s *FlavorSpec) validate() error {
	switch s.Policy {
	case Subtractive, Additive:
	default:
		return fmt.Errorf("unknown manifest policy %q", s.Policy)
	}

	for _, f := range s.Features {
		if !f.Toggle.valid() {
			return fmt.Errorf("unknown toggle %q", f.Toggle)
		}
		if err := s.checkPolicy(string(f.Toggle), f.Remove, f.Add); err != nil {
			return err
		}
	}

	for _, v := range s.Variants {
		if v.Option != "language" {
			return fmt.Errorf("unknown variant option %q", v.Option)
		}
		if _, err := ParseLanguage(v.Value); err != nil {
			return fmt.Errorf("variant %s: %w", v.Option, err)
		}
		if err := s.checkPolicy(v.Option+"="+v.Value, v.Remove, v.Add); err != nil {
			return err
		}
	}

	for _, ex := range s.Exclude {
		if ex == "" || path.IsAbs(ex) || path.Clean(ex) != ex || strings.HasPrefix(ex, "..") {
			return fmt.Errorf("invalid exclude path %q", ex)
		}
	}

	for name := range s.Locked {
		if !Toggle(name).valid() {
			return fmt.Errorf("unknown locked toggle %q", name)
		}
	}

	for _, w := range s.Wrappers {
		if !w.Toggle.valid() {
			return fmt.Errorf("wrapper %s: unknown toggle %q", w.File, w.Toggle)
		}
		if w.File == "" || w.Open == "" || w.Close == "" {
			return fmt.Errorf("wrapper for %s: file, open and close are required", w.Toggle)
		}
	}

	for _, sec := range s.Secrets {
		if !sec.Toggle.valid() {
			return fmt.Errorf("secrets %s: unknown toggle %q", sec.File, sec.Toggle)
		}
		if sec.File == "" || sec.Key == "" {
			return fmt.Errorf("secrets for %s: file and key are required", sec.Toggle)
		}
	}

	return nil
}

// checkPolicy keeps the two manifest policies apart: a flavor either removes
// or adds entries, never both.
func (s *FlavorSpec) checkPolicy(owner string, remove map[string][]string, add map[string]map[string]string) error {
	if s.Policy == Subtractive && len(add) > 0 {
		return fmt.Errorf("%s: subtractive flavor cannot add manifest entries", owner)
	}
	if s.Policy == Additive && len(remove) > 0 {
		return fmt.Errorf("%s: additive flavor cannot remove manifest entries", owner)
	}
	return nil
}
