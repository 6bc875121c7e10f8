// Package config loads the optional user configuration of nullslate.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/nullslate/nullslate/pkg/features"
	"github.com/nullslate/nullslate/pkg/vcs"
)

const (
	DirName = "nullslate"

	DefaultAppTemplate = "https://github.com/nullslate/app-template.git"
	DefaultLibTemplate = "https://github.com/nullslate/lib-template.git"
	DefaultManager     = "bun"
)

// searchNames are tried in order below each XDG config directory.
var searchNames = []string{
	"config.toml",
	"config.yaml",
	"config.yml",
	"config.json",
}

// Config is the user configuration.
type Config struct {
	Templates Templates `toml:"templates" yaml:"templates" json:"templates"`
	Install   Install   `toml:"install" yaml:"install" json:"install"`
	Git       Git       `toml:"git" yaml:"git" json:"git"`
}

// Templates holds the default template location of each flavor.
type Templates struct {
	App       string `toml:"app" yaml:"app" json:"app"`
	Lib       string `toml:"lib" yaml:"lib" json:"lib"`
	Fullstack string `toml:"fullstack" yaml:"fullstack" json:"fullstack"`
}

type Install struct {
	// Manager is the package manager run after scaffolding.
	Manager string `toml:"manager" yaml:"manager" json:"manager"`
	// Latest packages are re-added at their newest release after install.
	Latest []string `toml:"latest" yaml:"latest" json:"latest"`
}

type Git struct {
	CommitMessage string `toml:"commit_message" yaml:"commit_message" json:"commit_message"`
	AuthorName    string `toml:"author_name" yaml:"author_name" json:"author_name"`
	AuthorEmail   string `toml:"author_email" yaml:"author_email" json:"author_email"`
}

// Default constructs a Config with default values.
func Default() *Config {
	return &Config{
		Templates: Templates{
			App:       DefaultAppTemplate,
			Lib:       DefaultLibTemplate,
			Fullstack: DefaultAppTemplate,
		},
		Install: Install{
			Manager: DefaultManager,
			Latest: []string{
				"@thesandybridge/themes",
				"@thesandybridge/ui",
			},
		},
		Git: Git{
			CommitMessage: vcs.DefaultCommitMessage,
		},
	}
}

// Load reads the config file at path over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := decodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Find returns the first config file in the XDG config directories, or ""
// when there is none.
func Find() string {
	for _, name := range searchNames {
		if path, err := xdg.SearchConfigFile(filepath.Join(DirName, name)); err == nil {
			return path
		}
	}
	return ""
}

// Resolve loads the config at explicit, or the discovered one when explicit
// is empty. Without any file it returns the defaults. The path used is
// returned alongside.
func Resolve(explicit string) (*Config, string, error) {
	path := explicit
	if path == "" {
		path = Find()
	}
	if path == "" {
		return Default(), "", nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Validate fills emptied fields with defaults and rejects unusable values.
func (c *Config) Validate() error {
	def := Default()

	c.Templates.App = strings.TrimSpace(c.Templates.App)
	if c.Templates.App == "" {
		c.Templates.App = def.Templates.App
	}
	c.Templates.Lib = strings.TrimSpace(c.Templates.Lib)
	if c.Templates.Lib == "" {
		c.Templates.Lib = def.Templates.Lib
	}
	c.Templates.Fullstack = strings.TrimSpace(c.Templates.Fullstack)
	if c.Templates.Fullstack == "" {
		c.Templates.Fullstack = def.Templates.Fullstack
	}

	c.Install.Manager = strings.TrimSpace(c.Install.Manager)
	if c.Install.Manager == "" {
		c.Install.Manager = def.Install.Manager
	}
	if strings.ContainsAny(c.Install.Manager, " \t/\\") {
		return fmt.Errorf("install.manager must be a program name (got %q)", c.Install.Manager)
	}
	for _, pkg := range c.Install.Latest {
		if strings.TrimSpace(pkg) == "" {
			return errors.New("install.latest contains an empty package name")
		}
	}

	if strings.TrimSpace(c.Git.CommitMessage) == "" {
		c.Git.CommitMessage = def.Git.CommitMessage
	}
	if (c.Git.AuthorName == "") != (c.Git.AuthorEmail == "") {
		return errors.New("git.author_name and git.author_email must be set together")
	}

	return nil
}

// TemplateFor returns the template location of flavor.
func (c *Config) TemplateFor(flavor features.Flavor) string {
	switch flavor {
	case features.FlavorLib:
		return c.Templates.Lib
	case features.FlavorFullstack:
		return c.Templates.Fullstack
	default:
		return c.Templates.App
	}
}

// Author returns the configured commit author, or nil to use git's own.
func (c *Config) Author() *vcs.Author {
	if c.Git.AuthorName == "" {
		return nil
	}
	return &vcs.Author{Name: c.Git.AuthorName, Email: c.Git.AuthorEmail}
}
