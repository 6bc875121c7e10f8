// Package scaffold reads project templates and materializes them into new
// project directories.
package scaffold

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/nullslate/nullslate/pkg/version"
)

const (
	// MetaFile describes a template to the scaffolder and is never copied.
	MetaFile = "template.json"
	// TemplateDir holds the template when a repository keeps it in a
	// subdirectory.
	TemplateDir = "template"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrIncompatible     = errors.New("template requires a newer nullslate")
)

var gitKnownHosts = []string{
	"github.com/",
	"gitlab.com/",
	"bitbucket.org/",
	"codeberg.org/",
}

// Meta is the optional template.json of a template.
type Meta struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Version     string   `json:"version"`
	MinVersion  string   `json:"min_version"`
	Ignore      []string `json:"ignore"`
}

// Template is an opened template source. Base is the slash-separated
// directory inside FS holding the template files.
type Template struct {
	Meta   Meta
	FS     fs.FS
	Base   string
	source Source
}

func (t *Template) Close() error {
	return t.source.Close()
}

// Source returns the source the template was opened from.
func (t *Template) Source() Source {
	return t.source
}

// Dir returns the directory on disk holding the template source, or "" when
// the source is not backed by one.
func (t *Template) Dir() string {
	if d, ok := t.source.(interface{ Dir() string }); ok {
		return d.Dir()
	}
	return ""
}

// Compatible fails with ErrIncompatible when the template asks for a newer
// release than v.
func (t *Template) Compatible(v version.Version) error {
	if t.Meta.MinVersion == "" {
		return nil
	}

	required, err := version.Parse(t.Meta.MinVersion)
	if err != nil {
		return fmt.Errorf("%s min_version: %w", MetaFile, err)
	}
	if !v.AtLeast(required) {
		return fmt.Errorf("%w: %s needs %s, running %s", ErrIncompatible, t.displayName(), required, v)
	}
	return nil
}

func (t *Template) displayName() string {
	if t.Meta.Name != "" {
		return t.Meta.Name
	}
	return "template"
}

// Open resolves target to a source and opens the template inside it. target
// may be a git URL, a known-host shorthand such as github.com/owner/repo, or
// a local directory.
func Open(ctx context.Context, target string) (*Template, error) {
	src, err := resolve(target)
	if err != nil {
		return nil, fmt.Errorf("resolving source: %w", err)
	}
	return OpenSource(ctx, src)
}

func OpenFS(ctx context.Context, fsys fs.FS, root string) (*Template, error) {
	return OpenSource(ctx, NewFSSource(fsys, root))
}

// OpenSource opens the template in src. On failure src is closed.
func OpenSource(ctx context.Context, src Source) (*Template, error) {
	fsys, err := src.FS(ctx)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("accessing source: %w", err)
	}

	root := src.Root()
	if info, err := fs.Stat(fsys, root); err != nil || !info.IsDir() {
		src.Close()
		return nil, fmt.Errorf("%w: %s is not a directory", ErrTemplateNotFound, root)
	}

	base := root
	if info, err := fs.Stat(fsys, path.Join(root, TemplateDir)); err == nil && info.IsDir() {
		base = path.Join(root, TemplateDir)
	}

	meta, found, err := loadMeta(fsys, base)
	if err == nil && !found && base != root {
		meta, _, err = loadMeta(fsys, root)
	}
	if err != nil {
		src.Close()
		return nil, err
	}

	for _, pattern := range meta.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			src.Close()
			return nil, fmt.Errorf("%s: invalid ignore pattern %q", MetaFile, pattern)
		}
	}

	return &Template{
		Meta:   meta,
		FS:     fsys,
		Base:   base,
		source: src,
	}, nil
}

func loadMeta(fsys fs.FS, dir string) (Meta, bool, error) {
	var meta Meta

	data, err := fs.ReadFile(fsys, path.Join(dir, MetaFile))
	if errors.Is(err, fs.ErrNotExist) {
		return meta, false, nil
	} else if err != nil {
		return meta, false, fmt.Errorf("reading %s: %w", MetaFile, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return meta, true, nil
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, true, fmt.Errorf("decoding %s: %w", MetaFile, err)
	}

	return meta, true, nil
}

func resolve(target string) (Source, error) {
	if isRemoteURL(target) {
		return NewRemoteSource(target), nil
	}

	if info, err := os.Stat(target); err == nil {
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", target)
		}
		return NewOSSource(target), nil
	}

	if looksLikeGitShorthand(target) {
		return NewRemoteSource("https://" + target), nil
	}

	return nil, fmt.Errorf("%w: %s does not exist and is not a remote URL", ErrTemplateNotFound, target)
}

func isRemoteURL(target string) bool {
	return strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "git://") ||
		strings.HasPrefix(target, "ssh://") ||
		strings.HasPrefix(target, "git@")
}

func looksLikeGitShorthand(target string) bool {
	for _, host := range gitKnownHosts {
		if strings.HasPrefix(target, host) {
			return true
		}
	}
	return false
}
