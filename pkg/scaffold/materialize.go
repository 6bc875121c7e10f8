package scaffold

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/nullslate/nullslate/pkg/features"
)

// Placeholder is replaced with the project name in every text file.
const Placeholder = "{{project_name}}"

// Result lists what Materialize wrote and left out, as slash-separated paths
// relative to the template root.
type Result struct {
	Files   []string
	Dirs    []string
	Skipped []string
}

// Render substitutes every occurrence of Placeholder.
func Render(content, projectName string) string {
	return strings.ReplaceAll(content, Placeholder, projectName)
}

// Materialize copies the template into dest, honoring its ignore patterns.
func (t *Template) Materialize(dest, projectName string, rules []string, opts ...Option) (*Result, error) {
	opts = append([]Option{WithIgnore(t.Meta.Ignore...)}, opts...)
	return Materialize(t.FS, t.Base, dest, projectName, rules, opts...)
}

// Materialize copies the tree below root in fsys into dest. Entries matched
// by rules are left out, and a left-out directory takes its whole subtree
// with it. Text files are rendered; anything that is not valid UTF-8 is
// copied as is. The first error stops the copy and whatever was already
// written stays in place.
func Materialize(fsys fs.FS, root, dest, projectName string, rules []string, opts ...Option) (*Result, error) {
	o := defaultOptions().apply(opts...)

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("creating target directory: %w", err)
	}

	result := &Result{
		Files:   make([]string, 0),
		Dirs:    make([]string, 0),
		Skipped: make([]string, 0),
	}

	err := fs.WalkDir(fsys, root, func(src string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel := relPath(root, src)
		if rel == "." {
			return nil
		}

		if reason := o.omit(rel, rules); reason != "" {
			o.logger.Debug("skipping", "path", rel, "reason", reason)
			result.Skipped = append(result.Skipped, rel)
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		target := filepath.Join(dest, filepath.FromSlash(rel))

		if d.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", rel, err)
			}
			result.Dirs = append(result.Dirs, rel)
			return nil
		}

		if err := copyFile(fsys, src, target, projectName, d); err != nil {
			return fmt.Errorf("materializing %s: %w", rel, err)
		}

		o.logger.Debug("wrote", "path", rel)
		result.Files = append(result.Files, rel)
		return nil
	})

	if err != nil {
		return result, err
	}

	return result, nil
}

func copyFile(fsys fs.FS, src, target, projectName string, d fs.DirEntry) error {
	perm := fs.FileMode(0o644)
	if info, err := d.Info(); err != nil {
		return err
	} else if p := info.Mode().Perm(); p != 0 {
		perm = p
	}

	data, err := fs.ReadFile(fsys, src)
	if err != nil {
		return err
	}

	if utf8.Valid(data) {
		data = []byte(Render(string(data), projectName))
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	return os.WriteFile(target, data, perm)
}

// omit returns why rel is left out, or "" when it is copied.
func (o *options) omit(rel string, rules []string) string {
	switch {
	case rel == MetaFile:
		return "reserved"
	case path.Base(rel) == ".git":
		return "reserved"
	case features.IsSkipped(rel, rules):
		return "feature"
	case features.IsSkipped(rel, o.exclude):
		return "excluded"
	}

	for _, pattern := range o.ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return "ignored"
		}
	}

	return ""
}

func relPath(root, p string) string {
	switch {
	case p == root:
		return "."
	case root == "." || root == "":
		return p
	default:
		return strings.TrimPrefix(p, root+"/")
	}
}
