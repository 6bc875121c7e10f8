package fileutils

import (
	"io/fs"
	"path/filepath"

	"github.com/nullslate/nullslate/pkg/utils/set"
)

// Tree walks root and returns its files and directories as slash-separated
// paths relative to root. The root itself is not included.
func Tree(root string) (files *set.Set[string], dirs *set.Set[string], err error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, err
	}

	files = set.New[string]()
	dirs = set.New[string]()

	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(abs, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			dirs.Add(rel)
		} else {
			files.Add(rel)
		}

		return nil
	})

	return files, dirs, err
}

// Files walks root and returns its files, sorted.
func Files(root string) ([]string, error) {
	files, _, err := Tree(root)
	if err != nil {
		return nil, err
	}
	return set.Sorted(files), nil
}
